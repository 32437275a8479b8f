package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"expensero/internal/models"
)

// defaultVendor is the placeholder for receipts where no merchant name
// could be read.
const defaultVendor = "Comercio desconocido"

const defaultCurrency = "EUR"

// identityTolerance absorbs floating-point noise in net + vat vs gross.
// A larger gap signals model inconsistency, not user error, and is
// repaired rather than rejected: the user cannot fix the document after
// the fact.
const identityTolerance = 0.01

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeExpense turns the raw, possibly missing or malformed fields
// from the vision model into a fully populated, internally consistent
// draft. Pure function of its input; "now" supplies the default date.
//
// The order matters: coerce and default first, then repair the accounting
// identity treating gross and VAT as authoritative (they are the figures
// printed on a receipt; net is implied), and round last. Rounding before
// repair could reintroduce a sub-cent mismatch.
func NormalizeExpense(raw map[string]any, now time.Time) models.ExpenseDraft {
	draft := models.ExpenseDraft{
		Vendor:             stringField(raw, "vendor", defaultVendor),
		ExpenseDate:        dateField(raw, "expense_date", now),
		AmountGross:        amountField(raw, "amount_gross"),
		TaxVAT:             amountField(raw, "tax_vat"),
		AmountNet:          amountField(raw, "amount_net"),
		Currency:           stringField(raw, "currency", defaultCurrency),
		CategorySuggestion: models.ParseCategory(trimmedString(raw, "category_suggestion")),
		PaymentMethodGuess: models.ParsePaymentMethod(trimmedString(raw, "payment_method_guess")),
		ProjectCodeGuess:   optionalString(raw, "project_code_guess"),
		Notes:              optionalString(raw, "notes"),
	}

	calculatedGross := draft.AmountNet + draft.TaxVAT
	if math.Abs(calculatedGross-draft.AmountGross) > identityTolerance {
		draft.AmountNet = draft.AmountGross - draft.TaxVAT
	}

	draft.AmountGross = round2(draft.AmountGross)
	draft.TaxVAT = round2(draft.TaxVAT)
	draft.AmountNet = round2(draft.AmountNet)

	return draft
}

// round2 rounds to two decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func trimmedString(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func stringField(raw map[string]any, key, fallback string) string {
	if s := trimmedString(raw, key); s != "" {
		return s
	}
	return fallback
}

// dateField accepts only real YYYY-MM-DD calendar dates; anything else
// becomes today's date.
func dateField(raw map[string]any, key string, now time.Time) string {
	s := trimmedString(raw, key)
	if dateRe.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return s
		}
	}
	return now.Format("2006-01-02")
}

// amountField coerces a monetary value from whatever the model sent:
// JSON numbers, numeric strings (decimal comma tolerated). Coercion
// failures and negative values become 0; amounts are magnitudes.
func amountField(raw map[string]any, key string) float64 {
	var v float64
	switch t := raw[key].(type) {
	case float64:
		v = t
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		v = parsed
	default:
		return 0
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func optionalString(raw map[string]any, key string) *string {
	s := trimmedString(raw, key)
	if s == "" {
		return nil
	}
	return &s
}
