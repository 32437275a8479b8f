package service

import (
	"testing"
	"time"

	"expensero/internal/models"
)

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestNormalizeExpenseRepairsIdentity(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		wantGross float64
		wantVAT   float64
		wantNet   float64
	}{
		{
			name:      "inconsistent net is recomputed from gross and vat",
			raw:       map[string]any{"amount_gross": 110.0, "tax_vat": 10.0, "amount_net": 90.0},
			wantGross: 110, wantVAT: 10, wantNet: 100,
		},
		{
			name:      "consistent amounts pass through",
			raw:       map[string]any{"amount_gross": 100.0, "tax_vat": 21.0, "amount_net": 79.0},
			wantGross: 100, wantVAT: 21, wantNet: 79,
		},
		{
			name:      "sub-cent mismatch is within tolerance",
			raw:       map[string]any{"amount_gross": 50.0, "tax_vat": 5.0, "amount_net": 45.004},
			wantGross: 50, wantVAT: 5, wantNet: 45,
		},
		{
			name:      "missing net is derived",
			raw:       map[string]any{"amount_gross": 121.0, "tax_vat": 21.0},
			wantGross: 121, wantVAT: 21, wantNet: 100,
		},
		{
			name:      "repaired net may go negative to keep the identity",
			raw:       map[string]any{"amount_gross": 10.0, "tax_vat": 25.0, "amount_net": 99.0},
			wantGross: 10, wantVAT: 25, wantNet: -15,
		},
		{
			name:      "all amounts missing stay zero",
			raw:       map[string]any{},
			wantGross: 0, wantVAT: 0, wantNet: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NormalizeExpense(tt.raw, testNow)
			if draft.AmountGross != tt.wantGross {
				t.Errorf("AmountGross = %v, want %v", draft.AmountGross, tt.wantGross)
			}
			if draft.TaxVAT != tt.wantVAT {
				t.Errorf("TaxVAT = %v, want %v", draft.TaxVAT, tt.wantVAT)
			}
			if draft.AmountNet != tt.wantNet {
				t.Errorf("AmountNet = %v, want %v", draft.AmountNet, tt.wantNet)
			}
		})
	}
}

func TestNormalizeExpenseDefaults(t *testing.T) {
	draft := NormalizeExpense(map[string]any{}, testNow)

	if draft.Vendor != defaultVendor {
		t.Errorf("Vendor = %q, want %q", draft.Vendor, defaultVendor)
	}
	if draft.ExpenseDate != "2026-08-28" {
		t.Errorf("ExpenseDate = %q, want today", draft.ExpenseDate)
	}
	if draft.Currency != defaultCurrency {
		t.Errorf("Currency = %q, want %q", draft.Currency, defaultCurrency)
	}
	if draft.CategorySuggestion != models.CategoryOtros {
		t.Errorf("CategorySuggestion = %q, want Otros", draft.CategorySuggestion)
	}
	if draft.PaymentMethodGuess != models.PaymentOther {
		t.Errorf("PaymentMethodGuess = %q, want OTHER", draft.PaymentMethodGuess)
	}
	if draft.ProjectCodeGuess != nil {
		t.Errorf("ProjectCodeGuess = %v, want nil", *draft.ProjectCodeGuess)
	}
	if draft.Notes != nil {
		t.Errorf("Notes = %v, want nil", *draft.Notes)
	}
}

func TestNormalizeExpenseStrings(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want func(t *testing.T, d models.ExpenseDraft)
	}{
		{
			name: "whitespace vendor falls back",
			raw:  map[string]any{"vendor": "   "},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.Vendor != defaultVendor {
					t.Errorf("Vendor = %q, want default", d.Vendor)
				}
			},
		},
		{
			name: "vendor is trimmed",
			raw:  map[string]any{"vendor": "  Mercadona  "},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.Vendor != "Mercadona" {
					t.Errorf("Vendor = %q, want Mercadona", d.Vendor)
				}
			},
		},
		{
			name: "unknown category maps to Otros",
			raw:  map[string]any{"category_suggestion": "Comida"},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.CategorySuggestion != models.CategoryOtros {
					t.Errorf("CategorySuggestion = %q, want Otros", d.CategorySuggestion)
				}
			},
		},
		{
			name: "known category passes through",
			raw:  map[string]any{"category_suggestion": "Dietas"},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.CategorySuggestion != models.CategoryDietas {
					t.Errorf("CategorySuggestion = %q, want Dietas", d.CategorySuggestion)
				}
			},
		},
		{
			name: "unknown payment method maps to OTHER",
			raw:  map[string]any{"payment_method_guess": "TARJETA"},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.PaymentMethodGuess != models.PaymentOther {
					t.Errorf("PaymentMethodGuess = %q, want OTHER", d.PaymentMethodGuess)
				}
			},
		},
		{
			name: "wrong-typed vendor falls back",
			raw:  map[string]any{"vendor": 42.0},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.Vendor != defaultVendor {
					t.Errorf("Vendor = %q, want default", d.Vendor)
				}
			},
		},
		{
			name: "optional fields survive when present",
			raw:  map[string]any{"project_code_guess": "PRJ-7", "notes": "cena equipo"},
			want: func(t *testing.T, d models.ExpenseDraft) {
				if d.ProjectCodeGuess == nil || *d.ProjectCodeGuess != "PRJ-7" {
					t.Errorf("ProjectCodeGuess = %v, want PRJ-7", d.ProjectCodeGuess)
				}
				if d.Notes == nil || *d.Notes != "cena equipo" {
					t.Errorf("Notes = %v, want cena equipo", d.Notes)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, NormalizeExpense(tt.raw, testNow))
		})
	}
}

func TestNormalizeExpenseDates(t *testing.T) {
	today := testNow.Format("2006-01-02")

	tests := []struct {
		name string
		date any
		want string
	}{
		{"valid date kept", "2026-08-15", "2026-08-15"},
		{"wrong format falls back", "15/08/2026", today},
		{"impossible calendar date falls back", "2026-13-45", today},
		{"missing falls back", nil, today},
		{"wrong type falls back", 20260815.0, today},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{}
			if tt.date != nil {
				raw["expense_date"] = tt.date
			}
			if got := NormalizeExpense(raw, testNow).ExpenseDate; got != tt.want {
				t.Errorf("ExpenseDate = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeExpenseAmountCoercion(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want float64
	}{
		{"json number", 12.5, 12.5},
		{"numeric string", "12.50", 12.5},
		{"decimal comma string", "12,50", 12.5},
		{"garbage string", "doce", 0},
		{"negative clamped", -5.0, 0},
		{"wrong type", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := map[string]any{
				"amount_gross": tt.val,
				"tax_vat":      0.0,
				"amount_net":   tt.val,
			}
			if got := NormalizeExpense(raw, testNow).AmountGross; got != tt.want {
				t.Errorf("AmountGross = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeExpenseRounding(t *testing.T) {
	raw := map[string]any{
		"amount_gross": 10.567,
		"tax_vat":      1.833,
		"amount_net":   8.734,
	}
	draft := NormalizeExpense(raw, testNow)

	if draft.AmountGross != 10.57 {
		t.Errorf("AmountGross = %v, want 10.57", draft.AmountGross)
	}
	if draft.TaxVAT != 1.83 {
		t.Errorf("TaxVAT = %v, want 1.83", draft.TaxVAT)
	}
	if draft.AmountNet != 8.73 {
		t.Errorf("AmountNet = %v, want 8.73", draft.AmountNet)
	}
}

// Normalization is a fixed point: feeding its own output back through
// changes nothing.
func TestNormalizeExpenseIdempotent(t *testing.T) {
	first := NormalizeExpense(map[string]any{
		"vendor":               "  Bar Pepe ",
		"expense_date":         "31-12-2026",
		"amount_gross":         "110",
		"tax_vat":              10.0,
		"amount_net":           90.0,
		"category_suggestion":  "Cañas",
		"payment_method_guess": "CARD",
	}, testNow)

	second := NormalizeExpense(map[string]any{
		"vendor":               first.Vendor,
		"expense_date":         first.ExpenseDate,
		"amount_gross":         first.AmountGross,
		"tax_vat":              first.TaxVAT,
		"amount_net":           first.AmountNet,
		"currency":             first.Currency,
		"category_suggestion":  string(first.CategorySuggestion),
		"payment_method_guess": string(first.PaymentMethodGuess),
	}, testNow)

	if first != second {
		t.Errorf("normalization not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10.567, 10.57},
		{10.564, 10.56},
		{0, 0},
		{-1.005, -1},
		{99.999, 100},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
