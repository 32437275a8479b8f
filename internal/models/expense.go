package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of expense categories the extraction
// pipeline may suggest. Unknown values from the model are replaced by
// CategoryOtros, never passed through.
type Category string

const (
	CategoryViajes      Category = "Viajes"
	CategoryDietas      Category = "Dietas"
	CategoryMaterial    Category = "Material"
	CategorySoftware    Category = "Software"
	CategoryTransporte  Category = "Transporte"
	CategoryAlojamiento Category = "Alojamiento"
	CategoryOtros       Category = "Otros"
)

// Categories lists every valid category, in the order exposed to the model.
func Categories() []Category {
	return []Category{
		CategoryViajes,
		CategoryDietas,
		CategoryMaterial,
		CategorySoftware,
		CategoryTransporte,
		CategoryAlojamiento,
		CategoryOtros,
	}
}

// ParseCategory maps a free-form string onto the closed category set,
// falling back to CategoryOtros.
func ParseCategory(s string) Category {
	for _, c := range Categories() {
		if s == string(c) {
			return c
		}
	}
	return CategoryOtros
}

// PaymentMethod is the closed set of payment method guesses.
type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "CARD"
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentOther    PaymentMethod = "OTHER"
)

// PaymentMethods lists every valid payment method.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCard, PaymentCash, PaymentTransfer, PaymentOther}
}

// ParsePaymentMethod maps a free-form string onto the closed set,
// falling back to PaymentOther.
func ParsePaymentMethod(s string) PaymentMethod {
	for _, m := range PaymentMethods() {
		if s == string(m) {
			return m
		}
	}
	return PaymentOther
}

// ExpenseDraft is the normalized, not-yet-persisted expense record the
// extraction pipeline returns. It always satisfies the accounting
// identity |amount_net + tax_vat - amount_gross| <= 0.01 and all three
// amounts carry at most two decimal digits.
type ExpenseDraft struct {
	Vendor             string        `json:"vendor"`
	ExpenseDate        string        `json:"expense_date"` // YYYY-MM-DD
	AmountGross        float64       `json:"amount_gross"`
	TaxVAT             float64       `json:"tax_vat"`
	AmountNet          float64       `json:"amount_net"`
	Currency           string        `json:"currency"`
	CategorySuggestion Category      `json:"category_suggestion"`
	PaymentMethodGuess PaymentMethod `json:"payment_method_guess"`
	ProjectCodeGuess   *string       `json:"project_code_guess"`
	Notes              *string       `json:"notes"`
}

type ExpenseStatus string

const (
	StatusPending  ExpenseStatus = "pending"
	StatusApproved ExpenseStatus = "approved"
	StatusRejected ExpenseStatus = "rejected"
)

// Expense is a persisted expense record, created when a user accepts a
// draft produced by the extraction pipeline (or enters one manually).
type Expense struct {
	ID            uuid.UUID     `db:"id"`
	UserID        uuid.UUID     `db:"user_id"`
	Vendor        string        `db:"vendor"`
	ExpenseDate   time.Time     `db:"expense_date"`
	AmountGross   float64       `db:"amount_gross"`
	TaxVAT        float64       `db:"tax_vat"`
	AmountNet     float64       `db:"amount_net"`
	Currency      string        `db:"currency"`
	Category      Category      `db:"category"`
	PaymentMethod PaymentMethod `db:"payment_method"`
	ProjectCode   string        `db:"project_code"`
	Notes         string        `db:"notes"`
	Status        ExpenseStatus `db:"status"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// CategoryTotal is one row of the spend-by-category summary.
type CategoryTotal struct {
	Category Category `db:"category"`
	Total    float64  `db:"total"`
	Count    int64    `db:"count"`
}
