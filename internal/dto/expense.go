package dto

import "expensero/internal/models"

// ExtractResponse is the success envelope of the extraction endpoint.
type ExtractResponse struct {
	Success bool                `json:"success"`
	Data    models.ExpenseDraft `json:"data"`
}

// ErrorResponse is the single error shape every endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CreateExpenseRequest struct {
	Vendor        string  `json:"vendor"`
	ExpenseDate   string  `json:"expense_date"` // YYYY-MM-DD
	AmountGross   float64 `json:"amount_gross"`
	TaxVAT        float64 `json:"tax_vat"`
	AmountNet     float64 `json:"amount_net"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method"`
	ProjectCode   string  `json:"project_code,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

type UpdateExpenseStatusRequest struct {
	Status string `json:"status"` // approved or rejected
}

type ExpenseResponse struct {
	ID            string  `json:"id"`
	Vendor        string  `json:"vendor"`
	ExpenseDate   string  `json:"expense_date"`
	AmountGross   float64 `json:"amount_gross"`
	TaxVAT        float64 `json:"tax_vat"`
	AmountNet     float64 `json:"amount_net"`
	Currency      string  `json:"currency"`
	Category      string  `json:"category"`
	PaymentMethod string  `json:"payment_method"`
	ProjectCode   string  `json:"project_code,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

type CategoryTotalResponse struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

type SummaryResponse struct {
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Currency   string                  `json:"currency"`
	Categories []CategoryTotalResponse `json:"categories"`
}
