package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expensero/internal/dto"
	"expensero/internal/models"
	"expensero/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrForbidden       = errors.New("operation not allowed")
	ErrInvalidExpense  = errors.New("invalid expense")
)

// ExpenseService persists drafts the user accepted and feeds the
// dashboard summary. Status transitions (approve/reject) are admin-only.
type ExpenseService struct {
	expenseRepo *repository.ExpenseRepository
	logger      *zap.Logger
}

func NewExpenseService(expenseRepo *repository.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		logger:      logger,
	}
}

func (s *ExpenseService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateExpenseRequest) (*dto.ExpenseResponse, error) {
	if req.Vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", ErrInvalidExpense)
	}
	if req.AmountGross < 0 || req.TaxVAT < 0 {
		return nil, fmt.Errorf("%w: amounts must be non-negative", ErrInvalidExpense)
	}

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: expense_date must be YYYY-MM-DD", ErrInvalidExpense)
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now()
	exp := &models.Expense{
		ID:            uuid.New(),
		UserID:        userID,
		Vendor:        sanitizeUTF8(req.Vendor),
		ExpenseDate:   expenseDate,
		AmountGross:   round2(req.AmountGross),
		TaxVAT:        round2(req.TaxVAT),
		AmountNet:     round2(req.AmountGross - req.TaxVAT),
		Currency:      currency,
		Category:      models.ParseCategory(req.Category),
		PaymentMethod: models.ParsePaymentMethod(req.PaymentMethod),
		ProjectCode:   req.ProjectCode,
		Notes:         sanitizeUTF8(req.Notes),
		Status:        models.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.expenseRepo.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	return expenseToResponse(exp), nil
}

func (s *ExpenseService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.ExpenseResponse, error) {
	expenses, err := s.expenseRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ExpenseResponse, len(expenses))
	for i, exp := range expenses {
		responses[i] = expenseToResponse(exp)
	}
	return responses, nil
}

// UpdateStatus approves or rejects an expense. Only admins may do this;
// employees re-submit instead.
func (s *ExpenseService) UpdateStatus(ctx context.Context, actorRole models.Role, id uuid.UUID, status models.ExpenseStatus) (*dto.ExpenseResponse, error) {
	if actorRole != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidExpense)
	}

	exp, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}

	if err := s.expenseRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update expense status: %w", err)
	}

	exp.Status = status
	return expenseToResponse(exp), nil
}

// Summarize totals spend by category for [from, to], both inclusive.
func (s *ExpenseService) Summarize(ctx context.Context, userID uuid.UUID, from, to time.Time) (*dto.SummaryResponse, error) {
	totals, err := s.expenseRepo.SummarizeByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.SummaryResponse{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Currency: defaultCurrency,
	}
	for _, t := range totals {
		resp.Categories = append(resp.Categories, dto.CategoryTotalResponse{
			Category: string(t.Category),
			Total:    round2(t.Total),
			Count:    t.Count,
		})
	}
	return resp, nil
}

func expenseToResponse(exp *models.Expense) *dto.ExpenseResponse {
	return &dto.ExpenseResponse{
		ID:            exp.ID.String(),
		Vendor:        exp.Vendor,
		ExpenseDate:   exp.ExpenseDate.Format("2006-01-02"),
		AmountGross:   exp.AmountGross,
		TaxVAT:        exp.TaxVAT,
		AmountNet:     exp.AmountNet,
		Currency:      exp.Currency,
		Category:      string(exp.Category),
		PaymentMethod: string(exp.PaymentMethod),
		ProjectCode:   exp.ProjectCode,
		Notes:         exp.Notes,
		Status:        string(exp.Status),
		CreatedAt:     exp.CreatedAt.Format(time.RFC3339),
	}
}
