package service

import (
	"context"
	"time"

	"expensero/internal/models"

	"go.uber.org/zap"
)

// ExpenseGenerator produces a raw expense object from a document. Satisfied
// by *VisionService; handlers and tests may substitute their own.
type ExpenseGenerator interface {
	GenerateExpense(ctx context.Context, data []byte, mimeType string) (map[string]any, error)
}

// ExtractionService runs the full pipeline: vision call, then
// normalization. It holds no mutable state; any number of extractions may
// run concurrently.
type ExtractionService struct {
	vision ExpenseGenerator
	logger *zap.Logger
}

func NewExtractionService(vision ExpenseGenerator, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{
		vision: vision,
		logger: logger,
	}
}

// ExtractExpense returns one complete normalized draft or one classified
// error, never a partial result.
func (s *ExtractionService) ExtractExpense(ctx context.Context, data []byte, mimeType string) (*models.ExpenseDraft, error) {
	raw, err := s.vision.GenerateExpense(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}

	draft := NormalizeExpense(raw, time.Now())

	s.logger.Info("Expense extracted",
		zap.String("vendor", draft.Vendor),
		zap.Float64("amount_gross", draft.AmountGross),
		zap.String("category", string(draft.CategorySuggestion)),
	)

	return &draft, nil
}
