package repository

import (
	"context"
	"time"

	"expensero/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var expenseColumns = []string{
	"id", "user_id", "vendor", "expense_date",
	"amount_gross", "tax_vat", "amount_net", "currency",
	"category", "payment_method", "project_code", "notes",
	"status", "created_at", "updated_at",
}

type ExpenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewExpenseRepository(db *pgxpool.Pool, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, exp *models.Expense) error {
	query := squirrel.Insert("expenses").
		Columns(expenseColumns...).
		Values(
			exp.ID, exp.UserID, exp.Vendor, exp.ExpenseDate,
			exp.AmountGross, exp.TaxVAT, exp.AmountNet, exp.Currency,
			exp.Category, exp.PaymentMethod, exp.ProjectCode, exp.Notes,
			exp.Status, exp.CreatedAt, exp.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	query := squirrel.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var exp models.Expense
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&exp.ID, &exp.UserID, &exp.Vendor, &exp.ExpenseDate,
		&exp.AmountGross, &exp.TaxVAT, &exp.AmountNet, &exp.Currency,
		&exp.Category, &exp.PaymentMethod, &exp.ProjectCode, &exp.Notes,
		&exp.Status, &exp.CreatedAt, &exp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &exp, nil
}

func (r *ExpenseRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Expense, error) {
	query := squirrel.Select(expenseColumns...).
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("expense_date DESC, created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(
			&exp.ID, &exp.UserID, &exp.Vendor, &exp.ExpenseDate,
			&exp.AmountGross, &exp.TaxVAT, &exp.AmountNet, &exp.Currency,
			&exp.Category, &exp.PaymentMethod, &exp.ProjectCode, &exp.Notes,
			&exp.Status, &exp.CreatedAt, &exp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		expenses = append(expenses, &exp)
	}

	return expenses, rows.Err()
}

func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ExpenseStatus) error {
	query := squirrel.Update("expenses").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// SummarizeByCategory totals a user's expenses per category over a date
// range (inclusive), feeding the dashboard.
func (r *ExpenseRepository) SummarizeByCategory(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.CategoryTotal, error) {
	query := squirrel.Select("category", "COALESCE(SUM(amount_gross), 0) AS total", "COUNT(*) AS count").
		From("expenses").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"expense_date": from}).
		Where(squirrel.LtOrEq{"expense_date": to}).
		GroupBy("category").
		OrderBy("total DESC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var t models.CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	return totals, rows.Err()
}
