package main

import (
	"context"
	"log"
	"time"

	"expensero/internal/models"
	"expensero/internal/repository"
	"expensero/pkg/auth"
	"expensero/pkg/config"
	"expensero/pkg/logger"
	"expensero/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'employee',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS expenses (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	vendor TEXT NOT NULL,
	expense_date DATE NOT NULL,
	amount_gross NUMERIC(12,2) NOT NULL,
	tax_vat NUMERIC(12,2) NOT NULL,
	amount_net NUMERIC(12,2) NOT NULL,
	currency TEXT NOT NULL DEFAULT 'EUR',
	category TEXT NOT NULL DEFAULT 'Otros',
	payment_method TEXT NOT NULL DEFAULT 'OTHER',
	project_code TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses (user_id, expense_date DESC);
CREATE INDEX IF NOT EXISTS idx_expenses_user_category ON expenses (user_id, category);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Starting database seeding...")

	if _, err := db.Exec(ctx, schema); err != nil {
		appLogger.Fatal("Failed to create schema", zap.Error(err))
	}
	appLogger.Info("Schema ensured")

	userRepo := repository.NewUserRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	admin, err := seedUser(ctx, userRepo, "Admin Demo", "admin@expensero.test", "admin123", models.RoleAdmin, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed admin user", zap.Error(err))
	}

	employee, err := seedUser(ctx, userRepo, "Empleado Demo", "empleado@expensero.test", "empleado123", models.RoleEmployee, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to seed employee user", zap.Error(err))
	}

	if err := seedExpenses(ctx, expenseRepo, employee, appLogger); err != nil {
		appLogger.Fatal("Failed to seed expenses", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.String("admin", admin.Email),
		zap.String("employee", employee.Email),
	)
}

// seedUser creates a user if it does not exist yet, so repeated runs
// do not fail on the unique email constraint.
func seedUser(
	ctx context.Context,
	repo *repository.UserRepository,
	fullName, email, password string,
	role models.Role,
	logger *zap.Logger,
) (*models.User, error) {
	if existing, err := repo.GetByEmail(ctx, email); err == nil {
		logger.Info("User already exists, skipping", zap.String("email", email))
		return existing, nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		FullName:  fullName,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Created user", zap.String("email", email), zap.String("role", string(role)))
	return user, nil
}

func seedExpenses(
	ctx context.Context,
	repo *repository.ExpenseRepository,
	owner *models.User,
	logger *zap.Logger,
) error {
	if existing, err := repo.ListByUserID(ctx, owner.ID, 1, 0); err == nil && len(existing) > 0 {
		logger.Info("Expenses already seeded, skipping", zap.String("user", owner.Email))
		return nil
	}

	samples := []struct {
		vendor   string
		date     string
		gross    float64
		vat      float64
		category models.Category
		payment  models.PaymentMethod
		notes    string
	}{
		{"Renfe", "2026-08-03", 64.50, 5.86, models.CategoryTransporte, models.PaymentCard, "Madrid-Barcelona AVE"},
		{"Hotel Colón", "2026-08-04", 145.20, 25.21, models.CategoryAlojamiento, models.PaymentCard, "1 noche, feria sectorial"},
		{"Restaurante La Plaza", "2026-08-04", 38.90, 3.54, models.CategoryDietas, models.PaymentCash, ""},
		{"Amazon Business", "2026-08-12", 89.99, 15.62, models.CategoryMaterial, models.PaymentCard, "Teclado y ratón"},
		{"JetBrains", "2026-08-15", 24.20, 4.20, models.CategorySoftware, models.PaymentCard, "Licencia mensual"},
	}

	now := time.Now()
	for _, s := range samples {
		date, err := time.Parse("2006-01-02", s.date)
		if err != nil {
			return err
		}

		exp := &models.Expense{
			ID:            uuid.New(),
			UserID:        owner.ID,
			Vendor:        s.vendor,
			ExpenseDate:   date,
			AmountGross:   s.gross,
			TaxVAT:        s.vat,
			AmountNet:     s.gross - s.vat,
			Currency:      "EUR",
			Category:      s.category,
			PaymentMethod: s.payment,
			Notes:         s.notes,
			Status:        models.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := repo.Create(ctx, exp); err != nil {
			return err
		}

		logger.Info("Created expense",
			zap.String("vendor", s.vendor),
			zap.Float64("amount_gross", s.gross),
			zap.String("category", string(s.category)),
		)
	}

	return nil
}
