package handlers

import (
	"errors"
	"time"

	"expensero/internal/dto"
	"expensero/internal/models"
	"expensero/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// clampPage bounds client-supplied pagination. Negative values would
// underflow the repository's uint64 conversion.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create an expense
// @Description Persist an accepted extraction draft (or a manual entry) as an expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body dto.CreateExpenseRequest true "Expense"
// @Security Bearer
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed"})
	}

	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	resp, err := h.expenseService.Create(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidExpense) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Error("Failed to create expense", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to create expense"})
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// List godoc
// @Summary List expenses
// @Description List the authenticated user's expenses, newest first
// @Tags expenses
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.ExpenseResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed"})
	}

	limit, offset := clampPage(c.QueryInt("limit", defaultPageSize), c.QueryInt("offset", 0))

	expenses, err := h.expenseService.List(c.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list expenses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to list expenses"})
	}

	return c.JSON(expenses)
}

// UpdateStatus godoc
// @Summary Approve or reject an expense
// @Description Admin-only status transition for a submitted expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param request body dto.UpdateExpenseStatusRequest true "New status"
// @Security Bearer
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/expenses/{id}/status [patch]
func (h *ExpenseHandler) UpdateStatus(c *fiber.Ctx) error {
	if _, err := getUserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed"})
	}

	expenseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid expense ID"})
	}

	var req dto.UpdateExpenseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}

	resp, err := h.expenseService.UpdateStatus(c.Context(), getRole(c), expenseID, models.ExpenseStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "Admin role required"})
		case errors.Is(err, service.ErrExpenseNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Expense not found"})
		case errors.Is(err, service.ErrInvalidExpense):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		default:
			h.logger.Error("Failed to update expense status", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to update expense"})
		}
	}

	return c.JSON(resp)
}

// Summary godoc
// @Summary Spend by category
// @Description Total spend per category over a date range (defaults to the current month)
// @Tags expenses
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Security Bearer
// @Success 200 {object} dto.SummaryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/v1/expenses/summary [get]
func (h *ExpenseHandler) Summary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Authentication failed"})
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now

	if s := c.Query("from"); s != "" {
		from, err = time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid from date, expected YYYY-MM-DD"})
		}
	}
	if s := c.Query("to"); s != "" {
		to, err = time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid to date, expected YYYY-MM-DD"})
		}
	}

	resp, err := h.expenseService.Summarize(c.Context(), userID, from, to)
	if err != nil {
		h.logger.Error("Failed to summarize expenses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Failed to summarize expenses"})
	}

	return c.JSON(resp)
}
