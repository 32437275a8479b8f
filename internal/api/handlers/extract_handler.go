package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"expensero/internal/dto"
	"expensero/internal/models"
	"expensero/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUploadSize is the receipt upload cap. A file of exactly this size is
// accepted; one byte over is rejected.
const maxUploadSize = 10 * 1024 * 1024

// MsgFileTooLarge is also used by the router's error handler, so uploads
// large enough to trip the transport body limit get the same response.
const MsgFileTooLarge = "File too large. Maximum size is 10MB."

// allowedMimeTypes is the declared-type allowlist for receipt uploads.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"application/pdf": {},
}

// ExpenseExtractor runs the extraction pipeline on an uploaded document.
type ExpenseExtractor interface {
	ExtractExpense(ctx context.Context, data []byte, mimeType string) (*models.ExpenseDraft, error)
}

type ExtractHandler struct {
	extractor ExpenseExtractor
	logger    *zap.Logger
}

func NewExtractHandler(extractor ExpenseExtractor, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{
		extractor: extractor,
		logger:    logger,
	}
}

// Extract godoc
// @Summary Extract an expense draft from a receipt
// @Description Upload a receipt (JPG, PNG or PDF, max 10MB) and receive a normalized expense draft
// @Tags expenses
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image or PDF"
// @Security Bearer
// @Success 200 {object} dto.ExtractResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/v1/expenses/extract [post]
func (h *ExtractHandler) Extract(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "Authentication failed",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "No file provided",
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid file type. Only JPG, PNG, and PDF are allowed.",
		})
	}

	if fileHeader.Size > maxUploadSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: MsgFileTooLarge,
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Internal server error",
		})
	}

	h.logger.Info("Processing receipt",
		zap.String("user_id", userID.String()),
		zap.String("file_name", fileHeader.Filename),
		zap.String("mime_type", mimeType),
		zap.Int64("size", fileHeader.Size),
	)

	draft, err := h.extractor.ExtractExpense(c.Context(), data, mimeType)
	if err != nil {
		return h.extractionError(c, err)
	}

	return c.JSON(dto.ExtractResponse{
		Success: true,
		Data:    *draft,
	})
}

// extractionError converts a classified pipeline failure into exactly one
// structured JSON error response. Upstream detail beyond the status code
// stays in the server logs.
func (h *ExtractHandler) extractionError(c *fiber.Ctx, err error) error {
	var upstream *service.UpstreamError

	switch {
	case errors.Is(err, service.ErrNotConfigured):
		h.logger.Error("Extraction requested but vision model is not configured")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "AI service not configured",
		})
	case errors.As(err, &upstream):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "AI analysis failed",
			Details: fmt.Sprintf("API returned %d", upstream.StatusCode),
		})
	case errors.Is(err, service.ErrNoCandidates):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "AI analysis produced no results",
		})
	case errors.Is(err, service.ErrEmptyContent):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "AI analysis produced invalid results",
		})
	case errors.Is(err, service.ErrMalformedOutput):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "AI analysis produced invalid JSON",
		})
	default:
		h.logger.Error("Extraction failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: "Internal server error",
		})
	}
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(userIDStr)
}

func getRole(c *fiber.Ctx) models.Role {
	roleStr, _ := c.Locals("role").(string)
	return models.Role(roleStr)
}
