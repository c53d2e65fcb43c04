package handlers

import (
	"errors"

	"launchdash/internal/dto"
	"launchdash/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// revalidateWindow lets a fronting cache reuse a successful payload for
// ten minutes, matching the source spreadsheet's refresh cadence.
const revalidateWindow = "public, max-age=600"

type FinanceHandler struct {
	finance *service.FinanceService
	logger  *zap.Logger
}

func NewFinanceHandler(finance *service.FinanceService, logger *zap.Logger) *FinanceHandler {
	return &FinanceHandler{
		finance: finance,
		logger:  logger,
	}
}

// GetReport rebuilds the full finance dashboard payload from the source
// workbook: metrics, transactions, attachments, vendor rules, burn
// trend and recent expenses.
func (h *FinanceHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.finance.BuildReport(c.Context())
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderCacheControl, revalidateWindow)
	return c.JSON(report)
}

func (h *FinanceHandler) fail(c *fiber.Ctx, err error) error {
	var malformed *service.MalformedDocumentError
	switch {
	case errors.Is(err, service.ErrSourceUnavailable):
		h.logger.Error("finance source fetch failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "Failed to load finance data from the source spreadsheet.",
		})
	case errors.As(err, &malformed):
		h.logger.Error("finance workbook malformed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "Unable to parse finance data.",
			Details: malformed.Details,
		})
	default:
		h.logger.Error("finance report failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "Unexpected error loading finance data.",
			Details: err.Error(),
		})
	}
}
