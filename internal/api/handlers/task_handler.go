package handlers

import (
	"errors"

	"launchdash/internal/dto"
	"launchdash/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// GetUpcoming returns the launch checklist sorted by urgency: soonest
// due-in-days first, unknown dates last.
func (h *TaskHandler) GetUpcoming(c *fiber.Ctx) error {
	list, err := h.tasks.LoadTasks(c.Context())
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderCacheControl, revalidateWindow)
	return c.JSON(list)
}

func (h *TaskHandler) fail(c *fiber.Ctx, err error) error {
	var malformed *service.MalformedDocumentError
	switch {
	case errors.Is(err, service.ErrSourceUnavailable):
		h.logger.Error("task source fetch failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: "Failed to load task data from the source spreadsheet.",
		})
	case errors.As(err, &malformed):
		h.logger.Error("task export malformed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "Unable to parse task data.",
			Details: malformed.Details,
		})
	default:
		h.logger.Error("task list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "Unexpected error loading tasks.",
			Details: err.Error(),
		})
	}
}
