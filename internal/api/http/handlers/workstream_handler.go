package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bart-incident-bot/internal/api/dto"
	"github.com/spec-kit/bart-incident-bot/internal/domain"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// WorkstreamHandler serves the WorkstreamApi controller.
type WorkstreamHandler struct {
	service WorkstreamService
}

// NewWorkstreamHandler constructs handler.
func NewWorkstreamHandler(workstreams WorkstreamService) *WorkstreamHandler {
	return &WorkstreamHandler{service: workstreams}
}

// CreateOrUpdate POST /api/WorkstreamApi/CreateOrUpdateWorkstremAsync.
func (h *WorkstreamHandler) CreateOrUpdate(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var batch []domain.Workstream
	if err := c.BodyParser(&batch); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.service.CreateOrUpdate(c.UserContext(), user, batch)
	if err != nil {
		return err
	}
	return c.JSON(dto.WorkstreamBatchResponse{Upserted: res.Upserted, Deleted: res.Deleted})
}

// GetAll GET /api/WorkstreamApi/GetAllWorkstremsAsync?incidentNumber=.
func (h *WorkstreamHandler) GetAll(c *fiber.Ctx) error {
	workstreams, err := h.service.GetAll(c.UserContext(), c.Query("incidentNumber"))
	if err != nil {
		return err
	}
	return c.JSON(workstreams)
}
