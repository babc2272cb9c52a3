package handlers

import "github.com/gofiber/fiber/v2"

// StatusHandler lists incident statuses.
type StatusHandler struct {
	service StatusService
}

// NewStatusHandler constructs handler.
func NewStatusHandler(statuses StatusService) *StatusHandler {
	return &StatusHandler{service: statuses}
}

// GetAll GET /api/StatusApi/GetAllStatuses.
func (h *StatusHandler) GetAll(c *fiber.Ctx) error {
	statuses, err := h.service.GetAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(statuses)
}
