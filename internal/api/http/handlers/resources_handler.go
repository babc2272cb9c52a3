package handlers

import "github.com/gofiber/fiber/v2"

// ResourcesHandler serves conference bridge lookups.
type ResourcesHandler struct {
	service ResourceService
}

// NewResourcesHandler constructs handler.
func NewResourcesHandler(resources ResourceService) *ResourcesHandler {
	return &ResourcesHandler{service: resources}
}

// GetAvailabilityData GET /api/ResourcesApi/GetAvailabilityData.
func (h *ResourcesHandler) GetAvailabilityData(c *fiber.Ctx) error {
	rooms, err := h.service.GetAvailabilityData(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(rooms)
}

// GetConferenceRoom GET /api/ResourcesApi/GetConferenceRoom?code=.
func (h *ResourcesHandler) GetConferenceRoom(c *fiber.Ctx) error {
	room, err := h.service.GetRoom(c.UserContext(), c.Query("code"))
	if err != nil {
		return err
	}
	return c.JSON(room)
}
