package handlers

import "github.com/gofiber/fiber/v2"

// UsersHandler exposes directory lookups.
type UsersHandler struct {
	service UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{service: users}
}

// Search GET /api/UsersApi/SearchUsers?query=.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	users, err := h.service.SearchUsers(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GroupMembers GET /api/UsersApi/GetGroupMembers.
func (h *UsersHandler) GroupMembers(c *fiber.Ctx) error {
	users, err := h.service.GroupMembers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}
