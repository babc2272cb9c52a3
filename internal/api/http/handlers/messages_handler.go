package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bart-incident-bot/internal/botframework"
	apperrors "github.com/spec-kit/bart-incident-bot/pkg/util/errorutil"
)

// ActivityHandler processes one Bot Framework activity.
type ActivityHandler interface {
	Handle(ctx context.Context, act *botframework.Activity) (*botframework.InvokeResponse, error)
}

// MessagesHandler is the bot's messaging endpoint.
type MessagesHandler struct {
	bot ActivityHandler
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(bot ActivityHandler) *MessagesHandler {
	return &MessagesHandler{bot: bot}
}

// Post POST /api/messages.
func (h *MessagesHandler) Post(c *fiber.Ctx) error {
	var act botframework.Activity
	if err := c.BodyParser(&act); err != nil {
		return apperrors.NewValidationError("invalid activity", nil)
	}
	resp, err := h.bot.Handle(c.UserContext(), &act)
	if err != nil {
		return err
	}
	if resp == nil {
		return c.SendStatus(http.StatusOK)
	}
	if resp.Body == nil {
		return c.SendStatus(resp.Status)
	}
	return c.Status(resp.Status).JSON(resp.Body)
}
