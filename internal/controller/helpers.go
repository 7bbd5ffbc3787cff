package controller

import (
	"ai-chatbot-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// authenticatedUser reads the identity the JWT middleware stored on the
// request. A missing or malformed claim is rejected instead of degrading
// to the zero UUID.
func authenticatedUser(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, apperror.Unauthorized("missing user identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Unauthorized("invalid user identity")
	}
	return id, nil
}
