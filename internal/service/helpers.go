package service

import (
	"ai-chatbot-be/internal/pkg/apperror"

	"github.com/google/uuid"
)

// parseUserId converts the JWT subject into a UUID. Tokens are minted by us,
// so a malformed id means a forged or corrupted token.
func parseUserId(userId string) (uuid.UUID, error) {
	uid, err := uuid.Parse(userId)
	if err != nil {
		return uuid.Nil, apperror.Wrap(apperror.KindUnauthorized, "invalid user identity", err)
	}
	return uid, nil
}
