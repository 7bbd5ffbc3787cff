package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatroomRepository interface {
	Create(ctx context.Context, chatroom *entity.Chatroom) error
	Update(ctx context.Context, chatroom *entity.Chatroom) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chatroom, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chatroom, error)
}
