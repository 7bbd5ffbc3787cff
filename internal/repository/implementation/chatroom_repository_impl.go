package implementation

import (
	"context"
	"errors"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/mapper"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatroomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatroomRepository(db *gorm.DB) contract.ChatroomRepository {
	return &ChatroomRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatroomRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatroomRepositoryImpl) Create(ctx context.Context, chatroom *entity.Chatroom) error {
	m := r.mapper.ChatroomToModel(chatroom)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chatroom = *r.mapper.ChatroomToEntity(m)
	return nil
}

func (r *ChatroomRepositoryImpl) Update(ctx context.Context, chatroom *entity.Chatroom) error {
	m := r.mapper.ChatroomToModel(chatroom)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*chatroom = *r.mapper.ChatroomToEntity(m)
	return nil
}

func (r *ChatroomRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	// Hard delete, matching the message rows: the cascade removes both
	// physically, so no tombstone points at vanished messages.
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Chatroom{}, id).Error
}

func (r *ChatroomRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chatroom, error) {
	var m model.Chatroom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatroomToEntity(&m), nil
}

func (r *ChatroomRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chatroom, error) {
	var models []*model.Chatroom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Chatroom, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ChatroomToEntity(m)
	}
	return entities, nil
}
