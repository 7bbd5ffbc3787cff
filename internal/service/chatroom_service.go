package service

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/blobstore"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/urlcache"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type IChatroomService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatroomRequest) (*dto.CreateChatroomResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ChatroomResponse, error)
	Get(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.GetChatHistoryResponse, error)
	Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateChatroomRequest) (*dto.ChatroomResponse, error)

	// Delete cascades: message rows, the chatroom row and (optionally) the
	// stored attachment blobs go away together. A blob batch failure
	// aborts the cascade before any row is touched unless req.Force is
	// set, in which case rows are removed anyway and the failure is
	// reported as a warning.
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.DeleteChatroomRequest) (*dto.DeleteChatroomResult, error)
}

type chatroomService struct {
	uowFactory unitofwork.RepositoryFactory
	store      blobstore.Store
	cache      urlcache.Cache
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewChatroomService(
	uowFactory unitofwork.RepositoryFactory,
	store blobstore.Store,
	cache urlcache.Cache,
	delivery NotificationDelivery,
	log logger.ILogger,
) IChatroomService {
	return &chatroomService{
		uowFactory: uowFactory,
		store:      store,
		cache:      cache,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *chatroomService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChatroomRequest) (*dto.CreateChatroomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room := &entity.Chatroom{
		Id:        uuid.New(),
		Name:      req.Name,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.ChatroomRepository().Create(ctx, room); err != nil {
		return nil, err
	}

	return &dto.CreateChatroomResponse{Id: room.Id}, nil
}

func (s *chatroomService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ChatroomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	rooms, err := uow.ChatroomRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ChatroomResponse, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, &dto.ChatroomResponse{
			Id:        room.Id,
			Name:      room.Name,
			CreatedAt: room.CreatedAt,
			UpdatedAt: room.UpdatedAt,
		})
	}
	return result, nil
}

func (s *chatroomService) Get(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := s.ownedChatroom(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatroomID{ChatroomID: id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.GetChatHistoryResponse{
		ChatroomId: room.Id,
		Name:       room.Name,
		Messages:   make([]dto.ChatMessageDTO, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toChatMessageDTO(msg))
	}
	return resp, nil
}

func (s *chatroomService) Update(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.UpdateChatroomRequest) (*dto.ChatroomResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := s.ownedChatroom(ctx, uow, userId, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room.Name = req.Name
	room.UpdatedAt = &now

	if err := uow.ChatroomRepository().Update(ctx, room); err != nil {
		return nil, err
	}

	return &dto.ChatroomResponse{
		Id:        room.Id,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}, nil
}

func (s *chatroomService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID, req *dto.DeleteChatroomRequest) (*dto.DeleteChatroomResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.ownedChatroom(ctx, uow, userId, id); err != nil {
		return nil, err
	}

	result := &dto.DeleteChatroomResult{ChatroomId: id}

	// Enumerate every storage key referenced by the room's messages before
	// any row disappears; afterwards there is nothing left to enumerate.
	keys, err := s.collectStorageKeys(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	if req.DeleteAttachments && len(keys) > 0 {
		if err := s.store.DeleteMany(ctx, keys); err != nil {
			if !req.Force {
				return nil, apperror.StorageFailure("failed to delete attachments; chatroom left intact", err)
			}
			result.Forced = true
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("attachment deletion failed, rows removed anyway: %v", err))
			s.logger.Warn("ChatroomService", "Forced delete proceeding past storage failure", map[string]interface{}{
				"chatroom_id": id,
				"error":       err.Error(),
			})
		} else {
			result.AttachmentsDeleted = len(keys)
		}

		// Cached URLs for removed blobs are poison; drop them regardless
		// of how the blob batch went.
		for _, key := range keys {
			if err := s.cache.Delete(ctx, key); err != nil {
				s.logger.Warn("ChatroomService", "Failed to evict cached URL", map[string]interface{}{
					"storage_key": key,
					"error":       err.Error(),
				})
			}
		}
	}

	// Rows go inside one transaction: either the messages and the room
	// both disappear or neither does.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	deleted, err := uow.ChatMessageRepository().DeleteByChatroomId(ctx, id)
	if err != nil {
		return nil, err
	}
	result.MessagesDeleted = deleted

	if err := uow.ChatroomRepository().Delete(ctx, id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if s.delivery != nil {
		ev := events.NewChatroomDeleted(id.String(), userId.String(),
			result.MessagesDeleted, result.AttachmentsDeleted)
		s.delivery.Send(userId, model.Notification{
			Type:      ev.EventType(),
			Message:   "Chatroom deleted",
			Data:      ev.Payload(),
			CreatedAt: ev.Timestamp(),
		})
	}

	return result, nil
}

// ownedChatroom resolves the room and enforces ownership. An absent room is
// not found; an existing room owned by someone else is unauthorized.
func (s *chatroomService) ownedChatroom(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Chatroom, error) {
	room, err := uow.ChatroomRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chatroom not found")
	}
	if room.UserId != userId {
		return nil, apperror.Unauthorized("not the chatroom owner")
	}
	return room, nil
}

func (s *chatroomService) collectStorageKeys(ctx context.Context, uow unitofwork.UnitOfWork, chatroomId uuid.UUID) ([]string, error) {
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatroomID{ChatroomID: chatroomId},
		specification.WithAttachments{},
	)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, msg := range messages {
		for _, att := range msg.Attachments {
			if att.StorageKey != "" {
				keys = append(keys, att.StorageKey)
			}
		}
	}
	return keys, nil
}

func toChatMessageDTO(msg *entity.ChatMessage) dto.ChatMessageDTO {
	out := dto.ChatMessageDTO{
		Id:        msg.Id,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	for _, att := range msg.Attachments {
		out.Attachments = append(out.Attachments, dto.AttachmentDTO{
			StorageKey:  att.StorageKey,
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Description: att.Description,
		})
	}
	return out
}
