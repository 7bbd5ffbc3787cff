package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/attachment"
	"ai-chatbot-be/pkg/events"
	"ai-chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

// historyWindow caps how many prior messages travel to the model per turn.
const historyWindow = 20

type IChatService interface {
	// SendChat stores the user's message (uploading any attached files
	// first), asks the model for a reply and stores that too. Attachments
	// upload before anything is persisted: a failed upload leaves no
	// half-written message behind.
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest, files []attachment.File) (*dto.SendChatResponse, error)

	// ImageToText describes a single image without persisting anything.
	ImageToText(ctx context.Context, userId uuid.UUID, file attachment.File) (*dto.ImageToTextResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	uploader         *attachment.Uploader
	llmProvider      llm.LLMProvider
	vision           llm.VisionProvider
	publisherService IPublisherService
	delivery         NotificationDelivery
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	uploader *attachment.Uploader,
	llmProvider llm.LLMProvider,
	vision llm.VisionProvider,
	publisherService IPublisherService,
	delivery NotificationDelivery,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		uploader:         uploader,
		llmProvider:      llmProvider,
		vision:           vision,
		publisherService: publisherService,
		delivery:         delivery,
		logger:           log,
	}
}

func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest, files []attachment.File) (*dto.SendChatResponse, error) {
	if req.Content == "" && len(files) == 0 {
		return nil, apperror.InvalidFormat("message needs text or at least one attachment")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	room, err := uow.ChatroomRepository().FindOne(ctx,
		specification.ByID{ID: req.ChatroomId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperror.NotFound("chatroom not found")
	}

	// Blobs first. If the batch fails nothing has touched the database.
	stored, err := s.uploader.UploadBatch(ctx, userId.String(), files)
	if err != nil {
		var tooLarge *attachment.ErrFileTooLarge
		if errors.As(err, &tooLarge) {
			return nil, apperror.PayloadTooLarge(tooLarge.Error())
		}
		return nil, apperror.StorageFailure("failed to store attachments", err)
	}

	attachments := make([]entity.Attachment, 0, len(stored))
	for _, obj := range stored {
		attachments = append(attachments, entity.Attachment{
			StorageKey:  obj.StorageKey,
			FileName:    obj.FileName,
			ContentType: obj.ContentType,
		})
	}

	userMsg := &entity.ChatMessage{
		Id:          uuid.New(),
		ChatroomId:  room.Id,
		Content:     req.Content,
		Role:        entity.MessageRoleUser,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}

	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}

	reply, err := s.generateReply(ctx, uow, room.Id, userMsg)
	if err != nil {
		return nil, err
	}

	assistantMsg := &entity.ChatMessage{
		Id:         uuid.New(),
		ChatroomId: room.Id,
		Content:    reply,
		Role:       entity.MessageRoleAssistant,
		CreatedAt:  time.Now(),
	}

	if err := uow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	// Hand image description work to the consumer; the reply never waits
	// on it.
	if len(stored) > 0 {
		s.publishAttachments(ctx, userMsg.Id, userId, stored)
	}

	if s.delivery != nil {
		ev := events.NewChatReply(room.Id.String(), assistantMsg.Id.String())
		s.delivery.Send(userId, model.Notification{
			Type:      ev.EventType(),
			Message:   "Assistant replied",
			Data:      ev.Payload(),
			CreatedAt: ev.Timestamp(),
		})
	}

	sent := toChatMessageDTO(userMsg)
	replyDTO := toChatMessageDTO(assistantMsg)

	return &dto.SendChatResponse{
		ChatroomId: room.Id,
		Sent:       &sent,
		Reply:      &replyDTO,
	}, nil
}

func (s *chatService) ImageToText(ctx context.Context, userId uuid.UUID, file attachment.File) (*dto.ImageToTextResponse, error) {
	if int64(len(file.Data)) > attachment.MaxFileSize {
		return nil, apperror.PayloadTooLarge(
			fmt.Sprintf("file %q exceeds the upload limit", file.Name))
	}

	if s.vision == nil {
		return nil, apperror.InvalidFormat("the configured model does not accept images")
	}

	encoded := base64.StdEncoding.EncodeToString(file.Data)
	description, err := s.vision.Describe(ctx, encoded, "Describe this image concisely.")
	if err != nil {
		return nil, fmt.Errorf("image description failed: %w", err)
	}

	return &dto.ImageToTextResponse{Description: description}, nil
}

func (s *chatService) generateReply(ctx context.Context, uow unitofwork.UnitOfWork, chatroomId uuid.UUID, latest *entity.ChatMessage) (string, error) {
	previous, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatroomID{ChatroomID: chatroomId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow, Offset: 0},
	)
	if err != nil {
		return "", err
	}

	history := make([]llm.Message, 0, len(previous)+1)
	// previous arrives newest-first; rebuild chronological order.
	for i := len(previous) - 1; i >= 0; i-- {
		msg := previous[i]
		if msg.Id == latest.Id {
			continue
		}
		history = append(history, llm.Message{
			Role:    string(msg.Role),
			Content: promptContent(msg),
		})
	}
	history = append(history, llm.Message{
		Role:    string(latest.Role),
		Content: promptContent(latest),
	})

	reply, err := s.llmProvider.Chat(ctx, history)
	if err != nil {
		return "", fmt.Errorf("model reply failed: %w", err)
	}
	return reply, nil
}

// promptContent renders a message for the model. Attachments appear by name
// and, when the consumer has backfilled one, by description.
func promptContent(msg *entity.ChatMessage) string {
	content := msg.Content
	for _, att := range msg.Attachments {
		if att.Description != "" {
			content += fmt.Sprintf("\n[attached %s: %s]", att.FileName, att.Description)
		} else {
			content += fmt.Sprintf("\n[attached %s]", att.FileName)
		}
	}
	return content
}

func (s *chatService) publishAttachments(ctx context.Context, messageId uuid.UUID, userId uuid.UUID, stored []attachment.Stored) {
	keys := make([]string, 0, len(stored))
	for _, obj := range stored {
		keys = append(keys, obj.StorageKey)
	}

	// The event payload's keys line up with dto.PublishAttachmentMessage,
	// which is what the consumer decodes.
	ev := events.NewAttachmentUploaded(messageId.String(), userId.String(), keys)
	payloadJson, err := json.Marshal(ev.Payload())
	if err != nil {
		s.logger.Error("ChatService", "Failed to marshal attachment payload", map[string]interface{}{"error": err.Error()})
		return
	}

	// Description backfill is auxiliary; a publish failure never fails
	// the chat request.
	if err := s.publisherService.Publish(ctx, payloadJson); err != nil {
		s.logger.Warn("ChatService", "Failed to publish attachment message", map[string]interface{}{
			"message_id": messageId,
			"error":      err.Error(),
		})
	}
}
