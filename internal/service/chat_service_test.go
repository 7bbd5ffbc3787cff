package service

import (
	"context"
	"testing"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/pkg/attachment"
	"ai-chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

type fakeLLM struct {
	reply    string
	lastSeen []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.lastSeen = history
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.reply, nil
}

type fakePublisher struct {
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

func newChatFixture(owner uuid.UUID, roomId uuid.UUID) (*chatService, *fakeUow, *fakeLLM, *fakePublisher) {
	uow := newFakeUow()
	uow.chatrooms.findOne = func(ctx context.Context, specs ...specification.Specification) (*entity.Chatroom, error) {
		for _, spec := range specs {
			if owned, ok := spec.(specification.UserOwnedBy); ok && owned.UserID != owner {
				return nil, nil
			}
		}
		return &entity.Chatroom{Id: roomId, Name: "room", UserId: owner}, nil
	}

	model := &fakeLLM{reply: "hello back"}
	pub := &fakePublisher{}
	uploader := attachment.NewUploader(&fakeBlobStore{})

	svc := NewChatService(&fakeUowFactory{uow: uow}, uploader, model, nil, pub, nil, nopLogger{}).(*chatService)
	return svc, uow, model, pub
}

func TestSendChatPersistsBothSides(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, _, pub := newChatFixture(owner, roomId)

	files := []attachment.File{
		{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	}
	res, err := svc.SendChat(context.Background(), owner,
		&dto.SendChatRequest{ChatroomId: roomId, Content: "see attached"}, files)
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}

	if len(uow.messages.created) != 2 {
		t.Fatalf("created %d messages, want 2 (user + assistant)", len(uow.messages.created))
	}

	userMsg := uow.messages.created[0]
	if userMsg.Role != entity.MessageRoleUser {
		t.Errorf("first stored message role = %s, want user", userMsg.Role)
	}
	if len(userMsg.Attachments) != 1 {
		t.Fatalf("user message carries %d attachments, want 1", len(userMsg.Attachments))
	}
	if userMsg.Attachments[0].FileName != "doc.pdf" {
		t.Errorf("attachment FileName = %q", userMsg.Attachments[0].FileName)
	}

	assistantMsg := uow.messages.created[1]
	if assistantMsg.Role != entity.MessageRoleAssistant {
		t.Errorf("second stored message role = %s, want assistant", assistantMsg.Role)
	}
	if assistantMsg.Content != "hello back" {
		t.Errorf("assistant content = %q", assistantMsg.Content)
	}

	if res.Sent == nil || res.Reply == nil {
		t.Fatal("response must carry both sides of the exchange")
	}
	if len(pub.payloads) != 1 {
		t.Errorf("published %d payloads, want 1 for the attachment backfill", len(pub.payloads))
	}
}

func TestSendChatTextOnlySkipsPublish(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, _, _, pub := newChatFixture(owner, roomId)

	_, err := svc.SendChat(context.Background(), owner,
		&dto.SendChatRequest{ChatroomId: roomId, Content: "just text"}, nil)
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if len(pub.payloads) != 0 {
		t.Error("text-only message must not trigger the attachment consumer")
	}
}

func TestSendChatRejectsEmptyMessage(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, _, _ := newChatFixture(owner, roomId)

	_, err := svc.SendChat(context.Background(), owner,
		&dto.SendChatRequest{ChatroomId: roomId}, nil)
	if !apperror.Is(err, apperror.KindInvalidFormat) {
		t.Fatalf("err = %v, want invalid format", err)
	}
	if len(uow.messages.created) != 0 {
		t.Error("nothing may be persisted for an empty message")
	}
}

func TestSendChatUnknownChatroom(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, _, _ := newChatFixture(owner, roomId)

	_, err := svc.SendChat(context.Background(), uuid.New(),
		&dto.SendChatRequest{ChatroomId: roomId, Content: "hi"}, nil)
	if !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	if len(uow.messages.created) != 0 {
		t.Error("nothing may be persisted into a foreign chatroom")
	}
}

func TestSendChatOversizedFileFailsBeforePersisting(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, _, _ := newChatFixture(owner, roomId)

	files := []attachment.File{
		{Name: "huge.bin", ContentType: "application/octet-stream", Data: make([]byte, attachment.MaxFileSize+1)},
	}
	_, err := svc.SendChat(context.Background(), owner,
		&dto.SendChatRequest{ChatroomId: roomId, Content: "big"}, files)
	if !apperror.Is(err, apperror.KindPayloadTooLarge) {
		t.Fatalf("err = %v, want payload too large", err)
	}
	if len(uow.messages.created) != 0 {
		t.Error("oversized upload must not leave a message row behind")
	}
}

func TestSendChatHistoryReachesModel(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, model, _ := newChatFixture(owner, roomId)

	older := &entity.ChatMessage{
		Id:         uuid.New(),
		ChatroomId: roomId,
		Role:       entity.MessageRoleAssistant,
		Content:    "earlier reply",
	}
	uow.messages.findAll = func(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
		return []*entity.ChatMessage{older}, nil
	}

	_, err := svc.SendChat(context.Background(), owner,
		&dto.SendChatRequest{ChatroomId: roomId, Content: "follow-up"}, nil)
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}

	if len(model.lastSeen) != 2 {
		t.Fatalf("model saw %d messages, want 2 (history + latest)", len(model.lastSeen))
	}
	if model.lastSeen[0].Content != "earlier reply" {
		t.Errorf("history[0] = %q, want the earlier reply first", model.lastSeen[0].Content)
	}
	if model.lastSeen[1].Content != "follow-up" {
		t.Errorf("history[1] = %q, want the new message last", model.lastSeen[1].Content)
	}
}
