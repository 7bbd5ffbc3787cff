package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

func newChatroomFixture(owner uuid.UUID, roomId uuid.UUID) (*chatroomService, *fakeUow, *fakeBlobStore, *fakeURLCache) {
	uow := newFakeUow()
	store := &fakeBlobStore{}
	cache := newFakeURLCache()

	uow.chatrooms.findOne = func(ctx context.Context, specs ...specification.Specification) (*entity.Chatroom, error) {
		return &entity.Chatroom{Id: roomId, Name: "project talk", UserId: owner, CreatedAt: time.Now()}, nil
	}

	svc := NewChatroomService(&fakeUowFactory{uow: uow}, store, cache, nil, nopLogger{}).(*chatroomService)
	return svc, uow, store, cache
}

func messagesWithKeys(roomId uuid.UUID, keys ...string) []*entity.ChatMessage {
	var msgs []*entity.ChatMessage
	for _, key := range keys {
		msgs = append(msgs, &entity.ChatMessage{
			Id:         uuid.New(),
			ChatroomId: roomId,
			Role:       entity.MessageRoleUser,
			Attachments: []entity.Attachment{
				{StorageKey: key, FileName: "f.png", ContentType: "image/png"},
			},
		})
	}
	return msgs
}

func TestDeleteCascadeRemovesEverything(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, store, cache := newChatroomFixture(owner, roomId)

	keys := []string{
		"attachments/" + owner.String() + "/2024/6/a.png",
		"attachments/" + owner.String() + "/2024/6/b.png",
	}
	uow.messages.findAll = func(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
		return messagesWithKeys(roomId, keys...), nil
	}
	uow.messages.deleteByRoomRows = 5

	res, err := svc.Delete(context.Background(), owner, roomId, &dto.DeleteChatroomRequest{DeleteAttachments: true})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if res.MessagesDeleted != 5 {
		t.Errorf("MessagesDeleted = %d, want 5", res.MessagesDeleted)
	}
	if res.AttachmentsDeleted != 2 {
		t.Errorf("AttachmentsDeleted = %d, want 2", res.AttachmentsDeleted)
	}
	if res.Forced || len(res.Warnings) != 0 {
		t.Errorf("clean cascade must not be forced or warn: %+v", res)
	}

	if len(store.deletedBatch) != 1 || len(store.deletedBatch[0]) != 2 {
		t.Errorf("blob batch = %v, want one batch of 2 keys", store.deletedBatch)
	}
	if len(uow.messages.deleteByRoom) != 1 || uow.messages.deleteByRoom[0] != roomId {
		t.Errorf("message rows not deleted for room: %v", uow.messages.deleteByRoom)
	}
	if len(uow.chatrooms.deleted) != 1 || uow.chatrooms.deleted[0] != roomId {
		t.Errorf("chatroom row not deleted: %v", uow.chatrooms.deleted)
	}
	if uow.begun != 1 || uow.committed != 1 {
		t.Errorf("row deletion must run in one committed transaction: begun=%d committed=%d", uow.begun, uow.committed)
	}
	if len(cache.evicted) != 2 {
		t.Errorf("cached URLs not evicted: %v", cache.evicted)
	}
}

func TestDeleteStorageFailureLeavesRowsIntact(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, store, _ := newChatroomFixture(owner, roomId)

	store.deleteManyErr = errors.New("bucket unreachable")
	uow.messages.findAll = func(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
		return messagesWithKeys(roomId, "attachments/"+owner.String()+"/2024/6/a.png"), nil
	}

	_, err := svc.Delete(context.Background(), owner, roomId, &dto.DeleteChatroomRequest{DeleteAttachments: true})
	if !apperror.Is(err, apperror.KindStorageFailure) {
		t.Fatalf("err = %v, want storage failure", err)
	}

	if len(uow.messages.deleteByRoom) != 0 {
		t.Error("message rows must survive a failed blob batch")
	}
	if len(uow.chatrooms.deleted) != 0 {
		t.Error("chatroom row must survive a failed blob batch")
	}
}

func TestDeleteForceProceedsPastStorageFailure(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, store, _ := newChatroomFixture(owner, roomId)

	store.deleteManyErr = errors.New("bucket unreachable")
	uow.messages.findAll = func(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
		return messagesWithKeys(roomId, "attachments/"+owner.String()+"/2024/6/a.png"), nil
	}
	uow.messages.deleteByRoomRows = 3

	res, err := svc.Delete(context.Background(), owner, roomId, &dto.DeleteChatroomRequest{DeleteAttachments: true, Force: true})
	if err != nil {
		t.Fatalf("forced Delete: %v", err)
	}

	if !res.Forced {
		t.Error("Forced flag must be set")
	}
	if len(res.Warnings) == 0 {
		t.Error("forced cascade must report the storage failure as a warning")
	}
	if res.AttachmentsDeleted != 0 {
		t.Errorf("AttachmentsDeleted = %d, want 0 after failed batch", res.AttachmentsDeleted)
	}
	if res.MessagesDeleted != 3 {
		t.Errorf("MessagesDeleted = %d, want 3", res.MessagesDeleted)
	}
	if len(uow.chatrooms.deleted) != 1 {
		t.Error("chatroom row must be removed on forced delete")
	}
}

func TestDeleteRequiresOwnership(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, store, _ := newChatroomFixture(owner, roomId)

	stranger := uuid.New()
	_, err := svc.Delete(context.Background(), stranger, roomId, &dto.DeleteChatroomRequest{DeleteAttachments: true})
	if !apperror.Is(err, apperror.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	if len(store.deletedBatch) != 0 || len(uow.messages.deleteByRoom) != 0 || len(uow.chatrooms.deleted) != 0 {
		t.Error("nothing may be touched for a non-owner")
	}
}

func TestDeleteWithoutAttachmentFlagKeepsBlobs(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, store, _ := newChatroomFixture(owner, roomId)

	uow.messages.findAll = func(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
		return messagesWithKeys(roomId, "attachments/"+owner.String()+"/2024/6/a.png"), nil
	}

	res, err := svc.Delete(context.Background(), owner, roomId, &dto.DeleteChatroomRequest{DeleteAttachments: false})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if len(store.deletedBatch) != 0 {
		t.Error("blobs must be kept when DeleteAttachments is false")
	}
	if res.AttachmentsDeleted != 0 {
		t.Errorf("AttachmentsDeleted = %d, want 0", res.AttachmentsDeleted)
	}
	if len(uow.chatrooms.deleted) != 1 {
		t.Error("chatroom row must still be removed")
	}
}

func TestUpdateRenamesOwnedChatroom(t *testing.T) {
	owner := uuid.New()
	roomId := uuid.New()
	svc, uow, _, _ := newChatroomFixture(owner, roomId)

	res, err := svc.Update(context.Background(), owner, roomId, &dto.UpdateChatroomRequest{Name: "renamed"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Name != "renamed" {
		t.Errorf("Name = %q, want renamed", res.Name)
	}
	if uow.chatrooms.lastUpdated == nil || uow.chatrooms.lastUpdated.Name != "renamed" {
		t.Error("update not persisted through the repository")
	}
	if uow.chatrooms.lastUpdated.UpdatedAt == nil {
		t.Error("UpdatedAt must be stamped")
	}
}
