package service

import (
	"context"
	"io"
	"sync"
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/contract"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/blobstore"
	"ai-chatbot-be/pkg/urlcache"

	"github.com/google/uuid"
)

// --- logger ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// --- repositories ---

type fakeUserRepo struct {
	findOne func(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }
func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	if r.findOne != nil {
		return r.findOne(ctx, specs...)
	}
	return nil, nil
}

type fakeChatroomRepo struct {
	findOne     func(ctx context.Context, specs ...specification.Specification) (*entity.Chatroom, error)
	findOneN    int
	deleted     []uuid.UUID
	deleteErr   error
	createdErr  error
	lastUpdated *entity.Chatroom
}

func (r *fakeChatroomRepo) Create(ctx context.Context, room *entity.Chatroom) error {
	return r.createdErr
}
func (r *fakeChatroomRepo) Update(ctx context.Context, room *entity.Chatroom) error {
	r.lastUpdated = room
	return nil
}
func (r *fakeChatroomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, id)
	return nil
}
func (r *fakeChatroomRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chatroom, error) {
	r.findOneN++
	if r.findOne != nil {
		return r.findOne(ctx, specs...)
	}
	return nil, nil
}
func (r *fakeChatroomRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chatroom, error) {
	return nil, nil
}

type fakeChatMessageRepo struct {
	findOne          func(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error)
	findAll          func(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	findOneN         int
	created          []*entity.ChatMessage
	updated          []*entity.ChatMessage
	deleteByRoom     []uuid.UUID
	deleteByRoomErr  error
	deleteByRoomRows int64
}

func (r *fakeChatMessageRepo) Create(ctx context.Context, msg *entity.ChatMessage) error {
	r.created = append(r.created, msg)
	return nil
}
func (r *fakeChatMessageRepo) Update(ctx context.Context, msg *entity.ChatMessage) error {
	r.updated = append(r.updated, msg)
	return nil
}
func (r *fakeChatMessageRepo) DeleteByChatroomId(ctx context.Context, chatroomId uuid.UUID) (int64, error) {
	if r.deleteByRoomErr != nil {
		return 0, r.deleteByRoomErr
	}
	r.deleteByRoom = append(r.deleteByRoom, chatroomId)
	return r.deleteByRoomRows, nil
}
func (r *fakeChatMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	r.findOneN++
	if r.findOne != nil {
		return r.findOne(ctx, specs...)
	}
	return nil, nil
}
func (r *fakeChatMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	if r.findAll != nil {
		return r.findAll(ctx, specs...)
	}
	return nil, nil
}
func (r *fakeChatMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

// --- unit of work ---

type fakeUow struct {
	users     *fakeUserRepo
	chatrooms *fakeChatroomRepo
	messages  *fakeChatMessageRepo

	begun      int
	committed  int
	rolledBack int
	commitErr  error
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		users:     &fakeUserRepo{},
		chatrooms: &fakeChatroomRepo{},
		messages:  &fakeChatMessageRepo{},
	}
}

func (u *fakeUow) Begin(ctx context.Context) error { u.begun++; return nil }
func (u *fakeUow) Commit() error {
	if u.commitErr != nil {
		return u.commitErr
	}
	u.committed++
	return nil
}
func (u *fakeUow) Rollback() error { u.rolledBack++; return nil }

func (u *fakeUow) UserRepository() contract.UserRepository               { return u.users }
func (u *fakeUow) ChatroomRepository() contract.ChatroomRepository      { return u.chatrooms }
func (u *fakeUow) ChatMessageRepository() contract.ChatMessageRepository { return u.messages }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

// --- blob store ---

type fakeBlobStore struct {
	mu            sync.Mutex
	presigned     []string
	deletedBatch  [][]string
	presignErr    error
	deleteManyErr error
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, opts blobstore.PutOptions) error {
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }

func (f *fakeBlobStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presigned = append(f.presigned, key)
	return "https://signed.example/" + key, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error { return nil }

func (f *fakeBlobStore) DeleteMany(ctx context.Context, keys []string) error {
	if f.deleteManyErr != nil {
		return f.deleteManyErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedBatch = append(f.deletedBatch, keys)
	return nil
}

func (f *fakeBlobStore) presignCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.presigned)
}

// --- url cache ---

type fakeURLCache struct {
	mu      sync.Mutex
	entries map[string]urlcache.Entry
	evicted []string
}

func newFakeURLCache() *fakeURLCache {
	return &fakeURLCache{entries: make(map[string]urlcache.Entry)}
}

func (c *fakeURLCache) Get(ctx context.Context, key string) (urlcache.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || entry.Expired(time.Now()) {
		return urlcache.Entry{}, false
	}
	return entry, true
}

func (c *fakeURLCache) Set(ctx context.Context, key string, entry urlcache.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

func (c *fakeURLCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.evicted = append(c.evicted, key)
	return nil
}
