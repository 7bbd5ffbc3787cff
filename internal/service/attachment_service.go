package service

import (
	"context"
	"time"

	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/pkg/apperror"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/attachment"
	"ai-chatbot-be/pkg/blobstore"
	"ai-chatbot-be/pkg/urlcache"

	"golang.org/x/sync/errgroup"
)

// cacheSkew shortens the cached entry relative to the URL's signature
// lifetime so a URL served from the cache never expires in the client's
// hands moments later.
const cacheSkew = 5 * time.Minute

type IAttachmentService interface {
	// CanAccess answers whether userId may read the object at storageKey.
	// Ownership encoded in the key resolves without touching the database;
	// other keys fall back to a message lookup.
	CanAccess(ctx context.Context, userId string, storageKey string) (bool, error)

	GetSignedURL(ctx context.Context, userId string, storageKey string) (*dto.SignedURLItem, error)

	// GetSignedURLs resolves a batch. Access is checked for every key
	// before any URL is signed; one denied key fails the whole batch.
	GetSignedURLs(ctx context.Context, userId string, storageKeys []string) (*dto.SignedURLResponse, error)
}

type attachmentService struct {
	uowFactory unitofwork.RepositoryFactory
	store      blobstore.Store
	cache      urlcache.Cache
	urlTTL     time.Duration
	now        func() time.Time
}

func NewAttachmentService(
	uowFactory unitofwork.RepositoryFactory,
	store blobstore.Store,
	cache urlcache.Cache,
	urlTTL time.Duration,
) IAttachmentService {
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	return &attachmentService{
		uowFactory: uowFactory,
		store:      store,
		cache:      cache,
		urlTTL:     urlTTL,
		now:        time.Now,
	}
}

func (s *attachmentService) CanAccess(ctx context.Context, userId string, storageKey string) (bool, error) {
	if attachment.IsOwnedBy(storageKey, userId) {
		return true, nil
	}

	// Slow path: the key may appear in a message inside a chatroom the
	// requester owns (keys shared into a conversation they drive).
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByAttachmentKey{StorageKey: storageKey})
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	uid, err := parseUserId(userId)
	if err != nil {
		return false, nil
	}

	room, err := uow.ChatroomRepository().FindOne(ctx,
		specification.ByID{ID: msg.ChatroomId},
		specification.UserOwnedBy{UserID: uid},
	)
	if err != nil {
		return false, err
	}
	return room != nil, nil
}

func (s *attachmentService) GetSignedURL(ctx context.Context, userId string, storageKey string) (*dto.SignedURLItem, error) {
	allowed, err := s.CanAccess(ctx, userId, storageKey)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.AccessDenied("you do not have access to this attachment")
	}
	return s.resolveURL(ctx, storageKey)
}

func (s *attachmentService) GetSignedURLs(ctx context.Context, userId string, storageKeys []string) (*dto.SignedURLResponse, error) {
	// Authorize the whole batch up front: nothing is signed if any key
	// is out of reach.
	for _, key := range storageKeys {
		allowed, err := s.CanAccess(ctx, userId, key)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, apperror.AccessDenied("you do not have access to one or more attachments")
		}
	}

	items := make([]dto.SignedURLItem, len(storageKeys))
	var toFetch []int

	// Partition: serve what the cache already holds, sign the rest.
	for i, key := range storageKeys {
		if entry, found := s.cache.Get(ctx, key); found {
			items[i] = dto.SignedURLItem{StorageKey: key, URL: entry.URL, ExpiresAt: entry.ExpiresAt}
			continue
		}
		toFetch = append(toFetch, i)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, i := range toFetch {
		g.Go(func() error {
			item, err := s.resolveURL(gctx, storageKeys[i])
			if err != nil {
				return err
			}
			items[i] = *item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &dto.SignedURLResponse{URLs: items}, nil
}

// resolveURL returns the cached URL for the key or signs a fresh one.
func (s *attachmentService) resolveURL(ctx context.Context, storageKey string) (*dto.SignedURLItem, error) {
	if entry, found := s.cache.Get(ctx, storageKey); found {
		return &dto.SignedURLItem{StorageKey: storageKey, URL: entry.URL, ExpiresAt: entry.ExpiresAt}, nil
	}

	url, err := s.store.PresignGet(ctx, storageKey, s.urlTTL)
	if err != nil {
		return nil, apperror.StorageFailure("failed to sign attachment URL", err)
	}

	expiresAt := s.now().Add(s.urlTTL - cacheSkew)
	if s.urlTTL <= cacheSkew {
		expiresAt = s.now().Add(s.urlTTL / 2)
	}

	entry := urlcache.Entry{URL: url, ExpiresAt: expiresAt}
	if err := s.cache.Set(ctx, storageKey, entry); err != nil {
		// A cache write failure only costs a re-sign next time.
		return &dto.SignedURLItem{StorageKey: storageKey, URL: url, ExpiresAt: expiresAt}, nil
	}

	return &dto.SignedURLItem{StorageKey: storageKey, URL: url, ExpiresAt: expiresAt}, nil
}
