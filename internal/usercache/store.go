package usercache

import (
	"context"
	"log/slog"

	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/registration"
)

// CachedUserStore is a read-through layer between the registration gate and
// the ledger. Cache failures fall back to the store; the cache is an
// optimization, never an authority.
type CachedUserStore struct {
	inner registration.UserStore
	cache *Cache
	log   *slog.Logger
}

var _ registration.UserStore = (*CachedUserStore)(nil)

func NewCachedUserStore(inner registration.UserStore, cache *Cache, log *slog.Logger) *CachedUserStore {
	if log == nil {
		log = slog.Default()
	}

	return &CachedUserStore{
		inner: inner,
		cache: cache,
		log:   log,
	}
}

func (s *CachedUserStore) FindUser(ctx context.Context, senderID string) (*domain.User, error) {
	cached, err := s.cache.Get(ctx, senderID)
	if err != nil {
		s.log.Warn("user cache read failed",
			slog.String("sender_id", senderID),
			slog.Any("error", err))
	}
	if cached != nil {
		return cached, nil
	}

	user, err := s.inner.FindUser(ctx, senderID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.log.Warn("user cache write failed",
			slog.String("sender_id", senderID),
			slog.Any("error", err))
	}

	return user, nil
}

func (s *CachedUserStore) CreateUser(ctx context.Context, user *domain.User) error {
	if err := s.inner.CreateUser(ctx, user); err != nil {
		return err
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.log.Warn("user cache write failed",
			slog.String("sender_id", user.SenderID),
			slog.Any("error", err))
	}

	return nil
}
