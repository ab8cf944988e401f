package subscriber

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/repository"
)

const enabledCacheKey = "subscribers:enabled"

// Service manages notification recipients. Enabled subscribers are read on
// every scheduler pass, so the listing is cached briefly.
type Service struct {
	repo  repository.SubscriberRepository
	cache *gocache.Cache
}

func NewService(repo repository.SubscriberRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Subscribe records a /start opt-in. Re-subscribing an existing chat
// re-enables it and refreshes the profile fields.
func (s *Service) Subscribe(ctx context.Context, chatID int64, username, firstName, lastName string) error {
	err := s.repo.Upsert(ctx, &model.Subscriber{
		ChatID:    chatID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Enabled:   true,
	})
	if err != nil {
		return err
	}
	s.cache.Delete(enabledCacheKey)
	return nil
}

// SetEnabled toggles delivery for a chat without removing the record.
func (s *Service) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	if err := s.repo.SetEnabled(ctx, chatID, enabled); err != nil {
		return err
	}
	s.cache.Delete(enabledCacheKey)
	return nil
}

func (s *Service) ListEnabled(ctx context.Context) ([]*model.Subscriber, error) {
	if cached, ok := s.cache.Get(enabledCacheKey); ok {
		return cached.([]*model.Subscriber), nil
	}

	subs, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(enabledCacheKey, subs)
	return subs, nil
}
