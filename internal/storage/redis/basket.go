package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainErrors "github.com/shopflow/choreography/internal/domain/errors"
	"github.com/shopflow/choreography/internal/domain/model"
	"github.com/shopflow/choreography/internal/domain/repository"
)

const keyPrefix = "basket:"

// BasketStore keeps baskets as JSON documents with a sliding TTL.
type BasketStore struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

var _ repository.BasketRepository = (*BasketStore)(nil)

// NewBasketStore creates a store on top of the given client.
func NewBasketStore(client goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *BasketStore {
	return &BasketStore{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func basketKey(userName string) string {
	return keyPrefix + userName
}

func (s *BasketStore) Get(ctx context.Context, userName string) (*model.Basket, error) {
	data, err := s.client.Get(ctx, basketKey(userName)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get basket: %w", err)
	}

	var basket model.Basket
	if err := json.Unmarshal(data, &basket); err != nil {
		return nil, fmt.Errorf("decode basket: %w", err)
	}
	return &basket, nil
}

func (s *BasketStore) Update(ctx context.Context, basket *model.Basket) (*model.Basket, error) {
	if basket == nil || basket.UserName == "" {
		return nil, fmt.Errorf("%w: basket owner is required", domainErrors.ErrValidation)
	}

	basket.UpdatedAt = s.now()
	data, err := json.Marshal(basket)
	if err != nil {
		return nil, fmt.Errorf("encode basket: %w", err)
	}
	if err := s.client.Set(ctx, basketKey(basket.UserName), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store basket: %w", err)
	}

	s.logger.DebugContext(ctx, "basket updated", slog.String("user", basket.UserName), slog.Int("items", len(basket.Items)))
	return basket, nil
}

func (s *BasketStore) Delete(ctx context.Context, userName string) error {
	removed, err := s.client.Del(ctx, basketKey(userName)).Result()
	if err != nil {
		return fmt.Errorf("delete basket: %w", err)
	}
	s.logger.DebugContext(ctx, "basket deleted", slog.String("user", userName), slog.Bool("existed", removed > 0))
	return nil
}

// HealthCheck pings the Redis server.
func (s *BasketStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
