package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
	"github.com/shopflow/choreography/internal/domain/repository"
)

// Module wires the Redis client and the basket repository.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(
		func(client *goredis.Client, cfg *config.Config, logger *slog.Logger) *BasketStore {
			return NewBasketStore(client, cfg.BasketTTL, logger)
		},
		func(s *BasketStore) repository.BasketRepository { return s },
	),
	fx.Invoke(registerLifecycle),
)

var newRedisClient = goredis.NewClient

func newClient(cfg *config.Config) *goredis.Client {
	return newRedisClient(&goredis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func registerLifecycle(lc fx.Lifecycle, client *goredis.Client, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("ping redis: %w", err)
			}
			logger.Info("redis connected", slog.String("addr", client.Options().Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
