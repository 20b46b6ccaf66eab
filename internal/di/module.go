package di

import (
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/adapter/notifier"
	"github.com/shopflow/choreography/internal/app"
	"github.com/shopflow/choreography/internal/config"
	"github.com/shopflow/choreography/internal/logger"
	"github.com/shopflow/choreography/internal/messaging/kafka"
	"github.com/shopflow/choreography/internal/payment"
	"github.com/shopflow/choreography/internal/pkg/auth"
	"github.com/shopflow/choreography/internal/server/http/handlers"
	"github.com/shopflow/choreography/internal/server/http/middleware"
	"github.com/shopflow/choreography/internal/server/http/router"
	"github.com/shopflow/choreography/internal/storage/postgres"
	"github.com/shopflow/choreography/internal/storage/redis"
	"github.com/shopflow/choreography/internal/telemetry"
	"github.com/shopflow/choreography/internal/usecase"
)

// Service names double as Kafka consumer group ids.
const (
	OrderServiceName        = "order-service"
	PaymentServiceName      = "payment-service"
	BasketServiceName       = "basket-service"
	NotificationServiceName = "notification-service"
)

func base(service string, requirements ...config.Requirement) []fx.Option {
	return []fx.Option{
		config.Module(service, requirements...),
		logger.Module,
		telemetry.Module,
		kafka.ProducerModule,
		kafka.ConsumerModule,
		usecase.Module,
		router.Module,
		app.Module,
	}
}

func compose(modules []fx.Option, opts []fx.Option) fx.Option {
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

var bearerTokens = fx.Provide(func(s auth.Strategy) middleware.TokenParser { return s })

// OrderService accepts checkouts, serves order queries and applies payment outcomes.
func OrderService(opts ...fx.Option) fx.Option {
	modules := append(base(OrderServiceName, config.RequireDatabase, config.RequireBrokers),
		auth.Module,
		bearerTokens,
		postgres.Module,
		app.RelayModule,
		fx.Provide(
			app.NewOrderingFacade,
			func(f *app.OrderingFacade) handlers.OrderFacade { return f },
			func(s *postgres.Storage) handlers.HealthChecker { return s },
			usecase.OrderSubscription,
		),
	)
	return compose(modules, opts)
}

// PaymentService decides payments for created orders.
func PaymentService(opts ...fx.Option) fx.Option {
	modules := append(base(PaymentServiceName, config.RequireDatabase, config.RequireBrokers),
		postgres.Module,
		payment.Module,
		app.RelayModule,
		fx.Provide(
			func(s *postgres.Storage) handlers.HealthChecker { return s },
			usecase.PaymentSubscription,
		),
	)
	return compose(modules, opts)
}

// BasketService serves baskets and clears them once an order is placed.
func BasketService(opts ...fx.Option) fx.Option {
	modules := append(base(BasketServiceName, config.RequireRedis, config.RequireBrokers),
		auth.Module,
		bearerTokens,
		redis.Module,
		fx.Provide(
			app.NewBasketFacade,
			func(f *app.BasketFacade) handlers.BasketFacade { return f },
			func(s *redis.BasketStore) handlers.HealthChecker { return s },
			usecase.BasketSubscription,
		),
	)
	return compose(modules, opts)
}

// NotificationService notifies buyers about paid orders.
func NotificationService(opts ...fx.Option) fx.Option {
	modules := append(base(NotificationServiceName, config.RequireDatabase, config.RequireBrokers),
		postgres.Module,
		notifier.Module,
		fx.Provide(
			func(s *postgres.Storage) handlers.HealthChecker { return s },
			usecase.NotificationSubscription,
		),
	)
	return compose(modules, opts)
}
