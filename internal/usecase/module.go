package usecase

import "go.uber.org/fx"

// Module provides the use cases of every service; each graph builds only what it asks for.
var Module = fx.Provide(
	NewCheckoutUseCase,
	NewOrderStatusUseCase,
	NewOrderQueryUseCase,
	NewPaymentUseCase,
	NewBasketUseCase,
	NewNotificationUseCase,
)
