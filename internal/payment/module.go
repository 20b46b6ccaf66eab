package payment

import (
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
)

// Module provides the configured Decider.
var Module = fx.Provide(func(cfg *config.Config) Decider {
	return NewHashDecider(cfg.PaymentDeclinePercent, cfg.PaymentDeclineReason)
})
