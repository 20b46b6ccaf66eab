package notifier

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
	"github.com/shopflow/choreography/internal/usecase"
)

// Module exposes the notification sender to fx graph.
var Module = fx.Provide(newSender)

type senderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSender(p senderParams) (usecase.NotificationSender, error) {
	if p.Config.NotificationWebhookURL == "" {
		return NewLogSender(p.Logger), nil
	}
	return NewWebhookClient(p.Config.NotificationWebhookURL, p.Logger)
}
