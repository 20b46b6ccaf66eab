package kafka

import (
	"log/slog"

	"github.com/IBM/sarama"
	"go.uber.org/fx"

	"github.com/shopflow/choreography/internal/config"
	"github.com/shopflow/choreography/internal/messaging"
)

// ProducerModule provides a Kafka backed messaging.Publisher.
var ProducerModule = fx.Options(
	fx.Provide(newSaramaConfig),
	fx.Provide(newProducer),
)

// ConsumerModule provides a Kafka backed messaging.Consumer for the service group.
var ConsumerModule = fx.Provide(newConsumerGroup)

func newSaramaConfig(cfg *config.Config) *sarama.Config {
	return NewSaramaConfig(cfg.ServiceName)
}

func newProducer(cfg *config.Config, sc *sarama.Config, logger *slog.Logger) (messaging.Publisher, error) {
	return NewProducer(cfg.KafkaBrokers, sc, logger)
}

func newConsumerGroup(cfg *config.Config, sc *sarama.Config, logger *slog.Logger) (messaging.Consumer, error) {
	return NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaGroupID, sc, logger)
}
