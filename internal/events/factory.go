package events

import (
	"fmt"

	"decor-shop/internal/config"

	"github.com/rs/zerolog"
)

// New builds the publisher selected by the configuration.
func New(cfg config.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	switch cfg.Broker {
	case "", "none":
		return Nop{}, nil
	case "rabbitmq":
		return NewRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
	case "kafka":
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka publisher ready")
		return NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown events broker: %s", cfg.Broker)
	}
}
