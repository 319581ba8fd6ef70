package config

import (
	"log/slog"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/events"
)

// CreateEventPublisher creates the ingest event publisher. Without brokers
// configured events are dropped.
func (c *Config) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if len(c.KafkaBrokers) == 0 {
		logger.Warn("KAFKA_BROKERS not set, ingest events disabled")
		return events.NoopEventPublisher{}, nil
	}

	logger.Info("Creating Kafka event publisher",
		"brokers", c.KafkaBrokers,
		"topic", c.KafkaTopic)

	return events.NewKafkaEventPublisher(events.PublisherConfig{
		KafkaBrokers: c.KafkaBrokers,
		TopicName:    c.KafkaTopic,
		Logger:       logger,
	})
}
