package logsink

import (
	"context"

	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	"github.com/iwtcode/cncSimulator/internal/middleware/logging"
)

// Sink — отладочный приёмник: пишет сообщения в логгер вместо брокера.
// Используется при локальной разработке без Kafka/MQTT.
type Sink struct {
	logger *logging.Logger
}

func NewSink(logger *logging.Logger) interfaces.MessageSink {
	return &Sink{logger: logger.WithPrefix("LOGSINK")}
}

func (s *Sink) Connect(ctx context.Context) error { return nil }

func (s *Sink) Publish(ctx context.Context, msg models.WireMessage) error {
	s.logger.Debug("Message published", "address", msg.Address, "payload", string(msg.Payload))
	return nil
}

func (s *Sink) PublishBatch(ctx context.Context, msgs []models.WireMessage) error {
	for _, msg := range msgs {
		if err := s.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) Disconnect() error { return nil }
