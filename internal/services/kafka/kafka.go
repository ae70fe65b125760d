package kafka

import (
	"context"

	"github.com/iwtcode/cncSimulator/internal/config"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	apperrors "github.com/iwtcode/cncSimulator/pkg/errors"

	"github.com/segmentio/kafka-go"
)

// Sink публикует сообщения в Kafka: адрес сообщения становится ключом,
// топик фиксирован конфигурацией.
type Sink struct {
	broker string
	writer *kafka.Writer
}

// NewSink создает новый экземпляр приёмника Kafka
func NewSink(cfg *config.AppConfig) interfaces.MessageSink {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Sink.KafkaBroker),
		Topic:    cfg.Sink.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Sink{broker: cfg.Sink.KafkaBroker, writer: writer}
}

// Connect проверяет доступность брокера одним TCP-подключением.
func (s *Sink) Connect(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", s.broker)
	if err != nil {
		return &apperrors.ConnectionError{Broker: s.broker, Err: err}
	}
	return conn.Close()
}

// Publish отправляет одно сообщение в Kafka
func (s *Sink) Publish(ctx context.Context, msg models.WireMessage) error {
	return s.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(msg.Address),
			Value: msg.Payload,
		},
	)
}

// PublishBatch отправляет пакет сообщений одним вызовом записи
func (s *Sink) PublishBatch(ctx context.Context, msgs []models.WireMessage) error {
	batch := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		batch = append(batch, kafka.Message{
			Key:   []byte(msg.Address),
			Value: msg.Payload,
		})
	}
	return s.writer.WriteMessages(ctx, batch...)
}

// Disconnect закрывает соединение с Kafka
func (s *Sink) Disconnect() error {
	return s.writer.Close()
}
