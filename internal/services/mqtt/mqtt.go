package mqtt

import (
	"context"
	"strings"
	"time"

	"github.com/iwtcode/cncSimulator/internal/config"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	apperrors "github.com/iwtcode/cncSimulator/pkg/errors"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 10 * time.Second

// Sink публикует сообщения в MQTT-брокер: адрес сообщения становится
// топиком. Для компактной точечной схемы точки заменяются на слэши.
type Sink struct {
	broker string
	client paho.Client
}

// NewSink создает новый экземпляр приёмника MQTT
func NewSink(cfg *config.AppConfig) interfaces.MessageSink {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Sink.MQTTBroker).
		SetClientID(cfg.Sink.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	return &Sink{
		broker: cfg.Sink.MQTTBroker,
		client: paho.NewClient(opts),
	}
}

// Connect устанавливает соединение с брокером. Ошибка фатальна для старта.
func (s *Sink) Connect(ctx context.Context) error {
	token := s.client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return &apperrors.ConnectionError{Broker: s.broker, Err: context.DeadlineExceeded}
	}
	if err := token.Error(); err != nil {
		return &apperrors.ConnectionError{Broker: s.broker, Err: err}
	}
	return nil
}

// Publish отправляет одно сообщение с QoS 1 (at-least-once)
func (s *Sink) Publish(ctx context.Context, msg models.WireMessage) error {
	token := s.client.Publish(topicFor(msg), 1, false, msg.Payload)
	if !token.WaitTimeout(publishTimeout) {
		return context.DeadlineExceeded
	}
	return token.Error()
}

// PublishBatch отправляет пакет последовательно: MQTT не имеет пакетной
// записи, но прерывается на первой же ошибке, чтобы повтор охватил пакет.
func (s *Sink) PublishBatch(ctx context.Context, msgs []models.WireMessage) error {
	for _, msg := range msgs {
		if err := s.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Disconnect завершает соединение с брокером
func (s *Sink) Disconnect() error {
	s.client.Disconnect(250)
	return nil
}

// topicFor возвращает MQTT-топик сообщения. Иерархические адреса уже
// используют слэши; точечные адреса компактной схемы переводятся в слэши.
func topicFor(msg models.WireMessage) string {
	if msg.Schema == models.SchemaFlat {
		return strings.ReplaceAll(msg.Address, ".", "/")
	}
	return msg.Address
}
