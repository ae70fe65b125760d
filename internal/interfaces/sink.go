package interfaces

import (
	"context"

	"github.com/iwtcode/cncSimulator/internal/domain/models"
)

// MessageSink определяет контракт приёмника сообщений. Ядро зависит только
// от этой способности, а не от конкретного транспорта (Kafka, MQTT и т.д.).
type MessageSink interface {
	// Connect выполняет однократную проверку соединения при старте.
	Connect(ctx context.Context) error
	Publish(ctx context.Context, msg models.WireMessage) error
	PublishBatch(ctx context.Context, msgs []models.WireMessage) error
	Disconnect() error
}
