package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	"github.com/iwtcode/cncSimulator/internal/middleware/logging"
	"github.com/iwtcode/cncSimulator/pkg/errors"
)

const (
	defaultMaxRetries = 3
	baseBackoff       = 1000 * time.Millisecond
	maxBackoff        = 5000 * time.Millisecond
)

// Client доставляет сообщения в приёмник с ограниченным числом повторов и
// экспоненциальной выдержкой между попытками. Отказ одного сообщения
// локален: вызывающая сторона учитывает ошибку и продолжает такт.
type Client struct {
	sink       interfaces.MessageSink
	logger     *logging.Logger
	maxRetries int

	// sleep подменяется в тестах для проверки расписания выдержек.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(sink interfaces.MessageSink, logger *logging.Logger, maxRetries int) *Client {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Client{
		sink:       sink,
		logger:     logger.WithPrefix("PUBLISHER"),
		maxRetries: maxRetries,
		sleep:      sleepCtx,
	}
}

// Connect выполняет однократную проверку соединения с приёмником.
// Ошибка фатальна для запуска симуляции и повторов не получает.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.sink.Connect(ctx); err != nil {
		return err
	}
	c.logger.Info("Sink connection verified")
	return nil
}

// Disconnect освобождает ресурсы приёмника.
func (c *Client) Disconnect() error {
	return c.sink.Disconnect()
}

// Publish доставляет одно сообщение, повторяя попытки до потолка.
func (c *Client) Publish(ctx context.Context, msg models.WireMessage) error {
	return c.deliver(ctx, msg.Address, func(ctx context.Context) error {
		return c.sink.Publish(ctx, msg)
	})
}

// PublishBatch доставляет пакет сообщений как единое целое: повтор
// выполняется для всего пакета.
func (c *Client) PublishBatch(ctx context.Context, msgs []models.WireMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	destination := fmt.Sprintf("%s (+%d more)", msgs[0].Address, len(msgs)-1)
	return c.deliver(ctx, destination, func(ctx context.Context) error {
		return c.sink.PublishBatch(ctx, msgs)
	})
}

func (c *Client) deliver(ctx context.Context, destination string, send func(ctx context.Context) error) error {
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, backoffDelay(attempt-1)); err != nil {
				// Контекст отменен: прекращаем повторы с последней причиной.
				break
			}
		}
		attempts = attempt
		if lastErr = send(ctx); lastErr == nil {
			return nil
		}
		c.logger.Warn("Delivery attempt failed", "destination", destination, "attempt", attempt, "error", lastErr)
	}
	return &errors.DeliveryError{Destination: destination, Attempts: attempts, Err: lastErr}
}

// backoffDelay возвращает выдержку перед повтором номер attempt+1:
// min(1000 * 2^(attempt-1), 5000) мс.
func backoffDelay(attempt int) time.Duration {
	d := baseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// sleepCtx ждет заданную выдержку, прерываясь по отмене контекста.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
