package interfaces

import (
	"github.com/iwtcode/cncSimulator/internal/domain/models"
)

// SimulationService определяет контракт планировщика симуляции флота.
type SimulationService interface {
	// Start запускает периодическую генерацию и публикацию.
	// Возвращает errors.ErrAlreadyRunning, если симуляция уже идет.
	Start() error
	// Stop останавливает таймер и дожидается завершения активных публикаций.
	// Для незапущенной симуляции — no-op.
	Stop() error
	IsRunning() bool
	Metrics() models.MetricsSnapshot
	Machines() []models.MachineStatusInfo
}
