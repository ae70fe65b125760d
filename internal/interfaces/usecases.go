package interfaces

import (
	"github.com/iwtcode/cncSimulator/internal/domain/models"
)

// Usecases - это агрегирующий интерфейс для всей бизнес-логики API.
type Usecases interface {
	StartSimulation() error
	StopSimulation() error
	GetMetrics() models.MetricsSnapshot
	GetMachines() []models.MachineStatusInfo
}
