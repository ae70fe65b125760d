package interfaces

import (
	"github.com/iwtcode/cncSimulator/internal/domain/entities"
)

// MachineProfileRepository определяет контракт для работы с реестром станков.
type MachineProfileRepository interface {
	Create(profile *entities.MachineProfile) error
	GetByID(machineID string) (*entities.MachineProfile, error)
	GetAll() ([]entities.MachineProfile, error)
	Count() (int64, error)
}
