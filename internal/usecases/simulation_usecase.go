package usecases

import (
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
)

type Usecase struct {
	simSvc interfaces.SimulationService
}

func NewUsecase(simSvc interfaces.SimulationService) interfaces.Usecases {
	return &Usecase{
		simSvc: simSvc,
	}
}

func (u *Usecase) StartSimulation() error {
	return u.simSvc.Start()
}

func (u *Usecase) StopSimulation() error {
	return u.simSvc.Stop()
}

func (u *Usecase) GetMetrics() models.MetricsSnapshot {
	return u.simSvc.Metrics()
}

func (u *Usecase) GetMachines() []models.MachineStatusInfo {
	return u.simSvc.Machines()
}
