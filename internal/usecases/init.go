package usecases

import "github.com/iwtcode/cncSimulator/internal/interfaces"

// UseCases - агрегатор всех use case интерфейсов
type UseCases struct {
	interfaces.Usecases
}

// NewUsecases - конструктор для UseCases
func NewUsecases(
	simSvc interfaces.SimulationService,
) interfaces.Usecases {
	return NewUsecase(simSvc)
}
