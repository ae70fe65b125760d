package memory

import (
	"sync"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	"github.com/iwtcode/cncSimulator/pkg/errors"
)

// Repository — реестр станков в памяти. Используется по умолчанию,
// когда база данных выключена конфигурацией.
type Repository struct {
	mu       sync.RWMutex
	profiles map[string]entities.MachineProfile
	order    []string
}

func NewRepository() interfaces.MachineProfileRepository {
	return &Repository{profiles: make(map[string]entities.MachineProfile)}
}

func (r *Repository) Create(profile *entities.MachineProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[profile.MachineID]; !exists {
		r.order = append(r.order, profile.MachineID)
	}
	r.profiles[profile.MachineID] = *profile
	return nil
}

func (r *Repository) GetByID(machineID string) (*entities.MachineProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[machineID]
	if !ok {
		return nil, errors.ErrDataNotFound
	}
	return &profile, nil
}

func (r *Repository) GetAll() ([]entities.MachineProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.MachineProfile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out, nil
}

func (r *Repository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.profiles)), nil
}
