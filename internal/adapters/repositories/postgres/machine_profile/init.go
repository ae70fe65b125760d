package machine_profile

import (
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	"gorm.io/gorm"
)

type MachineProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewMachineProfileRepository(db *gorm.DB) interfaces.MachineProfileRepository {
	return &MachineProfileRepositoryImpl{db: db}
}
