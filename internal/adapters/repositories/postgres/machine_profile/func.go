package machine_profile

import (
	"errors"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	apperrors "github.com/iwtcode/cncSimulator/pkg/errors"
	"gorm.io/gorm"
)

func (r *MachineProfileRepositoryImpl) Create(profile *entities.MachineProfile) error {
	return r.db.Create(profile).Error
}

func (r *MachineProfileRepositoryImpl) GetByID(machineID string) (*entities.MachineProfile, error) {
	var profile entities.MachineProfile
	err := r.db.Where("machine_id = ?", machineID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDataNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *MachineProfileRepositoryImpl) GetAll() ([]entities.MachineProfile, error) {
	var profiles []entities.MachineProfile
	if err := r.db.Order("machine_id").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *MachineProfileRepositoryImpl) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&entities.MachineProfile{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
