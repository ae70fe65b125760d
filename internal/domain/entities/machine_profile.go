package entities

import (
	"fmt"
	"time"
)

// Статическая операционная классификация станка.
const (
	ClassificationActive           = "active"
	ClassificationUnderMaintenance = "under-maintenance"
	ClassificationUnreachable      = "unreachable"
)

// MachineProfile описывает неизменяемый паспорт станка: идентичность,
// положение в иерархии производства и набор возможностей.
// Создается один раз при старте и далее не мутируется.
type MachineProfile struct {
	MachineID   string `gorm:"primaryKey;not null" json:"machine_id"`
	DisplayName string `gorm:"not null" json:"display_name"`

	// Иерархия расположения: enterprise / site / area / work_cell.
	Enterprise string `gorm:"not null" json:"enterprise"`
	Site       string `gorm:"not null" json:"site"`
	Area       string `gorm:"not null" json:"area"`
	WorkCell   string `gorm:"not null" json:"work_cell"`

	// Возможности станка.
	MaxSpindleSpeedRPM float64 `json:"max_spindle_speed_rpm"`
	SpindlePowerKW     float64 `json:"spindle_power_kw"`
	AxisCount          int     `json:"axis_count"` // от 2 до 6
	HasCoolant         bool    `json:"has_coolant"`
	RapidTraverseMMMin float64 `json:"rapid_traverse_mm_min"`

	// Габариты рабочей зоны по линейным осям, мм. Хранится как JSON-колонка.
	WorkEnvelopeMM EnvelopeDims `gorm:"serializer:json" json:"work_envelope_mm"`

	Classification string    `gorm:"not null" json:"classification"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EnvelopeDims задает габариты рабочей зоны по осям X/Y/Z, мм.
type EnvelopeDims struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LocationPath возвращает четыре упорядоченных сегмента иерархии расположения.
func (p *MachineProfile) LocationPath() [4]string {
	return [4]string{p.Enterprise, p.Site, p.Area, p.WorkCell}
}

// Validate проверяет инварианты паспорта: количество осей в диапазоне [2,6]
// и непустые сегменты иерархии.
func (p *MachineProfile) Validate() error {
	if p.MachineID == "" {
		return fmt.Errorf("machine id must not be empty")
	}
	if p.AxisCount < 2 || p.AxisCount > 6 {
		return fmt.Errorf("machine '%s': axis count %d is outside [2,6]", p.MachineID, p.AxisCount)
	}
	for i, seg := range p.LocationPath() {
		if seg == "" {
			return fmt.Errorf("machine '%s': location segment %d is empty", p.MachineID, i)
		}
	}
	switch p.Classification {
	case ClassificationActive, ClassificationUnderMaintenance, ClassificationUnreachable:
	default:
		return fmt.Errorf("machine '%s': unknown classification '%s'", p.MachineID, p.Classification)
	}
	return nil
}
