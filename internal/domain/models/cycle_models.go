package models

import (
	"math"
	"time"
)

// Phase представляет фазу операционного цикла станка.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseLoading     Phase = "loading"
	PhaseMachining   Phase = "machining"
	PhaseUnloading   Phase = "unloading"
	PhaseMaintenance Phase = "maintenance"
	PhaseError       Phase = "error"
)

// CycleState описывает текущую фазу цикла одного станка.
// Владеет им ровно один движок цикла, конкурентной записи нет.
type CycleState struct {
	Phase     Phase     `json:"phase"`
	StartTime time.Time `json:"start_time"`

	// PlannedDuration — запланированная длительность фазы.
	// Нулевое значение означает бесконечную фазу (недоступные станки).
	PlannedDuration time.Duration `json:"planned_duration"`

	// Базовые доли, разыгрываемые при входе в фазу machining и удерживаемые
	// до её конца, чтобы значения датчиков менялись непрерывно.
	SpindleBaseFrac float64 `json:"-"`
	LoadBaseFrac    float64 `json:"-"`
	FeedrateBase    float64 `json:"-"`
}

// Elapsed возвращает время, прошедшее с начала текущей фазы.
func (s *CycleState) Elapsed(now time.Time) time.Duration {
	if now.Before(s.StartTime) {
		return 0
	}
	return now.Sub(s.StartTime)
}

// Progress возвращает долю завершенности фазы в диапазоне [0, 0.999].
func (s *CycleState) Progress(now time.Time) float64 {
	if s.PlannedDuration <= 0 {
		return 0
	}
	frac := float64(s.Elapsed(now)) / float64(s.PlannedDuration)
	if frac < 0 {
		return 0
	}
	if frac > 0.999 {
		return 0.999
	}
	return frac
}

// MachineRuntimeState хранит накопительные счетчики станка и его
// фиксированные случайные базовые уровни, разыгранные один раз при создании.
type MachineRuntimeState struct {
	PartsProduced int64 `json:"parts_produced"`

	// Накопленные секунды резания по инструментам (номер инструмента 1..5).
	// Износ выводится из этого значения детерминированно.
	ToolCutSeconds map[int]float64 `json:"-"`

	// Суммарное время в фазе machining за весь процесс, для метрики
	// эффективности.
	MachiningSeconds float64 `json:"-"`

	// Базовые уровни, фиксированные на все время жизни движка.
	VibrationBaseline   float64 `json:"-"` // мм/с
	TemperatureBaseline float64 `json:"-"` // °C
	OscPhaseOffset      float64 `json:"-"` // рад, сдвиг осцилляций станка

	EngineStartedAt time.Time `json:"-"`
	LastTick        time.Time `json:"-"`
}

// toolWearTimeConstant — постоянная времени экспоненциальной модели износа.
// За 8 часов чистого резания износ достигает ~63%.
const toolWearTimeConstant = 8 * 60 * 60 // секунд

// ToolWear возвращает долю износа инструмента в [0,1): 1 - exp(-s/τ),
// монотонна по накопленному времени резания.
func (r *MachineRuntimeState) ToolWear(tool int) float64 {
	s := r.ToolCutSeconds[tool]
	return 1 - math.Exp(-s/toolWearTimeConstant)
}
