package simulation

import (
	"math"
	"math/rand"
	"time"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
)

// toolCount — количество позиций в инструментальном магазине модели.
const toolCount = 5

// MachineCycleEngine владеет машиной состояний операционного цикла одного
// станка и его накопительными счетчиками. Продвигается только вызовом Tick
// со стороны планировщика, конкурентной записи нет.
type MachineCycleEngine struct {
	profile *entities.MachineProfile
	cycle   models.CycleState
	runtime models.MachineRuntimeState
	rng     *rand.Rand
}

// NewMachineCycleEngine создает движок цикла для станка. Начальная фаза
// зависит от статической классификации паспорта:
//   - unreachable: вечный idle, переходы не выполняются;
//   - under-maintenance: maintenance длительностью один час;
//   - active: idle длительностью из диапазона [60,360] секунд.
func NewMachineCycleEngine(profile *entities.MachineProfile, rng *rand.Rand, now time.Time) *MachineCycleEngine {
	e := &MachineCycleEngine{
		profile: profile,
		rng:     rng,
		runtime: models.MachineRuntimeState{
			ToolCutSeconds:      make(map[int]float64),
			VibrationBaseline:   0.5 + rng.Float64(),        // мм/с, [0.5, 1.5]
			TemperatureBaseline: 35 + rng.Float64()*20,      // °C, [35, 55]
			OscPhaseOffset:      rng.Float64() * 2 * math.Pi, // рад
			EngineStartedAt:     now,
			LastTick:            now,
		},
	}

	switch profile.Classification {
	case entities.ClassificationUnreachable:
		e.cycle = models.CycleState{Phase: models.PhaseIdle, StartTime: now, PlannedDuration: 0}
	case entities.ClassificationUnderMaintenance:
		e.cycle = models.CycleState{Phase: models.PhaseMaintenance, StartTime: now, PlannedDuration: time.Hour}
	default:
		e.cycle = models.CycleState{Phase: models.PhaseIdle, StartTime: now, PlannedDuration: e.uniformDuration(60, 360)}
	}

	return e
}

// Profile возвращает паспорт станка.
func (e *MachineCycleEngine) Profile() *entities.MachineProfile { return e.profile }

// Phase возвращает текущую фазу цикла.
func (e *MachineCycleEngine) Phase() models.Phase { return e.cycle.Phase }

// PartsProduced возвращает накопленное число изготовленных деталей.
func (e *MachineCycleEngine) PartsProduced() int64 { return e.runtime.PartsProduced }

// CurrentTool возвращает номер активного инструмента во время резания
// по формуле floor(progress * 5) + 1, где progress ограничен [0, 0.999].
// Вне фазы machining возвращает 0.
func (e *MachineCycleEngine) CurrentTool(now time.Time) int {
	if e.cycle.Phase != models.PhaseMachining {
		return 0
	}
	return int(e.cycle.Progress(now)*toolCount) + 1
}

// Tick продвигает машину состояний к моменту now и возвращает синтезированный
// набор показаний датчиков. Накопление выполняется до перехода, чтобы хвост
// фазы резания между предыдущим тактом и концом фазы был учтен в износе и
// эффективности. Повторный вызов с тем же now не выполняет двойного
// продвижения: дельта считается от предыдущего такта, а переход обнуляет
// elapsed установкой StartTime = now.
func (e *MachineCycleEngine) Tick(now time.Time) []models.SensorReading {
	e.accumulate(now)
	e.advance(now)
	e.runtime.LastTick = now
	return synthesizeReadings(e.profile, &e.cycle, &e.runtime, now)
}

// ForcePhase принудительно переводит станок в указанную фазу с заданной
// длительностью. Используется сценарными прогонами.
func (e *MachineCycleEngine) ForcePhase(phase models.Phase, duration time.Duration, now time.Time) {
	e.cycle.Phase = phase
	e.cycle.StartTime = now
	e.cycle.PlannedDuration = duration
	if phase == models.PhaseMachining {
		e.drawMachiningBaselines()
	}
}

// advance выполняет один переход машины состояний, если запланированная
// длительность фазы истекла. Нулевая длительность означает вечную фазу.
func (e *MachineCycleEngine) advance(now time.Time) {
	if e.cycle.PlannedDuration <= 0 {
		return
	}
	if e.cycle.Elapsed(now) < e.cycle.PlannedDuration {
		return
	}

	switch e.cycle.Phase {
	case models.PhaseIdle:
		e.enterPhase(models.PhaseLoading, e.uniformDuration(30, 150), now)
	case models.PhaseLoading:
		e.enterPhase(models.PhaseMachining, e.uniformDuration(600, 2400), now)
	case models.PhaseMachining:
		e.runtime.PartsProduced++
		e.enterPhase(models.PhaseUnloading, e.uniformDuration(15, 75), now)
	case models.PhaseUnloading:
		// Ветвление: 85% idle, 10% maintenance, 5% error.
		switch draw := e.rng.Float64(); {
		case draw < 0.85:
			e.enterPhase(models.PhaseIdle, e.uniformDuration(60, 360), now)
		case draw < 0.95:
			e.enterPhase(models.PhaseMaintenance, e.uniformDuration(900, 4500), now)
		default:
			e.enterPhase(models.PhaseError, e.uniformDuration(300, 900), now)
		}
	case models.PhaseMaintenance:
		// Обслуживание включает смену инструмента: счетчики резания обнуляются.
		e.runtime.ToolCutSeconds = make(map[int]float64)
		e.enterPhase(models.PhaseIdle, e.uniformDuration(60, 360), now)
	case models.PhaseError:
		e.enterPhase(models.PhaseIdle, e.uniformDuration(60, 360), now)
	}
}

func (e *MachineCycleEngine) enterPhase(phase models.Phase, duration time.Duration, now time.Time) {
	e.cycle.Phase = phase
	e.cycle.StartTime = now
	e.cycle.PlannedDuration = duration
	if phase == models.PhaseMachining {
		e.drawMachiningBaselines()
	}
}

// drawMachiningBaselines разыгрывает базовые доли фазы резания один раз на
// входе в фазу, чтобы показания между тактами оставались непрерывными.
func (e *MachineCycleEngine) drawMachiningBaselines() {
	e.cycle.SpindleBaseFrac = 0.30 + e.rng.Float64()*0.60   // [0.30, 0.90] от максимума
	e.cycle.LoadBaseFrac = 0.30 + e.rng.Float64()*0.50      // [0.30, 0.80]
	e.cycle.FeedrateBase = 800 + e.rng.Float64()*2200       // [800, 3000] мм/мин
}

// accumulate начисляет время резания активному инструменту и суммарное
// время в фазе machining. Дельта считается от предыдущего такта, поэтому
// повторный вызов в тот же момент ничего не добавляет.
func (e *MachineCycleEngine) accumulate(now time.Time) {
	if e.cycle.Phase != models.PhaseMachining {
		return
	}
	delta := now.Sub(e.runtime.LastTick).Seconds()
	if delta <= 0 {
		return
	}
	// Дельта не может превышать время, проведенное в текущей фазе.
	if inPhase := e.cycle.Elapsed(now).Seconds(); delta > inPhase {
		delta = inPhase
	}
	// Поздний такт: фаза закончилась раньше now, время после её конца
	// резанием не является.
	if e.cycle.PlannedDuration > 0 {
		if end := e.cycle.StartTime.Add(e.cycle.PlannedDuration); now.After(end) {
			delta -= now.Sub(end).Seconds()
			if delta <= 0 {
				return
			}
		}
	}
	e.runtime.MachiningSeconds += delta
	e.runtime.ToolCutSeconds[e.CurrentTool(now)] += delta
}

// uniformDuration возвращает равномерно распределенную длительность
// в секундах из диапазона [min, max].
func (e *MachineCycleEngine) uniformDuration(min, max float64) time.Duration {
	return time.Duration((min + e.rng.Float64()*(max-min)) * float64(time.Second))
}
