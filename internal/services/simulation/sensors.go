package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
)

// Пороги качества для вибрации (мм/с) и температуры (°C).
const (
	vibrationUncertainAbove = 3.0
	vibrationBadAbove       = 5.0
	temperatureUncertainAbove = 75.0
	temperatureBadAbove       = 90.0
	spindleLoadUncertainAbove = 95.0
)

// Имена осей в порядке конфигурации: три линейные, затем поворотные.
var axisNames = [6]string{"x", "y", "z", "a", "b", "c"}

// synthesizeReadings синтезирует полный набор показаний датчиков станка.
// Функция чистая относительно (profile, cycle, runtime, now): никакого
// скрытого состояния, один и тот же такт воспроизводится при фиксации now
// и базовых уровней станка.
func synthesizeReadings(profile *entities.MachineProfile, cycle *models.CycleState, runtime *models.MachineRuntimeState, now time.Time) []models.SensorReading {
	readings := make([]models.SensorReading, 0, 16+profile.AxisCount)
	phase := cycle.Phase
	meta := func() map[string]interface{} {
		return map[string]interface{}{"phase": string(phase)}
	}

	// Скорость шпинделя, об/мин.
	var spindleSpeed float64
	switch phase {
	case models.PhaseMachining:
		spindleSpeed = profile.MaxSpindleSpeedRPM * cycle.SpindleBaseFrac * (1 + 0.10*osc(now, 7, runtime.OscPhaseOffset))
	case models.PhaseLoading, models.PhaseUnloading:
		spindleSpeed = profile.MaxSpindleSpeedRPM * 0.10
	default:
		spindleSpeed = 0
	}
	readings = append(readings, models.SensorReading{
		Key: "spindle_speed", Value: round1(spindleSpeed), Quality: models.QualityGood,
		Unit: "rpm", Timestamp: now, Meta: meta(),
	})

	// Нагрузка шпинделя, %.
	var spindleLoad float64
	switch phase {
	case models.PhaseMachining:
		spindleLoad = cycle.LoadBaseFrac * 100 * (1 + 0.10*osc(now, 9, runtime.OscPhaseOffset))
	case models.PhaseLoading, models.PhaseUnloading:
		spindleLoad = 10 + 5*osc(now, 11, runtime.OscPhaseOffset) // [5, 15]
	default:
		spindleLoad = 0
	}
	loadQuality := models.QualityGood
	if spindleLoad > spindleLoadUncertainAbove {
		loadQuality = models.QualityUncertain
	}
	loadMeta := meta()
	loadMeta["uncertain_above"] = spindleLoadUncertainAbove
	readings = append(readings, models.SensorReading{
		Key: "spindle_load", Value: round1(spindleLoad), Quality: loadQuality,
		Unit: "percent", Timestamp: now, Meta: loadMeta,
	})

	// Позиции осей: линейные ограничены рабочей зоной, поворотные — [-180,180].
	envelope := [3]float64{profile.WorkEnvelopeMM.X, profile.WorkEnvelopeMM.Y, profile.WorkEnvelopeMM.Z}
	for i := 0; i < profile.AxisCount && i < len(axisNames); i++ {
		var pos float64
		unit := "mm"
		if i < 3 {
			if phase == models.PhaseMachining {
				pos = envelope[i] / 2 * (1 + osc(now, float64(10+i), runtime.OscPhaseOffset))
			}
		} else {
			unit = "deg"
			if phase == models.PhaseMachining {
				pos = 180 * osc(now, float64(12+i), runtime.OscPhaseOffset)
			}
		}
		readings = append(readings, models.SensorReading{
			Key: fmt.Sprintf("axis_%s_position", axisNames[i]), Value: round1(pos),
			Quality: models.QualityGood, Unit: unit, Timestamp: now, Meta: meta(),
		})
	}

	// Подача, мм/мин.
	var feedrate float64
	if phase == models.PhaseMachining {
		feedrate = cycle.FeedrateBase * (1 + 0.10*osc(now, 8, runtime.OscPhaseOffset))
	}
	readings = append(readings, models.SensorReading{
		Key: "feedrate", Value: round1(feedrate), Quality: models.QualityGood,
		Unit: "mm/min", Timestamp: now, Meta: meta(),
	})

	// Вибрация: базовый уровень станка плюс шум, масштабируемый фазой.
	vibScale := 0.15
	switch phase {
	case models.PhaseMachining:
		vibScale = 2.2
	case models.PhaseLoading, models.PhaseUnloading:
		vibScale = 0.8
	}
	vibration := runtime.VibrationBaseline + vibScale*math.Abs(osc(now, 5, runtime.OscPhaseOffset))
	vibMeta := meta()
	vibMeta["uncertain_above"] = vibrationUncertainAbove
	vibMeta["bad_above"] = vibrationBadAbove
	readings = append(readings, models.SensorReading{
		Key: "vibration", Value: round2(vibration), Quality: thresholdQuality(vibration, vibrationUncertainAbove, vibrationBadAbove),
		Unit: "mm/s", Timestamp: now, Meta: vibMeta,
	})

	// Температура: базовый уровень плюс фазозависимый нагрев.
	var tempDelta float64
	switch phase {
	case models.PhaseMachining:
		tempDelta = 22
	case models.PhaseLoading, models.PhaseUnloading:
		tempDelta = 8
	default:
		tempDelta = 3
	}
	temperature := runtime.TemperatureBaseline + tempDelta*(0.6+0.4*osc(now, 13, runtime.OscPhaseOffset))
	tempMeta := meta()
	tempMeta["uncertain_above"] = temperatureUncertainAbove
	tempMeta["bad_above"] = temperatureBadAbove
	readings = append(readings, models.SensorReading{
		Key: "temperature", Value: round1(temperature), Quality: thresholdQuality(temperature, temperatureUncertainAbove, temperatureBadAbove),
		Unit: "celsius", Timestamp: now, Meta: tempMeta,
	})

	// Охлаждение публикуется только при наличии системы СОЖ.
	if profile.HasCoolant {
		var pressure, flow float64
		if phase == models.PhaseMachining {
			pressure = 5 + 0.8*osc(now, 10, runtime.OscPhaseOffset)
			flow = 30 + 8*osc(now, 14, runtime.OscPhaseOffset)
		}
		readings = append(readings,
			models.SensorReading{Key: "coolant_pressure", Value: round2(pressure), Quality: models.QualityGood, Unit: "bar", Timestamp: now, Meta: meta()},
			models.SensorReading{Key: "coolant_flow", Value: round1(flow), Quality: models.QualityGood, Unit: "l/min", Timestamp: now, Meta: meta()},
		)
	}

	// Активный инструмент и его износ.
	tool := 0
	wearPct := 0.0
	if phase == models.PhaseMachining {
		tool = int(cycle.Progress(now)*toolCount) + 1
		wearPct = runtime.ToolWear(tool) * 100
	}
	readings = append(readings,
		models.SensorReading{Key: "current_tool", Value: tool, Quality: models.QualityGood, Timestamp: now, Meta: meta()},
		models.SensorReading{Key: "tool_wear", Value: round2(wearPct), Quality: models.QualityGood, Unit: "percent", Timestamp: now, Meta: meta()},
	)

	// Человекочитаемый операционный статус.
	readings = append(readings, models.SensorReading{
		Key: "machine_status", Value: statusVocabulary(phase), Quality: models.QualityGood, Timestamp: now, Meta: meta(),
	})

	// Прогресс фазы цикла.
	elapsed := cycle.Elapsed(now).Seconds()
	remaining := 0.0
	progressPct := 0.0
	if cycle.PlannedDuration > 0 {
		remaining = math.Max(cycle.PlannedDuration.Seconds()-elapsed, 0)
		progressPct = math.Min(elapsed/cycle.PlannedDuration.Seconds()*100, 100)
	}
	progressMeta := meta()
	progressMeta["elapsed_s"] = round1(elapsed)
	progressMeta["remaining_s"] = round1(remaining)
	readings = append(readings, models.SensorReading{
		Key: "cycle_progress", Value: round1(progressPct), Quality: models.QualityGood,
		Unit: "percent", Timestamp: now, Meta: progressMeta,
	})

	// Счетчик деталей.
	readings = append(readings, models.SensorReading{
		Key: "parts_count", Value: runtime.PartsProduced, Quality: models.QualityGood, Timestamp: now, Meta: meta(),
	})

	// Эффективность: доля времени резания от общего времени работы, не более 100%.
	total := now.Sub(runtime.EngineStartedAt).Seconds()
	efficiency := 0.0
	if total > 0 {
		efficiency = math.Min(runtime.MachiningSeconds/total*100, 100)
	}
	readings = append(readings, models.SensorReading{
		Key: "efficiency", Value: round1(efficiency), Quality: models.QualityGood,
		Unit: "percent", Timestamp: now, Meta: meta(),
	})

	return readings
}

// osc возвращает плавную синусоиду [-1,1] с заданным периодом в секундах
// и сдвигом фазы станка, чтобы показания разных станков не совпадали.
func osc(now time.Time, periodSeconds float64, offset float64) float64 {
	t := float64(now.UnixMilli()) / 1000.0
	return math.Sin(2*math.Pi*t/periodSeconds + offset)
}

// thresholdQuality сопоставляет значению тег качества по двум порогам.
func thresholdQuality(value, uncertainAbove, badAbove float64) string {
	switch {
	case value > badAbove:
		return models.QualityBad
	case value > uncertainAbove:
		return models.QualityUncertain
	default:
		return models.QualityGood
	}
}

// statusVocabulary переводит фазу цикла в человекочитаемый статус.
func statusVocabulary(phase models.Phase) string {
	switch phase {
	case models.PhaseIdle:
		return "Idle"
	case models.PhaseLoading:
		return "Loading part"
	case models.PhaseMachining:
		return "Cutting"
	case models.PhaseUnloading:
		return "Unloading part"
	case models.PhaseMaintenance:
		return "Under maintenance"
	case models.PhaseError:
		return "Fault"
	default:
		return "Unknown"
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
