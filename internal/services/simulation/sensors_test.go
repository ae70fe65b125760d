package simulation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/stretchr/testify/require"
)

// findReading ищет показание по ключу датчика в срезе такта
func findReading(t *testing.T, readings []models.SensorReading, key string) models.SensorReading {
	t.Helper()
	for _, r := range readings {
		if r.Key == key {
			return r
		}
	}
	t.Fatalf("показание '%s' отсутствует в такте", key)
	return models.SensorReading{}
}

func hasReading(readings []models.SensorReading, key string) bool {
	for _, r := range readings {
		if r.Key == key {
			return true
		}
	}
	return false
}

func TestSpindleSpeedEnvelopeDuringMachining(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	// Паспортный максимум 8100 об/мин: база [0.30,0.90] от максимума с
	// осцилляцией ±10% дает коридор [2187, 8019].
	for seed := int64(0); seed < 50; seed++ {
		e := newTestEngine(t, entities.ClassificationActive, seed, base)
		e.ForcePhase(models.PhaseMachining, 1200*time.Second, base)

		for step := 1; step <= 20; step++ {
			now := base.Add(time.Duration(step*5) * time.Second)
			readings := e.Tick(now)
			speed := findReading(t, readings, "spindle_speed")
			require.Equal(t, "rpm", speed.Unit)
			v, ok := speed.Value.(float64)
			require.True(t, ok)
			require.GreaterOrEqual(t, v, 2187.0)
			require.LessOrEqual(t, v, 8019.0)
		}
	}
}

func TestSpindleIsStoppedOutsideCycle(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 21, now)

	for _, phase := range []models.Phase{models.PhaseIdle, models.PhaseMaintenance, models.PhaseError} {
		e.ForcePhase(phase, 600*time.Second, now)
		readings := e.Tick(now.Add(time.Second))
		require.Equal(t, 0.0, findReading(t, readings, "spindle_speed").Value)
		require.Equal(t, 0.0, findReading(t, readings, "spindle_load").Value)
		require.Equal(t, 0.0, findReading(t, readings, "feedrate").Value)
	}
}

func TestCoolantReadingsOnlyWhenEquipped(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	equipped := newTestEngine(t, entities.ClassificationActive, 2, now)
	readings := equipped.Tick(now.Add(time.Second))
	require.True(t, hasReading(readings, "coolant_pressure"))
	require.True(t, hasReading(readings, "coolant_flow"))

	profile := testProfile(entities.ClassificationActive)
	profile.HasCoolant = false
	dry := NewMachineCycleEngine(profile, rand.New(rand.NewSource(2)), now)
	readings = dry.Tick(now.Add(time.Second))
	require.False(t, hasReading(readings, "coolant_pressure"))
	require.False(t, hasReading(readings, "coolant_flow"))
}

func TestAxisReadingsMatchConfiguration(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	profile := testProfile(entities.ClassificationActive)
	profile.AxisCount = 5
	e := NewMachineCycleEngine(profile, rand.New(rand.NewSource(9)), now)
	e.ForcePhase(models.PhaseMachining, 1200*time.Second, now)

	readings := e.Tick(now.Add(10 * time.Second))
	for _, axis := range []string{"x", "y", "z"} {
		r := findReading(t, readings, "axis_"+axis+"_position")
		require.Equal(t, "mm", r.Unit)
	}
	// Четвертая и пятая оси поворотные.
	for _, axis := range []string{"a", "b"} {
		r := findReading(t, readings, "axis_"+axis+"_position")
		require.Equal(t, "deg", r.Unit)
		v := r.Value.(float64)
		require.GreaterOrEqual(t, v, -180.0)
		require.LessOrEqual(t, v, 180.0)
	}
	require.False(t, hasReading(readings, "axis_c_position"))
}

func TestLinearAxesStayInsideEnvelope(t *testing.T) {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 31, base)
	e.ForcePhase(models.PhaseMachining, 1200*time.Second, base)

	envelope := e.Profile().WorkEnvelopeMM
	limits := map[string]float64{"x": envelope.X, "y": envelope.Y, "z": envelope.Z}
	for step := 1; step <= 30; step++ {
		readings := e.Tick(base.Add(time.Duration(step) * time.Second))
		for axis, limit := range limits {
			v := findReading(t, readings, "axis_"+axis+"_position").Value.(float64)
			require.GreaterOrEqual(t, v, 0.0)
			require.LessOrEqual(t, v, limit)
		}
	}
}

func TestThresholdQualityMapping(t *testing.T) {
	require.Equal(t, models.QualityGood, thresholdQuality(2.9, vibrationUncertainAbove, vibrationBadAbove))
	require.Equal(t, models.QualityUncertain, thresholdQuality(3.5, vibrationUncertainAbove, vibrationBadAbove))
	require.Equal(t, models.QualityBad, thresholdQuality(5.1, vibrationUncertainAbove, vibrationBadAbove))

	require.Equal(t, models.QualityGood, thresholdQuality(74.9, temperatureUncertainAbove, temperatureBadAbove))
	require.Equal(t, models.QualityUncertain, thresholdQuality(80.0, temperatureUncertainAbove, temperatureBadAbove))
	require.Equal(t, models.QualityBad, thresholdQuality(90.1, temperatureUncertainAbove, temperatureBadAbove))
}

func TestVibrationCarriesThresholdsInMeta(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 4, now)

	readings := e.Tick(now.Add(time.Second))
	vib := findReading(t, readings, "vibration")
	require.Equal(t, "mm/s", vib.Unit)
	require.Equal(t, vibrationUncertainAbove, vib.Meta["uncertain_above"])
	require.Equal(t, vibrationBadAbove, vib.Meta["bad_above"])

	temp := findReading(t, readings, "temperature")
	require.Equal(t, temperatureUncertainAbove, temp.Meta["uncertain_above"])
	require.Equal(t, temperatureBadAbove, temp.Meta["bad_above"])
}

func TestStatusVocabulary(t *testing.T) {
	cases := map[models.Phase]string{
		models.PhaseIdle:        "Idle",
		models.PhaseLoading:     "Loading part",
		models.PhaseMachining:   "Cutting",
		models.PhaseUnloading:   "Unloading part",
		models.PhaseMaintenance: "Under maintenance",
		models.PhaseError:       "Fault",
	}
	for phase, want := range cases {
		require.Equal(t, want, statusVocabulary(phase))
	}
}

func TestEfficiencyIsCappedAtHundred(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 6, now)

	// Искусственно завышенное время резания: метрика не превышает 100%.
	e.runtime.MachiningSeconds = 1e9
	readings := e.Tick(now.Add(time.Minute))
	require.Equal(t, 100.0, findReading(t, readings, "efficiency").Value)
}

func TestCycleProgressMeta(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 8, now)
	e.ForcePhase(models.PhaseMachining, 1000*time.Second, now)

	readings := e.Tick(now.Add(250 * time.Second))
	progress := findReading(t, readings, "cycle_progress")
	require.Equal(t, 25.0, progress.Value)
	require.Equal(t, 250.0, progress.Meta["elapsed_s"])
	require.Equal(t, 750.0, progress.Meta["remaining_s"])
	require.Equal(t, string(models.PhaseMachining), progress.Meta["phase"])
}

func TestReadingTimestampsNeverGoBackwards(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 19, now)

	last := map[string]int64{}
	for step := 1; step <= 50; step++ {
		now = now.Add(5 * time.Second)
		for _, r := range e.Tick(now) {
			ts := r.Timestamp.UnixMilli()
			require.GreaterOrEqual(t, ts, last[r.Key], "временная метка '%s' не должна убывать", r.Key)
			last[r.Key] = ts
		}
	}
}

func TestPartsCountReflectsRuntime(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 10, now)
	e.runtime.PartsProduced = 42

	readings := e.Tick(now.Add(time.Second))
	require.Equal(t, int64(42), findReading(t, readings, "parts_count").Value)
}
