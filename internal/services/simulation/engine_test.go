package simulation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/stretchr/testify/require"
)

// testProfile возвращает паспорт активного станка для тестов движка
func testProfile(classification string) *entities.MachineProfile {
	return &entities.MachineProfile{
		MachineID:          "cnc-test-001",
		DisplayName:        "Test VMC",
		Enterprise:         "acme-manufacturing",
		Site:               "plant-dresden",
		Area:               "machining",
		WorkCell:           "cell-01",
		MaxSpindleSpeedRPM: 8100,
		SpindlePowerKW:     15,
		AxisCount:          3,
		HasCoolant:         true,
		RapidTraverseMMMin: 30000,
		WorkEnvelopeMM:     entities.EnvelopeDims{X: 700, Y: 400, Z: 300},
		Classification:     classification,
	}
}

func newTestEngine(t *testing.T, classification string, seed int64, now time.Time) *MachineCycleEngine {
	t.Helper()
	return NewMachineCycleEngine(testProfile(classification), rand.New(rand.NewSource(seed)), now)
}

func TestInitialPhaseByClassification(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	active := newTestEngine(t, entities.ClassificationActive, 1, now)
	require.Equal(t, models.PhaseIdle, active.Phase())
	require.GreaterOrEqual(t, active.cycle.PlannedDuration, 60*time.Second)
	require.LessOrEqual(t, active.cycle.PlannedDuration, 360*time.Second)

	maint := newTestEngine(t, entities.ClassificationUnderMaintenance, 1, now)
	require.Equal(t, models.PhaseMaintenance, maint.Phase())
	require.Equal(t, time.Hour, maint.cycle.PlannedDuration)

	unreachable := newTestEngine(t, entities.ClassificationUnreachable, 1, now)
	require.Equal(t, models.PhaseIdle, unreachable.Phase())
	require.Equal(t, time.Duration(0), unreachable.cycle.PlannedDuration, "Недоступный станок должен иметь бесконечный idle")
}

func TestCycleTransitionSequence(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 7, now)

	// idle -> loading
	now = e.cycle.StartTime.Add(e.cycle.PlannedDuration)
	e.Tick(now)
	require.Equal(t, models.PhaseLoading, e.Phase())
	require.GreaterOrEqual(t, e.cycle.PlannedDuration, 30*time.Second)
	require.LessOrEqual(t, e.cycle.PlannedDuration, 150*time.Second)

	// loading -> machining
	now = e.cycle.StartTime.Add(e.cycle.PlannedDuration)
	e.Tick(now)
	require.Equal(t, models.PhaseMachining, e.Phase())
	require.GreaterOrEqual(t, e.cycle.PlannedDuration, 600*time.Second)
	require.LessOrEqual(t, e.cycle.PlannedDuration, 2400*time.Second)
	require.GreaterOrEqual(t, e.cycle.SpindleBaseFrac, 0.30)
	require.LessOrEqual(t, e.cycle.SpindleBaseFrac, 0.90)

	// machining -> unloading: счетчик деталей увеличивается ровно на 1
	require.Equal(t, int64(0), e.PartsProduced())
	now = e.cycle.StartTime.Add(e.cycle.PlannedDuration)
	e.Tick(now)
	require.Equal(t, models.PhaseUnloading, e.Phase())
	require.Equal(t, int64(1), e.PartsProduced())
	require.GreaterOrEqual(t, e.cycle.PlannedDuration, 15*time.Second)
	require.LessOrEqual(t, e.cycle.PlannedDuration, 75*time.Second)
}

func TestUnloadingBranchTargets(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	seen := map[models.Phase]bool{}

	for seed := int64(0); seed < 200; seed++ {
		e := newTestEngine(t, entities.ClassificationActive, seed, now)
		e.ForcePhase(models.PhaseUnloading, 10*time.Second, now)
		tick := now.Add(10 * time.Second)
		e.Tick(tick)

		next := e.Phase()
		seen[next] = true
		switch next {
		case models.PhaseIdle:
			require.GreaterOrEqual(t, e.cycle.PlannedDuration, 60*time.Second)
			require.LessOrEqual(t, e.cycle.PlannedDuration, 360*time.Second)
		case models.PhaseMaintenance:
			require.GreaterOrEqual(t, e.cycle.PlannedDuration, 900*time.Second)
			require.LessOrEqual(t, e.cycle.PlannedDuration, 4500*time.Second)
		case models.PhaseError:
			require.GreaterOrEqual(t, e.cycle.PlannedDuration, 300*time.Second)
			require.LessOrEqual(t, e.cycle.PlannedDuration, 900*time.Second)
		default:
			t.Fatalf("недопустимая фаза после unloading: %s", next)
		}
	}

	// При 200 розыгрышах ветка idle (85%) обязана встретиться.
	require.True(t, seen[models.PhaseIdle])
}

func TestRecoveryPhasesReturnToIdle(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	for _, phase := range []models.Phase{models.PhaseMaintenance, models.PhaseError} {
		e := newTestEngine(t, entities.ClassificationActive, 3, now)
		e.ForcePhase(phase, 30*time.Second, now)
		e.Tick(now.Add(30 * time.Second))
		require.Equal(t, models.PhaseIdle, e.Phase(), "фаза %s должна возвращаться в idle", phase)
		require.GreaterOrEqual(t, e.cycle.PlannedDuration, 60*time.Second)
		require.LessOrEqual(t, e.cycle.PlannedDuration, 360*time.Second)
	}
}

func TestUnreachableMachineNeverLeavesIdle(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationUnreachable, 5, now)

	for i := 0; i < 100; i++ {
		now = now.Add(time.Hour)
		e.Tick(now)
		require.Equal(t, models.PhaseIdle, e.Phase())
	}
	require.Equal(t, int64(0), e.PartsProduced())
}

func TestCurrentToolFollowsProgress(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 11, now)
	e.ForcePhase(models.PhaseMachining, 1000*time.Second, now)

	require.Equal(t, 1, e.CurrentTool(now))
	require.Equal(t, 2, e.CurrentTool(now.Add(250*time.Second)))
	require.Equal(t, 3, e.CurrentTool(now.Add(500*time.Second)))
	require.Equal(t, 5, e.CurrentTool(now.Add(999*time.Second)))
	// Прогресс ограничен 0.999: инструмент не выходит за пределы магазина.
	require.Equal(t, 5, e.CurrentTool(now.Add(5000*time.Second)))

	e.ForcePhase(models.PhaseIdle, 100*time.Second, now)
	require.Equal(t, 0, e.CurrentTool(now))
}

func TestToolWearAccumulatesAndResetsOnMaintenance(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 13, now)
	e.ForcePhase(models.PhaseMachining, 2000*time.Second, now)

	var prev float64
	for i := 1; i <= 10; i++ {
		tick := now.Add(time.Duration(i*30) * time.Second)
		e.Tick(tick)
		wear := e.runtime.ToolWear(e.CurrentTool(tick))
		require.GreaterOrEqual(t, wear, prev, "износ должен расти монотонно")
		prev = wear
	}
	require.Greater(t, prev, 0.0)

	// Завершение обслуживания означает смену инструмента: износ обнуляется.
	mnow := now.Add(3000 * time.Second)
	e.ForcePhase(models.PhaseMaintenance, 30*time.Second, mnow)
	e.Tick(mnow.Add(30 * time.Second))
	require.Equal(t, models.PhaseIdle, e.Phase())
	for tool := 1; tool <= toolCount; tool++ {
		require.Zero(t, e.runtime.ToolWear(tool))
	}
}

func TestMachiningTailCreditedOnTransition(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 23, now)
	e.ForcePhase(models.PhaseMachining, 100*time.Second, now)

	// Промежуточный такт в середине фазы.
	e.Tick(now.Add(50 * time.Second))
	require.InDelta(t, 50, e.runtime.MachiningSeconds, 0.001)

	// Такт ровно в конце фазы выполняет переход, но хвост резания
	// от предыдущего такта до конца фазы должен быть учтен.
	e.Tick(now.Add(100 * time.Second))
	require.Equal(t, models.PhaseUnloading, e.Phase())
	require.InDelta(t, 100, e.runtime.MachiningSeconds, 0.001)
}

func TestLateTickCreditsOnlyUntilPhaseEnd(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 29, now)
	e.ForcePhase(models.PhaseMachining, 100*time.Second, now)

	e.Tick(now.Add(50 * time.Second))

	// Такт опоздал на 40 секунд после конца фазы: время после её конца
	// резанием не считается.
	e.Tick(now.Add(140 * time.Second))
	require.InDelta(t, 100, e.runtime.MachiningSeconds, 0.001)
}

func TestTickSameInstantDoesNotDoubleAccumulate(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	e := newTestEngine(t, entities.ClassificationActive, 17, now)
	e.ForcePhase(models.PhaseMachining, 2000*time.Second, now)

	tick := now.Add(60 * time.Second)
	e.Tick(tick)
	accumulated := e.runtime.MachiningSeconds
	require.InDelta(t, 60, accumulated, 0.001)

	e.Tick(tick)
	require.Equal(t, accumulated, e.runtime.MachiningSeconds, "повторный такт в тот же момент не должен добавлять время")
}
