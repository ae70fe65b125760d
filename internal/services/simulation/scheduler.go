package simulation

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwtcode/cncSimulator/internal/config"
	"github.com/iwtcode/cncSimulator/internal/domain/entities"
	"github.com/iwtcode/cncSimulator/internal/domain/models"
	"github.com/iwtcode/cncSimulator/internal/middleware/logging"
	"github.com/iwtcode/cncSimulator/internal/services/adapter"
	"github.com/iwtcode/cncSimulator/internal/services/publisher"
	apperrors "github.com/iwtcode/cncSimulator/pkg/errors"
)

// Clock — источник времени планировщика, подменяемый в тестах.
type Clock func() time.Time

const recentErrorsLimit = 10

// Scheduler владеет флотом движков цикла и по таймеру выполняет такт:
// генерация показаний, форматирование, публикация, агрегация метрик.
// Генерация и форматирование выполняются в горутине таймера (движок имеет
// единственного писателя), публикация уходит в фоновые горутины, поэтому
// медленная доставка одного такта не задерживает следующий.
type Scheduler struct {
	cfg      *config.AppConfig
	engines  map[string]*MachineCycleEngine
	order    []string // порядок обхода флота, стабильный для логов
	adapters []*adapter.FormatAdapter
	pub      *publisher.Client
	logger   *logging.Logger
	clock    Clock

	fleetMu sync.Mutex // защищает engines от одновременного чтения из API

	mu        sync.Mutex // жизненный цикл и метрики
	running   bool
	runID     string
	startedAt time.Time
	stoppedAt time.Time
	ticker    *time.Ticker
	done      chan struct{}
	loopDone  chan struct{}
	wg        sync.WaitGroup

	totalPublished     int64
	batchesSent        int64
	validationFailures int64
	ticksCompleted     int64
	recentErrors       []string
}

// NewScheduler создает планировщик с внедренными зависимостями: реестром
// станков, публикатором и часами. Несколько независимых симуляций могут
// сосуществовать в одном процессе.
func NewScheduler(cfg *config.AppConfig, profiles []entities.MachineProfile, pub *publisher.Client, logger *logging.Logger, clock Clock) *Scheduler {
	if clock == nil {
		clock = time.Now
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = clock().UnixNano()
	}
	master := rand.New(rand.NewSource(seed))

	now := clock()
	engines := make(map[string]*MachineCycleEngine, len(profiles))
	order := make([]string, 0, len(profiles))
	for i := range profiles {
		p := profiles[i]
		engines[p.MachineID] = NewMachineCycleEngine(&p, rand.New(rand.NewSource(master.Int63())), now)
		order = append(order, p.MachineID)
	}

	return &Scheduler{
		cfg:      cfg,
		engines:  engines,
		order:    order,
		adapters: buildAdapters(cfg.Simulation.TargetSchema),
		pub:      pub,
		logger:   logger.WithPrefix("SCHEDULER"),
		clock:    clock,
	}
}

// buildAdapters возвращает адаптеры активных схем. При "both" один такт
// публикуется в обе схемы параллельно для сравнения бок о бок.
func buildAdapters(schema string) []*adapter.FormatAdapter {
	switch strings.ToLower(schema) {
	case models.SchemaFlat:
		return []*adapter.FormatAdapter{adapter.NewFormatAdapter(models.SchemaFlat)}
	case models.SchemaBoth:
		return []*adapter.FormatAdapter{
			adapter.NewFormatAdapter(models.SchemaISA95),
			adapter.NewFormatAdapter(models.SchemaFlat),
		}
	default:
		return []*adapter.FormatAdapter{adapter.NewFormatAdapter(models.SchemaISA95)}
	}
}

// Start запускает периодические такты. Повторный запуск уже идущей
// симуляции завершается ошибкой ErrAlreadyRunning, второй таймер не создается.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return apperrors.ErrAlreadyRunning
	}

	interval := time.Duration(s.cfg.Simulation.TickIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 5 * time.Second
	}

	s.running = true
	s.runID = uuid.New().String()
	s.startedAt = s.clock()
	s.stoppedAt = time.Time{}
	s.ticker = time.NewTicker(interval)
	s.done = make(chan struct{})
	s.loopDone = make(chan struct{})

	s.logger.Info("Simulation started",
		"runID", s.runID,
		"interval", interval,
		"machines", len(s.engines),
		"schema", s.cfg.Simulation.TargetSchema,
	)

	go s.loop(s.ticker, s.done, s.loopDone)
	return nil
}

// Stop останавливает таймер и дожидается завершения активных публикаций.
// Остановка незапущенной симуляции — no-op.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.stoppedAt = s.clock()
	s.ticker.Stop()
	close(s.done)
	runID := s.runID
	loopDone := s.loopDone
	s.mu.Unlock()

	// Сначала дожидаемся выхода горутины таймера: такт, принятый до закрытия
	// done, успевает зарегистрировать свою публикацию в WaitGroup. После этого
	// дренаж публикаций в полете ограничен потолком повторов и выдержек.
	<-loopDone
	s.wg.Wait()
	s.logger.Info("Simulation stopped", "runID", runID)
	return nil
}

// IsRunning сообщает, идет ли симуляция.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ticker *time.Ticker, done, loopDone chan struct{}) {
	defer close(loopDone)
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			now := s.clock()
			msgs, failures := s.generate(now)
			s.mu.Lock()
			s.validationFailures += failures
			s.mu.Unlock()

			// Публикация такта уходит в фон: такты могут перекрываться.
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.publishTick(context.Background(), msgs)
			}()
		}
	}
}

// generate выполняет генерацию и форматирование одного такта.
// Станки с классификацией unreachable полностью исключаются.
func (s *Scheduler) generate(now time.Time) ([]models.WireMessage, int64) {
	s.fleetMu.Lock()
	defer s.fleetMu.Unlock()

	var msgs []models.WireMessage
	var failures int64

	for _, id := range s.order {
		engine := s.engines[id]
		if engine.Profile().Classification == entities.ClassificationUnreachable {
			continue
		}

		readings := engine.Tick(now)
		for _, reading := range readings {
			for _, a := range s.adapters {
				adapted, err := a.Adapt(engine.Profile(), reading)
				if err != nil {
					failures++
					s.logger.Warn("Reading rejected by validation", "machineID", id, "schema", a.Schema(), "error", err)
					continue
				}
				msgs = append(msgs, adapted...)
			}
		}
	}

	return msgs, failures
}

// publishTick доставляет сообщения такта: пакетами или поштучно,
// публикации независимых станков идут конкурентно. Метрики обновляются
// только после завершения (или зафиксированного отказа) всех доставок.
func (s *Scheduler) publishTick(ctx context.Context, msgs []models.WireMessage) {
	if len(msgs) == 0 {
		s.finishTick(0, 0, nil)
		return
	}

	batchSize := s.cfg.Sink.BatchSize
	var published, batches int64
	var errs []error

	if batchSize > 1 {
		for start := 0; start < len(msgs); start += batchSize {
			end := start + batchSize
			if end > len(msgs) {
				end = len(msgs)
			}
			if err := s.pub.PublishBatch(ctx, msgs[start:end]); err != nil {
				errs = append(errs, err)
				continue
			}
			published += int64(end - start)
			batches++
		}
		s.finishTick(published, batches, errs)
		return
	}

	var wg sync.WaitGroup
	var resMu sync.Mutex
	for _, msg := range msgs {
		wg.Add(1)
		go func(msg models.WireMessage) {
			defer wg.Done()
			err := s.pub.Publish(ctx, msg)
			resMu.Lock()
			defer resMu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			published++
		}(msg)
	}
	wg.Wait()
	s.finishTick(published, 0, errs)
}

// finishTick фиксирует итог такта в агрегированных метриках.
func (s *Scheduler) finishTick(published, batches int64, errs []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalPublished += published
	s.batchesSent += batches
	s.ticksCompleted++
	for _, err := range errs {
		s.recentErrors = append(s.recentErrors, err.Error())
	}
	if n := len(s.recentErrors); n > recentErrorsLimit {
		s.recentErrors = s.recentErrors[n-recentErrorsLimit:]
	}
}

// Metrics возвращает моментальный снимок агрегированных метрик.
func (s *Scheduler) Metrics() models.MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var uptime float64
	if !s.startedAt.IsZero() {
		end := s.stoppedAt
		if s.running {
			end = s.clock()
		}
		uptime = end.Sub(s.startedAt).Seconds()
	}

	mps := 0.0
	if uptime > 0 {
		mps = float64(s.totalPublished) / uptime
	}

	active := 0
	for _, id := range s.order {
		if s.engines[id].Profile().Classification != entities.ClassificationUnreachable {
			active++
		}
	}

	recent := make([]string, len(s.recentErrors))
	copy(recent, s.recentErrors)

	return models.MetricsSnapshot{
		RunID:                  s.runID,
		Running:                s.running,
		StartedAt:              s.startedAt,
		UptimeSeconds:          uptime,
		TotalMessagesPublished: s.totalPublished,
		MessagesPerSecond:      mps,
		BatchesSent:            s.batchesSent,
		ActiveMachines:         active,
		ValidationFailures:     s.validationFailures,
		TicksCompleted:         s.ticksCompleted,
		RecentErrors:           recent,
	}
}

// Machines возвращает список станков флота с текущим состоянием цикла.
func (s *Scheduler) Machines() []models.MachineStatusInfo {
	s.fleetMu.Lock()
	defer s.fleetMu.Unlock()

	infos := make([]models.MachineStatusInfo, 0, len(s.order))
	for _, id := range s.order {
		engine := s.engines[id]
		p := engine.Profile()
		infos = append(infos, models.MachineStatusInfo{
			MachineID:      p.MachineID,
			DisplayName:    p.DisplayName,
			Classification: p.Classification,
			Location:       strings.Join([]string{p.Enterprise, p.Site, p.Area, p.WorkCell}, "/"),
			Phase:          engine.Phase(),
			PartsProduced:  engine.PartsProduced(),
		})
	}
	return infos
}

// Engine возвращает движок станка по идентификатору; используется
// сценарными прогонами и тестами.
func (s *Scheduler) Engine(machineID string) (*MachineCycleEngine, bool) {
	s.fleetMu.Lock()
	defer s.fleetMu.Unlock()
	engine, ok := s.engines[machineID]
	return engine, ok
}
