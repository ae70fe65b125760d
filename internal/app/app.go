package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwtcode/cncSimulator/internal/adapters/handlers"
	"github.com/iwtcode/cncSimulator/internal/adapters/repositories/memory"
	"github.com/iwtcode/cncSimulator/internal/adapters/repositories/postgres"
	"github.com/iwtcode/cncSimulator/internal/config"
	"github.com/iwtcode/cncSimulator/internal/interfaces"
	"github.com/iwtcode/cncSimulator/internal/middleware/logging"
	"github.com/iwtcode/cncSimulator/internal/services/kafka"
	"github.com/iwtcode/cncSimulator/internal/services/logsink"
	"github.com/iwtcode/cncSimulator/internal/services/mqtt"
	"github.com/iwtcode/cncSimulator/internal/services/publisher"
	"github.com/iwtcode/cncSimulator/internal/services/roster"
	"github.com/iwtcode/cncSimulator/internal/services/simulation"
	"github.com/iwtcode/cncSimulator/internal/usecases"

	"go.uber.org/fx"
)

// New создает новый экземпляр fx.App
func New() *fx.App {
	return fx.New(
		ConfigModule,
		LoggingModule,
		RepositoryModule,
		SinkModule,
		ServiceModule,
		UsecaseModule,
		HttpServerModule,
		// Invoke-функции для запуска фоновых задач и хуков жизненного цикла
		fx.Invoke(InvokeConnectSink),
		fx.Invoke(InvokeSimulationLifecycle),
	)
}

// --- Модули FX ---

var ConfigModule = fx.Module("config_module",
	fx.Provide(config.LoadConfiguration),
)

func ProvideLogger(cfg *config.AppConfig) *logging.Logger {
	loggerCfg := &logging.Config{
		Enabled: cfg.Logging.Enable,
		Level:   cfg.Logging.Level,
	}
	return logging.NewLogger(loggerCfg, "CncSimulatorApp")
}

var LoggingModule = fx.Module("logging_module",
	fx.Provide(ProvideLogger),
)

// ProvideRepository выбирает реализацию реестра станков: Postgres при
// включенной БД, иначе реестр в памяти. Пустой реестр засевается
// статическим каталогом флота.
func ProvideRepository(cfg *config.AppConfig, logger *logging.Logger) (interfaces.MachineProfileRepository, error) {
	var repo interfaces.MachineProfileRepository
	var err error

	if cfg.Database.Enable {
		repo, err = postgres.NewRepository(cfg, logger)
		if err != nil {
			return nil, err
		}
	} else {
		repo = memory.NewRepository()
	}

	count, err := repo.Count()
	if err != nil {
		return nil, fmt.Errorf("не удалось проверить реестр станков: %w", err)
	}
	if count == 0 {
		fleet, err := roster.BuildFleet(cfg)
		if err != nil {
			return nil, err
		}
		for i := range fleet {
			if err := repo.Create(&fleet[i]); err != nil {
				return nil, fmt.Errorf("не удалось засеять реестр станков: %w", err)
			}
		}
		logger.Info("Machine registry seeded from static catalog", "machines", len(fleet))
	}

	return repo, nil
}

var RepositoryModule = fx.Module("repository_module",
	fx.Provide(ProvideRepository),
)

// ProvideSink выбирает транспорт приёмника по конфигурации.
func ProvideSink(cfg *config.AppConfig, logger *logging.Logger) (interfaces.MessageSink, error) {
	switch strings.ToLower(cfg.Sink.Type) {
	case "kafka":
		return kafka.NewSink(cfg), nil
	case "mqtt":
		return mqtt.NewSink(cfg), nil
	case "log":
		return logsink.NewSink(logger), nil
	default:
		return nil, fmt.Errorf("неизвестный тип приёмника: '%s'", cfg.Sink.Type)
	}
}

func ProvidePublisher(cfg *config.AppConfig, sink interfaces.MessageSink, logger *logging.Logger) *publisher.Client {
	return publisher.NewClient(sink, logger, cfg.Sink.MaxRetries)
}

var SinkModule = fx.Module("sink_module",
	fx.Provide(ProvideSink, ProvidePublisher),
)

// ProvideScheduler строит планировщик симуляции по реестру станков.
func ProvideScheduler(cfg *config.AppConfig, repo interfaces.MachineProfileRepository, pub *publisher.Client, logger *logging.Logger) (interfaces.SimulationService, error) {
	profiles, err := repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список станков из реестра: %w", err)
	}
	return simulation.NewScheduler(cfg, profiles, pub, logger, time.Now), nil
}

var ServiceModule = fx.Module("service_module",
	fx.Provide(ProvideScheduler),
)

var UsecaseModule = fx.Module("usecases_module",
	fx.Provide(usecases.NewUsecases),
)

var HttpServerModule = fx.Module("http_server_module",
	fx.Provide(
		handlers.NewHandler,
		handlers.ProvideRouter,
	),
	fx.Invoke(InvokeHttpServer),
)

// InvokeConnectSink выполняет однократную проверку соединения с приёмником
// при старте. Неудача останавливает запуск приложения.
func InvokeConnectSink(lc fx.Lifecycle, pub *publisher.Client, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Verifying sink connectivity...")
			if err := pub.Connect(ctx); err != nil {
				logger.Error("FATAL: Sink connection check failed", "error", err)
				return err // Это остановит запуск приложения
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Disconnecting sink...")
			return pub.Disconnect()
		},
	})
}

// InvokeSimulationLifecycle автоматически запускает симуляцию при старте
// (если включен autostart) и останавливает ее при завершении процесса.
func InvokeSimulationLifecycle(lc fx.Lifecycle, cfg *config.AppConfig, simSvc interfaces.SimulationService, logger *logging.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Simulation.Autostart {
				logger.Info("Autostart disabled, waiting for API start request")
				return nil
			}
			logger.Info("Autostarting simulation...")
			return simSvc.Start()
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping simulation...")
			return simSvc.Stop()
		},
	})
}

// InvokeHttpServer запускает HTTP-сервер.
func InvokeHttpServer(lc fx.Lifecycle, cfg *config.AppConfig, h http.Handler, logger *logging.Logger) {
	serverAddr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("HTTP Server is starting", "address", serverAddr)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("Failed to start server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}
