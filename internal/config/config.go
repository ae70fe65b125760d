package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig содержит конфигурацию приложения
type AppConfig struct {
	ServerPort string
	GinMode    string

	Sink       SinkConfig
	Simulation SimulationConfig
	Fleet      FleetConfig
	Database   DatabaseConfig
	Logging    LoggerConfig
}

// SinkConfig содержит настройки приёмника сообщений и политики доставки
type SinkConfig struct {
	Type         string // kafka / mqtt / log
	KafkaBroker  string
	KafkaTopic   string
	MQTTBroker   string
	MQTTClientID string
	MaxRetries   int // потолок попыток доставки одного сообщения
	BatchSize    int // 0 или 1 — поштучная публикация
}

// SimulationConfig содержит настройки планировщика симуляции
type SimulationConfig struct {
	TickIntervalMs int
	TargetSchema   string // isa95 / flat / both
	Autostart      bool
	Seed           int64 // 0 — случайное зерно от времени
}

// FleetConfig содержит переопределяемые сегменты идентичности флота
type FleetConfig struct {
	Enterprise   string
	SiteName     string
	MachineCount int
}

// LoggerConfig содержит настройки логгера
type LoggerConfig struct {
	Enable bool
	Level  string
}

// DatabaseConfig содержит конфигурацию для подключения к базе данных
type DatabaseConfig struct {
	Enable   bool
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
}

// LoadConfiguration загружает конфигурацию из .env файла или переменных окружения
func LoadConfiguration() (*AppConfig, error) {
	_ = godotenv.Load()

	config := &AppConfig{
		ServerPort: getEnv("APP_PORT", "8083"),
		GinMode:    getEnv("GIN_MODE", "release"),
		Sink: SinkConfig{
			Type:         getEnv("SINK_TYPE", "kafka"),
			KafkaBroker:  getEnv("KAFKA_BROKER", "localhost:9092"),
			KafkaTopic:   getEnv("KAFKA_TOPIC", "machine_telemetry"),
			MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			MQTTClientID: getEnv("MQTT_CLIENT_ID", "cnc-simulator"),
			MaxRetries:   getEnvAsInt("PUBLISH_MAX_RETRIES", 3),
			BatchSize:    getEnvAsInt("PUBLISH_BATCH_SIZE", 0),
		},
		Simulation: SimulationConfig{
			TickIntervalMs: getEnvAsInt("TICK_INTERVAL_MS", 5000),
			TargetSchema:   getEnv("TARGET_SCHEMA", "isa95"),
			Autostart:      getEnvAsBool("SIM_AUTOSTART", true),
			Seed:           int64(getEnvAsInt("SIM_SEED", 0)),
		},
		Fleet: FleetConfig{
			Enterprise:   getEnv("ENTERPRISE_NAME", "acme-manufacturing"),
			SiteName:     getEnv("SITE_NAME", "plant-dresden"),
			MachineCount: getEnvAsInt("MACHINE_COUNT", 10),
		},
		Database: DatabaseConfig{
			Enable:   getEnvAsBool("DB_ENABLE", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Username: getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "root"),
			DBName:   getEnv("DB_NAME", "simulator_db"),
		},
		Logging: LoggerConfig{
			Enable: getEnvAsBool("LOGGER_ENABLE", true),
			Level:  getEnv("LOGGER_LOG_LEVEL", "DEBUG"),
		},
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(name string, defaultValue int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	val, _ := strconv.ParseBool(value)
	return val
}
