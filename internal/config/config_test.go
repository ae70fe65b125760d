package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	require.Equal(t, "8083", cfg.ServerPort)
	require.Equal(t, "kafka", cfg.Sink.Type)
	require.Equal(t, "machine_telemetry", cfg.Sink.KafkaTopic)
	require.Equal(t, 3, cfg.Sink.MaxRetries)
	require.Equal(t, 0, cfg.Sink.BatchSize)
	require.Equal(t, 5000, cfg.Simulation.TickIntervalMs)
	require.Equal(t, "isa95", cfg.Simulation.TargetSchema)
	require.True(t, cfg.Simulation.Autostart)
	require.Equal(t, "acme-manufacturing", cfg.Fleet.Enterprise)
	require.Equal(t, 10, cfg.Fleet.MachineCount)
	require.False(t, cfg.Database.Enable)
}

func TestLoadConfigurationOverridesFromEnv(t *testing.T) {
	t.Setenv("SINK_TYPE", "mqtt")
	t.Setenv("MQTT_BROKER", "tcp://broker.local:1883")
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("TARGET_SCHEMA", "both")
	t.Setenv("SIM_AUTOSTART", "false")
	t.Setenv("MACHINE_COUNT", "25")
	t.Setenv("PUBLISH_MAX_RETRIES", "5")
	t.Setenv("PUBLISH_BATCH_SIZE", "100")

	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	require.Equal(t, "mqtt", cfg.Sink.Type)
	require.Equal(t, "tcp://broker.local:1883", cfg.Sink.MQTTBroker)
	require.Equal(t, 250, cfg.Simulation.TickIntervalMs)
	require.Equal(t, "both", cfg.Simulation.TargetSchema)
	require.False(t, cfg.Simulation.Autostart)
	require.Equal(t, 25, cfg.Fleet.MachineCount)
	require.Equal(t, 5, cfg.Sink.MaxRetries)
	require.Equal(t, 100, cfg.Sink.BatchSize)
}

func TestLoadConfigurationIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("TICK_INTERVAL_MS", "not-a-number")

	cfg, err := LoadConfiguration()
	require.NoError(t, err)
	require.Equal(t, 5000, cfg.Simulation.TickIntervalMs)
}
