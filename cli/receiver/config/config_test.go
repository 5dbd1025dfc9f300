package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("не удалось записать конфиг: %v", err)
	}
	return path
}

func TestConfigLoad(t *testing.T) {
	log.SetOutput(io.Discard)

	cfg := `host: "127.0.0.1"
port: "5020"
conn_ttl: 10
log_level: "DEBUG"
ip_white_list: ["10.*"]

sessions:
  auto_register: true
  devices:
    "868728036963038": 7

filter:
  invalid: true
  future_seconds: 3600

storage:
  rabbitmq:
    host: "localhost"
    port: "5672"
    user: "guest"
    password: "guest"
    exchange: "receiver"
  postgresql:
    host: "localhost"
    port: "5432"
    user: "postgres"
    password: "postgres"
    database: "receiver"
    table: "positions"
    sslmode: "disable"
`

	conf, err := New(writeConfig(t, cfg))
	if assert.NoError(t, err) {
		assert.Equal(t, Settings{
			Host:        "127.0.0.1",
			Port:        "5020",
			ConnTTL:     10,
			LogLevel:    "DEBUG",
			ApiPort:     8080,
			QueueBuffer: 1024,
			IPWhiteList: []string{"10.*"},
			Sessions: SessionSettings{
				AutoRegister: true,
				Devices:      map[string]int64{"868728036963038": 7},
			},
			Filter: FilterSettings{Invalid: true, FutureSeconds: 3600},
			Store: map[string]map[string]string{
				"postgresql": {
					"host":     "localhost",
					"port":     "5432",
					"user":     "postgres",
					"password": "postgres",
					"database": "receiver",
					"table":    "positions",
					"sslmode":  "disable",
				},
				"rabbitmq": {
					"exchange": "receiver",
					"host":     "localhost",
					"password": "guest",
					"port":     "5672",
					"user":     "guest",
				},
			},
		},
			conf,
		)
		assert.Equal(t, "127.0.0.1:5020", conf.GetListenAddress())
		assert.Equal(t, 10*time.Second, conf.GetEmptyConnTTL())
		assert.Equal(t, time.Hour, conf.GetFutureLimit())
		assert.Equal(t, log.DebugLevel, conf.GetLogLevel())
	}
}

func TestConfigDefaults(t *testing.T) {
	log.SetOutput(io.Discard)

	tests := []struct {
		name             string
		yamlContent      string
		expectedPort     string
		expectedFuture   int
		expectedDistance int
		expectedLevel    log.Level
	}{
		{
			name:             "empty config",
			yamlContent:      "# empty config\n",
			expectedPort:     "5020",
			expectedLevel:    log.InfoLevel,
		},
		{
			name: "negative filters are disabled",
			yamlContent: `
filter:
  future_seconds: -1
  distance_meters: 50
`,
			expectedPort:  "5020",
			expectedLevel: log.InfoLevel,
		},
		{
			name: "explicit values",
			yamlContent: `
port: "6000"
log_level: "WARN"
filter:
  future_seconds: 60
  distance_meters: 50
`,
			expectedPort:     "6000",
			expectedFuture:   60,
			expectedDistance: 50,
			expectedLevel:    log.WarnLevel,
		},
		{
			name:          "unknown level falls back to info",
			yamlContent:   "log_level: \"TRACE\"\n",
			expectedPort:  "5020",
			expectedLevel: log.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(writeConfig(t, tt.yamlContent))
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.expectedPort, cfg.Port)
			assert.Equal(t, tt.expectedFuture, cfg.Filter.FutureSeconds)
			assert.Equal(t, tt.expectedDistance, cfg.Filter.DistanceMeters)
			assert.Equal(t, tt.expectedLevel, cfg.GetLogLevel())
		})
	}
}

func TestConfigErrors(t *testing.T) {
	log.SetOutput(io.Discard)

	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = New(writeConfig(t, "port: [1, 2"))
	assert.Error(t, err)
}
