package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/daniil11ru/its/cli/receiver/config"
	"github.com/daniil11ru/its/cli/receiver/storage/store/memory"
	"github.com/daniil11ru/its/libs/its"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	_, err := getConfig("")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"6000\"\n"), 0o644))

	cfg, err := getConfig(path)
	if assert.NoError(t, err) {
		assert.Equal(t, "6000", cfg.Port)
	}
}

func TestLogFileCreationAndContent(t *testing.T) {
	cfg := config.Settings{
		LogFilePath:   filepath.Join(t.TempDir(), "nested", "logs", "receiver.log"),
		LogMaxAgeDays: 7,
	}

	writer, err := newLogFileWriter(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.LogMaxAgeDays, writer.MaxAge)
	assert.DirExists(t, filepath.Dir(cfg.LogFilePath))

	logger := log.New()
	logger.SetOutput(writer)

	logMessage := "UNIQUE_TEST_MESSAGE_" + time.Now().Format(time.RFC3339Nano)
	logger.Info(logMessage)
	require.NoError(t, writer.Close())

	content, err := os.ReadFile(cfg.LogFilePath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), logMessage))
}

func TestApplyMigrationsSkipped(t *testing.T) {
	log.SetOutput(io.Discard)

	tests := []struct {
		name string
		cfg  config.Settings
	}{
		{name: "no migrations path", cfg: config.Settings{Store: map[string]map[string]string{"postgresql": {}}}},
		{name: "no postgresql storage", cfg: config.Settings{MigrationsPath: "file://migrations"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, applyMigrations(tt.cfg))
		})
	}
}

func TestNewRepositoryMemoryOnly(t *testing.T) {
	log.SetOutput(io.Discard)

	latest := &memory.Connector{}
	repo, err := newRepository(config.Settings{Filter: config.FilterSettings{Zero: true}}, latest)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Save(&its.Position{IMEI: "868728036963038"}))
	_, ok := latest.Latest("868728036963038")
	assert.False(t, ok, "нулевые координаты отброшены фильтром")

	require.NoError(t, repo.Save(&its.Position{IMEI: "868728036963038", Latitude: 55.75, Longitude: 37.61}))
	_, ok = latest.Latest("868728036963038")
	assert.True(t, ok)
}

func TestNewRegistryStatic(t *testing.T) {
	registry, err := newRegistry(config.Settings{
		Sessions: config.SessionSettings{Devices: map[string]int64{"868728036963038": 7}},
	})
	require.NoError(t, err)
	defer registry.Shutdown()

	s, ok := registry.ResolveSession(nil, "868728036963038")
	if assert.True(t, ok) {
		assert.Equal(t, int64(7), s.DeviceID)
	}
	_, ok = registry.ResolveSession(nil, "000000000000000")
	assert.False(t, ok)
}
