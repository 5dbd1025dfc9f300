package storage

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/daniil11ru/its/cli/receiver/filter"
	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/daniil11ru/its/libs/its"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// mockSaver implements the Saver interface for testing.
type mockSaver struct {
	mu     sync.Mutex
	saved  []codec.Message
	err    error
	closed bool
}

func (ms *mockSaver) Save(data codec.Message) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.saved = append(ms.saved, data)
	return ms.err
}

func (ms *mockSaver) Init(map[string]string) error { return nil }

func (ms *mockSaver) Close() error {
	ms.closed = true
	return nil
}

func (ms *mockSaver) count() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.saved)
}

func TestRepositorySaveFilter(t *testing.T) {
	log.SetOutput(io.Discard)

	tests := []struct {
		name       string
		filter     *filter.Filter
		position   its.Position
		expectSave bool
	}{
		{
			name:       "no filter",
			position:   its.Position{IMEI: "1"},
			expectSave: true,
		},
		{
			name:       "invalid dropped",
			filter:     &filter.Filter{Invalid: true},
			position:   its.Position{IMEI: "1", Latitude: 1, Longitude: 1},
			expectSave: false,
		},
		{
			name:       "valid passes",
			filter:     &filter.Filter{Invalid: true, Zero: true},
			position:   its.Position{IMEI: "1", Valid: true, Latitude: 1, Longitude: 1},
			expectSave: true,
		},
		{
			name:       "archive dropped",
			filter:     &filter.Filter{Archive: true},
			position:   its.Position{IMEI: "1", Archive: true, DeviceTime: time.Now()},
			expectSave: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saver := &mockSaver{}
			repo := NewRepository(tt.filter)
			repo.AddStore(saver)

			p := tt.position
			err := repo.Save(&p)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectSave, saver.count() == 1)
		})
	}
}

func TestRepositorySaveErrors(t *testing.T) {
	log.SetOutput(io.Discard)

	failing := &mockSaver{err: errors.New("недоступно")}
	ok := &mockSaver{}

	repo := NewRepository(nil)
	repo.AddStore(failing)
	repo.AddStore(ok)

	err := repo.Save(&its.Position{IMEI: "1"})
	assert.Error(t, err)
	assert.Equal(t, 1, ok.count(), "ошибка одного хранилища не мешает остальным")

	repo.Close()
	assert.True(t, failing.closed)
	assert.True(t, ok.closed)
}

func TestLoadStoragesErrors(t *testing.T) {
	repo := NewRepository(nil)
	assert.Equal(t, ErrInvalidStorage, repo.LoadStorages(nil))
	assert.Equal(t, ErrUnknownStorage, repo.LoadStorages(map[string]map[string]string{"kafka": {}}))
}

func TestAsyncRepository(t *testing.T) {
	log.SetOutput(io.Discard)

	saver := &mockSaver{}
	repo := NewRepository(nil)
	repo.AddStore(saver)

	async := NewAsyncRepository(repo, 8, 2)
	for i := 0; i < 20; i++ {
		assert.NoError(t, async.Save(&its.Position{IMEI: "1"}))
	}
	async.Close()

	assert.Equal(t, 20, saver.count())
	assert.ErrorIs(t, async.Save(&its.Position{IMEI: "1"}), ErrRepositoryClosed)

	async.Close()
}
