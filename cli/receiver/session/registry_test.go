package session

import (
	"errors"
	"io"
	"net"
	"sync"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	devices map[string]int64
	err     error
}

func (m *mockSource) GetDevices() (map[string]int64, error) {
	return m.devices, m.err
}

var remote = &net.TCPAddr{IP: net.IPv4(10, 0, 0, 1), Port: 40000}

func TestResolveStatic(t *testing.T) {
	log.SetOutput(io.Discard)

	r := NewRegistry(map[string]int64{"868728036963038": 7}, false)

	s, ok := r.ResolveSession(remote, "868728036963038")
	require.True(t, ok)
	assert.Equal(t, int64(7), s.DeviceID)
	assert.Equal(t, "868728036963038", s.IMEI)

	_, ok = r.ResolveSession(remote, "862262043290093")
	assert.False(t, ok)
}

func TestResolveAutoRegister(t *testing.T) {
	log.SetOutput(io.Discard)

	r := NewRegistry(map[string]int64{"868728036963038": 7}, true)

	first, ok := r.ResolveSession(remote, "862262043290093")
	require.True(t, ok)
	assert.Equal(t, int64(8), first.DeviceID)

	again, ok := r.ResolveSession(remote, "862262043290093")
	require.True(t, ok)
	assert.Equal(t, first, again)

	var wg sync.WaitGroup
	ids := make([]int64, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _ := r.ResolveSession(remote, "861359037496725")
			ids[i] = s.DeviceID
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestInitializeFromSource(t *testing.T) {
	log.SetOutput(io.Discard)

	src := &mockSource{devices: map[string]int64{
		"862262043290093": 20,
		"868728036963038": 21,
	}}
	r := NewRegistry(map[string]int64{"868728036963038": 7}, false)
	require.NoError(t, r.Initialize(src, ""))
	defer r.Shutdown()

	s, ok := r.ResolveSession(remote, "862262043290093")
	require.True(t, ok)
	assert.Equal(t, int64(20), s.DeviceID)

	s, ok = r.ResolveSession(remote, "868728036963038")
	require.True(t, ok)
	assert.Equal(t, int64(7), s.DeviceID, "устройство из конфига важнее источника")

	src.devices = map[string]int64{}
	require.NoError(t, r.Reload())
	_, ok = r.ResolveSession(remote, "862262043290093")
	assert.False(t, ok)
}

func TestInitializeErrors(t *testing.T) {
	log.SetOutput(io.Discard)

	r := NewRegistry(nil, false)
	assert.Error(t, r.Initialize(&mockSource{err: errors.New("нет соединения")}, ""))

	r = NewRegistry(nil, false)
	assert.Error(t, r.Initialize(&mockSource{devices: map[string]int64{}}, "not a cron"))

	r = NewRegistry(nil, false)
	require.NoError(t, r.Initialize(&mockSource{devices: map[string]int64{}}, "0 3 * * *"))
	r.Shutdown()
}
