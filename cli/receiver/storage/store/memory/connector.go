package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/daniil11ru/its/libs/its"
)

// Connector хранит последнюю позицию каждого устройства в памяти
type Connector struct {
	mu     sync.RWMutex
	latest map[string]its.Position
}

func (c *Connector) Init(map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest = make(map[string]its.Position)
	return nil
}

// Save запоминает позицию, если она не старше уже сохранённой
func (c *Connector) Save(msg codec.Message) error {
	p, ok := msg.(*its.Position)
	if !ok || p == nil {
		return fmt.Errorf("неподдерживаемый тип записи: %T", msg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest == nil {
		c.latest = make(map[string]its.Position)
	}
	if prev, ok := c.latest[p.IMEI]; ok && prev.DeviceTime.After(p.DeviceTime) {
		return nil
	}
	c.latest[p.IMEI] = *p
	return nil
}

// Latest последняя позиция устройства
func (c *Connector) Latest(imei string) (its.Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.latest[imei]
	return p, ok
}

// All последние позиции всех устройств, упорядоченные по IMEI
func (c *Connector) All() []its.Position {
	c.mu.RLock()
	defer c.mu.RUnlock()

	positions := make([]its.Position, 0, len(c.latest))
	for _, p := range c.latest {
		positions = append(positions, p)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].IMEI < positions[j].IMEI })
	return positions
}

func (c *Connector) Close() error {
	return nil
}
