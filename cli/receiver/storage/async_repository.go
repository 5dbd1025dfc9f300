package storage

import (
	"errors"
	"runtime"
	"sync"

	"github.com/daniil11ru/its/libs/its"
	log "github.com/sirupsen/logrus"
)

var ErrRepositoryClosed = errors.New("асинхронный репозиторий был закрыт")

// AsyncRepository очередь перед Repository, чтобы запись в хранилища
// не задерживала чтение из соединений
type AsyncRepository struct {
	repo   *Repository
	ch     chan *its.Position
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewAsyncRepository(repo *Repository, buffer, workers int) *AsyncRepository {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ar := &AsyncRepository{
		repo: repo,
		ch:   make(chan *its.Position, buffer),
	}
	for i := 0; i < workers; i++ {
		ar.wg.Add(1)
		go ar.worker()
	}
	return ar
}

func (a *AsyncRepository) worker() {
	defer a.wg.Done()
	for msg := range a.ch {
		if err := a.repo.Save(msg); err != nil {
			log.WithField("err", err).Error("Ошибка сохранения телеметрии")
		}
	}
}

func (a *AsyncRepository) Save(p *its.Position) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrRepositoryClosed
	}
	a.ch <- p
	return nil
}

// Close дожидается записи уже принятых позиций
func (a *AsyncRepository) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.ch)
	}
	a.mu.Unlock()
	a.wg.Wait()
}
