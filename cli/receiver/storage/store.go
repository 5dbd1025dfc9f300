package storage

import (
	"errors"

	"github.com/daniil11ru/its/cli/receiver/filter"
	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/daniil11ru/its/cli/receiver/storage/store/mysql"
	"github.com/daniil11ru/its/cli/receiver/storage/store/nats"
	"github.com/daniil11ru/its/cli/receiver/storage/store/postgresql"
	"github.com/daniil11ru/its/cli/receiver/storage/store/rabbitmq"
	"github.com/daniil11ru/its/cli/receiver/storage/store/redis"
	"github.com/daniil11ru/its/cli/receiver/storage/store/tarantool_queue"
	"github.com/daniil11ru/its/libs/its"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidStorage = errors.New("storage not found")
var ErrUnknownStorage = errors.New("storage isn't support yet")

type Store interface {
	Connector
	Saver
}

// Saver интерфейс для подключения внешних хранилищ
type Saver interface {
	// Save сохранение в хранилище
	Save(codec.Message) error
}

// Connector интерфейс для подключения внешних хранилищ
type Connector interface {
	// Init установка соединения с хранилищем
	Init(map[string]string) error

	// Close закрытие соединения с хранилищем
	Close() error
}

// Repository набор выходных хранилищ
type Repository struct {
	storages []Saver
	closers  []Connector
	filter   *filter.Filter
}

// AddStore добавляет хранилище для сохранения данных
func (r *Repository) AddStore(s Saver) {
	r.storages = append(r.storages, s)
	if c, ok := s.(Connector); ok {
		r.closers = append(r.closers, c)
	}
}

// Save сохраняет позицию во все установленные хранилища, если её пропускает фильтр
func (r *Repository) Save(p *its.Position) error {
	if r.filter != nil {
		if reason, ok := r.filter.Accept(p); !ok {
			log.WithFields(log.Fields{"imei": p.IMEI, "reason": reason}).Debug("Позиция отброшена фильтром")
			return nil
		}
	}

	var errs []error
	for _, store := range r.storages {
		if err := store.Save(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadStorages загружает хранилища из структуры конфига
func (r *Repository) LoadStorages(storages map[string]map[string]string) error {
	if len(storages) == 0 {
		return ErrInvalidStorage
	}

	var db Store
	for store, params := range storages {
		switch store {
		case "rabbitmq":
			db = &rabbitmq.Connector{}
		case "postgresql":
			db = &postgresql.Connector{}
		case "nats":
			db = &nats.Connector{}
		case "tarantool_queue":
			db = &tarantool_queue.Connector{}
		case "redis":
			db = &redis.Connector{}
		case "mysql":
			db = &mysql.Connector{}
		default:
			return ErrUnknownStorage
		}

		if err := db.Init(params); err != nil {
			return err
		}

		log.WithField("storage", store).Info("Подключено хранилище")
		r.AddStore(db)
	}
	return nil
}

// Close закрывает соединения со всеми хранилищами
func (r *Repository) Close() {
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			log.WithField("err", err).Warn("Ошибка закрытия хранилища")
		}
	}
}

// NewRepository создает пустой репозиторий
func NewRepository(f *filter.Filter) *Repository {
	return &Repository{filter: f}
}
