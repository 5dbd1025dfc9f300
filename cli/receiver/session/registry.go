package session

import (
	"fmt"
	"net"
	"sync"

	"github.com/daniil11ru/its/libs/its"
	cron "github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Source внешний справочник устройств: IMEI -> идентификатор
type Source interface {
	GetDevices() (map[string]int64, error)
}

// Registry сопоставляет IMEI с устройствами. Безопасен для конкурентного
// использования из обработчиков соединений.
type Registry struct {
	AutoRegister bool

	mu      sync.RWMutex
	static  map[string]int64
	devices map[string]int64
	nextID  int64

	source        Source
	cronScheduler *cron.Cron
}

func NewRegistry(static map[string]int64, autoRegister bool) *Registry {
	r := &Registry{
		AutoRegister: autoRegister,
		static:       make(map[string]int64, len(static)),
		devices:      make(map[string]int64, len(static)),
	}
	for imei, id := range static {
		r.static[imei] = id
		r.devices[imei] = id
	}
	r.updateNextID()
	return r
}

func (r *Registry) updateNextID() {
	for _, id := range r.devices {
		if id >= r.nextID {
			r.nextID = id + 1
		}
	}
	if r.nextID == 0 {
		r.nextID = 1
	}
}

// ResolveSession реализует its.SessionResolver
func (r *Registry) ResolveSession(remote net.Addr, imei string) (its.DeviceSession, bool) {
	r.mu.RLock()
	id, ok := r.devices[imei]
	r.mu.RUnlock()
	if ok {
		return its.DeviceSession{DeviceID: id, IMEI: imei}, true
	}

	if !r.AutoRegister {
		log.WithFields(log.Fields{"ip": remote, "imei": imei}).Warn("Неизвестное устройство")
		return its.DeviceSession{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.devices[imei]; ok {
		return its.DeviceSession{DeviceID: id, IMEI: imei}, true
	}
	id = r.nextID
	r.nextID++
	r.devices[imei] = id
	log.WithFields(log.Fields{"ip": remote, "imei": imei, "id": id}).Info("Зарегистрировано новое устройство")
	return its.DeviceSession{DeviceID: id, IMEI: imei}, true
}

// Reload перечитывает устройства из источника. Статические устройства из
// конфига имеют приоритет.
func (r *Registry) Reload() error {
	if r.source == nil {
		return nil
	}

	loaded, err := r.source.GetDevices()
	if err != nil {
		return fmt.Errorf("не удалось получить список устройств: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	devices := make(map[string]int64, len(loaded)+len(r.static))
	for imei, id := range loaded {
		devices[imei] = id
	}
	for imei, id := range r.static {
		devices[imei] = id
	}
	if r.AutoRegister {
		for imei, id := range r.devices {
			if _, ok := devices[imei]; !ok {
				devices[imei] = id
			}
		}
	}
	r.devices = devices
	r.updateNextID()

	log.Infof("Загружено устройств: %d", len(devices))
	return nil
}

// Initialize подключает источник и, если задано расписание, планирует его
// периодическое перечитывание
func (r *Registry) Initialize(source Source, cronExpression string) error {
	r.source = source
	if err := r.Reload(); err != nil {
		return err
	}

	if cronExpression == "" || source == nil {
		return nil
	}

	r.cronScheduler = cron.New()
	_, err := r.cronScheduler.AddFunc(cronExpression, func() {
		log.Info("Запуск запланированного обновления списка устройств")
		if err := r.Reload(); err != nil {
			log.Errorf("Ошибка обновления списка устройств: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке cron-задачи: %w", err)
	}

	r.cronScheduler.Start()
	log.Infof("Запланировано обновление списка устройств: %s", cronExpression)
	return nil
}

func (r *Registry) Shutdown() {
	if r.cronScheduler != nil {
		r.cronScheduler.Stop()
		log.Info("Cron-планировщик остановлен")
	}
}
