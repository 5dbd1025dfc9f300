package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/daniil11ru/its/cli/receiver/api"
	"github.com/daniil11ru/its/cli/receiver/config"
	"github.com/daniil11ru/its/cli/receiver/filter"
	"github.com/daniil11ru/its/cli/receiver/server"
	"github.com/daniil11ru/its/cli/receiver/session"
	"github.com/daniil11ru/its/cli/receiver/session/source/postgresql"
	"github.com/daniil11ru/its/cli/receiver/storage"
	"github.com/daniil11ru/its/cli/receiver/storage/store/memory"
	"github.com/daniil11ru/its/libs/its"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "путь до конфига")
	flag.Parse()

	cfg, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Не удалось получить конфиг: %v", err)
	}

	configureLogging(cfg)

	if err := applyMigrations(cfg); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		log.Fatalf("Не удалось инициализировать список устройств: %v", err)
	}
	defer registry.Shutdown()

	latest := &memory.Connector{}
	repo, err := newRepository(cfg, latest)
	if err != nil {
		log.Fatalf("Не удалось подключить хранилища: %v", err)
	}
	defer repo.Close()

	queue := storage.NewAsyncRepository(repo, cfg.QueueBuffer, cfg.QueueWorkers)
	defer queue.Close()

	srv := server.New(cfg.GetListenAddress(), cfg.GetEmptyConnTTL(), cfg.IPWhiteList, its.NewDecoder(registry), queue)
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Не удалось запустить сервер на %s: %v", cfg.GetListenAddress(), err)
		}
	}()

	go runApi(latest, cfg)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Получен сигнал завершения, останавливаем приемник")
	if err := srv.Stop(); err != nil {
		log.Warnf("Ошибка остановки сервера: %v", err)
	}
}

func getConfig(configFilePath string) (config.Settings, error) {
	if configFilePath == "" {
		return config.Settings{}, errors.New("не задан путь до конфига")
	}

	c, err := config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}
	return c, nil
}

func newLogFileWriter(cfg config.Settings) (*lumberjack.Logger, error) {
	logDir := filepath.Dir(cfg.LogFilePath)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("не получилось создать директорию для логов: %w", err)
		}
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    100,
		MaxBackups: 366,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}, nil
}

func configureLogging(cfg config.Settings) {
	log.SetLevel(cfg.GetLogLevel())
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: false})
	log.SetOutput(os.Stdout)

	if cfg.LogFilePath == "" {
		return
	}

	writer, err := newLogFileWriter(cfg)
	if err != nil {
		log.Fatal(err)
	}

	hook := lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: writer,
		log.FatalLevel: writer,
		log.ErrorLevel: writer,
		log.WarnLevel:  writer,
		log.InfoLevel:  writer,
		log.DebugLevel: writer,
		log.TraceLevel: writer,
	}, &log.TextFormatter{DisableColors: true, FullTimestamp: true})
	log.AddHook(hook)
}

func newRegistry(cfg config.Settings) (*session.Registry, error) {
	registry := session.NewRegistry(cfg.Sessions.Devices, cfg.Sessions.AutoRegister)
	if len(cfg.Sessions.Source) == 0 {
		return registry, nil
	}

	source, err := postgresql.New(cfg.Sessions.Source)
	if err != nil {
		return nil, err
	}
	if err := registry.Initialize(source, cfg.Sessions.RefreshCron); err != nil {
		return nil, err
	}
	return registry, nil
}

func newRepository(cfg config.Settings, latest *memory.Connector) (*storage.Repository, error) {
	repo := storage.NewRepository(&filter.Filter{
		Invalid:        cfg.Filter.Invalid,
		Zero:           cfg.Filter.Zero,
		Archive:        cfg.Filter.Archive,
		Future:         cfg.GetFutureLimit(),
		DistanceMeters: float64(cfg.Filter.DistanceMeters),
	})

	if err := latest.Init(nil); err != nil {
		return nil, err
	}
	repo.AddStore(latest)

	if len(cfg.Store) == 0 {
		log.Warn("Внешние хранилища не настроены, позиции доступны только через API")
		return repo, nil
	}
	if err := repo.LoadStorages(cfg.Store); err != nil {
		return nil, err
	}
	return repo, nil
}

func runApi(positions api.PositionReader, cfg config.Settings) {
	controller := api.NewController(api.NewHandler(positions), cfg.ApiKeys)

	log.Infof("Запуск API на порту %d", cfg.ApiPort)
	if err := controller.Run(cfg.ApiPort); err != nil {
		log.Fatal(err)
	}
}

func applyMigrations(cfg config.Settings) error {
	pg, ok := cfg.Store["postgresql"]
	if cfg.MigrationsPath == "" || !ok {
		return nil
	}

	databaseUrl := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		pg["user"], pg["password"], pg["host"], pg["port"], pg["database"], pg["sslmode"])

	m, err := migrate.New(cfg.MigrationsPath, databaseUrl)
	if err != nil {
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Нет новых миграций для применения")
			return nil
		}
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	log.Info("Миграции успешно применены")
	return nil
}
