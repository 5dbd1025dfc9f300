package config

/*
Описание конфигурационного файла

host: "0.0.0.0"
port: "5020"
conn_ttl: 60
log_level: "INFO"
log_file_path: "logs/receiver.log"
log_max_age_days: 30
api_port: 8080
api_keys: ["secret"]
ip_white_list: ["10.*", "192.168.1.15"]
migrations_path: "file://migrations"
queue_buffer: 1024
queue_workers: 4

sessions:
  auto_register: false
  refresh_cron: "0 3 * * *"
  devices:
    "868728036963038": 1
  source:
    host: "localhost"
    ...

filter:
  invalid: true
  zero: true
  archive: false
  future_seconds: 86400
  distance_meters: 0

storage:
  postgresql:
    host: "localhost"
    ...
*/

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

type SessionSettings struct {
	AutoRegister bool              `yaml:"auto_register"`
	RefreshCron  string            `yaml:"refresh_cron"`
	Devices      map[string]int64  `yaml:"devices"`
	Source       map[string]string `yaml:"source"`
}

type FilterSettings struct {
	Invalid        bool `yaml:"invalid"`
	Zero           bool `yaml:"zero"`
	Archive        bool `yaml:"archive"`
	FutureSeconds  int  `yaml:"future_seconds"`
	DistanceMeters int  `yaml:"distance_meters"`
}

type Settings struct {
	Host           string                       `yaml:"host"`
	Port           string                       `yaml:"port"`
	ConnTTL        int                          `yaml:"conn_ttl"`
	LogLevel       string                       `yaml:"log_level"`
	LogFilePath    string                       `yaml:"log_file_path"`
	LogMaxAgeDays  int                          `yaml:"log_max_age_days"`
	ApiPort        int                          `yaml:"api_port"`
	ApiKeys        []string                     `yaml:"api_keys"`
	IPWhiteList    []string                     `yaml:"ip_white_list"`
	MigrationsPath string                       `yaml:"migrations_path"`
	QueueBuffer    int                          `yaml:"queue_buffer"`
	QueueWorkers   int                          `yaml:"queue_workers"`
	Sessions       SessionSettings              `yaml:"sessions"`
	Filter         FilterSettings               `yaml:"filter"`
	Store          map[string]map[string]string `yaml:"storage"`
}

func (s *Settings) GetEmptyConnTTL() time.Duration {
	return time.Duration(s.ConnTTL) * time.Second
}

func (s *Settings) GetListenAddress() string {
	return s.Host + ":" + s.Port
}

func (s *Settings) GetFutureLimit() time.Duration {
	return time.Duration(s.Filter.FutureSeconds) * time.Second
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, fmt.Errorf("ошибка разбора YAML: %w", err)
	}

	if c.Port == "" {
		c.Port = "5020"
	}

	if c.ApiPort == 0 {
		c.ApiPort = 8080
	}

	if c.QueueBuffer <= 0 {
		c.QueueBuffer = 1024
	}

	if c.Filter.FutureSeconds < 0 || c.Filter.DistanceMeters < 0 {
		log.Errorf("Отрицательные значения фильтра (future_seconds=%d, distance_meters=%d) недопустимы, фильтры отключены",
			c.Filter.FutureSeconds, c.Filter.DistanceMeters)
		c.Filter.FutureSeconds = 0
		c.Filter.DistanceMeters = 0
	}

	return c, nil
}
