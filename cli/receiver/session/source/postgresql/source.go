package postgresql

/*
Справочник устройств в PostgreSQL.

Настройки в конфиге (sessions.source):

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "receiver"
sslmode = "disable"
*/

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Device struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	IMEI string `gorm:"column:imei"`
	Name string `gorm:"column:name"`
}

func (Device) TableName() string {
	return "devices"
}

type Source struct {
	db *gorm.DB
}

func New(cfg map[string]string) (*Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("некорректная ссылка на конфигурацию")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg["host"], cfg["user"], cfg["password"], cfg["database"], cfg["port"], cfg["sslmode"])
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	return &Source{db: db}, nil
}

// GetDevices возвращает все устройства: IMEI -> идентификатор
func (s *Source) GetDevices() (map[string]int64, error) {
	var devices []Device
	if err := s.db.Select("id", "imei").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("не удалось получить устройства: %w", err)
	}

	result := make(map[string]int64, len(devices))
	for _, d := range devices {
		result[d.IMEI] = d.ID
	}
	return result, nil
}

func (s *Source) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
