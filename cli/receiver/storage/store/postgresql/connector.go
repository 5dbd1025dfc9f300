package postgresql

/*
Настройки, которые могут (а не которые – должны) быть в конфиге для подключения хранилища:

host = "localhost"
port = "5432"
user = "postgres"
password = "postgres"
database = "receiver"
table = "positions"
sslmode = "disable"
payload_field_name = "payload"
format = "json"
*/

import (
	"database/sql"
	"fmt"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

type Connector struct {
	connection  *sql.DB
	config      map[string]string
	encode      codec.Encoder
	insertQuery string
}

func (c *Connector) Init(cfg map[string]string) error {
	var (
		err error
	)
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	if c.encode, err = codec.New(c.config["format"]); err != nil {
		return err
	}

	table := c.config["table"]
	if table == "" {
		table = "positions"
	}
	payloadFieldName := c.config["payload_field_name"]
	if payloadFieldName == "" {
		log.Warnf("Ключ 'payload_field_name' не найден в конфигурации хранилища. Используется значение по умолчанию 'payload'.")
		payloadFieldName = "payload"
	}
	c.insertQuery = fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1)", table, payloadFieldName)

	connStr := fmt.Sprintf("dbname=%s host=%s port=%s user=%s password=%s sslmode=%s",
		c.config["database"], c.config["host"], c.config["port"], c.config["user"], c.config["password"], c.config["sslmode"])
	if c.connection, err = sql.Open("postgres", connStr); err != nil {
		return fmt.Errorf("ошибка подключения к PostgreSQL: %v", err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("PostgreSQL недоступен: %v", err)
	}
	return err
}

func (c *Connector) Save(msg codec.Message) error {
	if msg == nil {
		return fmt.Errorf("некорректная ссылка на запись")
	}

	innerPkg, err := c.encode(msg)
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %v", err)
	}

	if _, err = c.connection.Exec(c.insertQuery, innerPkg); err != nil {
		return fmt.Errorf("не удалось вставить запись: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.connection.Close()
}
