package mysql

/*
Настройки, которые могут быть в конфиге для подключения хранилища:

host = "localhost"
port = "3306"
user = "root"
password = "root"
database = "receiver"
table = "positions"
payload_field_name = "payload"
format = "json"
*/

import (
	"database/sql"
	"fmt"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	_ "github.com/go-sql-driver/mysql"
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
		payloadFieldName = "payload"
	}
	c.insertQuery = fmt.Sprintf("INSERT INTO %s (%s) VALUES (?)", table, payloadFieldName)

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		c.config["user"], c.config["password"], c.config["host"], c.config["port"], c.config["database"])
	if c.connection, err = sql.Open("mysql", dsn); err != nil {
		return fmt.Errorf("ошибка подключения к MySQL: %v", err)
	}

	if err = c.connection.Ping(); err != nil {
		return fmt.Errorf("MySQL недоступен: %v", err)
	}
	return nil
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
