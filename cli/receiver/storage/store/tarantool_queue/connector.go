package tarantool_queue

/*
Плагин для работы с Tarantool queue.

Раздел настроек, которые должны отвечають в конфиге для подключения хранилища:

host = "localhost"
port = "3301"
user = "user"
password = "pass"
max_recons = 5
timeout = 1
reconnect = 1
queue = "positions"
format = "msgpack"
*/

import (
	"fmt"
	"strconv"
	"time"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/tarantool/go-tarantool"
	"github.com/tarantool/go-tarantool/queue"
)

type Connector struct {
	connection *tarantool.Connection
	queue      queue.Queue
	config     map[string]string
	encode     codec.Encoder
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}

	c.config = cfg
	conStr := fmt.Sprintf("%s:%s", c.config["host"], c.config["port"])

	encode, err := codec.New(c.config["format"])
	if err != nil {
		return err
	}
	c.encode = encode

	maxRecons, err := strconv.Atoi(c.config["max_recons"])
	if err != nil {
		return fmt.Errorf("не удалось получить MaxReconnects: %v", err)
	}
	timeout, err := strconv.Atoi(c.config["timeout"])
	if err != nil {
		return fmt.Errorf("не удалось получить timeout: %v", err)
	}
	reconnect, err := strconv.Atoi(c.config["reconnect"])
	if err != nil {
		return fmt.Errorf("не удалось получить reconnect: %v", err)
	}
	opts := tarantool.Opts{
		Timeout:       time.Duration(timeout) * time.Second,
		Reconnect:     time.Duration(reconnect) * time.Second,
		MaxReconnects: uint(maxRecons),
		User:          c.config["user"],
		Pass:          c.config["password"],
	}

	c.connection, err = tarantool.Connect(conStr, opts)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к Tarantool: %v", err)
	}
	c.queue = queue.New(c.connection, c.config["queue"])

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

	_, err = c.queue.Put(innerPkg)
	if err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.connection.Close()
}
