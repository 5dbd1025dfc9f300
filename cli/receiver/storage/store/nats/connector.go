package nats

/*
Плагин публикует записи в NATS.

Настройки хранилища в конфиге:

servers = "nats://localhost:4222"
subject = "positions"
format = "json"
*/

import (
	"fmt"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/nats-io/nats.go"
)

type Connector struct {
	connection *nats.Conn
	config     map[string]string
	encode     codec.Encoder
	subject    string
}

func (c *Connector) Init(cfg map[string]string) error {
	var err error
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	if c.encode, err = codec.New(c.config["format"]); err != nil {
		return err
	}

	c.subject = c.config["subject"]
	if c.subject == "" {
		c.subject = "positions"
	}

	servers := c.config["servers"]
	if servers == "" {
		servers = nats.DefaultURL
	}

	if c.connection, err = nats.Connect(servers, nats.Name("its-receiver")); err != nil {
		return fmt.Errorf("не удалось подключиться к NATS: %v", err)
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

	if err = c.connection.Publish(c.subject, innerPkg); err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if err := c.connection.Drain(); err != nil {
		c.connection.Close()
		return err
	}
	return nil
}
