package rabbitmq

/*
Плагин публикует записи в обменник RabbitMQ.

Настройки хранилища в конфиге:

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "receiver"
exchange_type = "topic"
key = "positions"
format = "json"
*/

import (
	"fmt"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/streadway/amqp"
)

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	config     map[string]string
	encode     codec.Encoder
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

	exchangeType := c.config["exchange_type"]
	if exchangeType == "" {
		exchangeType = "topic"
	}

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", c.config["user"], c.config["password"], c.config["host"], c.config["port"])
	if c.connection, err = amqp.Dial(url); err != nil {
		return fmt.Errorf("не удалось подключиться к RabbitMQ: %v", err)
	}

	if c.channel, err = c.connection.Channel(); err != nil {
		return fmt.Errorf("не удалось открыть канал RabbitMQ: %v", err)
	}

	if err = c.channel.ExchangeDeclare(c.config["exchange"], exchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("не удалось объявить обменник: %v", err)
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

	contentType := "application/json"
	if f := c.config["format"]; f != "" && f != codec.FormatJSON {
		contentType = "application/x-" + f
	}

	err = c.channel.Publish(c.config["exchange"], c.config["key"], false, false, amqp.Publishing{
		ContentType: contentType,
		Body:        innerPkg,
	})
	if err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}
