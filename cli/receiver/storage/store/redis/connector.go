package redis

/*
Плагин публикует записи в канал Redis.

Настройки хранилища в конфиге:

host = "localhost"
port = "6379"
password = ""
db = "0"
channel = "positions"
format = "json"
*/

import (
	"context"
	"fmt"
	"strconv"

	"github.com/daniil11ru/its/cli/receiver/storage/codec"
	"github.com/go-redis/redis/v8"
)

type Connector struct {
	client  *redis.Client
	config  map[string]string
	encode  codec.Encoder
	channel string
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

	db := 0
	if v := c.config["db"]; v != "" {
		if db, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("не удалось получить номер базы Redis: %v", err)
		}
	}

	c.channel = c.config["channel"]
	if c.channel == "" {
		c.channel = "positions"
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", c.config["host"], c.config["port"]),
		Password: c.config["password"],
		DB:       db,
	})

	if err = c.client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("Redis недоступен: %v", err)
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

	if err = c.client.Publish(context.Background(), c.channel, innerPkg).Err(); err != nil {
		return fmt.Errorf("не удалось опубликовать запись: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.client.Close()
}
