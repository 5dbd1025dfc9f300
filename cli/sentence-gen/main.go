package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/daniil11ru/its/libs/its"
)

/*
Генератор сообщений ITS.

Собирает сообщение из параметров, отправляет его на приемник и печатает ответ.

Usage:
  -imei string
    	IMEI терминала, 15 цифр (обязательно)
  -form string
    	Форма сообщения: rich, simple, emergency (default "rich")
  -time string
    	Метка времени в формате RFC 3339, по умолчанию текущее время
  -lat float
    	Широта
  -lon float
    	Долгота
  -speed float
    	Скорость, км/ч
  -handshake
    	Отправить приветствие перед сообщением
  -server string
    	Адрес приемника в формате <ip>:<port> (default "localhost:5020")
  -timeout int
    	Время ожидания ответа в секундах (default 5)

Example

```
./sentence-gen -imei 868728036963038 -lat 55.75 -lon 37.61 -speed 36 -handshake
```
*/

func main() {
	p := Params{}
	ts := ""
	server := ""
	ackTimeout := 0
	handshake := false

	flag.StringVar(&p.IMEI, "imei", "", "IMEI терминала, 15 цифр (обязательно)")
	flag.StringVar(&p.Form, "form", FormRich, "Форма сообщения: rich, simple, emergency")
	flag.StringVar(&p.Registration, "reg", "", "Регистрационный номер ТС")
	flag.StringVar(&p.Status, "status", "NR", "Код статуса из двух символов")
	flag.StringVar(&ts, "time", "", "Метка времени в формате RFC 3339")
	flag.Float64Var(&p.Latitude, "lat", 0, "Широта")
	flag.Float64Var(&p.Longitude, "lon", 0, "Долгота")
	flag.Float64Var(&p.SpeedKph, "speed", 0, "Скорость, км/ч")
	flag.Float64Var(&p.Course, "course", 0, "Курс, градусы")
	flag.Float64Var(&p.Altitude, "alt", 0, "Высота, м")
	flag.IntVar(&p.Satellites, "sat", 8, "Число спутников")
	flag.BoolVar(&p.Ignition, "ignition", false, "Зажигание включено")
	flag.BoolVar(&handshake, "handshake", false, "Отправить приветствие перед сообщением")
	flag.StringVar(&server, "server", "localhost:5020", "Адрес приемника в формате <ip>:<port>")
	flag.IntVar(&ackTimeout, "timeout", 5, "Время ожидания ответа в секундах")

	flag.Parse()

	if p.IMEI == "" {
		fmt.Println("Требуется IMEI, смотрите помощь (-h)")
		os.Exit(1)
	}

	p.Time = time.Now().UTC()
	if ts != "" {
		timestamp, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			fmt.Println("Ошибка парсинга метки времени: ", err)
			os.Exit(1)
		}
		p.Time = timestamp
	}

	sentence, err := Build(p)
	if err != nil {
		fmt.Println("Ошибка формирования сообщения: ", err)
		os.Exit(1)
	}

	conn, err := net.DialTimeout("tcp", server, time.Duration(ackTimeout)*time.Second)
	if err != nil {
		fmt.Println("Ошибка соединения: ", err)
		os.Exit(1)
	}
	defer conn.Close()

	timeout := time.Duration(ackTimeout) * time.Second
	if handshake {
		greeting := its.HandshakePrefix + p.IMEI + "*"
		if err := send(conn, greeting, timeout); err != nil {
			fmt.Println("Ошибка приветствия: ", err)
			os.Exit(1)
		}
	}

	if err := send(conn, sentence, timeout); err != nil {
		fmt.Println("Ошибка отправки сообщения: ", err)
		os.Exit(1)
	}
}

// send пишет сообщение и печатает ответ, если он пришел до истечения таймаута.
// Приемник отвечает только на сообщения, начинающиеся с its.HandshakePrefix.
func send(conn net.Conn, sentence string, timeout time.Duration) error {
	fmt.Println("Отправлено: ", sentence)
	if _, err := io.WriteString(conn, sentence); err != nil {
		return err
	}
	if !its.IsHandshake(sentence) {
		return nil
	}

	buf := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("ошибка чтения с сервера: %w", err)
	}
	fmt.Println("Получен ответ: ", string(buf[:n]))
	return nil
}
