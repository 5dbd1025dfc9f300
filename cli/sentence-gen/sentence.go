package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/daniil11ru/its/libs/its"
)

const (
	FormRich      = "rich"
	FormSimple    = "simple"
	FormEmergency = "emergency"
)

// Params значения полей генерируемого сообщения
type Params struct {
	Form         string
	IMEI         string
	Registration string
	Status       string
	Time         time.Time
	Latitude     float64
	Longitude    float64
	SpeedKph     float64
	Course       float64
	Altitude     float64
	Satellites   int
	Ignition     bool
}

func hemisphere(value float64, positive, negative string) (string, string) {
	h := positive
	if value < 0 {
		h = negative
	}
	return fmt.Sprintf("%.6f", math.Abs(value)), h
}

func flag01(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Build собирает сообщение заданной формы. Результат всегда разбирается its.Match.
func Build(p Params) (string, error) {
	if len(p.IMEI) != 15 || strings.Trim(p.IMEI, "0123456789") != "" {
		return "", fmt.Errorf("IMEI должен состоять из 15 цифр: %q", p.IMEI)
	}
	if math.Abs(p.Latitude) > 90 || math.Abs(p.Longitude) > 180 {
		return "", fmt.Errorf("координаты вне допустимого диапазона: %f, %f", p.Latitude, p.Longitude)
	}
	if p.SpeedKph < 0 || p.Course < 0 || p.Satellites < 0 {
		return "", fmt.Errorf("скорость, курс и число спутников не могут быть отрицательными")
	}

	registration := p.Registration
	if registration == "" {
		registration = "UNKNOWN"
	}

	t := p.Time.UTC()
	lat, latHem := hemisphere(p.Latitude, "N", "S")
	lon, lonHem := hemisphere(p.Longitude, "E", "W")
	date := t.Format("02012006")
	clock := t.Format("150405")

	status := p.Status
	if len(status) != 2 {
		status = "NR"
	}

	switch p.Form {
	case FormRich, "":
		if p.Altitude < 0 {
			return "", fmt.Errorf("полная форма не поддерживает отрицательную высоту: %.1f", p.Altitude)
		}
		fields := []string{
			"$", "HS", "GEN", "1.0", status, "1", "L", p.IMEI, registration, "1", date, clock,
			lat, latHem, lon, lonHem,
			fmt.Sprintf("%.1f", p.SpeedKph), fmt.Sprintf("%.2f", p.Course), fmt.Sprint(p.Satellites),
			fmt.Sprintf("%.1f", p.Altitude), "0.9", "0.5", "",
			flag01(p.Ignition), "1", "12.6", "4.1", "0", "C",
		}
		// обслуживающая вышка и пустые соседние
		fields = append(fields, "20", "250", "01", "1A2B", "3C4D")
		for i := 0; i < 12; i++ {
			fields = append(fields, "0")
		}
		fields = append(fields, "0000", "00")
		return strings.Join(fields, ",") + ",*", nil
	case FormSimple, FormEmergency:
		kind := "NRM"
		if p.Form == FormEmergency {
			kind = its.EmergencyType
		}
		fields := []string{
			"$", "01", kind, p.IMEI, status, date, clock, "A",
			lat, latHem, lon, lonHem,
			fmt.Sprintf("%.1f", p.Altitude), fmt.Sprintf("%.1f", p.SpeedKph), "0.0", "G", registration,
		}
		return strings.Join(fields, ",") + "*", nil
	}

	return "", fmt.Errorf("неизвестная форма сообщения: %s", p.Form)
}
