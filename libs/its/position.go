package its

import (
	"encoding/json"
	"time"
)

// ProtocolName имя протокола, которое проставляется в каждую позицию
const ProtocolName = "its"

type Alarm string

const (
	AlarmNone         Alarm = ""
	AlarmSOS          Alarm = "sos"
	AlarmLowBattery   Alarm = "lowBattery"
	AlarmBraking      Alarm = "hardBraking"
	AlarmAcceleration Alarm = "hardAcceleration"
	AlarmCornering    Alarm = "hardCornering"
	AlarmOverspeed    Alarm = "overspeed"
	AlarmTampering    Alarm = "tampering"
)

// CellTower базовая станция сотовой сети
type CellTower struct {
	MCC    int   `json:"mcc" msgpack:"mcc"`
	MNC    int   `json:"mnc" msgpack:"mnc"`
	LAC    int64 `json:"lac" msgpack:"lac"`
	CID    int64 `json:"cid" msgpack:"cid"`
	Signal *int  `json:"signal,omitempty" msgpack:"signal,omitempty"`
}

// Network обслуживающая станция идёт первой, соседние за ней
type Network struct {
	CellTowers []CellTower `json:"cell_towers" msgpack:"cell_towers"`
}

func NewNetwork(serving CellTower) *Network {
	return &Network{CellTowers: []CellTower{serving}}
}

func (n *Network) AddCellTower(t CellTower) {
	n.CellTowers = append(n.CellTowers, t)
}

// Serving возвращает обслуживающую станцию
func (n *Network) Serving() (CellTower, bool) {
	if n == nil || len(n.CellTowers) == 0 {
		return CellTower{}, false
	}
	return n.CellTowers[0], true
}

// Neighbors возвращает соседние станции
func (n *Network) Neighbors() []CellTower {
	if n == nil || len(n.CellTowers) < 2 {
		return nil
	}
	return n.CellTowers[1:]
}

// Position разобранная навигационная запись. Необязательные поля равны nil,
// если терминал их не передал.
type Position struct {
	Protocol     string    `json:"protocol" msgpack:"protocol"`
	DeviceID     int64     `json:"device_id" msgpack:"device_id"`
	IMEI         string    `json:"imei" msgpack:"imei"`
	DeviceTime   time.Time `json:"device_time" msgpack:"device_time"`
	ServerTime   time.Time `json:"server_time,omitempty" msgpack:"server_time,omitempty"`
	Valid        bool      `json:"valid" msgpack:"valid"`
	Latitude     float64   `json:"latitude" msgpack:"latitude"`
	Longitude    float64   `json:"longitude" msgpack:"longitude"`
	Speed        float64   `json:"speed" msgpack:"speed"`
	Course       float64   `json:"course" msgpack:"course"`
	Altitude     float64   `json:"altitude" msgpack:"altitude"`
	Satellites   *int      `json:"satellites,omitempty" msgpack:"satellites,omitempty"`
	Ignition     *bool     `json:"ignition,omitempty" msgpack:"ignition,omitempty"`
	Charge       *bool     `json:"charge,omitempty" msgpack:"charge,omitempty"`
	Emergency    *bool     `json:"emergency,omitempty" msgpack:"emergency,omitempty"`
	Power        *float64  `json:"power,omitempty" msgpack:"power,omitempty"`
	Battery      *float64  `json:"battery,omitempty" msgpack:"battery,omitempty"`
	Input        *int      `json:"input,omitempty" msgpack:"input,omitempty"`
	Output       *int      `json:"output,omitempty" msgpack:"output,omitempty"`
	Alarm        Alarm     `json:"alarm,omitempty" msgpack:"alarm,omitempty"`
	Archive      bool      `json:"archive,omitempty" msgpack:"archive,omitempty"`
	Event        *int      `json:"event,omitempty" msgpack:"event,omitempty"`
	Registration string    `json:"registration,omitempty" msgpack:"registration,omitempty"`
	Network      *Network  `json:"network,omitempty" msgpack:"network,omitempty"`
	ADC1         *float64  `json:"adc1,omitempty" msgpack:"adc1,omitempty"`
	ADC2         *float64  `json:"adc2,omitempty" msgpack:"adc2,omitempty"`
}

func (p *Position) ToBytes() ([]byte, error) {
	return json.Marshal(p)
}
