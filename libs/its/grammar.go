package its

import (
	"regexp"
	"strings"
)

var sentencePattern = regexp.MustCompile(`^[^$]*\$` +
	`,?[^,]+,` + // событие
	`(?:` +
	`[^,]+,` + // производитель
	`[^,]+,` + // версия прошивки
	`(?P<header_status>..),` +
	`(?P<event>\d+),` +
	`(?P<history>[LH]),` +
	`|` +
	`(?P<type>[^,]+),` +
	`)` +
	`(?P<imei>\d{15}),` +
	`(?:` +
	`(?P<status>..),` +
	`|` +
	`(?P<registration>[^,]*),` +
	`(?P<valid>[01]),` +
	`)` +
	`(?P<day>\d\d),?(?P<month>\d\d),?(?P<year>\d{4}|\d\d),` +
	`(?P<hour>\d\d),?(?P<minute>\d\d),?(?P<second>\d\d),` +
	`(?:(?P<fix>[AV]),)?` +
	`(?P<lat>\d+\.\d+),(?P<lat_hem>[NS]),` +
	`(?P<lon>\d+\.\d+),(?P<lon_hem>[EW]),` +
	`(?:` +
	`(?P<speed>\d+\.?\d*),` +
	`(?P<course>\d+\.?\d*),` +
	`(?P<satellites>\d+),` +
	`(?:` +
	`(?P<altitude>\d+\.?\d*),` +
	`\d+\.?\d*,` + // pdop
	`\d+\.?\d*,` + // hdop
	`[^,]*,` + // оператор
	`(?P<ignition>[01]),` +
	`(?P<charge>[01]),` +
	`(?P<power>\d+\.?\d*),` +
	`(?P<battery>\d+\.?\d*),` +
	`(?P<emergency>[01]),` +
	`[CO]?,` + // вскрытие корпуса
	`(?P<cells>(?:[0-9a-fA-F]+,){5}(?:-?[0-9a-fA-F]+,){12})` +
	`(?P<inputs>[01]{4}),` +
	`(?P<outputs>[01]{2}),` +
	`(?:\d+,(?P<adc1>\d+\.\d+),(?P<adc2>\d+\.\d+),)?` +
	`)?` +
	`|` +
	`(?P<simple_altitude>-?\d+\.\d+),` +
	`(?P<simple_speed>\d+\.\d+),` +
	`)` +
	`.*`)

var (
	grpHeaderStatus   = sentencePattern.SubexpIndex("header_status")
	grpEvent          = sentencePattern.SubexpIndex("event")
	grpHistory        = sentencePattern.SubexpIndex("history")
	grpType           = sentencePattern.SubexpIndex("type")
	grpIMEI           = sentencePattern.SubexpIndex("imei")
	grpStatus         = sentencePattern.SubexpIndex("status")
	grpRegistration   = sentencePattern.SubexpIndex("registration")
	grpValid          = sentencePattern.SubexpIndex("valid")
	grpDay            = sentencePattern.SubexpIndex("day")
	grpMonth          = sentencePattern.SubexpIndex("month")
	grpYear           = sentencePattern.SubexpIndex("year")
	grpHour           = sentencePattern.SubexpIndex("hour")
	grpMinute         = sentencePattern.SubexpIndex("minute")
	grpSecond         = sentencePattern.SubexpIndex("second")
	grpFix            = sentencePattern.SubexpIndex("fix")
	grpLat            = sentencePattern.SubexpIndex("lat")
	grpLatHem         = sentencePattern.SubexpIndex("lat_hem")
	grpLon            = sentencePattern.SubexpIndex("lon")
	grpLonHem         = sentencePattern.SubexpIndex("lon_hem")
	grpSpeed          = sentencePattern.SubexpIndex("speed")
	grpCourse         = sentencePattern.SubexpIndex("course")
	grpSatellites     = sentencePattern.SubexpIndex("satellites")
	grpAltitude       = sentencePattern.SubexpIndex("altitude")
	grpIgnition       = sentencePattern.SubexpIndex("ignition")
	grpCharge         = sentencePattern.SubexpIndex("charge")
	grpPower          = sentencePattern.SubexpIndex("power")
	grpBattery        = sentencePattern.SubexpIndex("battery")
	grpEmergency      = sentencePattern.SubexpIndex("emergency")
	grpCells          = sentencePattern.SubexpIndex("cells")
	grpInputs         = sentencePattern.SubexpIndex("inputs")
	grpOutputs        = sentencePattern.SubexpIndex("outputs")
	grpADC1           = sentencePattern.SubexpIndex("adc1")
	grpADC2           = sentencePattern.SubexpIndex("adc2")
	grpSimpleAltitude = sentencePattern.SubexpIndex("simple_altitude")
	grpSimpleSpeed    = sentencePattern.SubexpIndex("simple_speed")
)

// CellTokens количество шестнадцатеричных полей блока базовых станций:
// 5 для обслуживающей и по 3 на каждую из 4 соседних.
const CellTokens = 5 + 4*3

// Header заголовок сообщения: *TelemetryHeader или *TypeHeader
type Header interface {
	header()
}

// TelemetryHeader производитель, прошивка, статус, событие, признак архива
type TelemetryHeader struct {
	Status  string
	Event   string
	History string
}

// TypeHeader заголовок с произвольным типом сообщения, например EMR
type TypeHeader struct {
	Type string
}

func (*TelemetryHeader) header() {}
func (*TypeHeader) header()      {}

// Identity блок после IMEI: *StatusIdentity или *ValidityIdentity
type Identity interface {
	identity()
}

type StatusIdentity struct {
	Status string
}

type ValidityIdentity struct {
	Registration string
	Valid        string
}

func (*StatusIdentity) identity()   {}
func (*ValidityIdentity) identity() {}

type DateTime struct {
	Day, Month, Year     string
	Hour, Minute, Second string
}

type Coordinate struct {
	Value      string
	Hemisphere string
}

// Trailer хвост сообщения: *RichTrailer или *SimpleTrailer
type Trailer interface {
	trailer()
}

type RichTrailer struct {
	Speed      string
	Course     string
	Satellites string
	// Telemetry nil, если расширенный блок отсутствует
	Telemetry *Telemetry
}

type Telemetry struct {
	Altitude  string
	Ignition  string
	Charge    string
	Power     string
	Battery   string
	Emergency string
	Cells     []string
	Inputs    string
	Outputs   string
	// ADC nil, если блок АЦП отсутствует
	ADC *ADC
}

type ADC struct {
	Channel1 string
	Channel2 string
}

type SimpleTrailer struct {
	Altitude string
	Speed    string
}

func (*RichTrailer) trailer()   {}
func (*SimpleTrailer) trailer() {}

// Sentence результат сопоставления сообщения с грамматикой. Каждая альтернатива
// представлена ровно одним вариантом, отсутствующие необязательные блоки равны nil.
type Sentence struct {
	Header    Header
	IMEI      string
	Identity  Identity
	Time      DateTime
	Fix       string // пустая строка, если флаг A/V не передан
	Latitude  Coordinate
	Longitude Coordinate
	Trailer   Trailer
}

type captures struct {
	s   string
	idx []int
}

func (c captures) has(group int) bool {
	return c.idx[2*group] >= 0
}

func (c captures) get(group int) string {
	if !c.has(group) {
		return ""
	}
	return c.s[c.idx[2*group]:c.idx[2*group+1]]
}

// Match сопоставляет сообщение с грамматикой протокола.
// false означает, что сообщение не относится к протоколу.
func Match(sentence string) (*Sentence, bool) {
	idx := sentencePattern.FindStringSubmatchIndex(sentence)
	if idx == nil {
		return nil, false
	}
	c := captures{s: sentence, idx: idx}

	m := &Sentence{
		IMEI: c.get(grpIMEI),
		Time: DateTime{
			Day:    c.get(grpDay),
			Month:  c.get(grpMonth),
			Year:   c.get(grpYear),
			Hour:   c.get(grpHour),
			Minute: c.get(grpMinute),
			Second: c.get(grpSecond),
		},
		Fix:       c.get(grpFix),
		Latitude:  Coordinate{Value: c.get(grpLat), Hemisphere: c.get(grpLatHem)},
		Longitude: Coordinate{Value: c.get(grpLon), Hemisphere: c.get(grpLonHem)},
	}

	if c.has(grpHistory) {
		m.Header = &TelemetryHeader{
			Status:  c.get(grpHeaderStatus),
			Event:   c.get(grpEvent),
			History: c.get(grpHistory),
		}
	} else {
		m.Header = &TypeHeader{Type: c.get(grpType)}
	}

	if c.has(grpStatus) {
		m.Identity = &StatusIdentity{Status: c.get(grpStatus)}
	} else {
		m.Identity = &ValidityIdentity{
			Registration: c.get(grpRegistration),
			Valid:        c.get(grpValid),
		}
	}

	if c.has(grpSpeed) {
		rich := &RichTrailer{
			Speed:      c.get(grpSpeed),
			Course:     c.get(grpCourse),
			Satellites: c.get(grpSatellites),
		}
		if c.has(grpAltitude) {
			rich.Telemetry = &Telemetry{
				Altitude:  c.get(grpAltitude),
				Ignition:  c.get(grpIgnition),
				Charge:    c.get(grpCharge),
				Power:     c.get(grpPower),
				Battery:   c.get(grpBattery),
				Emergency: c.get(grpEmergency),
				Cells:     strings.Split(strings.TrimSuffix(c.get(grpCells), ","), ","),
				Inputs:    c.get(grpInputs),
				Outputs:   c.get(grpOutputs),
			}
			if c.has(grpADC1) {
				rich.Telemetry.ADC = &ADC{
					Channel1: c.get(grpADC1),
					Channel2: c.get(grpADC2),
				}
			}
		}
		m.Trailer = rich
	} else {
		m.Trailer = &SimpleTrailer{
			Altitude: c.get(grpSimpleAltitude),
			Speed:    c.get(grpSimpleSpeed),
		}
	}

	return m, true
}
