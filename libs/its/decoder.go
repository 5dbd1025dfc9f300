package its

import (
	"errors"
	"io"
	"net"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrNoMatch сообщение не соответствует грамматике протокола
	ErrNoMatch = errors.New("сообщение не относится к протоколу ITS")
	// ErrUnknownDevice IMEI не сопоставлен ни одной сессии
	ErrUnknownDevice = errors.New("неизвестное устройство")
	// ErrMalformedField поле прошло грамматику, но не преобразуется в значение
	ErrMalformedField = errors.New("некорректное поле")
)

// DeviceSession сессия устройства, найденная по IMEI
type DeviceSession struct {
	DeviceID int64
	IMEI     string
}

// SessionResolver сопоставляет IMEI с сессией устройства
type SessionResolver interface {
	ResolveSession(remote net.Addr, imei string) (DeviceSession, bool)
}

type Decoder struct {
	sessions SessionResolver
}

func NewDecoder(sessions SessionResolver) *Decoder {
	return &Decoder{sessions: sessions}
}

// Decode разбирает одно сообщение. Перед разбором на сообщение рукопожатия
// в w отправляется подтверждение, независимо от результата разбора.
func (d *Decoder) Decode(w io.Writer, remote net.Addr, sentence string) (*Position, error) {
	if sent, err := Acknowledge(w, sentence); sent {
		if err != nil {
			log.WithField("ip", remote).Warnf("Не удалось отправить подтверждение: %v", err)
		} else {
			log.WithField("ip", remote).Debug("Отправлено подтверждение рукопожатия")
		}
	}

	m, ok := Match(sentence)
	if !ok {
		return nil, ErrNoMatch
	}

	return d.decodeSentence(remote, m)
}

func (d *Decoder) decodeSentence(remote net.Addr, m *Sentence) (*Position, error) {
	session, ok := d.sessions.ResolveSession(remote, m.IMEI)
	if !ok {
		return nil, ErrUnknownDevice
	}

	position := &Position{
		Protocol: ProtocolName,
		DeviceID: session.DeviceID,
		IMEI:     m.IMEI,
	}

	var status string
	switch h := m.Header.(type) {
	case *TelemetryHeader:
		status = h.Status
		c := newCursor(h.Event)
		event := c.nextInt()
		if err := c.err(); err != nil {
			return nil, err
		}
		position.Event = &event
		position.Archive = h.History == "H"
	case *TypeHeader:
		if h.Type == EmergencyType {
			position.Alarm = AlarmSOS
		}
	}

	switch id := m.Identity.(type) {
	case *StatusIdentity:
		status = id.Status
	case *ValidityIdentity:
		position.Registration = id.Registration
		position.Valid = id.Valid == "1"
	}
	if alarm := DecodeAlarm(status); alarm != AlarmNone {
		position.Alarm = alarm
	}

	deviceTime, err := decodeDateTime(m.Time)
	if err != nil {
		return nil, err
	}
	position.DeviceTime = deviceTime

	if m.Fix != "" {
		position.Valid = m.Fix == "A"
	}

	if position.Latitude, err = decodeCoordinate(m.Latitude, 90); err != nil {
		return nil, err
	}
	if position.Longitude, err = decodeCoordinate(m.Longitude, 180); err != nil {
		return nil, err
	}

	switch t := m.Trailer.(type) {
	case *RichTrailer:
		if err := decodeRich(position, t); err != nil {
			return nil, err
		}
	case *SimpleTrailer:
		c := newCursor(t.Altitude, t.Speed)
		altitude, speed := c.nextFloat(), c.nextFloat()
		if err := c.err(); err != nil {
			return nil, err
		}
		position.Altitude = altitude
		position.Speed = KnotsFromKph(speed)
	}

	return position, nil
}

func decodeRich(position *Position, t *RichTrailer) error {
	c := newCursor(t.Speed, t.Course, t.Satellites)
	speed, course, satellites := c.nextFloat(), c.nextFloat(), c.nextInt()
	if err := c.err(); err != nil {
		return err
	}
	position.Speed = KnotsFromKph(speed)
	position.Course = course
	position.Satellites = &satellites

	if t.Telemetry == nil {
		return nil
	}
	tm := t.Telemetry

	c = newCursor(tm.Altitude, tm.Ignition, tm.Charge, tm.Power, tm.Battery, tm.Emergency, tm.Inputs, tm.Outputs)
	altitude := c.nextFloat()
	ignition, charge := c.nextFlag(), c.nextFlag()
	power, battery := c.nextFloat(), c.nextFloat()
	emergency := c.nextFlag()
	input, output := c.nextBin(), c.nextBin()
	if err := c.err(); err != nil {
		return err
	}

	network, err := decodeNetwork(tm.Cells)
	if err != nil {
		return err
	}

	position.Altitude = altitude
	position.Ignition = &ignition
	position.Charge = &charge
	position.Power = &power
	position.Battery = &battery
	position.Emergency = &emergency
	position.Network = network
	position.Input = &input
	position.Output = &output

	if tm.ADC != nil {
		c = newCursor(tm.ADC.Channel1, tm.ADC.Channel2)
		adc1, adc2 := c.nextFloat(), c.nextFloat()
		if err := c.err(); err != nil {
			return err
		}
		position.ADC1 = &adc1
		position.ADC2 = &adc2
	}

	return nil
}
