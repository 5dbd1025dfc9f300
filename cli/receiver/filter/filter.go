package filter

import (
	"math"
	"sync"
	"time"

	"github.com/daniil11ru/its/libs/its"
)

const earthRadiusMeters = 6371000.0

var now = time.Now // For mocking time.Now() in tests

// Filter отбрасывает позиции, которые не нужно сохранять. Нулевое значение
// пропускает всё.
type Filter struct {
	Invalid        bool
	Zero           bool
	Archive        bool
	Future         time.Duration
	DistanceMeters float64

	mu   sync.Mutex
	last map[int64]*its.Position
}

// DistanceMeters расстояние по поверхности Земли между двумя точками
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Accept возвращает причину отказа или пустую строку, если позицию нужно
// сохранить. Принятая позиция запоминается как последняя для устройства.
func (f *Filter) Accept(p *its.Position) (string, bool) {
	if f.Invalid && !p.Valid {
		return "невалидные координаты", false
	}
	if f.Zero && p.Latitude == 0 && p.Longitude == 0 {
		return "нулевые координаты", false
	}
	if f.Archive && p.Archive {
		return "архивная запись", false
	}
	if f.Future > 0 && p.DeviceTime.After(now().Add(f.Future)) {
		return "время устройства в будущем", false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.DistanceMeters > 0 && p.Alarm == its.AlarmNone {
		if last, ok := f.last[p.DeviceID]; ok &&
			DistanceMeters(last.Latitude, last.Longitude, p.Latitude, p.Longitude) < f.DistanceMeters {
			return "слишком близко к предыдущей позиции", false
		}
	}

	if f.last == nil {
		f.last = make(map[int64]*its.Position)
	}
	f.last[p.DeviceID] = p
	return "", true
}
