package its

import (
	"fmt"
	"strconv"
	"time"
)

const kphPerKnot = 1.852

// KnotsFromKph переводит км/ч в узлы
func KnotsFromKph(kph float64) float64 {
	return kph / kphPerKnot
}

func parseBinary(s string) (int, error) {
	v, err := strconv.ParseUint(s, 2, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// decodeDateTime собирает время в UTC из полей ДДММГГ(ГГ) ЧЧММСС
func decodeDateTime(dt DateTime) (time.Time, error) {
	c := newCursor(dt.Day, dt.Month, dt.Year, dt.Hour, dt.Minute, dt.Second)
	day, month, year := c.nextInt(), c.nextInt(), c.nextInt()
	hour, minute, second := c.nextInt(), c.nextInt(), c.nextInt()
	if err := c.err(); err != nil {
		return time.Time{}, err
	}
	if len(dt.Year) == 2 {
		year += 2000
	}

	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("%w: некорректные дата и время %s.%s.%s %s:%s:%s",
			ErrMalformedField, dt.Day, dt.Month, dt.Year, dt.Hour, dt.Minute, dt.Second)
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// decodeCoordinate возвращает градусы со знаком полушария: S и W отрицательные
func decodeCoordinate(c Coordinate, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(c.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: координата %q: %v", ErrMalformedField, c.Value, err)
	}
	if v > limit {
		return 0, fmt.Errorf("%w: координата %q вне диапазона ±%v", ErrMalformedField, c.Value, limit)
	}
	if c.Hemisphere == "S" || c.Hemisphere == "W" {
		v = -v
	}
	return v, nil
}

// decodeNetwork собирает обслуживающую и соседние станции из блока
// signal,mcc,mnc,lac,cid и четырёх троек _,lac,cid. Соседняя станция
// попадает в сеть, только если lac и cid положительные.
func decodeNetwork(cells []string) (*Network, error) {
	if len(cells) != CellTokens {
		return nil, fmt.Errorf("%w: блок базовых станций содержит %d полей вместо %d", ErrMalformedField, len(cells), CellTokens)
	}

	c := newCursor(cells...)
	signal := c.nextInt()
	serving := CellTower{
		MCC:    c.nextInt(),
		MNC:    c.nextInt(),
		LAC:    c.nextHex(),
		CID:    c.nextHex(),
		Signal: &signal,
	}
	network := NewNetwork(serving)

	for c.remaining() >= 3 && c.err() == nil {
		c.next()
		lac, cid := c.nextHex(), c.nextHex()
		if lac > 0 && cid > 0 {
			network.AddCellTower(CellTower{MCC: serving.MCC, MNC: serving.MNC, LAC: lac, CID: cid})
		}
	}

	if err := c.err(); err != nil {
		return nil, err
	}
	return network, nil
}
