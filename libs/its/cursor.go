package its

import (
	"fmt"
	"strconv"
)

// cursor читает поля группы строго по порядку. Первая ошибка запоминается,
// последующие чтения возвращают нулевые значения.
type cursor struct {
	tokens []string
	pos    int
	fault  error
}

func newCursor(tokens ...string) *cursor {
	return &cursor{tokens: tokens}
}

func (c *cursor) remaining() int {
	return len(c.tokens) - c.pos
}

func (c *cursor) fail(token, kind string, err error) {
	if c.fault == nil {
		c.fault = fmt.Errorf("%w: поле %d (%q) не является %s: %v", ErrMalformedField, c.pos, token, kind, err)
	}
}

func (c *cursor) next() string {
	if c.fault != nil {
		return ""
	}
	if c.remaining() <= 0 {
		c.fault = fmt.Errorf("%w: чтение за границей группы (%d полей)", ErrMalformedField, len(c.tokens))
		return ""
	}
	t := c.tokens[c.pos]
	c.pos++
	return t
}

func (c *cursor) nextInt() int {
	t := c.next()
	if c.fault != nil {
		return 0
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		c.fail(t, "целым числом", err)
	}
	return v
}

func (c *cursor) nextFloat() float64 {
	t := c.next()
	if c.fault != nil {
		return 0
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		c.fail(t, "числом", err)
	}
	return v
}

func (c *cursor) nextHex() int64 {
	t := c.next()
	if c.fault != nil {
		return 0
	}
	v, err := strconv.ParseInt(t, 16, 64)
	if err != nil {
		c.fail(t, "шестнадцатеричным числом", err)
	}
	return v
}

func (c *cursor) nextBin() int {
	t := c.next()
	if c.fault != nil {
		return 0
	}
	v, err := parseBinary(t)
	if err != nil {
		c.fail(t, "двоичной строкой", err)
	}
	return v
}

func (c *cursor) nextFlag() bool {
	return c.nextInt() > 0
}

func (c *cursor) err() error {
	return c.fault
}
