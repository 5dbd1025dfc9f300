package its

import (
	"io"
	"strings"
)

const (
	HandshakePrefix = "$,01,"
	HandshakeReply  = "$,1,*"
)

// IsHandshake проверяет, требует ли сообщение подтверждения
func IsHandshake(sentence string) bool {
	return strings.HasPrefix(sentence, HandshakePrefix)
}

// Acknowledge отправляет подтверждение, если сообщение начинается с префикса
// рукопожатия. Результат записи не ожидается и не повторяется.
func Acknowledge(w io.Writer, sentence string) (bool, error) {
	if w == nil || !IsHandshake(sentence) {
		return false, nil
	}
	_, err := io.WriteString(w, HandshakeReply)
	return true, err
}
