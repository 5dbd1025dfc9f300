package codec

/*
Кодирование записей для внешних хранилищ.

Формат задаётся параметром format в настройках хранилища:
json (по умолчанию), msgpack, protobuf (google.protobuf.Struct).
*/

import (
	"encoding/json"
	"fmt"

	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/vmihailenco/msgpack.v2"
)

const (
	FormatJSON     = "json"
	FormatMsgpack  = "msgpack"
	FormatProtobuf = "protobuf"
)

// Message запись, которую можно сохранить во внешнее хранилище
type Message interface {
	ToBytes() ([]byte, error)
}

type Encoder func(Message) ([]byte, error)

// New возвращает кодировщик для формата из конфига
func New(format string) (Encoder, error) {
	switch format {
	case "", FormatJSON:
		return encodeJSON, nil
	case FormatMsgpack:
		return encodeMsgpack, nil
	case FormatProtobuf:
		return encodeProtobuf, nil
	default:
		return nil, fmt.Errorf("неизвестный формат сериализации: %s", format)
	}
}

func encodeJSON(m Message) ([]byte, error) {
	return m.ToBytes()
}

func encodeMsgpack(m Message) ([]byte, error) {
	return msgpack.Marshal(m)
}

func encodeProtobuf(m Message) ([]byte, error) {
	raw, err := m.ToBytes()
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("ошибка подготовки записи для protobuf: %w", err)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки protobuf-структуры: %w", err)
	}
	return proto.Marshal(s)
}
