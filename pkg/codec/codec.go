// Package codec provides the JSON wire codec shared by the gRPC server,
// the gRPC client and the Connect gateway.
//
// Сообщения api/solver/v1 — обычные Go-структуры без protoc, поэтому
// вместо proto-кодека используется JSON. Кодек регистрируется в
// grpc/encoding при импорте пакета; клиент выбирает его через
// grpc.CallContentSubtype(codec.Name). Тот же тип удовлетворяет
// connect.Codec и подключается через connect.WithCodec.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is the content subtype: application/grpc+json and application/json.
const Name = "json"

// JSON marshals messages with encoding/json.
type JSON struct{}

func init() {
	encoding.RegisterCodec(JSON{})
}

// Name returns the codec name.
func (JSON) Name() string {
	return Name
}

// Marshal encodes v.
func (JSON) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("codec: cannot marshal nil message")
	}
	return json.Marshal(v)
}

// Unmarshal decodes data into v. An empty payload leaves v at its zero value.
func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: %w", err)
	}
	return nil
}
