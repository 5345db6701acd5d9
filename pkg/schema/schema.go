package schema

import "github.com/hamba/avro/v2"

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}

// A Codec encodes and decodes values of a single schema.
type Codec struct {
	encode func(v any) ([]byte, error)
	decode func([]byte, any) error
}

func NewCodec(s avro.Schema) Codec {
	return Codec{encode: AvroEncodeFn(s), decode: AvroDecodeFn(s)}
}

func (c Codec) Encode(v any) ([]byte, error) {
	return c.encode(v)
}

func (c Codec) Decode(data []byte, v any) error {
	return c.decode(data, v)
}
