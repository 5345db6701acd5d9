package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const ClientEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "tracker",
	"name": "client_event",
	"fields" : [
		{"name": "kind", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "products", "type": "long"},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type ClientEventV1 struct {
	Kind      string    `avro:"kind"`
	ProductID string    `avro:"product_id"`
	Products  int64     `avro:"products"`
	At        time.Time `avro:"at"`
}

// ClientEventV1Avro panics on an invalid schema text.
func ClientEventV1Avro() avro.Schema {
	return avro.MustParse(ClientEventSchemaTextV1)
}
