package schema_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/niksmo/price-tracker/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func TestSerdeClientEventV1(t *testing.T) {
	const subject = "tracker-client-events-value"

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeClientEventV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeClientEventV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("IdentifierFails", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ClientEventSchemaTextV1,
		).Return(0, assert.AnError)

		_, err := schema.NewSerdeClientEventV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 3
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.ClientEventSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeClientEventV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		v1 := schema.ClientEventV1{
			Kind:      "product_selected",
			ProductID: "7",
			At:        time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		}

		data, err := serde.Encode(v1)
		require.NoError(t, err)
		require.Greater(t, len(data), 5)
		assert.Equal(t, byte(0), data[0])
		assert.Equal(t, uint32(schemaID), binary.BigEndian.Uint32(data[1:5]))

		var v2 schema.ClientEventV1
		require.NoError(t, serde.Decode(data, &v2))
		assert.Equal(t, v1.Kind, v2.Kind)
		assert.Equal(t, v1.ProductID, v2.ProductID)
		assert.True(t, v1.At.Equal(v2.At))
	})
}

// newRegistry serves the subset of the schema registry REST API used to
// register a schema. Every schema gets id 11 and version 1.
func newRegistry(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()

	const id = 11
	var (
		mu       sync.Mutex
		subjects []string
		text     string
	)

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/vnd.schemaregistry.v1+json")
		_ = json.NewEncoder(w).Encode(v)
	}
	subjectSchema := func(subject string) map[string]any {
		mu.Lock()
		defer mu.Unlock()
		return map[string]any{
			"subject": subject, "version": 1, "id": id,
			"schema": text, "schemaType": "AVRO",
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /subjects/{subject}/versions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Schema string `json:"schema"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		mu.Lock()
		subjects = append(subjects, r.PathValue("subject"))
		text = body.Schema
		mu.Unlock()
		writeJSON(w, map[string]any{"id": id})
	})
	mux.HandleFunc("POST /subjects/{subject}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, subjectSchema(r.PathValue("subject")))
	})
	mux.HandleFunc("GET /schemas/ids/{id}/versions", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		out := make([]map[string]any, len(subjects))
		for i, s := range subjects {
			out[i] = map[string]any{"subject": s, "version": 1}
		}
		mu.Unlock()
		writeJSON(w, out)
	})
	mux.HandleFunc("GET /schemas/ids/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(w, map[string]any{"schema": text, "schemaType": "AVRO"})
	})
	mux.HandleFunc("GET /subjects/{subject}/versions/{version}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, subjectSchema(r.PathValue("subject")))
	})
	mux.HandleFunc("GET /subjects/{subject}/versions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []int{1})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	registered := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), subjects...)
	}
	return srv, registered
}

func TestSchemaCreater(t *testing.T) {
	srv, registered := newRegistry(t)

	cl, err := sr.NewClient(sr.URLs(srv.URL))
	require.NoError(t, err)

	serde, err := schema.NewSerdeClientEventV1(
		t.Context(),
		schema.SubjectOpt("events-value"),
		schema.SchemaIdentifierOpt(schema.NewSchemaCreater(cl)),
	)
	require.NoError(t, err)
	assert.Contains(t, registered(), "events-value")

	data, err := serde.Encode(schema.ClientEventV1{Kind: "catalog_loaded", Products: 3})
	require.NoError(t, err)
	assert.Equal(t, uint32(11), binary.BigEndian.Uint32(data[1:5]))
}
