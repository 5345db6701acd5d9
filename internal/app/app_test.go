package app_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/niksmo/price-tracker/config"
	"github.com/niksmo/price-tracker/internal/app"
	"github.com/niksmo/price-tracker/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	mock.Mock
}

func (p *MockPinger) Ping(ctx context.Context) error {
	args := p.Called(ctx)
	return args.Error(0)
}

func TestWaitBackend(t *testing.T) {
	t.Run("SingleProbe", func(t *testing.T) {
		p := new(MockPinger)
		p.On("Ping", mock.Anything).Return(assert.AnError).Once()

		err := app.WaitBackend(t.Context(), p, 1)
		assert.ErrorIs(t, err, assert.AnError)
		p.AssertNumberOfCalls(t, "Ping", 1)
	})

	t.Run("ReadyOnSecondProbe", func(t *testing.T) {
		p := new(MockPinger)
		p.On("Ping", mock.Anything).Return(assert.AnError).Once()
		p.On("Ping", mock.Anything).Return(nil).Once()

		require.NoError(t, app.WaitBackend(t.Context(), p, 3))
		p.AssertExpectations(t)
	})
}

func TestNewBackendClient(t *testing.T) {
	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	_, err = app.NewBackendClient(cfg)
	assert.NoError(t, err)

	cfg.Backend.TLS.CA = "/does/not/exist.pem"
	_, err = app.NewBackendClient(cfg)
	assert.Error(t, err)

	cfg.Backend.TLS.CA = ""
	cfg.Backend.RequestTimeout = -time.Second
	_, err = app.NewBackendClient(cfg)
	assert.Error(t, err)
}

func fakeRegistry(t *testing.T, subject string, id int) *httptest.Server {
	t.Helper()

	registered := map[string]any{
		"subject": subject, "version": 1, "id": id,
		"schema": schema.ClientEventSchemaTextV1, "schemaType": "AVRO",
	}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/vnd.schemaregistry.v1+json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /subjects/{subject}/versions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, subject, r.PathValue("subject"))
		writeJSON(w, map[string]any{"id": id})
	})
	mux.HandleFunc("POST /subjects/{subject}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, registered)
	})
	mux.HandleFunc("GET /schemas/ids/{id}/versions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{{"subject": subject, "version": 1}})
	})
	mux.HandleFunc("GET /schemas/ids/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"schema": schema.ClientEventSchemaTextV1})
	})
	mux.HandleFunc("GET /subjects/{subject}/versions/{version}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, registered)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewEventEncoder(t *testing.T) {
	event := schema.ClientEventV1{Kind: "scrape_requested", At: time.Now()}

	t.Run("PlainAvro", func(t *testing.T) {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)

		enc, err := app.NewEventEncoder(t.Context(), cfg)
		require.NoError(t, err)
		assert.IsType(t, schema.Codec{}, enc)

		data, err := enc.Encode(event)
		require.NoError(t, err)

		var got schema.ClientEventV1
		require.NoError(t, schema.NewCodec(schema.ClientEventV1Avro()).Decode(data, &got))
		assert.Equal(t, event.Kind, got.Kind)
	})

	t.Run("Registry", func(t *testing.T) {
		cfg, err := config.LoadFile("")
		require.NoError(t, err)
		srv := fakeRegistry(t, cfg.Broker.ClientEventsSubject(), 21)
		cfg.Broker.SchemaRegistryURLs = []string{srv.URL}

		enc, err := app.NewEventEncoder(t.Context(), cfg)
		require.NoError(t, err)

		data, err := enc.Encode(event)
		require.NoError(t, err)
		require.Greater(t, len(data), 5)
		assert.Equal(t, byte(0), data[0])
		assert.Equal(t, uint32(21), binary.BigEndian.Uint32(data[1:5]))
	})

	t.Run("RegistryFails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error_code": 50001, "message": "boom"}`, http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		cfg, err := config.LoadFile("")
		require.NoError(t, err)
		cfg.Broker.SchemaRegistryURLs = []string{srv.URL}

		_, err = app.NewEventEncoder(t.Context(), cfg)
		assert.Error(t, err)
	})
}
