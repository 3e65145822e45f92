package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plausch-chat/plausch/internal/broker"
	"github.com/plausch-chat/plausch/internal/config"
	"github.com/plausch-chat/plausch/internal/stats"
	"github.com/plausch-chat/plausch/internal/weather"
)

type staticResolver struct {
	result weather.Result
}

func (r staticResolver) Resolve(context.Context, string) weather.Result {
	return r.result
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:           ":0",
		MaxMessageSize: 4096,
		RateLimit: config.RateLimitConfig{
			Burst:          100,
			RefillInterval: time.Second,
		},
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *broker.Registry) {
	t.Helper()
	registry := broker.NewRegistry()
	resolver := staticResolver{result: weather.Result{State: weather.StateResolved, Text: "sonnig"}}
	router := broker.NewRouter(registry, resolver, stats.NewMemory(), nil)
	return New(registry, router, stats.NewMemory(), cfg, nil), registry
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterHandler(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	req := httptest.NewRequest(http.MethodPost, "/register?username=anna", nil)
	rec := httptest.NewRecorder()
	srv.RegisterHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Red", rec.Body.String())
}

func TestRegisterHandlerConflict(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	first := httptest.NewRecorder()
	srv.RegisterHandler(first, httptest.NewRequest(http.MethodPost, "/register?username=anna", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	srv.RegisterHandler(second, httptest.NewRequest(http.MethodPost, "/register?username=anna", nil))
	require.Equal(t, http.StatusConflict, second.Code)
	require.Equal(t, "Username already taken.\n", second.Body.String())
}

func TestRegisterHandlerMissingUsername(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	rec := httptest.NewRecorder()
	srv.RegisterHandler(rec, httptest.NewRequest(http.MethodPost, "/register", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandlerRejectsGet(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	rec := httptest.NewRecorder()
	srv.RegisterHandler(rec, httptest.NewRequest(http.MethodGet, "/register?username=anna", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestLongPollReceivesBroadcast(t *testing.T) {
	srv, registry := newTestServer(t, testServerConfig())
	_, err := registry.Register("anna")
	require.NoError(t, err)
	_, err = registry.Register("bernd")
	require.NoError(t, err)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		rec := httptest.NewRecorder()
		srv.MessagesHandler(rec, httptest.NewRequest(http.MethodGet, "/messages?id=bernd", nil))
		done <- rec
	}()

	// Wait until bernd's poll has installed its slot.
	require.Eventually(t, func() bool {
		return registry.Fulfill("bernd", broker.Message{Sender: "probe", Content: "ping"})
	}, time.Second, 5*time.Millisecond)

	rec := <-done
	require.Equal(t, http.StatusOK, rec.Code)

	var msg broker.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
	require.Equal(t, "probe", msg.Sender)
	require.Equal(t, "ping", msg.Content)
}

func TestLongPollTimeoutReturnsNoContent(t *testing.T) {
	cfg := testServerConfig()
	cfg.LongPollTimeout = 20 * time.Millisecond
	srv, registry := newTestServer(t, cfg)
	_, err := registry.Register("anna")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.MessagesHandler(rec, httptest.NewRequest(http.MethodGet, "/messages?id=anna", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}

func TestLongPollRequiresClientID(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	rec := httptest.NewRecorder()
	srv.MessagesHandler(rec, httptest.NewRequest(http.MethodGet, "/messages", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Client id is required.\n", rec.Body.String())
}

func TestPostMessageBroadcast(t *testing.T) {
	srv, registry := newTestServer(t, testServerConfig())
	_, err := registry.Register("anna")
	require.NoError(t, err)

	rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{Sender: "anna", Content: "hallo"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Message received and processed.", rec.Body.String())
}

func TestPostMessageInvalidBody(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.MessagesHandler(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Message invalid.\n", rec.Body.String())
}

func TestPostMessageMissingSender(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{Content: "hallo"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostMessageTooLarge(t *testing.T) {
	cfg := testServerConfig()
	cfg.MaxMessageSize = 64
	srv, registry := newTestServer(t, cfg)
	_, err := registry.Register("anna")
	require.NoError(t, err)

	rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{
		Sender:  "anna",
		Content: strings.Repeat("x", 256),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostMessageRateLimited(t *testing.T) {
	cfg := testServerConfig()
	cfg.RateLimit.Burst = 2
	cfg.RateLimit.RefillInterval = time.Hour
	srv, registry := newTestServer(t, cfg)
	_, err := registry.Register("anna")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{Sender: "anna", Content: "hallo"})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{Sender: "anna", Content: "hallo"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "Rate limit exceeded.\n", rec.Body.String())
}

func TestPostMessageWeatherCommand(t *testing.T) {
	srv, registry := newTestServer(t, testServerConfig())
	_, err := registry.Register("anna")
	require.NoError(t, err)

	rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{Sender: "anna", Content: "/wetter Berlin"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "sonnig")
}

func TestPostMessageUnknownCommand(t *testing.T) {
	srv, registry := newTestServer(t, testServerConfig())
	_, err := registry.Register("anna")
	require.NoError(t, err)

	rec := postJSON(t, srv.MessagesHandler, "/messages", broker.Message{Sender: "anna", Content: "/tanzen"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Unbekannter Befehl.", rec.Body.String())
}

func TestClientsHandler(t *testing.T) {
	srv, registry := newTestServer(t, testServerConfig())
	for _, name := range []string{"anna", "bernd", "clara"} {
		_, err := registry.Register(name)
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	srv.ClientsHandler(rec, httptest.NewRequest(http.MethodGet, "/clients?id=bernd", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.Equal(t, []string{"anna", "clara"}, names)
}

func TestStatisticsHandlerRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	for i := 0; i < 3; i++ {
		rec := postJSON(t, srv.StatisticsHandler, "/statistics", "anna")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "Statistics updated.", rec.Body.String())
	}

	rec := httptest.NewRecorder()
	srv.StatisticsHandler(rec, httptest.NewRequest(http.MethodGet, "/statistics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Total number of messages sent: 3")
	require.Contains(t, rec.Body.String(), "anna: 3 messages")
}

func TestStatisticsHandlerInvalidUsername(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	rec := postJSON(t, srv.StatisticsHandler, "/statistics", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid username.\n", rec.Body.String())
}

func TestStatisticsHandlerDisabled(t *testing.T) {
	registry := broker.NewRegistry()
	router := broker.NewRouter(registry, staticResolver{}, nil, nil)
	srv := New(registry, router, nil, testServerConfig(), nil)

	rec := httptest.NewRecorder()
	srv.StatisticsHandler(rec, httptest.NewRequest(http.MethodGet, "/statistics", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Statistics are disabled.\n", rec.Body.String())
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer(t, testServerConfig())

	rec := httptest.NewRecorder()
	srv.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "plausch server is running!", rec.Body.String())
}
