// Package testhelpers provides shared utilities for the integration tests:
// spinning up a fully wired relay server and driving its HTTP and WebSocket
// interfaces.
package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/plausch-chat/plausch/internal/broker"
	"github.com/plausch-chat/plausch/internal/config"
	"github.com/plausch-chat/plausch/internal/server"
	"github.com/plausch-chat/plausch/internal/stats"
	"github.com/plausch-chat/plausch/internal/weather"
)

// Relay bundles a running test server with the components behind it.
type Relay struct {
	Server   *httptest.Server
	Registry *broker.Registry
	Store    stats.Store
}

type stubResolver struct{}

func (stubResolver) Resolve(context.Context, string) weather.Result {
	return weather.Result{State: weather.StateResolved, Text: "sonnig"}
}

// StartRelay wires a complete relay server over in-memory components and
// returns it running on an httptest listener.
func StartRelay(t *testing.T) *Relay {
	t.Helper()

	cfg := config.Default()
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.RateLimit.Burst = 1000

	registry := broker.NewRegistry()
	store := stats.NewMemory()
	router := broker.NewRouter(registry, stubResolver{}, store, nil)
	srv := server.New(registry, router, store, cfg.Server, nil)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	// Runs before ts.Close: cut off outstanding long polls so Close's wait
	// for active requests cannot deadlock.
	t.Cleanup(ts.CloseClientConnections)

	return &Relay{Server: ts, Registry: registry, Store: store}
}

// Register registers username and returns the assigned color.
func (r *Relay) Register(t *testing.T, username string) string {
	t.Helper()

	resp, err := http.Post(r.Server.URL+"/register?username="+username, "text/plain", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "register %s: %s", username, body)
	return string(body)
}

// PostMessage sends msg to the relay and returns the response status and
// body.
func (r *Relay) PostMessage(t *testing.T, msg broker.Message) (int, string) {
	t.Helper()

	payload, err := json.Marshal(msg)
	require.NoError(t, err)

	resp, err := http.Post(r.Server.URL+"/messages", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// LongPoll starts a GET /messages poll for username and returns a channel
// that yields the delivered message. The channel is closed without a value
// when the poll ends with no message. LongPoll returns only after the poll's
// slot is installed, so a message sent afterwards cannot be missed.
func (r *Relay) LongPoll(t *testing.T, username string) <-chan broker.Message {
	t.Helper()

	out := make(chan broker.Message, 1)
	go func() {
		defer close(out)

		resp, err := http.Get(r.Server.URL + "/messages?id=" + username)
		if err != nil {
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return
		}

		var msg broker.Message
		if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
			return
		}
		out <- msg
	}()

	require.Eventually(t, func() bool {
		return r.Registry.HasPendingSlot(username)
	}, 2*time.Second, 5*time.Millisecond, "poll for %s never installed a slot", username)

	return out
}

// WaitForMessage reads from a long-poll channel with a timeout.
func WaitForMessage(t *testing.T, ch <-chan broker.Message) broker.Message {
	t.Helper()

	select {
	case msg, ok := <-ch:
		require.True(t, ok, "long poll ended without a message")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for long-poll delivery")
		return broker.Message{}
	}
}

// ConnectWebSocket opens a WebSocket session for username.
func (r *Relay) ConnectWebSocket(t *testing.T, username string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(r.Server.URL, "http") + "/ws?username=" + username

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", "http://localhost")

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}
