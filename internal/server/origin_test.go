package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func originRequest(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestOriginPolicyAllowList(t *testing.T) {
	p := newOriginPolicy([]string{"https://chat.example.com", "http://localhost:3000"}, slog.Default())

	require.True(t, p.isAllowed(originRequest("https://chat.example.com")))
	require.True(t, p.isAllowed(originRequest("http://localhost:3000")))
	require.False(t, p.isAllowed(originRequest("https://evil.example.com")))
	require.False(t, p.isAllowed(originRequest("")))
}

func TestOriginPolicyNormalizesCase(t *testing.T) {
	p := newOriginPolicy([]string{"HTTPS://Chat.Example.COM"}, slog.Default())
	require.True(t, p.isAllowed(originRequest("https://chat.example.com")))
}

func TestOriginPolicyWildcard(t *testing.T) {
	p := newOriginPolicy([]string{"*"}, slog.Default())
	require.True(t, p.isAllowed(originRequest("https://anything.example.com")))
	// Wildcard still requires an Origin header to be present.
	require.False(t, p.isAllowed(originRequest("")))
}

func TestOriginPolicySkipsInvalidEntries(t *testing.T) {
	p := newOriginPolicy([]string{"", "   ", "not a url", "https://chat.example.com"}, slog.Default())
	require.True(t, p.isAllowed(originRequest("https://chat.example.com")))
	require.False(t, p.isAllowed(originRequest("not a url")))
}
