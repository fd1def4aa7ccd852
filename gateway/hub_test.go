package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"nftmarket/core"
	"nftmarket/gateway/middleware"
)

func dialWithOrigin(ctx context.Context, server *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	opts := &websocket.DialOptions{}
	if origin != "" {
		opts.HTTPHeader = http.Header{"Origin": []string{origin}}
	}
	return websocket.Dial(ctx, url, opts)
}

func TestHubHonoursAllowedOrigins(t *testing.T) {
	hub := NewHub(nil)
	hub.SetAllowedOrigins([]string{"https://app.example", " "})
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, resp, err := dialWithOrigin(ctx, server, "https://evil.example")
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := dialWithOrigin(ctx, server, "https://app.example")
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")

	// Non-browser clients send no Origin header.
	conn, _, err = dialWithOrigin(ctx, server, "")
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestHubWithoutAllowListAcceptsAnyOrigin(t *testing.T) {
	hub := NewHub(nil)
	hub.SetAllowedOrigins(nil)
	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := dialWithOrigin(ctx, server, "https://anywhere.example")
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestServerAppliesCORSOriginsToStream(t *testing.T) {
	hub := NewHub(nil)
	_, err := New(Config{
		Executor: nopExecutor{},
		Hub:      hub,
		CORS:     middleware.CORSConfig{AllowedOrigins: []string{"https://app.example"}},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"app.example"}, hub.originPatterns())
}

type nopExecutor struct{}

func (nopExecutor) Execute(context.Context, string, func(*core.Env) error) error { return nil }
func (nopExecutor) View(context.Context, string, func(*core.Env) error) error { return nil }
