package main

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"nftmarket/gateway/middleware"
)

type staticSecret string

func (s staticSecret) Get() (string, error) { return string(s), nil }

func TestTokenAcceptedByGateway(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"token", "-sub", "0x00000000000000000000000000000000000000ad", "-admin"}, &out, staticSecret("s3cret"))
	require.NoError(t, err)
	tok := strings.TrimSpace(out.String())

	auth := middleware.NewAuthenticator(middleware.AuthConfig{HMACSecret: "s3cret", Issuer: "marketd", Audience: "marketd"}, slog.Default())
	var caller [20]byte
	handler := auth.Middleware(middleware.ScopeAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ = middleware.Caller(r.Context())
	}))
	req := httptest.NewRequest(http.MethodPost, "/v1/auction/items/1/force-end", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, byte(0xad), caller[19])
}

func TestTokenRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run([]string{"token", "-sub", "alice"}, &out, staticSecret("x")))
	require.Error(t, run([]string{"token", "-sub", "0x00000000000000000000000000000000000000ad", "-ttl", "-1s"}, &out, staticSecret("x")))
	require.Error(t, run(nil, &out, staticSecret("x")))
	require.Error(t, run([]string{"mint"}, &out, staticSecret("x")))
}

func TestAddressConversion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"address", "0x00000000000000000000000000000000000000fe"}, &out, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	bech := strings.TrimSpace(strings.TrimPrefix(lines[1], "bech32:"))

	out.Reset()
	require.NoError(t, run([]string{"address", bech}, &out, nil))
	require.Contains(t, strings.ToLower(out.String()), "0x00000000000000000000000000000000000000fe")
}
