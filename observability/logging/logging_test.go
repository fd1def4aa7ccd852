package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Options{Service: "marketd", Env: "test", Level: "debug"})
	logger.Debug("hello", "op", "auction.bid")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["message"])
	require.Equal(t, "DEBUG", line["severity"])
	require.Equal(t, "marketd", line["service"])
	require.Equal(t, "test", line["env"])
	require.Contains(t, line, "timestamp")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	require.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestSetupWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketd.log")
	logger := SetupWithOptions(Options{Service: "marketd", File: path, MaxSizeMB: 1})
	logger.Info("written")
	require.FileExists(t, path)
}

func TestMaskField(t *testing.T) {
	require.Equal(t, RedactedValue, MaskField("hmac_secret", "s3cret").Value.String())
	require.Equal(t, "auction", MaskField("component", "auction").Value.String())
	require.Equal(t, "bolt", MaskField("Storage_Engine", "bolt").Value.String())
	require.Equal(t, "", MaskField("archive_dsn", "").Value.String())
	require.True(t, IsAllowlisted(" SERVICE "))
	require.False(t, IsAllowlisted("hmac_secret"))
}
