package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitWithoutExporters(t *testing.T) {
	_, err := Init(context.Background(), Config{})
	require.Error(t, err)

	shutdown, err := Init(context.Background(), Config{ServiceName: "marketd"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.NotNil(t, Tracer("test"))
}

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders("authorization=Bearer x, ,bad,empty=, =skip")
	require.Equal(t, map[string]string{"authorization": "Bearer x", "empty": ""}, headers)
}
