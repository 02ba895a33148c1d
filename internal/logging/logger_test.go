package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("conectabem", "production", &buf)
	t.Cleanup(func() { Init("conectabem", "test") })

	log.Info().Str("appointment_id", "abc").Msg("created")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "conectabem", entry["service"])
	assert.Equal(t, "abc", entry["appointment_id"])
	assert.Equal(t, "created", entry["message"])
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	scoped := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()
	ctx := scoped.WithContext(context.Background())

	FromContext(ctx).Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)

	assert.Same(t, &log.Logger, FromContext(context.Background()))
}
