package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONWithServiceAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "warn", Service: "ventas", Output: &buf})

	l.Info().Msg("descartado")
	l.Warn().Str("sale_id", "s1").Msg("conflicto")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ventas", entry["service"])
	assert.Equal(t, "s1", entry["sale_id"])
}

func TestNew_RedirectsGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Env: "production", Level: "debug", Output: &buf})

	log.Debug().Msg("desde el global")
	assert.Contains(t, buf.String(), "desde el global")
}
