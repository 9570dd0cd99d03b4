package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-manager/pkg/logger"
)

func TestNew_JSONFueraDeDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	l.Info().Str("invoice", "INV-0001").Msg("creada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "INV-0001", entry["invoice"])
	assert.Equal(t, "creada", entry["message"])
}

func TestNew_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Level: "WARN", Output: &buf})

	l.Info().Msg("oculto")
	assert.Zero(t, buf.Len(), "info no se emite con nivel warn")

	l.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Config{Env: "production", Output: &buf})

	pg := l.WithComponent("postgrest")
	pg.Error().Msg("fallo")

	assert.Contains(t, buf.String(), `"component":"postgrest"`)
}
