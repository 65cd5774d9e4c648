package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", JSON: true, Out: &buf})
	require.NoError(t, err)

	tableLogger := ForTable(Component(logger, "table"), "t1")
	tableLogger.Debug().Int(SeatKey, 3).Msg("acted")
	out := buf.String()
	assert.Contains(t, out, `"component":"table"`)
	assert.Contains(t, out, `"table_id":"t1"`)
	assert.Contains(t, out, `"seat":3`)
	assert.Contains(t, out, `"message":"acted"`)
}

func TestNewLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{JSON: true, Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	logger, err = New(Options{Level: "WARN", Out: &buf})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	_, err = New(Options{Level: "loud"})
	require.Error(t, err)
}
