package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterJSON(t *testing.T) {
	saved := log.Logger
	defer func() { log.Logger = saved }()

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "debug", FormatJSON))

	l := WithComponent("backend")
	l.Debug().Int("bytes", 11).Msg("flushed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "backend", entry["component"])
	assert.Equal(t, "flushed", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 11, entry["bytes"])
}

func TestInitWriterUnknownLevelDefaultsToInfo(t *testing.T) {
	saved := log.Logger
	defer func() { log.Logger = saved }()

	var buf bytes.Buffer
	require.NoError(t, InitWriter(&buf, "chatty", FormatJSON))
	assert.Equal(t, zerolog.InfoLevel, log.Logger.GetLevel())

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}

func TestInitWriterRejectsUnknownFormat(t *testing.T) {
	saved := log.Logger
	defer func() { log.Logger = saved }()

	assert.Error(t, InitWriter(&bytes.Buffer{}, "info", "xml"))
}
