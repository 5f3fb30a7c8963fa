package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSONConsoleWithRunFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Service: "billsplit", RunID: "run-1", Level: "debug", Console: &buf}))
	defer Close()

	log.Info().Str("file", "bill1.pdf").Msg("processing")

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev))
	assert.Equal(t, "billsplit", ev["service"])
	assert.Equal(t, "run-1", ev["run_id"])
	assert.Equal(t, "bill1.pdf", ev["file"])
	assert.Equal(t, "info", ev["level"])
}

func TestInit_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "warn", Console: &buf}))
	defer Close()

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Equal(t, zerolog.WarnLevel, Get().GetLevel())
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "loud", Console: &buf}))
	defer Close()

	assert.Equal(t, zerolog.InfoLevel, Get().GetLevel())
}

func TestInit_FileSink(t *testing.T) {
	p := filepath.Join(t.TempDir(), "logs", "pagesift.log")
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Level: "info", Console: &buf, File: p, MaxSizeMB: 1}))

	log.Info().Msg("to file")
	Close()

	body, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "to file"))
}
