package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, zerolog.InfoLevel).ForComponent("extractor")

	log.WithError(errors.New("boom")).Error().Str("category", "World").Msg("Error extracting article")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "extractor", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "World", entry["category"])
	assert.Equal(t, "Error extracting article", entry["message"])
}

func TestLoggerLevelIsPerInstance(t *testing.T) {
	var quiet, loud bytes.Buffer
	q := New(&quiet, zerolog.WarnLevel)
	l := New(&loud, zerolog.DebugLevel)

	q.Info().Msg("hidden")
	l.Debug().Msg("shown")

	assert.Empty(t, quiet.String())
	assert.Contains(t, loud.String(), "shown")
	assert.False(t, q.IsDebugEnabled())
	assert.True(t, l.IsDebugEnabled())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, zerolog.InfoLevel).WithFields(Fields{"url": "https://example.com", "count": 3}).Info().Msg("ok")

	assert.Contains(t, buf.String(), `"url":"https://example.com"`)
	assert.Contains(t, buf.String(), `"count":3`)
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SCRAPER_ENVIRONMENT", "production")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("SCRAPER_ENVIRONMENT", "development")
	assert.Equal(t, zerolog.DebugLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())
}
