package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WithFieldsFromContext(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{ServiceName: "installment-service", Output: &buf})

	ctx := log.WithInstallmentNo(context.Background(), "20240101000000123456")
	ctx = log.WithRequestID(ctx, "req-1")
	log.Warn(ctx, "find installment no failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "installment-service", entry["service"])
	assert.Equal(t, "20240101000000123456", entry["installment_no"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "find installment no failed", entry["message"])
}

func TestLogger_ErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	log.Error(context.Background(), "fine job failed", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: zerolog.WarnLevel, Output: &buf})

	log.Info(context.Background(), "dropped")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
