package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFields_DomainConstructors(t *testing.T) {
	require.Equal(t, Field{Key: "cost", Value: "10.5"}, Decimal("cost", decimal.RequireFromString("10.50")))
	require.Equal(t, Field{Key: "err", Value: "boom"}, Err(errors.New("boom")))
	require.Equal(t, Field{Key: "err", Value: nil}, Err(nil))
	require.Equal(t, Field{Key: "event", Value: "rate_applied"}, Event("rate_applied"))
	require.Equal(t, Field{Key: "ok", Value: true}, Bool("ok", true))
}

func TestNopLogger_NoPanic(t *testing.T) {
	l := Nop()
	l.Debug("d", String("k", "v"))
	l.Info("i", Int("n", 1))
	l.Warn("w")
	l.Error("e")

	l2 := l.With(String("x", "y"))
	require.NotNil(t, l2)
	require.NoError(t, l2.Sync())
}

func TestNewJSON_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSON(&buf, slog.LevelInfo).With(String("component", "tracking"))

	l.Debug("hidden")
	l.Info("tracking cancelled", Event("tracking_cancelled"), Int64("tracking_id", 7))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "tracking cancelled", entry["msg"])
	require.Equal(t, "tracking", entry["component"])
	require.Equal(t, "tracking_cancelled", entry["event"])
	require.EqualValues(t, 7, entry["tracking_id"])
}

func TestSlogAdapter_AllLevels(t *testing.T) {
	l := NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})))
	l.Debug("msg", String("k", "v"))
	l.Warn("msg", String("k", "v"))
	l.Error("msg", Err(errors.New("x")))
	require.Len(t, toSlogArgs([]Field{String("a", "b"), Int("n", 1)}), 2)
	require.NoError(t, l.Sync())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	require.Equal(t, slog.LevelError, ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("anything"))
}
