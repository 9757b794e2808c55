package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestWriterEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("service", "churn"))

	l.Info("scored",
		Float64("probability", 0.42),
		Bool("churn", false),
		Int("rows", 3),
		Duration("duration_ms", 1500*time.Millisecond),
		Strings("columns", []string{"Age", "Tenure"}),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v: %s", err, buf.String())
	}
	want := map[string]interface{}{
		"level":       "info",
		"message":     "scored",
		"service":     "churn",
		"probability": 0.42,
		"churn":       false,
		"rows":        float64(3),
		"duration_ms": float64(1500),
		"columns":     "Age, Tenure",
		"error":       "boom",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s: got %v, want %v", k, got[k], v)
		}
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "churn.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Debug("ready")
}

func TestNop(t *testing.T) {
	NewNop().Error("dropped", Any("k", map[string]int{"a": 1}))
}
