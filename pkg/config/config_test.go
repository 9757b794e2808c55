package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", c.Server.Port)
	}
	if c.Prediction.Threshold != 0.5 {
		t.Fatalf("expected default threshold 0.5, got %v", c.Prediction.Threshold)
	}
	if c.Model.Type != "local" {
		t.Fatalf("expected local model, got %s", c.Model.Type)
	}
	if c.Artifacts.Scaler != "scaler.json" {
		t.Fatalf("unexpected scaler file %q", c.Artifacts.Scaler)
	}
	if c.Cache.TTL != 10*time.Minute {
		t.Fatalf("unexpected cache ttl %v", c.Cache.TTL)
	}
}

func TestParseRejectsBadThreshold(t *testing.T) {
	if _, err := Parse([]byte("prediction:\n  threshold: 1.5\n")); err == nil {
		t.Fatalf("expected error for threshold outside (0,1)")
	}
}

func TestParseRemoteNeedsURL(t *testing.T) {
	if _, err := Parse([]byte("model:\n  type: remote\n")); err == nil {
		t.Fatalf("expected error for remote model without url")
	}
	c, err := Parse([]byte("model:\n  type: remote\n  url: http://tf:8501/v1/models/churn:predict\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Model.URL == "" {
		t.Fatalf("expected url to be kept")
	}
}

func TestParseKafkaNeedsBrokers(t *testing.T) {
	if _, err := Parse([]byte("kafka:\n  enabled: true\n")); err == nil {
		t.Fatalf("expected error for kafka without brokers")
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{
		"CHURN_ARTIFACT_DIR": "/srv/artifacts",
		"CHURN_THRESHOLD":    "0.35",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
	}
	if err := c.applyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if c.Artifacts.Dir != "/srv/artifacts" {
		t.Fatalf("unexpected dir %q", c.Artifacts.Dir)
	}
	if c.Prediction.Threshold != 0.35 {
		t.Fatalf("unexpected threshold %v", c.Prediction.Threshold)
	}
	if len(c.Kafka.Brokers) != 2 {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}

	if err := c.applyEnv(func(k string) string {
		if k == "CHURN_THRESHOLD" {
			return "high"
		}
		return ""
	}); err == nil {
		t.Fatalf("expected error for non-numeric threshold")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "environment: prod\nserver:\n  port: 9090\nartifacts:\n  dir: /opt/churn\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 || c.Artifacts.Dir != "/opt/churn" {
		t.Fatalf("unexpected config %+v", c.Server)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
