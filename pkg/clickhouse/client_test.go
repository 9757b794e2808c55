package clickhouse

import (
	"context"
	"net/url"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithDatabase("churn"),
		WithCredentials("svc", "p@ss"),
		WithAsyncInsert(true, true),
		WithMaxExecutionTime(30 * time.Second),
	} {
		opt(&cfg)
	}

	u, err := url.Parse(buildDSN(cfg))
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	if u.Scheme != "clickhouse" || u.Host != "ch.local:9000" || u.Path != "/churn" {
		t.Fatalf("unexpected dsn %s", u)
	}
	if pw, _ := u.User.Password(); u.User.Username() != "svc" || pw != "p@ss" {
		t.Fatalf("unexpected credentials in %s", u)
	}
	q := u.Query()
	if q.Get("async_insert") != "1" || q.Get("wait_for_async_insert") != "1" {
		t.Fatalf("missing async insert settings: %s", u.RawQuery)
	}
	if q.Get("max_execution_time") != "30" {
		t.Fatalf("unexpected max_execution_time %q", q.Get("max_execution_time"))
	}
	if q.Has("write_timeout") {
		t.Fatalf("write_timeout must not be sent to the server")
	}
}

func TestBuildDSNHTTP(t *testing.T) {
	cfg := defaultConfig()
	WithHost("ch")(&cfg)
	WithPort(8123)(&cfg)
	WithHTTP(true)(&cfg)
	u, _ := url.Parse(buildDSN(cfg))
	if u.Scheme != "http" || u.Port() != "8123" {
		t.Fatalf("unexpected http dsn %s", u)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(context.Background()); err == nil {
		t.Fatalf("expected error without host")
	}
}
