package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"ChurnPull/pkg/logger"
)

type ipHandler struct{}

func (ipHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ip", func(c echo.Context) error { return c.String(http.StatusOK, c.RealIP()) })
}

func realIP(t *testing.T, s *Server) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.0.0.5:5123"
	req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.1")
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	return rec.Body.String()
}

func TestServerIgnoresForwardedForByDefault(t *testing.T) {
	s := NewServer(ipHandler{}, logger.NewNop(), WithMetricsPath(""))
	if got := realIP(t, s); got != "10.0.0.5" {
		t.Fatalf("expected peer address, got %q", got)
	}
}

func TestServerTrustProxyUsesForwardedFor(t *testing.T) {
	s := NewServer(ipHandler{}, logger.NewNop(), WithMetricsPath(""), WithTrustProxy(true))
	if got := realIP(t, s); got != "198.51.100.1" {
		t.Fatalf("expected forwarded address, got %q", got)
	}
}
