package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCall(t *testing.T) {
	m := New("test")

	m.RecordCall("gemini-2.0-flash", "success", 120*time.Millisecond)
	m.RecordCall("gemini-2.0-flash", "success", 80*time.Millisecond)
	m.RecordCall("gemini-2.0-flash", "rate_limited", 30*time.Millisecond)

	if got := testutil.ToFloat64(m.calls.WithLabelValues("gemini-2.0-flash", "success")); got != 2 {
		t.Errorf("expected 2 successful calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("gemini-2.0-flash", "rate_limited")); got != 1 {
		t.Errorf("expected 1 rate limited call, got %v", got)
	}
}

func TestRecordSaved(t *testing.T) {
	m := New("test")

	m.RecordSaved("gemini-2.0-flash")
	m.RecordSaved("gemini-2.0-flash")

	if got := testutil.ToFloat64(m.saved.WithLabelValues("gemini-2.0-flash")); got != 2 {
		t.Errorf("expected 2 saved calls, got %v", got)
	}
}

func TestRecordCooldown(t *testing.T) {
	m := New("test")

	m.RecordCooldown("gemini-2.0-flash", 300*time.Second)

	if got := testutil.ToFloat64(m.cooldowns.WithLabelValues("gemini-2.0-flash")); got != 1 {
		t.Errorf("expected 1 cooldown, got %v", got)
	}
	if got := testutil.ToFloat64(m.cooldownSeconds.WithLabelValues("gemini-2.0-flash")); got != 300 {
		t.Errorf("expected 300s cooldown gauge, got %v", got)
	}
}

func TestUpdateModelState(t *testing.T) {
	m := New("test")

	m.UpdateModelState("gemini-2.0-flash", true)
	if got := testutil.ToFloat64(m.cooling.WithLabelValues("gemini-2.0-flash")); got != 1 {
		t.Errorf("expected cooling gauge 1, got %v", got)
	}

	m.UpdateModelState("gemini-2.0-flash", false)
	if got := testutil.ToFloat64(m.cooling.WithLabelValues("gemini-2.0-flash")); got != 0 {
		t.Errorf("expected cooling gauge 0, got %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := New("test")
	m.RecordSaved("gemini-2.0-flash")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "test_saved_calls_total") {
		t.Errorf("expected saved calls metric in output:\n%s", body)
	}
}

func TestDefaultNamespace(t *testing.T) {
	m := New("")
	m.RecordSaved("x")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if body := rec.Body.String(); !strings.Contains(body, "ceres_saved_calls_total") {
		t.Errorf("expected ceres namespace in output:\n%s", body)
	}
}
