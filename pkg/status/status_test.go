package status

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"nutrivita-hq/ceres/pkg/cooldown"
	"nutrivita-hq/ceres/pkg/fallback"
	"nutrivita-hq/ceres/pkg/stats"
)

func newTestReporter(t *testing.T) (*Reporter, *cooldown.MemoryStore, *stats.MemoryAggregator) {
	t.Helper()

	store := cooldown.NewMemoryStore()
	agg := stats.NewMemoryAggregator()
	chain, err := fallback.NewChain([]string{"x", "y", "z"})
	if err != nil {
		t.Fatal(err)
	}
	return NewReporter(store, agg, chain), store, agg
}

func TestReportAllReady(t *testing.T) {
	reporter, _, _ := newTestReporter(t)

	report, err := reporter.Report()
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(report.Models))
	}
	for _, m := range report.Models {
		if m.State != cooldown.StateReady {
			t.Errorf("expected %s READY, got %s", m.Model, m.State)
		}
		if m.RemainingSeconds != 0 {
			t.Errorf("READY model must have 0 remaining, got %d", m.RemainingSeconds)
		}
	}
	if report.CoolingCount != 0 || report.AllCooling() {
		t.Errorf("unexpected cooling state: %+v", report)
	}
	if report.Efficiency != 0 {
		t.Errorf("expected 0 efficiency with zero counters, got %v", report.Efficiency)
	}
}

func TestReportAllCooling(t *testing.T) {
	reporter, store, _ := newTestReporter(t)

	for _, m := range []string{"x", "y", "z"} {
		store.SetCooldown(m, 300*time.Second)
	}

	report, err := reporter.Report()
	if err != nil {
		t.Fatal(err)
	}

	if report.CoolingCount != 3 {
		t.Errorf("expected 3/3 cooling, got %d", report.CoolingCount)
	}
	if !report.AllCooling() {
		t.Error("expected AllCooling true")
	}
	for _, m := range report.Models {
		if m.State != cooldown.StateCooldown {
			t.Errorf("expected %s COOLDOWN, got %s", m.Model, m.State)
		}
		if m.RemainingSeconds <= 0 || m.RemainingSeconds > 300 {
			t.Errorf("unexpected remaining %d for %s", m.RemainingSeconds, m.Model)
		}
	}
}

func TestReportPreservesChainOrder(t *testing.T) {
	reporter, store, _ := newTestReporter(t)
	store.SetCooldown("y", time.Hour)

	report, err := reporter.Report()
	if err != nil {
		t.Fatal(err)
	}

	order := []string{"x", "y", "z"}
	for i, m := range report.Models {
		if m.Model != order[i] {
			t.Errorf("position %d: expected %s, got %s", i, order[i], m.Model)
		}
	}
	if report.Models[1].State != cooldown.StateCooldown {
		t.Error("expected y cooling")
	}
}

func TestReportEfficiency(t *testing.T) {
	reporter, _, agg := newTestReporter(t)

	// 7 real calls, 3 saved: efficiency 30%.
	for i := 0; i < 7; i++ {
		agg.RecordCall()
	}
	for i := 0; i < 3; i++ {
		agg.RecordSaved()
	}

	report, err := reporter.Report()
	if err != nil {
		t.Fatal(err)
	}
	if report.Efficiency != 0.3 {
		t.Errorf("expected 0.3, got %v", report.Efficiency)
	}
}

func TestFormatText(t *testing.T) {
	reporter, store, agg := newTestReporter(t)
	store.SetCooldown("x", 300*time.Second)
	agg.RecordCall()
	agg.RecordSaved()

	report, err := reporter.Report()
	if err != nil {
		t.Fatal(err)
	}

	text := FormatText(report)
	for _, want := range []string{"1/3 cooling", "COOLDOWN", "READY", "efficiency", "50.0%"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q:\n%s", want, text)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	reporter, store, _ := newTestReporter(t)
	store.SetCooldown("x", time.Hour)

	report, err := reporter.Report()
	if err != nil {
		t.Fatal(err)
	}

	out, err := FormatJSON(report)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.CoolingCount != 1 || len(decoded.Models) != 3 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}
