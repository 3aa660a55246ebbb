package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveClassification("High")
	m.ObserveClassification("High")
	m.ObserveClassification("Normal")
	m.ObserveResultsRecorded(3)
	m.ObserveReportGenerated()
	m.ObserveLogin("success")

	if got := testutil.ToFloat64(m.ResultsClassified.WithLabelValues("High")); got != 2 {
		t.Errorf("expected 2 High classifications, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResultsClassified.WithLabelValues("Normal")); got != 1 {
		t.Errorf("expected 1 Normal classification, got %v", got)
	}
	if got := testutil.ToFloat64(m.ResultsRecorded); got != 3 {
		t.Errorf("expected 3 recorded results, got %v", got)
	}
	if got := testutil.ToFloat64(m.ReportsGenerated); got != 1 {
		t.Errorf("expected 1 report, got %v", got)
	}
	if got := testutil.ToFloat64(m.LoginAttempts.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful login, got %v", got)
	}
}

func TestNew_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Error("expected second registration on the same registry to panic")
		}
	}()
	New(reg)
}

func TestHandler_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveClassification("Low")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `labassist_results_classified_total{status="Low"} 1`) {
		t.Errorf("expected classification counter in exposition, got:\n%s", rec.Body.String())
	}
}
