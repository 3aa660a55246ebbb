package diagnostics

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labassist/labassist/pkg/pagination"
)

func newTestHandler() (*Handler, *testFixture, *echo.Echo) {
	f := newTestFixture()
	return NewHandler(f.svc), f, echo.New()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func expectHTTPError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Errorf("expected status %d, got %d", code, he.Code)
	}
	if msg != "" && he.Message != msg {
		t.Errorf("expected message %q, got %v", msg, he.Message)
	}
}

func TestHandler_CreateTest(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"name":"Hemoglobin","category":"Hematology","subcategory":"CBC","referenceRange":"12-16","unit":"g/dL","price":150}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/tests", body), rec)

	if err := h.CreateTest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var d TestDefinition
	json.Unmarshal(rec.Body.Bytes(), &d)
	if d.Name != "Hemoglobin" || d.Price == nil || *d.Price != 150 {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_CreateTest_MissingField(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/tests", `{"name":"X","category":"A"}`), httptest.NewRecorder())
	expectHTTPError(t, h.CreateTest(c), http.StatusBadRequest, "Missing required field: subcategory")
}

func TestHandler_CreateTest_Duplicate(t *testing.T) {
	h, _, e := newTestHandler()
	body := `{"name":"X","category":"A","subcategory":"B"}`
	h.CreateTest(e.NewContext(jsonRequest(http.MethodPost, "/api/tests", body), httptest.NewRecorder()))

	c := e.NewContext(jsonRequest(http.MethodPost, "/api/tests", body), httptest.NewRecorder())
	expectHTTPError(t, h.CreateTest(c), http.StatusBadRequest, ErrDuplicateTest.Error())
}

func TestHandler_GetTest_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	expectHTTPError(t, h.GetTest(c), http.StatusNotFound, "Test not found")
}

func TestHandler_GetTest_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	expectHTTPError(t, h.GetTest(c), http.StatusBadRequest, "")
}

func TestHandler_ListTests(t *testing.T) {
	h, f, e := newTestHandler()
	f.svc.CreateTest(nil, &TestDefinition{Name: "X", Category: "A", Subcategory: "B"})
	f.svc.CreateTest(nil, &TestDefinition{Name: "Y", Category: "A", Subcategory: "B"})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tests?limit=1", nil), rec)
	if err := h.ListTests(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(pagination.TotalCountHeader) != "2" {
		t.Errorf("expected total 2, got %q", rec.Header().Get(pagination.TotalCountHeader))
	}
	var defs []TestDefinition
	json.Unmarshal(rec.Body.Bytes(), &defs)
	if len(defs) != 1 || defs[0].Name != "Y" {
		t.Errorf("expected newest definition only, got %+v", defs)
	}
}

func TestHandler_TestCategories(t *testing.T) {
	h, f, e := newTestHandler()
	f.svc.CreateTest(nil, &TestDefinition{Name: "X", Category: "A", Subcategory: "B"})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/tests/categories", nil), rec)
	if err := h.TestCategories(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var groups []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &groups)
	if len(groups) != 1 || groups[0]["category"] != "A" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_RecordResults(t *testing.T) {
	h, f, e := newTestHandler()
	pid := f.addPatient("Asha Rao")

	body := `{"patientId":"` + pid.String() + `","category":"Hematology","subcategory":"CBC",
		"tests":[{"testName":"Hemoglobin","value":"13","normalRange":"12-16","unit":"g/dL"}],
		"testDate":"2024-02-10T08:15"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/test-results", body), rec)
	if err := h.RecordResults(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if len(f.results.results) != 1 {
		t.Errorf("expected 1 stored result, got %d", len(f.results.results))
	}
}

func TestHandler_RecordResults_MissingPatient(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/test-results", `{"category":"A"}`), httptest.NewRecorder())
	expectHTTPError(t, h.RecordResults(c), http.StatusBadRequest, "Missing required field: patientId")
}

func TestHandler_ListResults_RequiresPatient(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/test-results", nil), httptest.NewRecorder())
	expectHTTPError(t, h.ListResults(c), http.StatusBadRequest, "Patient ID is required")
}

func TestHandler_DeleteResult_NotFound(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())
	expectHTTPError(t, h.DeleteResult(c), http.StatusNotFound, "Test result not found")
}

func TestHandler_GenerateReport(t *testing.T) {
	h, f, e := newTestHandler()
	pid := f.addPatient("Asha Rao")
	seedResult(f, pid, "Hematology", "CBC", "Hemoglobin", "18", "12-16", time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC))

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("patientId")
	c.SetParamValues(pid.String())
	if err := h.GenerateReport(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["patientName"] != "Asha Rao" || body["patientCode"] != "PAT000001" {
		t.Errorf("unexpected header: %s", rec.Body.String())
	}
	tests, _ := body["tests"].([]interface{})
	if len(tests) != 1 {
		t.Fatalf("expected 1 test line, got %d", len(tests))
	}
	line := tests[0].(map[string]interface{})
	if line["status"] != "High" || line["testDate"] != "2024-02-05 10:00:00" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestHandler_GenerateReport_BadWindow(t *testing.T) {
	h, f, e := newTestHandler()
	pid := f.addPatient("Asha Rao")
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?start=2024-13-01&end=2024-01-31", nil), httptest.NewRecorder())
	c.SetParamNames("patientId")
	c.SetParamValues(pid.String())
	expectHTTPError(t, h.GenerateReport(c), http.StatusBadRequest, "")
}

func TestHandler_GenerateReport_UnknownPatient(t *testing.T) {
	h, _, e := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("patientId")
	c.SetParamValues(uuid.New().String())
	expectHTTPError(t, h.GenerateReport(c), http.StatusNotFound, "Patient not found")
}

func TestHandler_TrackAndCount(t *testing.T) {
	h, f, e := newTestHandler()
	pid := f.addPatient("Asha Rao")

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/reports/track", `{"patientId":"`+pid.String()+`"}`), rec)
	if err := h.TrackReport(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/api/reports/track", `{}`), httptest.NewRecorder())
	expectHTTPError(t, h.TrackReport(c), http.StatusBadRequest, "Patient ID is required")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/reports/count", nil), rec)
	if err := h.CountReports(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"count":1}` {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/api/reports/recent", nil), rec)
	if err := h.RecentReports(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var recent []map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &recent)
	if len(recent) != 1 || recent[0]["patientName"] != "Asha Rao" {
		t.Errorf("unexpected recent: %s", rec.Body.String())
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, _, e := newTestHandler()
	h.RegisterRoutes(e.Group("/api"))

	want := map[string]bool{
		"GET /api/tests/categories":   false,
		"POST /api/test-results":      false,
		"GET /api/reports/:patientId": false,
		"POST /api/reports/track":     false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, found := range want {
		if !found {
			t.Errorf("route %s not registered", route)
		}
	}
}
