package diagnostics

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labassist/labassist/internal/platform/auth"
	"github.com/labassist/labassist/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleUser))

	g.GET("/tests", h.ListTests)
	g.GET("/tests/categories", h.TestCategories)
	g.GET("/tests/:id", h.GetTest)
	g.POST("/tests", h.CreateTest)
	g.PUT("/tests/:id", h.UpdateTest)
	g.DELETE("/tests/:id", h.DeleteTest)

	g.GET("/test-results", h.ListResults)
	g.POST("/test-results", h.RecordResults)
	g.DELETE("/test-results/:id", h.DeleteResult)

	g.GET("/reports/count", h.CountReports)
	g.GET("/reports/recent", h.RecentReports)
	g.POST("/reports/track", h.TrackReport)
	g.GET("/reports/:patientId", h.GenerateReport)
}

// httpError maps service errors to responses. Anything unrecognised is
// returned unchanged and rendered as a 500 by the error handler.
func httpError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrDuplicateTest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTestNotFound), errors.Is(err, ErrResultNotFound), errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// -- Test Catalog --

func (h *Handler) ListTests(c echo.Context) error {
	pg := pagination.FromContext(c)
	defs, total, err := h.svc.ListTests(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	pagination.SetTotal(c, total)
	if defs == nil {
		defs = []*TestDefinition{}
	}
	return c.JSON(http.StatusOK, defs)
}

func (h *Handler) TestCategories(c echo.Context) error {
	groups, err := h.svc.TestCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

func (h *Handler) GetTest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.svc.GetTest(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) CreateTest(c echo.Context) error {
	var d TestDefinition
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateTest(c.Request().Context(), &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var d TestDefinition
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d.ID = id
	if err := h.svc.UpdateTest(c.Request().Context(), &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Test updated successfully"})
}

func (h *Handler) DeleteTest(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTest(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Test deleted successfully"})
}

// -- Test Results --

func (h *Handler) ListResults(c echo.Context) error {
	raw := c.QueryParam("patientId")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Patient ID is required")
	}
	patientID, err := uuid.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patientId")
	}
	results, err := h.svc.ListResults(c.Request().Context(), patientID)
	if err != nil {
		return err
	}
	if results == nil {
		results = []*TestResult{}
	}
	return c.JSON(http.StatusOK, results)
}

func (h *Handler) RecordResults(c echo.Context) error {
	var req RecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	results, err := h.svc.RecordResults(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Test results added successfully",
		"results": results,
	})
}

func (h *Handler) DeleteResult(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteResult(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Test result deleted successfully"})
}

// -- Reports --

func (h *Handler) GenerateReport(c echo.Context) error {
	patientID, err := parseID(c, "patientId")
	if err != nil {
		return err
	}
	window, err := ParseDateWindow(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return httpError(err)
	}
	report, err := h.svc.GenerateReport(c.Request().Context(), patientID, window)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) TrackReport(c echo.Context) error {
	var body struct {
		PatientID string `json:"patientId"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	l, err := h.svc.TrackReport(c.Request().Context(), body.PatientID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) CountReports(c echo.Context) error {
	n, err := h.svc.CountReports(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) RecentReports(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit > pagination.MaxLimit {
		limit = pagination.MaxLimit
	}
	recent, err := h.svc.RecentReports(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if recent == nil {
		recent = []*RecentReport{}
	}
	return c.JSON(http.StatusOK, recent)
}
