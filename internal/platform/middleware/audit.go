package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/labassist/labassist/internal/platform/auth"
)

// auditedPrefixes are the route groups that expose patient data.
var auditedPrefixes = []string{
	"/api/patients",
	"/api/test-results",
	"/api/reports",
}

// Audit logs one "patient_data_access" event for every request to a route
// that reads or changes patient data: who, what action, which patient.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			resource := auditedResource(path)
			if resource == "" {
				return next(c)
			}

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}

			ctx := c.Request().Context()
			rid, _ := c.Get("request_id").(string)
			logger.Info().
				Str("type", "audit").
				Str("request_id", rid).
				Str("user_id", auth.UserIDFromContext(ctx)).
				Str("user_email", auth.EmailFromContext(ctx)).
				Str("resource", resource).
				Str("action", methodToAction(c.Request().Method)).
				Str("patient_id", auditedPatientID(c, resource)).
				Str("remote_ip", c.RealIP()).
				Int("status", status).
				Msg("patient_data_access")

			return err
		}
	}
}

func auditedResource(path string) string {
	for _, prefix := range auditedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return strings.TrimPrefix(prefix, "/api/")
		}
	}
	return ""
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// auditedPatientID finds the patient a request concerns, from the route
// parameters or the patientId query parameter.
func auditedPatientID(c echo.Context, resource string) string {
	if id := c.Param("patientId"); isUUID(id) {
		return id
	}
	if resource == "patients" {
		if id := c.Param("id"); isUUID(id) {
			return id
		}
	}
	if id := c.QueryParam("patientId"); isUUID(id) {
		return id
	}
	return ""
}

func isUUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
