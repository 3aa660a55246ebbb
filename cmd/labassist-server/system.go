package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/labassist/labassist/internal/platform/auth"
)

// systemHandler serves database initialization and the server clock.
type systemHandler struct {
	migrate func(ctx context.Context) (fresh bool, err error)
	seed    func(ctx context.Context) error
	now     func() time.Time
}

func newSystemHandler(migrate func(context.Context) (bool, error), seed func(context.Context) error) *systemHandler {
	return &systemHandler{migrate: migrate, seed: seed, now: time.Now}
}

func (h *systemHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/init-db", h.InitDB, auth.RequireRole(auth.RoleAdmin))
	api.GET("/current-date", h.CurrentDate)
}

// initialize applies migrations and seeds the admin user. fresh is true
// when the schema was created by this call.
func (h *systemHandler) initialize(ctx context.Context) (bool, error) {
	fresh, err := h.migrate(ctx)
	if err != nil {
		return false, fmt.Errorf("migrate: %w", err)
	}
	if err := h.seed(ctx); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return fresh, nil
}

func (h *systemHandler) InitDB(c echo.Context) error {
	fresh, err := h.initialize(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Database initialized successfully",
		"freshInit": fresh,
	})
}

func (h *systemHandler) CurrentDate(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"date": h.now().Format("2006-01-02")})
}
