package admin

import (
	"errors"
	"net/http"

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

// RegisterRoutes mounts the admin routes on api. loginLimiter guards the
// login endpoint and may be nil.
func (h *Handler) RegisterRoutes(api *echo.Group, loginLimiter echo.MiddlewareFunc) {
	// Public
	if loginLimiter != nil {
		api.POST("/login", h.Login, loginLimiter)
	} else {
		api.POST("/login", h.Login)
	}
	api.GET("/labs", h.ListLabs)

	g := api.Group("", auth.RequireRole(auth.RoleUser))
	g.POST("/labs", h.CreateLab)
	g.GET("/lab-info", h.GetLabInfo)
	g.POST("/lab-info", h.CreateLab)
	g.PUT("/lab-info", h.UpdateLabInfo)

	g.POST("/admin/update-credentials", h.UpdateCredentials)
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.POST("/security/change-email", h.ChangeEmail)
	g.POST("/security/change-password", h.ChangePassword)
}

func httpError(err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	case errors.Is(err, ErrEmailInUse):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownEmail), errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrWrongPassword):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrLabNotFound), errors.Is(err, ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}

func callerID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return id, nil
}

func message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, map[string]string{"message": msg})
}

// -- Labs --

func (h *Handler) ListLabs(c echo.Context) error {
	pg := pagination.FromContext(c)
	labs, total, err := h.svc.ListLabs(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	pagination.SetTotal(c, total)
	if labs == nil {
		labs = []*Lab{}
	}
	return c.JSON(http.StatusOK, labs)
}

func (h *Handler) CreateLab(c echo.Context) error {
	var l Lab
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateLab(c.Request().Context(), &l); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) GetLabInfo(c echo.Context) error {
	l, err := h.svc.LabInfo(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) UpdateLabInfo(c echo.Context) error {
	var l Lab
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateLabInfo(c.Request().Context(), &l); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, l)
}

// -- Authentication --

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing email or password")
	}
	resp, err := h.svc.Login(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateCredentials(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var req CredentialsUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No data provided")
	}
	if err := h.svc.UpdateCredentials(c.Request().Context(), id, &req); err != nil {
		return httpError(err)
	}
	return message(c, "Credentials updated successfully")
}

func (h *Handler) ChangeEmail(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var req EmailChange
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ChangeEmail(c.Request().Context(), id, &req); err != nil {
		return httpError(err)
	}
	return message(c, "Email updated successfully")
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var req PasswordChange
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.ChangePassword(c.Request().Context(), id, &req); err != nil {
		return httpError(err)
	}
	return message(c, "Password updated successfully")
}

// -- Profile --

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}
	var upd ProfileUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	asAdmin := auth.HasRole(ctx, auth.RoleAdmin)
	p, err := h.svc.UpdateProfile(ctx, id, &upd, asAdmin)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
