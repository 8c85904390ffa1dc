package billing

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/librelims/lims/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin"))
	g.GET("/company", h.GetCompany)
	g.POST("/company", h.CreateCompany)
	g.PUT("/company", h.UpdateCompany)
}

func (h *Handler) GetCompany(c echo.Context) error {
	company, err := h.svc.GetCompany(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "company not configured")
		}
		return err
	}
	return c.JSON(http.StatusOK, company)
}

func (h *Handler) CreateCompany(c echo.Context) error {
	var company Company
	if err := c.Bind(&company); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCompany(c.Request().Context(), &company); err != nil {
		if errors.Is(err, ErrCompanyExists) {
			return echo.NewHTTPError(http.StatusBadRequest, "company already configured")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *Handler) UpdateCompany(c echo.Context) error {
	var company Company
	if err := c.Bind(&company); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateCompany(c.Request().Context(), &company); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "company not configured")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, company)
}
