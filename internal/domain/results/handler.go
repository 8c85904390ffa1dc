package results

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/librelims/lims/internal/platform/auth"
	"github.com/librelims/lims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "lab_tech"))
	g.GET("/results", h.ListResults)
	g.GET("/results/:id", h.GetResult)
	g.GET("/results/:id/details", h.ListDetails)
	g.PUT("/results/:id/details/statuses", h.UpdateDetailStatuses)
	g.GET("/result-details/:id/transitions", h.DetailTransitions)
}

func (h *Handler) GetResult(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	r, err := h.svc.GetResult(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "result not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListResults(c echo.Context) error {
	pg := pagination.FromContext(c)
	filters := ListFilters{
		StatusGroup:     c.QueryParam("status_group"),
		PatientDocument: c.QueryParam("document"),
		PatientName:     c.QueryParam("patient"),
		OrderCode:       c.QueryParam("order_code"),
	}
	items, total, err := h.svc.ListResults(c.Request().Context(), filters, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListDetails(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListDetails(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "result not found")
		}
		return err
	}
	if items == nil {
		items = []*ResultDetail{}
	}
	return c.JSON(http.StatusOK, items)
}

type detailStatusUpdate struct {
	Updates map[uuid.UUID]string `json:"updates"`
}

func (h *Handler) UpdateDetailStatuses(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req detailStatusUpdate
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateDetailStatuses(c.Request().Context(), id, req.Updates); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "result not found")
		}
		return err
	}
	r, err := h.svc.GetResult(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DetailTransitions(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.DetailTransitions(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "detail not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, items)
}
