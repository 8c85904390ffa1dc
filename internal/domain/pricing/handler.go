package pricing

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
	read := api.Group("", auth.RequireRole("admin", "reception"))
	read.GET("/pricing/resolve", h.ResolvePrice)
	read.GET("/pricing/coupons/validate", h.ValidateCoupon)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/price-lists", h.ListPriceLists)
	admin.POST("/price-lists", h.CreatePriceList)
	admin.GET("/price-lists/:id", h.GetPriceList)
	admin.PUT("/price-lists/:id", h.UpdatePriceList)
	admin.GET("/price-lists/:id/items", h.ListItems)
	admin.PUT("/price-lists/:id/items", h.SetItem)
	admin.DELETE("/price-lists/:id/items/:examID", h.DeleteItem)
	admin.GET("/coupons", h.ListCoupons)
	admin.POST("/coupons", h.CreateCoupon)
	admin.PUT("/coupons/:id", h.UpdateCoupon)
}

func (h *Handler) ResolvePrice(c echo.Context) error {
	examID, err := uuid.Parse(c.QueryParam("exam_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid exam_id")
	}
	var referralID *uuid.UUID
	if v := c.QueryParam("referral_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid referral_id")
		}
		referralID = &id
	}

	res, err := h.svc.ResolvePrice(c.Request().Context(), examID, referralID, c.QueryParam("coupon_code"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "exam not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ValidateCoupon(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code is required")
	}
	v, err := h.svc.ValidateCoupon(c.Request().Context(), code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) CreatePriceList(c echo.Context) error {
	var pl PriceList
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePriceList(c.Request().Context(), &pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, pl)
}

func (h *Handler) GetPriceList(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pl, err := h.svc.GetPriceList(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "price list not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *Handler) UpdatePriceList(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var pl PriceList
	if err := c.Bind(&pl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	pl.ID = id
	if err := h.svc.UpdatePriceList(c.Request().Context(), &pl); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "price list not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pl)
}

func (h *Handler) ListPriceLists(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPriceLists(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListItems(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListItems(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*PriceListItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) SetItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item PriceListItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item.PriceListID = id
	if err := h.svc.SetItem(c.Request().Context(), &item); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "price list or exam not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	listID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	examID, err := uuid.Parse(c.Param("examID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid exam id")
	}
	if err := h.svc.DeleteItem(c.Request().Context(), listID, examID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateCoupon(c echo.Context) error {
	var coupon Coupon
	if err := c.Bind(&coupon); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateCoupon(c.Request().Context(), &coupon); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "price list not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, coupon)
}

func (h *Handler) UpdateCoupon(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var coupon Coupon
	if err := c.Bind(&coupon); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	coupon.ID = id
	if err := h.svc.UpdateCoupon(c.Request().Context(), &coupon); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, coupon)
}

func (h *Handler) ListCoupons(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListCoupons(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
