package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront-payments/internal/dto"
	"storefront-payments/internal/middleware"
	"storefront-payments/internal/service"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreatePayment(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := c.Get(middleware.UserIDKey).(uint)
	if !ok || userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.BuildCheckoutSession(ctx, userID, req.Items, req.Destination)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCheckout), errors.Is(err, service.ErrProductNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(ctx, "checkout session failed", "user_id", userID, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "checkout failed").SetInternal(err)
		}
	}

	return c.JSON(http.StatusOK, result)
}
