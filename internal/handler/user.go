package handler

import (
	"net/http"

	"storefront-payments/internal/middleware"
	"storefront-payments/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetPurchases(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := c.Get(middleware.UserIDKey).(uint)
	if !ok || userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}

	purchases, err := h.userService.GetPurchases(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, purchases)
}
