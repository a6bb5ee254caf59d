package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"storefront-payments/internal/dto"
	"storefront-payments/internal/model"
	"storefront-payments/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	providerMercadoPago = "mercadopago"

	headerSignature = "X-Signature"
	headerRequestID = "X-Request-Id"

	maxWebhookBody = 1 << 20
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	if c.Param("provider") != providerMercadoPago {
		return echo.NewHTTPError(http.StatusNotFound, "unknown payment provider")
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	var n model.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification body")
	}
	// older notification versions only carry the resource in the query
	if n.Type == "" {
		n.Type = c.QueryParam("type")
	}
	if n.Data.ID == "" {
		n.Data.ID = model.ResourceID(c.QueryParam("data.id"))
	}

	headers := service.WebhookHeaders{
		Signature: c.Request().Header.Get(headerSignature),
		RequestID: c.Request().Header.Get(headerRequestID),
	}

	result, err := h.webhookService.HandleNotification(ctx, headers, &n, body)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return echo.NewHTTPError(http.StatusForbidden, "invalid signature")
		}
		slog.ErrorContext(ctx, "webhook handling failed", "request_id", headers.RequestID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "webhook processing failed").SetInternal(err)
	}

	return c.JSON(http.StatusOK, &dto.WebhookResponse{
		Status: string(result.Outcome),
	})
}
