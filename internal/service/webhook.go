package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront-payments/internal/client"
	"storefront-payments/internal/metrics"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"gorm.io/datatypes"
)

type WebhookOutcome string

const (
	WebhookIgnored          WebhookOutcome = "ignored"
	WebhookNotApproved      WebhookOutcome = "not_approved"
	WebhookProcessed        WebhookOutcome = "processed"
	WebhookAlreadyProcessed WebhookOutcome = "already_processed"

	// audit and metric labels for failed deliveries
	webhookRejected = "invalid_signature"
	webhookFailed   = "error"
)

type WebhookHeaders struct {
	Signature string
	RequestID string
}

type WebhookResult struct {
	Outcome    WebhookOutcome
	PaymentID  string
	PurchaseID uint
}

type WebhookService interface {
	// HandleNotification runs one provider notification through
	// verify, idempotency guard, fetch and reconcile. An error means the
	// provider should retry, except ErrInvalidSignature.
	HandleNotification(ctx context.Context, headers WebhookHeaders, n *model.Notification, payload []byte) (*WebhookResult, error)
}

type webhookServiceImpl struct {
	verifier       *SignatureVerifier
	verifyAllKinds bool
	mpClient       client.MercadoPagoClient
	reconciler     OrderReconciler
	eventRepo      repository.WebhookEventRepository
	metrics        *metrics.Metrics
}

func NewWebhookService(
	verifier *SignatureVerifier,
	verifyAllKinds bool,
	mpClient client.MercadoPagoClient,
	reconciler OrderReconciler,
	eventRepo repository.WebhookEventRepository,
	m *metrics.Metrics,
) WebhookService {
	return &webhookServiceImpl{
		verifier:       verifier,
		verifyAllKinds: verifyAllKinds,
		mpClient:       mpClient,
		reconciler:     reconciler,
		eventRepo:      eventRepo,
		metrics:        m,
	}
}

func (s *webhookServiceImpl) HandleNotification(
	ctx context.Context,
	headers WebhookHeaders,
	n *model.Notification,
	payload []byte,
) (*WebhookResult, error) {
	result, err := s.handle(ctx, headers, n)

	label := ""
	switch {
	case err == nil:
		label = string(result.Outcome)
	case errors.Is(err, ErrInvalidSignature):
		label = webhookRejected
	default:
		label = webhookFailed
	}
	s.metrics.IncWebhookNotification(label)
	s.record(ctx, headers, n, payload, label, err)

	return result, err
}

func (s *webhookServiceImpl) handle(ctx context.Context, headers WebhookHeaders, n *model.Notification) (*WebhookResult, error) {
	paymentID := n.Data.ID.String()
	logger := slog.With("request_id", headers.RequestID, "kind", n.Type, "payment_id", paymentID)

	if !n.IsPayment() {
		if s.verifyAllKinds && !s.verifier.Verify(headers.Signature, headers.RequestID, paymentID) {
			logger.WarnContext(ctx, "rejected notification with invalid signature")
			return nil, ErrInvalidSignature
		}
		logger.DebugContext(ctx, "ignoring non-payment notification")
		return &WebhookResult{Outcome: WebhookIgnored}, nil
	}

	if !s.verifier.Verify(headers.Signature, headers.RequestID, paymentID) {
		logger.WarnContext(ctx, "rejected payment notification with invalid signature")
		return nil, ErrInvalidSignature
	}

	// a purchase only exists for an approved payment, so a replay never
	// needs the provider round trip
	processed, err := s.reconciler.AlreadyProcessed(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if processed {
		logger.InfoContext(ctx, "payment notification replayed")
		return &WebhookResult{Outcome: WebhookAlreadyProcessed, PaymentID: paymentID}, nil
	}

	record, err := s.mpClient.GetPayment(ctx, paymentID)
	if err != nil {
		s.metrics.IncProviderRequest(metrics.OperationGetPayment, metrics.StatusFailure)
		logger.ErrorContext(ctx, "failed to fetch payment", "error", err)
		return nil, fmt.Errorf("mercadopago api get payment: %w", err)
	}
	s.metrics.IncProviderRequest(metrics.OperationGetPayment, metrics.StatusSuccess)

	if !record.IsApproved() {
		logger.InfoContext(ctx, "payment not approved", "status", record.Status, "status_detail", record.StatusDetail)
		return &WebhookResult{Outcome: WebhookNotApproved, PaymentID: paymentID}, nil
	}

	reconciled, err := s.reconciler.Reconcile(ctx, record)
	if err != nil {
		return nil, err
	}

	outcome := WebhookProcessed
	if reconciled.Outcome == OutcomeAlreadyProcessed {
		outcome = WebhookAlreadyProcessed
	}
	return &WebhookResult{Outcome: outcome, PaymentID: paymentID, PurchaseID: reconciled.PurchaseID}, nil
}

// record writes the audit row. Failures are logged and never change the
// response to the provider.
func (s *webhookServiceImpl) record(
	ctx context.Context,
	headers WebhookHeaders,
	n *model.Notification,
	payload []byte,
	outcome string,
	handleErr error,
) {
	event := &model.WebhookEvent{
		RequestID:  headers.RequestID,
		Kind:       n.Type,
		PaymentID:  n.Data.ID.String(),
		Outcome:    outcome,
		ReceivedAt: time.Now(),
	}
	if len(payload) > 0 {
		event.Payload = datatypes.JSON(payload)
	}
	if handleErr != nil {
		msg := handleErr.Error()
		if len(msg) > 512 {
			msg = msg[:512]
		}
		event.Error = msg
	}

	if err := s.eventRepo.Record(context.WithoutCancel(ctx), event); err != nil {
		slog.WarnContext(ctx, "failed to record webhook event", "request_id", headers.RequestID, "error", err)
	}
}
