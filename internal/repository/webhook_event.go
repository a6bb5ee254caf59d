package repository

import (
	"context"

	"storefront-payments/internal/model"

	"gorm.io/gorm"
)

type WebhookEventRepository interface {
	Record(ctx context.Context, event *model.WebhookEvent) error
	ListByPaymentID(ctx context.Context, paymentID string) ([]*model.WebhookEvent, error)
}

type webhookEventRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepositoryImpl{db: db}
}

func (r *webhookEventRepositoryImpl) Record(ctx context.Context, event *model.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *webhookEventRepositoryImpl) ListByPaymentID(ctx context.Context, paymentID string) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	return events, nil
}
