package repository

import (
	"context"
	"errors"

	"storefront-payments/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Exists(ctx context.Context, paymentID string) (bool, error)
	// FindByPaymentID returns nil without error when no purchase holds the payment id.
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.Purchase, error)
	Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error
	CreateItem(ctx context.Context, tx *gorm.DB, item *model.PurchaseClothe) error
	GetItems(ctx context.Context, tx *gorm.DB, purchaseID uint) ([]*model.PurchaseClothe, error)
	ListByUserID(ctx context.Context, userID uint) ([]*model.Purchase, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

func (r *purchaseRepoImpl) Exists(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error

	return count > 0, err
}

func (r *purchaseRepoImpl) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID string) (*model.Purchase, error) {
	var purchase model.Purchase
	err := conn(r.db, tx).WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &purchase, nil
}

// Create fails with gorm.ErrDuplicatedKey when another purchase already
// holds the payment id.
func (r *purchaseRepoImpl) Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error {
	return conn(r.db, tx).WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepoImpl) CreateItem(ctx context.Context, tx *gorm.DB, item *model.PurchaseClothe) error {
	return conn(r.db, tx).WithContext(ctx).Create(item).Error
}

func (r *purchaseRepoImpl) GetItems(ctx context.Context, tx *gorm.DB, purchaseID uint) ([]*model.PurchaseClothe, error) {
	var items []*model.PurchaseClothe
	err := conn(r.db, tx).WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

// ListByUserID returns newest purchases first.
func (r *purchaseRepoImpl) ListByUserID(ctx context.Context, userID uint) ([]*model.Purchase, error) {
	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}
