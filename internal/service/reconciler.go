package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storefront-payments/internal/metrics"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"gorm.io/gorm"
)

type ReconciliationState string

const (
	StateNotStarted ReconciliationState = "NotStarted"
	StateInProgress ReconciliationState = "InProgress"
	StateCommitted  ReconciliationState = "Committed"
	StateRolledBack ReconciliationState = "RolledBack"
)

type ReconciliationOutcome string

const (
	OutcomeCreated          ReconciliationOutcome = "created"
	OutcomeAlreadyProcessed ReconciliationOutcome = "already_processed"
)

type ReconciliationResult struct {
	State      ReconciliationState
	Outcome    ReconciliationOutcome
	PurchaseID uint
	ShipmentID uint
}

type OrderReconciler interface {
	// AlreadyProcessed is the fast-path idempotency check. It is an
	// optimization only; Reconcile re-checks inside its transaction.
	AlreadyProcessed(ctx context.Context, paymentID string) (bool, error)
	Reconcile(ctx context.Context, record *model.PaymentRecord) (*ReconciliationResult, error)
}

type orderReconcilerImpl struct {
	db            *gorm.DB
	purchaseRepo  repository.PurchaseRepository
	shipmentRepo  repository.ShipmentRepository
	inventoryRepo repository.InventoryRepository
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewOrderReconciler(
	db *gorm.DB,
	purchaseRepo repository.PurchaseRepository,
	shipmentRepo repository.ShipmentRepository,
	inventoryRepo repository.InventoryRepository,
	m *metrics.Metrics,
) OrderReconciler {
	return &orderReconcilerImpl{
		db:            db,
		purchaseRepo:  purchaseRepo,
		shipmentRepo:  shipmentRepo,
		inventoryRepo: inventoryRepo,
		metrics:       m,
		now:           time.Now,
	}
}

func (s *orderReconcilerImpl) AlreadyProcessed(ctx context.Context, paymentID string) (bool, error) {
	exists, err := s.purchaseRepo.Exists(ctx, paymentID)
	if err != nil {
		return false, fmt.Errorf("lookup purchase by payment: %w", err)
	}
	return exists, nil
}

func (s *orderReconcilerImpl) Reconcile(ctx context.Context, record *model.PaymentRecord) (*ReconciliationResult, error) {
	result := &ReconciliationResult{State: StateNotStarted}

	if !record.IsApproved() {
		return result, fmt.Errorf("reconcile payment %s: status %q is not approved", record.ID, record.Status)
	}
	if err := record.Metadata.Validate(); err != nil {
		s.metrics.IncReconciliation("invalid_metadata")
		return result, fmt.Errorf("reconcile payment %s: %w", record.ID, err)
	}

	paymentID := record.ID.String()
	meta := record.Metadata
	started := s.now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result.State = StateInProgress

		existing, err := s.purchaseRepo.FindByPaymentID(ctx, tx, paymentID)
		if err != nil {
			return fmt.Errorf("lookup purchase by payment: %w", err)
		}
		if existing != nil {
			result.PurchaseID = existing.ID
			result.ShipmentID = existing.ShipmentID
			return errAlreadyProcessed
		}

		shipment := &model.Shipment{
			DispatchDate: started,
			LocalityID:   meta.Destination.LocalityID,
			Status:       model.ShipmentPending,
		}
		if err := s.shipmentRepo.Create(ctx, tx, shipment); err != nil {
			return fmt.Errorf("store shipment: %w", err)
		}

		purchase := &model.Purchase{
			Amount:     meta.TotalAmount,
			PaymentID:  paymentID,
			UserID:     meta.UserID,
			ShipmentID: shipment.ID,
		}
		if err := s.purchaseRepo.Create(ctx, tx, purchase); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// lost the race to a concurrent delivery of the same payment
				return errAlreadyProcessed
			}
			return fmt.Errorf("store purchase: %w", err)
		}

		for _, item := range meta.LineItems {
			clothe, err := s.inventoryRepo.FindByID(ctx, tx, item.ClotheID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ProductNotFoundError{ClotheID: item.ClotheID}
				}
				return fmt.Errorf("load clothe %d: %w", item.ClotheID, err)
			}
			if clothe.Stock < item.Quantity {
				return &InsufficientStockError{ClotheID: item.ClotheID, Requested: item.Quantity, Available: clothe.Stock}
			}

			err = s.purchaseRepo.CreateItem(ctx, tx, &model.PurchaseClothe{
				PurchaseID: purchase.ID,
				ClotheID:   item.ClotheID,
				Quantity:   item.Quantity,
				UnitPrice:  item.UnitPrice,
			})
			if err != nil {
				return fmt.Errorf("store line item for clothe %d: %w", item.ClotheID, err)
			}

			if err := s.inventoryRepo.Decrement(ctx, tx, item.ClotheID, item.Quantity); err != nil {
				if errors.Is(err, repository.ErrStockConflict) {
					return &InsufficientStockError{ClotheID: item.ClotheID, Requested: item.Quantity, Available: clothe.Stock}
				}
				return fmt.Errorf("decrement stock for clothe %d: %w", item.ClotheID, err)
			}
		}

		result.PurchaseID = purchase.ID
		result.ShipmentID = shipment.ID
		return nil
	})
	s.metrics.ObserveReconciliationDuration(s.now().Sub(started).Seconds())

	switch {
	case err == nil:
		result.State = StateCommitted
		result.Outcome = OutcomeCreated
		s.metrics.IncReconciliation(string(OutcomeCreated))
		slog.InfoContext(ctx, "payment reconciled",
			"payment_id", paymentID,
			"purchase_id", result.PurchaseID,
			"shipment_id", result.ShipmentID,
			"amount", meta.TotalAmount.String(),
			"line_items", len(meta.LineItems))
		return result, nil

	case errors.Is(err, errAlreadyProcessed):
		result.State = StateRolledBack
		result.Outcome = OutcomeAlreadyProcessed
		s.metrics.IncReconciliation(string(OutcomeAlreadyProcessed))
		slog.InfoContext(ctx, "payment already reconciled", "payment_id", paymentID)
		return result, nil

	default:
		result.State = StateRolledBack
		result.PurchaseID = 0
		result.ShipmentID = 0
		s.metrics.IncReconciliation(reconcileFailureLabel(err))
		slog.ErrorContext(ctx, "reconciliation rolled back", "payment_id", paymentID, "error", err)
		return result, fmt.Errorf("reconcile payment %s: %w", paymentID, err)
	}
}

func reconcileFailureLabel(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductNotFound):
		return "product_not_found"
	default:
		return "error"
	}
}
