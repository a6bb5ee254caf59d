package service

import (
	"context"
	"fmt"

	"storefront-payments/internal/dto"
	"storefront-payments/internal/repository"
)

type UserService interface {
	GetPurchases(ctx context.Context, userID uint) ([]*dto.PurchaseSummary, error)
}

type userServiceImpl struct {
	purchaseRepo repository.PurchaseRepository
	shipmentRepo repository.ShipmentRepository
}

func NewUserService(
	purchaseRepo repository.PurchaseRepository,
	shipmentRepo repository.ShipmentRepository,
) UserService {
	return &userServiceImpl{
		purchaseRepo: purchaseRepo,
		shipmentRepo: shipmentRepo,
	}
}

func (s *userServiceImpl) GetPurchases(ctx context.Context, userID uint) ([]*dto.PurchaseSummary, error) {
	purchases, err := s.purchaseRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases of user %d: %w", userID, err)
	}

	summaries := make([]*dto.PurchaseSummary, 0, len(purchases))
	for _, p := range purchases {
		items, err := s.purchaseRepo.GetItems(ctx, nil, p.ID)
		if err != nil {
			return nil, fmt.Errorf("get items of purchase %d: %w", p.ID, err)
		}
		shipment, err := s.shipmentRepo.FindByID(ctx, p.ShipmentID)
		if err != nil {
			return nil, fmt.Errorf("get shipment of purchase %d: %w", p.ID, err)
		}

		summary := &dto.PurchaseSummary{
			ID:             p.ID,
			PaymentID:      p.PaymentID,
			Amount:         p.Amount,
			ShipmentStatus: string(shipment.Status),
			LocalityID:     shipment.LocalityID,
			CreatedAt:      p.CreatedAt,
			Items:          make([]dto.PurchaseItem, 0, len(items)),
		}
		for _, item := range items {
			summary.Items = append(summary.Items, dto.PurchaseItem{
				ClotheID:  item.ClotheID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
