package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"storefront-payments/internal/client"
	"storefront-payments/internal/config"
	"storefront-payments/internal/dto"
	"storefront-payments/internal/metrics"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const shippingItemID = "shipping"

type CheckoutService interface {
	BuildCheckoutSession(ctx context.Context, userID uint, items []*dto.CheckoutItem, destination dto.CheckoutDestination) (*dto.CheckoutResponse, error)
}

type checkoutServiceImpl struct {
	mpClient         client.MercadoPagoClient
	mpCfg            config.MercadoPago
	inventoryRepo    repository.InventoryRepository
	shippingCostRepo repository.ShippingCostRepository
	metrics          *metrics.Metrics
}

func NewCheckoutService(
	mpClient client.MercadoPagoClient,
	mpCfg config.MercadoPago,
	inventoryRepo repository.InventoryRepository,
	shippingCostRepo repository.ShippingCostRepository,
	m *metrics.Metrics,
) CheckoutService {
	return &checkoutServiceImpl{
		mpClient:         mpClient,
		mpCfg:            mpCfg,
		inventoryRepo:    inventoryRepo,
		shippingCostRepo: shippingCostRepo,
		metrics:          m,
	}
}

func (s *checkoutServiceImpl) BuildCheckoutSession(
	ctx context.Context,
	userID uint,
	items []*dto.CheckoutItem,
	destination dto.CheckoutDestination,
) (*dto.CheckoutResponse, error) {
	resp, err := s.buildCheckoutSession(ctx, userID, items, destination)
	if err != nil {
		s.metrics.IncCheckoutSession(metrics.StatusFailure)
		return nil, err
	}
	s.metrics.IncCheckoutSession(metrics.StatusSuccess)
	return resp, nil
}

func (s *checkoutServiceImpl) buildCheckoutSession(
	ctx context.Context,
	userID uint,
	items []*dto.CheckoutItem,
	destination dto.CheckoutDestination,
) (*dto.CheckoutResponse, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrInvalidCheckout)
	}
	if destination.LocalityID == "" {
		return nil, fmt.Errorf("%w: missing destination locality", ErrInvalidCheckout)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidCheckout)
	}

	// one line per distinct clothe; merged totals must fit int32
	quantities := make(map[uint]int32, len(items))
	for _, item := range items {
		if item == nil || item.ClotheID == 0 {
			return nil, fmt.Errorf("%w: item without clothe id", ErrInvalidCheckout)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidCheckout)
		}
		merged := int64(quantities[item.ClotheID]) + int64(item.Quantity)
		if merged > math.MaxInt32 {
			return nil, fmt.Errorf("%w: quantity of clothe %d is too large", ErrInvalidCheckout, item.ClotheID)
		}
		quantities[item.ClotheID] = int32(merged)
	}

	clotheIDs := make([]uint, 0, len(quantities))
	for id := range quantities {
		clotheIDs = append(clotheIDs, id)
	}
	sort.Slice(clotheIDs, func(i, j int) bool { return clotheIDs[i] < clotheIDs[j] })

	clothes, err := s.inventoryRepo.FindMany(ctx, clotheIDs)
	if err != nil {
		return nil, fmt.Errorf("get many clothes by ids: %w", err)
	}
	byID := make(map[uint]*model.Clothe, len(clothes))
	for _, c := range clothes {
		byID[c.ID] = c
	}

	shippingCost := decimal.Zero
	destinationName := destination.DestinationName
	cost, err := s.shippingCostRepo.FindByLocalityID(ctx, destination.LocalityID)
	if err != nil {
		return nil, fmt.Errorf("get shipping cost: %w", err)
	}
	if cost != nil {
		shippingCost = cost.Cost
		if destinationName == "" {
			destinationName = cost.LocalityName
		}
	}
	if destinationName == "" {
		destinationName = destination.LocalityID
	}

	meta := model.CheckoutMetadata{
		UserID: userID,
		Destination: model.Destination{
			LocalityID:      destination.LocalityID,
			DestinationName: destinationName,
			ShippingCost:    shippingCost,
		},
		LineItems: make([]model.MetadataLineItem, 0, len(clotheIDs)),
	}
	prefItems := make([]model.PreferenceItem, 0, len(clotheIDs)+1)

	for _, id := range clotheIDs {
		clothe, ok := byID[id]
		if !ok {
			return nil, &ProductNotFoundError{ClotheID: id}
		}
		qty := quantities[id]
		if qty <= 0 {
			return nil, fmt.Errorf("%w: quantity of clothe %d must be positive", ErrInvalidCheckout, id)
		}

		meta.LineItems = append(meta.LineItems, model.MetadataLineItem{
			ClotheID:  clothe.ID,
			Name:      clothe.Name,
			Quantity:  qty,
			UnitPrice: clothe.Price,
		})
		prefItems = append(prefItems, model.PreferenceItem{
			ID:         strconv.FormatUint(uint64(clothe.ID), 10),
			Title:      clothe.Name,
			Quantity:   qty,
			CurrencyID: s.mpCfg.Currency,
			UnitPrice:  clothe.Price.InexactFloat64(),
		})
	}

	meta.TotalAmount = meta.ItemsTotal().Add(shippingCost)

	prefItems = append(prefItems, model.PreferenceItem{
		ID:         shippingItemID,
		Title:      "Envío a " + destinationName,
		Quantity:   1,
		CurrencyID: s.mpCfg.Currency,
		UnitPrice:  shippingCost.InexactFloat64(),
	})

	externalRef := uuid.NewString()
	pref, err := s.mpClient.CreatePreference(ctx, &model.PreferenceRequest{
		Items: prefItems,
		BackURLs: model.BackURLs{
			Success: s.mpCfg.BackURLSuccess,
			Failure: s.mpCfg.BackURLFailure,
			Pending: s.mpCfg.BackURLPending,
		},
		AutoReturn:        "approved",
		NotificationURL:   s.mpCfg.NotificationURL,
		ExternalReference: externalRef,
		Metadata:          meta,
	})
	if err != nil {
		s.metrics.IncProviderRequest(metrics.OperationCreatePreference, metrics.StatusFailure)
		return nil, fmt.Errorf("mercadopago api create preference: %w", err)
	}
	s.metrics.IncProviderRequest(metrics.OperationCreatePreference, metrics.StatusSuccess)

	checkoutURL := pref.InitPoint
	if s.mpCfg.Sandbox && pref.SandboxInitPoint != "" {
		checkoutURL = pref.SandboxInitPoint
	}

	slog.InfoContext(ctx, "checkout session created",
		"user_id", userID,
		"preference_id", pref.ID,
		"external_reference", externalRef,
		"total_amount", meta.TotalAmount.String())

	return &dto.CheckoutResponse{
		CheckoutURL:       checkoutURL,
		PreferenceID:      pref.ID,
		ExternalReference: externalRef,
		TotalAmount:       meta.TotalAmount,
	}, nil
}
