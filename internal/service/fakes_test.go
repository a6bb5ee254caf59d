package service

import (
	"context"
	"sync"

	"storefront-payments/internal/model"
)

// fakeMercadoPago records calls and serves canned payments.
type fakeMercadoPago struct {
	mu          sync.Mutex
	payments    map[string]*model.PaymentRecord
	getErr      error
	getCalls    int
	preferences []*model.PreferenceRequest
	prefResult  *model.PreferenceResult
	prefErr     error
}

func newFakeMercadoPago() *fakeMercadoPago {
	return &fakeMercadoPago{
		payments: make(map[string]*model.PaymentRecord),
		prefResult: &model.PreferenceResult{
			ID:               "pref-1",
			InitPoint:        "https://www.mercadopago.com.ar/checkout/v1/redirect?pref_id=pref-1",
			SandboxInitPoint: "https://sandbox.mercadopago.com.ar/checkout/v1/redirect?pref_id=pref-1",
		},
	}
}

func (f *fakeMercadoPago) GetPayment(ctx context.Context, paymentID string) (*model.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.payments[paymentID]
	if !ok {
		return &model.PaymentRecord{ID: model.ResourceID(paymentID), Status: "pending"}, nil
	}
	cp := *record
	return &cp, nil
}

func (f *fakeMercadoPago) CreatePreference(ctx context.Context, pref *model.PreferenceRequest) (*model.PreferenceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preferences = append(f.preferences, pref)
	if f.prefErr != nil {
		return nil, f.prefErr
	}
	return f.prefResult, nil
}

func (f *fakeMercadoPago) GetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}
