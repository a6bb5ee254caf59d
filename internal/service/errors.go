package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidCheckout   = errors.New("invalid checkout request")

	// errAlreadyProcessed aborts the reconciliation transaction when the
	// payment id already has a purchase. It never leaves this package.
	errAlreadyProcessed = errors.New("payment already reconciled")
)

type ProductNotFoundError struct {
	ClotheID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("clothe %d: %s", e.ClotheID, ErrProductNotFound)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrProductNotFound }

type InsufficientStockError struct {
	ClotheID  uint
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("clothe %d: %s (requested %d, available %d)",
		e.ClotheID, ErrInsufficientStock, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
