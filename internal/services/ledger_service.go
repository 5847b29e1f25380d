package services

import (
	"stockflow/internal/domain"
	"stockflow/internal/repos"
)

// LedgerService fronts the inventory ledger: the single source of truth for
// per-product stock counts.
type LedgerService struct {
	Inv *repos.InventoryRepo
}

func NewLedgerService(inv *repos.InventoryRepo) *LedgerService {
	return &LedgerService{Inv: inv}
}

func (s *LedgerService) GetQuantity(productID string) (int, error) {
	return s.Inv.Quantity(productID)
}

// Adjust applies a manual stock correction and returns the new quantity.
// Any integer delta is accepted; zero is a no-op that reads back the
// current count.
func (s *LedgerService) Adjust(productID string, delta int) (int, error) {
	return s.Inv.Adjust(productID, delta)
}

// Reset zeroes one product's stock, or every product's when productID is
// empty. Dev/admin utility.
func (s *LedgerService) Reset(productID string) error {
	if productID == "" {
		return s.Inv.ResetAll()
	}
	return s.Inv.Reset(productID)
}

// Overview lists the whole catalog with live stock, ordered by name.
func (s *LedgerService) Overview() ([]domain.Product, error) {
	return s.Inv.ListAll()
}
