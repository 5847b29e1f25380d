package services

import (
	"fmt"

	"github.com/google/uuid"

	"stockflow/internal/domain"
	"stockflow/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

// Register adds a product to the catalog. The SKU is immutable afterwards;
// only the ledger may change the stock count from here on.
func (s *CatalogService) Register(sku, name string, openingQty int) (domain.Product, error) {
	if sku == "" || name == "" {
		return domain.Product{}, fmt.Errorf("%w: sku and name are required", domain.ErrValidation)
	}
	if openingQty < 0 {
		return domain.Product{}, fmt.Errorf("%w: opening quantity cannot be negative", domain.ErrValidation)
	}
	id := uuid.NewString()
	if err := s.Prods.Create(id, sku, name, openingQty); err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Get(id)
}

// Search lists products by name-or-SKU substring; empty query lists the
// catalog up to limit.
func (s *CatalogService) Search(q string, limit int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Prods.Search(q, limit)
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) BySKU(sku string) (domain.Product, error) {
	return s.Prods.BySKU(sku)
}
