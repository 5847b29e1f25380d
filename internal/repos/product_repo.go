package repos

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"stockflow/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// Create registers a new catalog entry. SKUs are unique (case-insensitive).
func (r *ProductRepo) Create(id, sku, name string, openingQty int) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id, sku, name, quantity_in_stock)
	  VALUES(?, ?, ?, ?)
	`, id, sku, name, openingQty)
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return fmt.Errorf("%w: sku %q already registered", domain.ErrValidation, sku)
	}
	return err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, sku, name, quantity_in_stock, created_at
	  FROM products WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return domain.Product{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return p, err
}

func (r *ProductRepo) BySKU(sku string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
	  SELECT id, sku, name, quantity_in_stock, created_at
	  FROM products WHERE LOWER(sku) = LOWER(?)
	`, sku)
	if err == sql.ErrNoRows {
		return domain.Product{}, fmt.Errorf("%w: sku %s", domain.ErrNotFound, sku)
	}
	return p, err
}

// Search filters by case-insensitive name-or-SKU substring. An empty query
// lists the catalog up to limit.
func (r *ProductRepo) Search(q string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Product
	if q == "" {
		err := r.db.Select(&out, `
		  SELECT id, sku, name, quantity_in_stock, created_at
		  FROM products
		  ORDER BY LOWER(name)
		  LIMIT ?
		`, limit)
		return out, err
	}
	like := "%" + strings.ToLower(q) + "%"
	err := r.db.Select(&out, `
	  SELECT id, sku, name, quantity_in_stock, created_at
	  FROM products
	  WHERE LOWER(name) LIKE ? OR LOWER(sku) LIKE ?
	  ORDER BY LOWER(name)
	  LIMIT ?
	`, like, like, limit)
	return out, err
}
