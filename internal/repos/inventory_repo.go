package repos

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockflow/internal/domain"
)

// InventoryRepo is the inventory ledger: the only code allowed to mutate
// products.quantity_in_stock.
type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// Quantity returns current stock for a product.
func (r *InventoryRepo) Quantity(productID string) (int, error) {
	var qty int
	err := r.db.Get(&qty, `SELECT quantity_in_stock FROM products WHERE id = ?`, productID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	if err != nil {
		return 0, err
	}
	return qty, nil
}

// Adjust applies delta (either sign) as a single atomic read-modify-write.
// The conditional UPDATE is the serialization point: two concurrent callers
// can never both observe sufficient stock and drive the count negative.
func (r *InventoryRepo) Adjust(productID string, delta int) (int, error) {
	return adjustIn(r.db, productID, delta)
}

// AdjustTx is Adjust inside a caller-owned transaction (shipment receipt
// applies all its increments all-or-nothing).
func (r *InventoryRepo) AdjustTx(tx *sqlx.Tx, productID string, delta int) (int, error) {
	return adjustIn(tx, productID, delta)
}

func adjustIn(e sqlx.Ext, productID string, delta int) (int, error) {
	res, err := e.Exec(`
		UPDATE products
		SET quantity_in_stock = quantity_in_stock + ?
		WHERE id = ? AND quantity_in_stock + ? >= 0
	`, delta, productID, delta)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Either the product is missing or the delta would go negative.
		var exists int
		if err := sqlx.Get(e, &exists, `SELECT COUNT(*) FROM products WHERE id = ?`, productID); err != nil {
			return 0, err
		}
		if exists == 0 {
			return 0, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return 0, fmt.Errorf("%w: product %s, delta %d", domain.ErrInsufficientStock, productID, delta)
	}

	var qty int
	if err := sqlx.Get(e, &qty, `SELECT quantity_in_stock FROM products WHERE id = ?`, productID); err != nil {
		return 0, err
	}
	return qty, nil
}

// Reset zeroes stock for one product. Dev/admin utility; no availability
// check needed since it only decreases.
func (r *InventoryRepo) Reset(productID string) error {
	res, err := r.db.Exec(`UPDATE products SET quantity_in_stock = 0 WHERE id = ?`, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	return nil
}

// ResetAll zeroes stock for every product.
func (r *InventoryRepo) ResetAll() error {
	_, err := r.db.Exec(`UPDATE products SET quantity_in_stock = 0`)
	return err
}

// ListAll returns every product with its live stock level, ordered by name.
func (r *InventoryRepo) ListAll() ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
		SELECT id, sku, name, quantity_in_stock, created_at
		FROM products
		ORDER BY LOWER(name)
	`)
	return out, err
}

// TotalSKUs counts catalog entries.
func (r *InventoryRepo) TotalSKUs() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products`)
	return n, err
}

// TotalUnits sums stock across the catalog.
func (r *InventoryRepo) TotalUnits() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COALESCE(SUM(quantity_in_stock),0) FROM products`)
	return n, err
}

// LowStock returns up to limit products that are in stock but running low
// (0 < qty <= threshold), scarcest first. Zero-stock catalog rows are a
// different problem and are excluded.
func (r *InventoryRepo) LowStock(threshold, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := r.db.Select(&out, `
		SELECT id, sku, name, quantity_in_stock, created_at
		FROM products
		WHERE quantity_in_stock > 0 AND quantity_in_stock <= ?
		ORDER BY quantity_in_stock ASC, LOWER(name)
		LIMIT ?
	`, threshold, limit)
	return out, err
}

// CountLowStock counts products with 0 < qty <= threshold.
func (r *InventoryRepo) CountLowStock(threshold int) (int, error) {
	var n int
	err := r.db.Get(&n, `
		SELECT COUNT(*) FROM products
		WHERE quantity_in_stock > 0 AND quantity_in_stock <= ?
	`, threshold)
	return n, err
}
