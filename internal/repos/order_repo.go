package repos

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockflow/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderItemInsert is one requested line of a new order.
type OrderItemInsert struct {
	ID        string
	ProductID string
	Qty       int
}

// CreateWithItems inserts the order header and all its line items as one
// unit. Every line starts unallocated; allocation is a separate ledger step.
func (r *OrderRepo) CreateWithItems(id, customerName string, source domain.OrderSource, items []OrderItemInsert) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders(id, customer_name, source, status)
	  VALUES(?, ?, ?, 'AWAITING_STOCK')
	`, id, customerName, source); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(id, order_id, product_id, qty, allocated)
		  VALUES(?, ?, ?, ?, 0)
		`, it.ID, id, it.ProductID, it.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
	  SELECT id, customer_name, source, status, created_at
	  FROM orders WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return o, err
}

// List returns orders newest first, optionally filtered by status.
func (r *OrderRepo) List(status domain.OrderStatus) ([]domain.Order, error) {
	var out []domain.Order
	if status == "" {
		err := r.db.Select(&out, `
		  SELECT id, customer_name, source, status, created_at
		  FROM orders
		  ORDER BY datetime(created_at) DESC, id
		`)
		return out, err
	}
	err := r.db.Select(&out, `
	  SELECT id, customer_name, source, status, created_at
	  FROM orders
	  WHERE status = ?
	  ORDER BY datetime(created_at) DESC, id
	`, status)
	return out, err
}

func (r *OrderRepo) Items(orderID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := r.db.Select(&out, `
	  SELECT oi.id, oi.order_id, oi.product_id, p.sku, p.name, oi.qty, oi.allocated
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	  WHERE oi.order_id = ?
	  ORDER BY p.sku, oi.id
	`, orderID)
	return out, err
}

// UpdateStatusGuarded commits from -> to only if the order is still in from.
// Returning false means a concurrent transition won the race (or the caller
// read stale state); nothing was changed.
func (r *OrderRepo) UpdateStatusGuarded(id string, from, to domain.OrderStatus) (bool, error) {
	res, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// PromoteIfFullyAllocated commits AWAITING_STOCK -> READY_TO_SHIP only while
// every line item holds a reservation, checked inside the same statement. A
// caller that saw another allocator's claim cannot promote on that claim
// alone; the flag state at commit time decides.
func (r *OrderRepo) PromoteIfFullyAllocated(id string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders SET status = 'READY_TO_SHIP'
	  WHERE id = ? AND status = 'AWAITING_STOCK'
	    AND NOT EXISTS (SELECT 1 FROM order_items WHERE order_id = ? AND allocated = 0)
	`, id, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DemoteIfUnderAllocated reverts READY_TO_SHIP -> AWAITING_STOCK when a line
// item lost its reservation after the promote committed (an allocator's
// ledger decrement failed and its flag was rolled back).
func (r *OrderRepo) DemoteIfUnderAllocated(id string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE orders SET status = 'AWAITING_STOCK'
	  WHERE id = ? AND status = 'READY_TO_SHIP'
	    AND EXISTS (SELECT 1 FROM order_items WHERE order_id = ? AND allocated = 0)
	`, id, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// SetAllocated flips a line item's reservation flag, guarded by its expected
// current value. A false return means another request already flipped it, so
// the caller must not touch the ledger for this line.
func (r *OrderRepo) SetAllocated(itemID string, from, to bool) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE order_items SET allocated = ? WHERE id = ? AND allocated = ?
	`, to, itemID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CountActive counts orders still needing work (AWAITING_STOCK or READY_TO_SHIP).
func (r *OrderRepo) CountActive() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE status IN ('AWAITING_STOCK','READY_TO_SHIP')`)
	return n, err
}
