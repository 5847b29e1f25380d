package repos

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"stockflow/internal/domain"
)

type ShipmentRepo struct{ db *sqlx.DB }

func NewShipmentRepo(db *sqlx.DB) *ShipmentRepo { return &ShipmentRepo{db: db} }

// ShipmentItemInsert is one row of a manifest insert.
type ShipmentItemInsert struct {
	ID           string
	ProductID    string
	CustomerName string // empty = general stock
	Qty          int
}

func (r *ShipmentRepo) Create(id, name string) error {
	_, err := r.db.Exec(`
	  INSERT INTO shipments(id, name, status) VALUES(?, ?, 'PLANNING')
	`, id, name)
	return err
}

func (r *ShipmentRepo) NameExists(name string) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM shipments WHERE name = ?`, name); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ShipmentRepo) Get(id string) (domain.Shipment, error) {
	var s domain.Shipment
	err := r.db.Get(&s, `
	  SELECT id, name, status, created_at,
	         COALESCE(ordered_at,'')  AS ordered_at,
	         COALESCE(received_at,'') AS received_at
	  FROM shipments WHERE id = ?
	`, id)
	if err == sql.ErrNoRows {
		return domain.Shipment{}, fmt.Errorf("%w: shipment %s", domain.ErrNotFound, id)
	}
	return s, err
}

func (r *ShipmentRepo) List() ([]domain.Shipment, error) {
	var out []domain.Shipment
	err := r.db.Select(&out, `
	  SELECT id, name, status, created_at,
	         COALESCE(ordered_at,'')  AS ordered_at,
	         COALESCE(received_at,'') AS received_at
	  FROM shipments
	  ORDER BY datetime(created_at) DESC, id
	`)
	return out, err
}

func (r *ShipmentRepo) Items(shipmentID string) ([]domain.ShipmentItem, error) {
	var out []domain.ShipmentItem
	err := r.db.Select(&out, `
	  SELECT si.id, si.shipment_id, si.product_id, p.sku, p.name,
	         COALESCE(si.customer_name,'') AS customer_name, si.qty
	  FROM shipment_items si
	  JOIN products p ON p.id = si.product_id
	  WHERE si.shipment_id = ?
	  ORDER BY si.created_at, si.id
	`, shipmentID)
	return out, err
}

// ItemWithStatus returns a line item together with its parent shipment's
// status, so callers can enforce the PLANNING-only edit rule in one read.
func (r *ShipmentRepo) ItemWithStatus(itemID string) (domain.ShipmentItem, domain.ShipmentStatus, error) {
	var row struct {
		domain.ShipmentItem
		Status domain.ShipmentStatus `db:"status"`
	}
	err := r.db.Get(&row, `
	  SELECT si.id, si.shipment_id, si.product_id, p.sku, p.name,
	         COALESCE(si.customer_name,'') AS customer_name, si.qty, s.status
	  FROM shipment_items si
	  JOIN shipments s ON s.id = si.shipment_id
	  JOIN products  p ON p.id = si.product_id
	  WHERE si.id = ?
	`, itemID)
	if err == sql.ErrNoRows {
		return domain.ShipmentItem{}, "", fmt.Errorf("%w: shipment line item %s", domain.ErrNotFound, itemID)
	}
	return row.ShipmentItem, row.Status, err
}

func (r *ShipmentRepo) InsertItem(it ShipmentItemInsert, shipmentID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO shipment_items(id, shipment_id, product_id, customer_name, qty)
	  VALUES(?, ?, ?, NULLIF(?, ''), ?)
	`, it.ID, shipmentID, it.ProductID, it.CustomerName, it.Qty)
	return err
}

// InsertItemsBatch appends all rows or none of them.
func (r *ShipmentRepo) InsertItemsBatch(shipmentID string, items []ShipmentItemInsert) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO shipment_items(id, shipment_id, product_id, customer_name, qty)
		  VALUES(?, ?, ?, NULLIF(?, ''), ?)
		`, it.ID, shipmentID, it.ProductID, it.CustomerName, it.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ShipmentRepo) UpdateItemQty(itemID string, qty int) error {
	_, err := r.db.Exec(`UPDATE shipment_items SET qty = ? WHERE id = ?`, qty, itemID)
	return err
}

func (r *ShipmentRepo) DeleteItem(itemID string) error {
	_, err := r.db.Exec(`DELETE FROM shipment_items WHERE id = ?`, itemID)
	return err
}

// MarkOrdered commits PLANNING -> ORDERED. Returns false if the shipment was
// not in PLANNING anymore (lost race or invalid transition).
func (r *ShipmentRepo) MarkOrdered(shipmentID string) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE shipments SET status = 'ORDERED', ordered_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = 'PLANNING'
	`, shipmentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ReceiveAndIncrement commits ORDERED -> RECEIVED and applies every line
// item's increment to the ledger in the same transaction, so a failure rolls
// back both the counts and the status flip.
func (r *ShipmentRepo) ReceiveAndIncrement(shipmentID string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
	  UPDATE shipments SET status = 'RECEIVED', received_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND status = 'ORDERED'
	`, shipmentID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	var items []struct {
		ProductID string `db:"product_id"`
		Qty       int    `db:"qty"`
	}
	if err := tx.Select(&items, `
	  SELECT product_id, qty FROM shipment_items WHERE shipment_id = ?
	`, shipmentID); err != nil {
		return false, err
	}
	for _, it := range items {
		if _, err := adjustIn(tx, it.ProductID, it.Qty); err != nil {
			return false, err
		}
	}
	return true, tx.Commit()
}

// DeletePlanning removes a shipment only while it is still PLANNING.
// Returns false if the row exists but receipt or ordering already happened.
func (r *ShipmentRepo) DeletePlanning(shipmentID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM shipments WHERE id = ? AND status = 'PLANNING'`, shipmentID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Consolidate groups the manifest by product and sums quantities. Ordered by
// SKU so the result is stable for a given manifest.
func (r *ShipmentRepo) Consolidate(shipmentID string) ([]domain.InvoiceItem, error) {
	var out []domain.InvoiceItem
	err := r.db.Select(&out, `
	  SELECT p.sku, p.name, SUM(si.qty) AS total_qty
	  FROM shipment_items si
	  JOIN products p ON p.id = si.product_id
	  WHERE si.shipment_id = ?
	  GROUP BY si.product_id
	  ORDER BY p.sku
	`, shipmentID)
	return out, err
}

// CountPending counts shipments still in flight (PLANNING or ORDERED).
func (r *ShipmentRepo) CountPending() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM shipments WHERE status IN ('PLANNING','ORDERED')`)
	return n, err
}
