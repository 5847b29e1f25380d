package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockflow/internal/domain"
	"stockflow/internal/repos"
	"stockflow/internal/validate"
)

// ShipmentService is the purchase planner. Shipments move one way through
// PLANNING -> ORDERED -> RECEIVED; the manifest is editable only while
// PLANNING, and receipt is the only path by which stock ever increases.
type ShipmentService struct {
	Shipments *repos.ShipmentRepo
	Prods     *repos.ProductRepo
}

func NewShipmentService(shipments *repos.ShipmentRepo, prods *repos.ProductRepo) *ShipmentService {
	return &ShipmentService{Shipments: shipments, Prods: prods}
}

type ShipmentLineInput struct {
	ProductID    string `json:"product_id"`
	Qty          int    `json:"quantity"`
	CustomerName string `json:"customer_name,omitempty"`
}

// Create opens a new shipment in PLANNING. With no name given it uses
// "Shipment - <date>", suffixed " (#n)" until unique.
func (s *ShipmentService) Create(name string) (domain.Shipment, error) {
	if name == "" {
		base := "Shipment - " + time.Now().Format("January 2, 2006")
		name = base
		for n := 1; ; n++ {
			exists, err := s.Shipments.NameExists(name)
			if err != nil {
				return domain.Shipment{}, err
			}
			if !exists {
				break
			}
			name = fmt.Sprintf("%s (#%d)", base, n)
		}
	}
	id := uuid.NewString()
	if err := s.Shipments.Create(id, name); err != nil {
		return domain.Shipment{}, err
	}
	return s.Shipments.Get(id)
}

// AddItem appends one manifest line. Only PLANNING shipments accept edits.
func (s *ShipmentService) AddItem(shipmentID string, line ShipmentLineInput) (domain.ShipmentDetail, error) {
	sh, err := s.Shipments.Get(shipmentID)
	if err != nil {
		return domain.ShipmentDetail{}, err
	}
	if sh.Status != domain.ShipmentPlanning {
		return domain.ShipmentDetail{}, fmt.Errorf("%w: cannot add items to a %s shipment", domain.ErrInvalidState, sh.Status)
	}
	if !validate.Qty(line.Qty) {
		return domain.ShipmentDetail{}, fmt.Errorf("%w: quantity must be between 1 and 100000", domain.ErrValidation)
	}
	if _, err := s.Prods.Get(line.ProductID); err != nil {
		return domain.ShipmentDetail{}, err
	}
	it := repos.ShipmentItemInsert{
		ID:           uuid.NewString(),
		ProductID:    line.ProductID,
		CustomerName: line.CustomerName,
		Qty:          line.Qty,
	}
	if err := s.Shipments.InsertItem(it, shipmentID); err != nil {
		return domain.ShipmentDetail{}, err
	}
	return s.Get(shipmentID)
}

// AddItemsBatch validates the whole batch up front, then appends all lines
// or none of them.
func (s *ShipmentService) AddItemsBatch(shipmentID string, lines []ShipmentLineInput) (domain.ShipmentDetail, error) {
	sh, err := s.Shipments.Get(shipmentID)
	if err != nil {
		return domain.ShipmentDetail{}, err
	}
	if sh.Status != domain.ShipmentPlanning {
		return domain.ShipmentDetail{}, fmt.Errorf("%w: cannot add items to a %s shipment", domain.ErrInvalidState, sh.Status)
	}
	if len(lines) == 0 {
		return domain.ShipmentDetail{}, fmt.Errorf("%w: batch needs at least one item", domain.ErrValidation)
	}
	seen := map[string]bool{}
	inserts := make([]repos.ShipmentItemInsert, 0, len(lines))
	for _, ln := range lines {
		if !validate.Qty(ln.Qty) {
			return domain.ShipmentDetail{}, fmt.Errorf("%w: quantity must be between 1 and 100000", domain.ErrValidation)
		}
		if seen[ln.ProductID] {
			return domain.ShipmentDetail{}, fmt.Errorf("%w: duplicate product %s in batch", domain.ErrValidation, ln.ProductID)
		}
		seen[ln.ProductID] = true
		if _, err := s.Prods.Get(ln.ProductID); err != nil {
			return domain.ShipmentDetail{}, err
		}
		inserts = append(inserts, repos.ShipmentItemInsert{
			ID:           uuid.NewString(),
			ProductID:    ln.ProductID,
			CustomerName: ln.CustomerName,
			Qty:          ln.Qty,
		})
	}
	if err := s.Shipments.InsertItemsBatch(shipmentID, inserts); err != nil {
		return domain.ShipmentDetail{}, err
	}
	return s.Get(shipmentID)
}

// UpdateItemQty changes a line's quantity while the parent is PLANNING.
func (s *ShipmentService) UpdateItemQty(itemID string, qty int) error {
	if !validate.Qty(qty) {
		return fmt.Errorf("%w: quantity must be between 1 and 100000", domain.ErrValidation)
	}
	_, status, err := s.Shipments.ItemWithStatus(itemID)
	if err != nil {
		return err
	}
	if status != domain.ShipmentPlanning {
		return fmt.Errorf("%w: cannot edit items of a %s shipment", domain.ErrInvalidState, status)
	}
	return s.Shipments.UpdateItemQty(itemID, qty)
}

// RemoveItem drops a line while the parent is PLANNING.
func (s *ShipmentService) RemoveItem(itemID string) error {
	_, status, err := s.Shipments.ItemWithStatus(itemID)
	if err != nil {
		return err
	}
	if status != domain.ShipmentPlanning {
		return fmt.Errorf("%w: cannot edit items of a %s shipment", domain.ErrInvalidState, status)
	}
	return s.Shipments.DeleteItem(itemID)
}

// AdvanceStatus moves PLANNING -> ORDERED or ORDERED -> RECEIVED; nothing
// else. Receipt increments the ledger for every line inside one transaction.
func (s *ShipmentService) AdvanceStatus(shipmentID string, target domain.ShipmentStatus) (domain.ShipmentDetail, error) {
	if !target.Valid() {
		return domain.ShipmentDetail{}, fmt.Errorf("%w: unknown shipment status %q", domain.ErrValidation, target)
	}
	sh, err := s.Shipments.Get(shipmentID)
	if err != nil {
		return domain.ShipmentDetail{}, err
	}

	switch {
	case sh.Status == domain.ShipmentPlanning && target == domain.ShipmentOrdered:
		ok, err := s.Shipments.MarkOrdered(shipmentID)
		if err != nil {
			return domain.ShipmentDetail{}, err
		}
		if !ok {
			return domain.ShipmentDetail{}, fmt.Errorf("%w: shipment %s changed concurrently", domain.ErrInvalidState, shipmentID)
		}
	case sh.Status == domain.ShipmentOrdered && target == domain.ShipmentReceived:
		ok, err := s.Shipments.ReceiveAndIncrement(shipmentID)
		if err != nil {
			return domain.ShipmentDetail{}, err
		}
		if !ok {
			return domain.ShipmentDetail{}, fmt.Errorf("%w: shipment %s changed concurrently", domain.ErrInvalidState, shipmentID)
		}
	default:
		return domain.ShipmentDetail{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, sh.Status, target)
	}
	return s.Get(shipmentID)
}

// Delete removes a shipment only while PLANNING, so a receipt that already
// moved inventory can never be undone by deletion.
func (s *ShipmentService) Delete(shipmentID string) error {
	sh, err := s.Shipments.Get(shipmentID)
	if err != nil {
		return err
	}
	ok, err := s.Shipments.DeletePlanning(shipmentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: cannot delete a %s shipment", domain.ErrInvalidState, sh.Status)
	}
	return nil
}

// Summarize consolidates the manifest per SKU for supplier invoicing.
func (s *ShipmentService) Summarize(shipmentID string) (domain.Invoice, error) {
	sh, err := s.Shipments.Get(shipmentID)
	if err != nil {
		return domain.Invoice{}, err
	}
	items, err := s.Shipments.Consolidate(shipmentID)
	if err != nil {
		return domain.Invoice{}, err
	}
	total := 0
	for _, it := range items {
		total += it.TotalQty
	}
	return domain.Invoice{ShipmentName: sh.Name, Items: items, TotalItems: total}, nil
}

func (s *ShipmentService) Get(shipmentID string) (domain.ShipmentDetail, error) {
	sh, err := s.Shipments.Get(shipmentID)
	if err != nil {
		return domain.ShipmentDetail{}, err
	}
	items, err := s.Shipments.Items(shipmentID)
	if err != nil {
		return domain.ShipmentDetail{}, err
	}
	return domain.ShipmentDetail{Shipment: sh, Items: items}, nil
}

func (s *ShipmentService) List() ([]domain.Shipment, error) {
	return s.Shipments.List()
}
