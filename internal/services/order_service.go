package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"stockflow/internal/domain"
	"stockflow/internal/repos"
	"stockflow/internal/validate"
)

// OrderService is the fulfillment engine. It owns the sales-order lifecycle
// and moves stock in and out of reservation through the inventory ledger.
//
// Allocation is best-effort per line item: a line that cannot be covered
// leaves the order in AWAITING_STOCK instead of failing the request. The one
// loud exception is Complete, which refuses to mark an order fulfilled while
// any line is unreserved.
type OrderService struct {
	Orders *repos.OrderRepo
	Inv    *repos.InventoryRepo
	Prods  *repos.ProductRepo
}

func NewOrderService(orders *repos.OrderRepo, inv *repos.InventoryRepo, prods *repos.ProductRepo) *OrderService {
	return &OrderService{Orders: orders, Inv: inv, Prods: prods}
}

type OrderLineInput struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"quantity"`
}

// Create records a new order and immediately tries to reserve stock for each
// line. Status ends up READY_TO_SHIP only when every line allocated.
func (s *OrderService) Create(customerName string, source domain.OrderSource, lines []OrderLineInput) (domain.OrderDetail, error) {
	if customerName == "" {
		return domain.OrderDetail{}, fmt.Errorf("%w: missing customer name", domain.ErrValidation)
	}
	if !source.Valid() {
		return domain.OrderDetail{}, fmt.Errorf("%w: unknown order source %q", domain.ErrValidation, source)
	}
	if len(lines) == 0 {
		return domain.OrderDetail{}, fmt.Errorf("%w: order needs at least one line item", domain.ErrValidation)
	}
	seen := map[string]bool{}
	for _, ln := range lines {
		if !validate.Qty(ln.Qty) {
			return domain.OrderDetail{}, fmt.Errorf("%w: quantity must be between 1 and 100000", domain.ErrValidation)
		}
		if seen[ln.ProductID] {
			return domain.OrderDetail{}, fmt.Errorf("%w: duplicate product %s in order", domain.ErrValidation, ln.ProductID)
		}
		seen[ln.ProductID] = true
		if _, err := s.Prods.Get(ln.ProductID); err != nil {
			return domain.OrderDetail{}, err
		}
	}

	orderID := uuid.NewString()
	inserts := make([]repos.OrderItemInsert, 0, len(lines))
	for _, ln := range lines {
		inserts = append(inserts, repos.OrderItemInsert{ID: uuid.NewString(), ProductID: ln.ProductID, Qty: ln.Qty})
	}
	if err := s.Orders.CreateWithItems(orderID, customerName, source, inserts); err != nil {
		return domain.OrderDetail{}, err
	}

	if err := s.allocateOrder(orderID); err != nil {
		return domain.OrderDetail{}, err
	}
	return s.Get(orderID)
}

// Allocate retries reservation for an order that is waiting on stock,
// typically after a shipment was received.
func (s *OrderService) Allocate(orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if o.Status != domain.OrderAwaitingStock {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s is %s, only awaiting-stock orders can be allocated", domain.ErrInvalidState, orderID, o.Status)
	}
	if err := s.allocateOrder(orderID); err != nil {
		return domain.OrderDetail{}, err
	}
	return s.Get(orderID)
}

// Hold parks an order and returns every reserved unit to the ledger, so a
// stalled order cannot starve other customers of stock.
func (s *OrderService) Hold(orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if o.Status != domain.OrderAwaitingStock && o.Status != domain.OrderReadyToShip {
		return domain.OrderDetail{}, fmt.Errorf("%w: cannot hold order in status %s", domain.ErrInvalidState, o.Status)
	}
	ok, err := s.Orders.UpdateStatusGuarded(orderID, o.Status, domain.OrderOnHold)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if !ok {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s changed concurrently", domain.ErrInvalidState, orderID)
	}
	if err := s.releaseOrder(orderID); err != nil {
		return domain.OrderDetail{}, err
	}
	return s.Get(orderID)
}

// Resume takes an order off hold and re-attempts allocation. It lands in
// READY_TO_SHIP only if every line re-allocates; otherwise AWAITING_STOCK.
func (s *OrderService) Resume(orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if o.Status != domain.OrderOnHold {
		return domain.OrderDetail{}, fmt.Errorf("%w: only on-hold orders can resume, order %s is %s", domain.ErrInvalidState, orderID, o.Status)
	}
	ok, err := s.Orders.UpdateStatusGuarded(orderID, domain.OrderOnHold, domain.OrderAwaitingStock)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if !ok {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s changed concurrently", domain.ErrInvalidState, orderID)
	}
	if err := s.allocateOrder(orderID); err != nil {
		return domain.OrderDetail{}, err
	}
	return s.Get(orderID)
}

// Complete marks a fully-allocated order fulfilled. Stock was already
// decremented at allocation time, so no ledger movement happens here.
func (s *OrderService) Complete(orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if o.Status != domain.OrderReadyToShip {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s is %s, only ready-to-ship orders can be completed", domain.ErrInvalidState, orderID, o.Status)
	}
	items, err := s.Orders.Items(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	for _, it := range items {
		if !it.Allocated {
			return domain.OrderDetail{}, fmt.Errorf("%w: line %s (%s) has no stock reserved", domain.ErrInvalidState, it.ID, it.ProductSKU)
		}
	}
	ok, err := s.Orders.UpdateStatusGuarded(orderID, domain.OrderReadyToShip, domain.OrderCompleted)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if !ok {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s changed concurrently", domain.ErrInvalidState, orderID)
	}
	return s.Get(orderID)
}

// Cancel voids an order from any non-terminal state and returns whatever was
// reserved. Unallocated lines need no release.
func (s *OrderService) Cancel(orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if o.Status.Terminal() {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s is already %s", domain.ErrInvalidState, orderID, o.Status)
	}
	ok, err := s.Orders.UpdateStatusGuarded(orderID, o.Status, domain.OrderCancelled)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	if !ok {
		return domain.OrderDetail{}, fmt.Errorf("%w: order %s changed concurrently", domain.ErrInvalidState, orderID)
	}
	if err := s.releaseOrder(orderID); err != nil {
		return domain.OrderDetail{}, err
	}
	return s.Get(orderID)
}

func (s *OrderService) Get(orderID string) (domain.OrderDetail, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	items, err := s.Orders.Items(orderID)
	if err != nil {
		return domain.OrderDetail{}, err
	}
	return domain.OrderDetail{Order: o, Items: items}, nil
}

// List returns orders newest first, optionally filtered by status.
func (s *OrderService) List(status domain.OrderStatus) ([]domain.OrderDetail, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrValidation, status)
	}
	orders, err := s.Orders.List(status)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OrderDetail, 0, len(orders))
	for _, o := range orders {
		items, err := s.Orders.Items(o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.OrderDetail{Order: o, Items: items})
	}
	return out, nil
}

// allocateOrder attempts to reserve stock for every unallocated line, then
// tries the promote. The promote re-checks every line's flag inside its own
// UPDATE, so a claim observed from a concurrent allocator (whose ledger
// decrement may still fail) can never promote the order early.
// Out-of-stock lines are left for a later retry.
func (s *OrderService) allocateOrder(orderID string) error {
	items, err := s.Orders.Items(orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.Allocated {
			continue
		}
		if err := s.allocateItem(it); err != nil {
			return err
		}
	}
	_, err = s.Orders.PromoteIfFullyAllocated(orderID)
	return err
}

// allocateItem claims the line's reservation flag, then decrements the
// ledger. The flag claim serializes allocators: only the winner touches the
// ledger. A short-stock line is rolled back and left unallocated; if a
// concurrent promote already counted our claim, the demote undoes it.
func (s *OrderService) allocateItem(it domain.OrderItem) error {
	claimed, err := s.Orders.SetAllocated(it.ID, false, true)
	if err != nil || !claimed {
		return err
	}
	if _, err := s.Inv.Adjust(it.ProductID, -it.Qty); err != nil {
		if _, rbErr := s.Orders.SetAllocated(it.ID, true, false); rbErr != nil {
			return rbErr
		}
		if _, dErr := s.Orders.DemoteIfUnderAllocated(it.OrderID); dErr != nil {
			return dErr
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil
		}
		return err
	}
	return nil
}

// releaseOrder returns reserved stock for every allocated line. The guarded
// flag flip makes release idempotent: a line can never be released twice.
func (s *OrderService) releaseOrder(orderID string) error {
	items, err := s.Orders.Items(orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if !it.Allocated {
			continue
		}
		released, err := s.Orders.SetAllocated(it.ID, true, false)
		if err != nil {
			return err
		}
		if !released {
			continue
		}
		if _, err := s.Inv.Adjust(it.ProductID, it.Qty); err != nil {
			return err
		}
	}
	return nil
}
