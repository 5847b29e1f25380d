package services_test

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"stockflow/internal/domain"
	"stockflow/internal/repos"
	"stockflow/internal/services"
)

func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type orderFixture struct {
	svc    *services.OrderService
	inv    *repos.InventoryRepo
	orders *repos.OrderRepo
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	db := testDB(t)
	inv := repos.NewInventoryRepo(db)
	orders := repos.NewOrderRepo(db)
	return orderFixture{
		svc:    services.NewOrderService(orders, inv, repos.NewProductRepo(db)),
		inv:    inv,
		orders: orders,
	}
}

func (f orderFixture) qty(t *testing.T, productID string) int {
	t.Helper()
	q, err := f.inv.Quantity(productID)
	require.NoError(t, err)
	return q
}

func TestOrderCreate_FullAllocation(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 2},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderReadyToShip, o.Status)
	require.Len(t, o.Items, 1)
	require.True(t, o.Items[0].Allocated)
	require.Equal(t, 3, f.qty(t, "p-cap-red")) // 5 - 2
}

func TestOrderCreate_PartialAllocationWaits(t *testing.T) {
	f := newOrderFixture(t)

	// p-mug-330 has zero stock: that line stays unreserved, the covered line
	// still gets its stock.
	o, err := f.svc.Create("Dana", domain.SourceAmazon, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 2},
		{ProductID: "p-mug-330", Qty: 1},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)

	byID := map[string]domain.OrderItem{}
	for _, it := range o.Items {
		byID[it.ProductID] = it
	}
	require.True(t, byID["p-cap-red"].Allocated)
	require.False(t, byID["p-mug-330"].Allocated)
	require.Equal(t, 3, f.qty(t, "p-cap-red"))
	require.Equal(t, 0, f.qty(t, "p-mug-330"))
}

func TestOrderAllocate_RetryAfterRestock(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-mug-330", Qty: 3},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)

	_, err = f.inv.Adjust("p-mug-330", 5)
	require.NoError(t, err)

	o, err = f.svc.Allocate(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderReadyToShip, o.Status)
	require.Equal(t, 2, f.qty(t, "p-mug-330"))
}

func TestOrderAllocate_OnlyFromAwaitingStock(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 1},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderReadyToShip, o.Status)

	_, err = f.svc.Allocate(o.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOrderHoldResume_RoundTrip(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.qty(t, "p-cap-red"))

	// Hold returns every reserved unit.
	o, err = f.svc.Hold(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderOnHold, o.Status)
	require.False(t, o.Items[0].Allocated)
	require.Equal(t, 5, f.qty(t, "p-cap-red"))

	// Resume re-reserves and promotes again.
	o, err = f.svc.Resume(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderReadyToShip, o.Status)
	require.True(t, o.Items[0].Allocated)
	require.Equal(t, 3, f.qty(t, "p-cap-red"))
}

func TestOrderResume_MayLoseStockToOthers(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 4},
	})
	require.NoError(t, err)
	_, err = f.svc.Hold(o.ID)
	require.NoError(t, err)

	// Someone else takes the stock while the order is parked.
	_, err = f.svc.Create("Eve", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 3},
	})
	require.NoError(t, err)

	o, err = f.svc.Resume(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)
	require.Equal(t, 2, f.qty(t, "p-cap-red"))
}

func TestOrderComplete_NoExtraLedgerMovement(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 2},
	})
	require.NoError(t, err)

	o, err = f.svc.Complete(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCompleted, o.Status)
	// Stock was decremented at allocation time; completing moves nothing.
	require.Equal(t, 3, f.qty(t, "p-cap-red"))
}

func TestOrderComplete_RejectsUnfulfillable(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-mug-330", Qty: 1},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)

	_, err = f.svc.Complete(o.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOrderCancel_ReleasesReservedStock(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.qty(t, "p-cap-red"))

	o, err = f.svc.Cancel(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, o.Status)
	require.Equal(t, 5, f.qty(t, "p-cap-red"))
}

// Replays the interleaving where allocator A claims a line, allocator B sees
// the claim and promotes, and A's ledger decrement then fails: A's rollback
// plus demote must land the order back in AWAITING_STOCK with the line
// unreserved, and a later retry must still work.
func TestOrderAllocate_FailedClaimRollbackRepairsPromote(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-mug-330", Qty: 1},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)
	itemID := o.Items[0].ID

	// A claims the line but has not touched the ledger yet.
	claimed, err := f.orders.SetAllocated(itemID, false, true)
	require.NoError(t, err)
	require.True(t, claimed)

	// B retries allocation, sees the claim, and promotes on it.
	_, err = f.svc.Allocate(o.ID)
	require.NoError(t, err)

	// A's decrement fails on empty stock: flag rolls back, demote repairs.
	rolled, err := f.orders.SetAllocated(itemID, true, false)
	require.NoError(t, err)
	require.True(t, rolled)
	demoted, err := f.orders.DemoteIfUnderAllocated(o.ID)
	require.NoError(t, err)
	require.True(t, demoted)

	o, err = f.svc.Get(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)
	require.False(t, o.Items[0].Allocated)
	require.Equal(t, 0, f.qty(t, "p-mug-330"))

	// Not wedged: a restock and retry completes the allocation.
	_, err = f.inv.Adjust("p-mug-330", 2)
	require.NoError(t, err)
	o, err = f.svc.Allocate(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderReadyToShip, o.Status)
	require.True(t, o.Items[0].Allocated)
	require.Equal(t, 1, f.qty(t, "p-mug-330"))
}

func TestOrderCancel_PartialAllocationReleasesOnlyReserved(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 2},
		{ProductID: "p-mug-330", Qty: 1},
	})
	require.NoError(t, err)
	require.Equal(t, domain.OrderAwaitingStock, o.Status)
	require.Equal(t, 3, f.qty(t, "p-cap-red"))

	o, err = f.svc.Cancel(o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrderCancelled, o.Status)
	// Only the reserved line's units come back; the line that never held
	// stock contributes nothing.
	require.Equal(t, 5, f.qty(t, "p-cap-red"))
	require.Equal(t, 0, f.qty(t, "p-mug-330"))
	for _, it := range o.Items {
		require.False(t, it.Allocated)
	}
}

func TestOrderTerminal_RejectsAllTransitions(t *testing.T) {
	f := newOrderFixture(t)

	o, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 1},
	})
	require.NoError(t, err)
	_, err = f.svc.Complete(o.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(o.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.svc.Hold(o.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.svc.Resume(o.ID)
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestOrderCreate_Validation(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create("", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-cap-red", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create("Dana", "EBAY", []services.OrderLineInput{{ProductID: "p-cap-red", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create("Dana", domain.SourceLocal, nil)
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-cap-red", Qty: 0}})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-cap-red", Qty: 100001}})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{
		{ProductID: "p-cap-red", Qty: 1},
		{ProductID: "p-cap-red", Qty: 2},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-ghost", Qty: 1}})
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Nothing above should have touched the ledger.
	require.Equal(t, 5, f.qty(t, "p-cap-red"))
}

func TestOrderList_FiltersByStatus(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-cap-red", Qty: 1}})
	require.NoError(t, err)
	_, err = f.svc.Create("Eve", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-mug-330", Qty: 1}})
	require.NoError(t, err)

	ready, err := f.svc.List(domain.OrderReadyToShip)
	require.NoError(t, err)
	require.Len(t, ready, 1)
	require.Equal(t, "Dana", ready[0].CustomerName)

	all, err := f.svc.List("")
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = f.svc.List("BOGUS")
	require.ErrorIs(t, err, domain.ErrValidation)
}
