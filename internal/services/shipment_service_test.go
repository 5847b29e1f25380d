package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"stockflow/internal/domain"
	"stockflow/internal/repos"
	"stockflow/internal/services"
)

type shipmentFixture struct {
	svc *services.ShipmentService
	inv *repos.InventoryRepo
}

func newShipmentFixture(t *testing.T) shipmentFixture {
	t.Helper()
	db := testDB(t)
	prods := repos.NewProductRepo(db)
	return shipmentFixture{
		svc: services.NewShipmentService(repos.NewShipmentRepo(db), prods),
		inv: repos.NewInventoryRepo(db),
	}
}

func (f shipmentFixture) qty(t *testing.T, productID string) int {
	t.Helper()
	q, err := f.inv.Quantity(productID)
	require.NoError(t, err)
	return q
}

func TestShipmentCreate_AutoName(t *testing.T) {
	f := newShipmentFixture(t)

	first, err := f.svc.Create("")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(first.Name, "Shipment - "))
	require.Equal(t, domain.ShipmentPlanning, first.Status)

	second, err := f.svc.Create("")
	require.NoError(t, err)
	require.Equal(t, first.Name+" (#1)", second.Name)

	third, err := f.svc.Create("")
	require.NoError(t, err)
	require.Equal(t, first.Name+" (#2)", third.Name)
}

func TestShipmentLifecycle_ReceiveIncrementsStock(t *testing.T) {
	f := newShipmentFixture(t)

	sh, err := f.svc.Create("Spring restock")
	require.NoError(t, err)

	_, err = f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-mug-330", Qty: 7})
	require.NoError(t, err)
	_, err = f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-cap-red", Qty: 3, CustomerName: "Dana"})
	require.NoError(t, err)

	det, err := f.svc.AdvanceStatus(sh.ID, domain.ShipmentOrdered)
	require.NoError(t, err)
	require.Equal(t, domain.ShipmentOrdered, det.Status)
	require.NotEmpty(t, det.OrderedAt)
	// Ordering alone moves no stock.
	require.Equal(t, 0, f.qty(t, "p-mug-330"))

	det, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentReceived)
	require.NoError(t, err)
	require.Equal(t, domain.ShipmentReceived, det.Status)
	require.NotEmpty(t, det.ReceivedAt)
	require.Equal(t, 7, f.qty(t, "p-mug-330"))
	require.Equal(t, 8, f.qty(t, "p-cap-red"))
}

func TestShipmentEdits_OnlyWhilePlanning(t *testing.T) {
	f := newShipmentFixture(t)

	sh, err := f.svc.Create("Locked down")
	require.NoError(t, err)
	det, err := f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-tote-nat", Qty: 2})
	require.NoError(t, err)
	itemID := det.Items[0].ID

	require.ErrorIs(t, f.svc.UpdateItemQty(itemID, 0), domain.ErrValidation)
	require.ErrorIs(t, f.svc.UpdateItemQty(itemID, 100001), domain.ErrValidation)

	require.NoError(t, f.svc.UpdateItemQty(itemID, 6))
	det, err = f.svc.Get(sh.ID)
	require.NoError(t, err)
	require.Equal(t, 6, det.Items[0].Qty)

	_, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentOrdered)
	require.NoError(t, err)

	_, err = f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-cap-red", Qty: 1})
	require.ErrorIs(t, err, domain.ErrInvalidState)
	require.ErrorIs(t, f.svc.UpdateItemQty(itemID, 9), domain.ErrInvalidState)
	require.ErrorIs(t, f.svc.RemoveItem(itemID), domain.ErrInvalidState)
}

func TestShipmentAdvance_InvalidTransitions(t *testing.T) {
	f := newShipmentFixture(t)

	sh, err := f.svc.Create("One way only")
	require.NoError(t, err)

	// No skipping ahead.
	_, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentReceived)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentOrdered)
	require.NoError(t, err)
	_, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentReceived)
	require.NoError(t, err)

	// No going back, no repeats.
	_, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentOrdered)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.AdvanceStatus(sh.ID, domain.ShipmentReceived)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.AdvanceStatus(sh.ID, "LOST")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestShipmentDelete_OnlyWhilePlanning(t *testing.T) {
	f := newShipmentFixture(t)

	sh, err := f.svc.Create("Abandoned plan")
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(sh.ID))
	_, err = f.svc.Get(sh.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	kept, err := f.svc.Create("Already ordered")
	require.NoError(t, err)
	_, err = f.svc.AdvanceStatus(kept.ID, domain.ShipmentOrdered)
	require.NoError(t, err)
	require.ErrorIs(t, f.svc.Delete(kept.ID), domain.ErrInvalidState)
}

func TestShipmentBatch_AllOrNothing(t *testing.T) {
	f := newShipmentFixture(t)

	sh, err := f.svc.Create("Batch test")
	require.NoError(t, err)

	// One bad line rejects the whole batch.
	_, err = f.svc.AddItemsBatch(sh.ID, []services.ShipmentLineInput{
		{ProductID: "p-cap-red", Qty: 2},
		{ProductID: "p-ghost", Qty: 1},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.AddItemsBatch(sh.ID, []services.ShipmentLineInput{
		{ProductID: "p-cap-red", Qty: 2},
		{ProductID: "p-cap-red", Qty: 3},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	det, err := f.svc.Get(sh.ID)
	require.NoError(t, err)
	require.Empty(t, det.Items)

	det, err = f.svc.AddItemsBatch(sh.ID, []services.ShipmentLineInput{
		{ProductID: "p-cap-red", Qty: 2},
		{ProductID: "p-tote-nat", Qty: 4, CustomerName: "Eve"},
	})
	require.NoError(t, err)
	require.Len(t, det.Items, 2)
}

func TestShipmentSummarize_ConsolidatesPerSKU(t *testing.T) {
	f := newShipmentFixture(t)

	sh, err := f.svc.Create("Supplier order")
	require.NoError(t, err)

	// Same product twice (one earmarked, one general) plus a second product.
	_, err = f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-tote-nat", Qty: 5, CustomerName: "Alice"})
	require.NoError(t, err)
	_, err = f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-tote-nat", Qty: 3})
	require.NoError(t, err)
	_, err = f.svc.AddItem(sh.ID, services.ShipmentLineInput{ProductID: "p-cap-red", Qty: 2})
	require.NoError(t, err)

	inv, err := f.svc.Summarize(sh.ID)
	require.NoError(t, err)
	require.Equal(t, "Supplier order", inv.ShipmentName)
	require.Equal(t, 10, inv.TotalItems)
	require.Len(t, inv.Items, 2)
	// Ordered by SKU.
	require.Equal(t, "CAP-RED", inv.Items[0].SKU)
	require.Equal(t, 2, inv.Items[0].TotalQty)
	require.Equal(t, "TOTE-NAT", inv.Items[1].SKU)
	require.Equal(t, 8, inv.Items[1].TotalQty)
}
