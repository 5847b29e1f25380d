package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"stockflow/internal/domain"
	"stockflow/internal/repos"
	"stockflow/internal/services"
)

func TestDashboardStats(t *testing.T) {
	db := testDB(t)
	inv := repos.NewInventoryRepo(db)
	shipRepo := repos.NewShipmentRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	prods := repos.NewProductRepo(db)

	dash := services.NewDashboardService(inv, shipRepo, orderRepo)

	// Fresh seed: 5 SKUs, 24+12+0+5+40 units, one product running low.
	st, err := dash.Stats()
	require.NoError(t, err)
	require.Equal(t, 5, st.TotalSKUs)
	require.Equal(t, 81, st.TotalUnits)
	require.Equal(t, 1, st.LowStockCount)
	require.Equal(t, 0, st.PendingShipments)
	require.Equal(t, 0, st.ActiveOrders)

	low, err := dash.LowStockItems()
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "p-cap-red", low[0].ID)

	// In-flight work shows up in the counters.
	shipSvc := services.NewShipmentService(shipRepo, prods)
	_, err = shipSvc.Create("Pending restock")
	require.NoError(t, err)

	orderSvc := services.NewOrderService(orderRepo, inv, prods)
	_, err = orderSvc.Create("Dana", domain.SourceLocal, []services.OrderLineInput{{ProductID: "p-tote-nat", Qty: 1}})
	require.NoError(t, err)

	st, err = dash.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, st.PendingShipments)
	require.Equal(t, 1, st.ActiveOrders)
	require.Equal(t, 80, st.TotalUnits)
}
