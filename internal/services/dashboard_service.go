package services

import (
	"stockflow/internal/domain"
	"stockflow/internal/repos"
)

// lowStockThreshold marks products worth restocking soon (in stock but <= 5
// units left).
const lowStockThreshold = 5

type DashboardStats struct {
	TotalSKUs        int `json:"total_skus"`
	TotalUnits       int `json:"total_units"`
	LowStockCount    int `json:"low_stock_count"`
	PendingShipments int `json:"pending_shipments"`
	ActiveOrders     int `json:"active_orders"`
}

type DashboardService struct {
	Inv       *repos.InventoryRepo
	Shipments *repos.ShipmentRepo
	Orders    *repos.OrderRepo
}

func NewDashboardService(inv *repos.InventoryRepo, shipments *repos.ShipmentRepo, orders *repos.OrderRepo) *DashboardService {
	return &DashboardService{Inv: inv, Shipments: shipments, Orders: orders}
}

func (s *DashboardService) Stats() (DashboardStats, error) {
	var st DashboardStats
	var err error
	if st.TotalSKUs, err = s.Inv.TotalSKUs(); err != nil {
		return st, err
	}
	if st.TotalUnits, err = s.Inv.TotalUnits(); err != nil {
		return st, err
	}
	if st.LowStockCount, err = s.Inv.CountLowStock(lowStockThreshold); err != nil {
		return st, err
	}
	if st.PendingShipments, err = s.Shipments.CountPending(); err != nil {
		return st, err
	}
	if st.ActiveOrders, err = s.Orders.CountActive(); err != nil {
		return st, err
	}
	return st, nil
}

// LowStockItems returns the five scarcest in-stock products.
func (s *DashboardService) LowStockItems() ([]domain.Product, error) {
	return s.Inv.LowStock(lowStockThreshold, 5)
}
