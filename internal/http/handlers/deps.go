package handlers

import (
	"stockflow/internal/repos"
	"stockflow/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	ShipmentHandler  *ShipmentHandler
	OrderHandler     *OrderHandler
	DashboardHandler *DashboardHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	shipRepo := repos.NewShipmentRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo)
	ledgerSvc := services.NewLedgerService(invRepo)
	shipSvc := services.NewShipmentService(shipRepo, prodRepo)
	orderSvc := services.NewOrderService(orderRepo, invRepo, prodRepo)
	dashSvc := services.NewDashboardService(invRepo, shipRepo, orderRepo)

	return &Deps{
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Ledger: ledgerSvc},
		ShipmentHandler:  &ShipmentHandler{Ship: shipSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		DashboardHandler: &DashboardHandler{Dash: dashSvc},
	}
}
