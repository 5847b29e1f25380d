package domain

type ShipmentStatus string

const (
	ShipmentPlanning ShipmentStatus = "PLANNING"
	ShipmentOrdered  ShipmentStatus = "ORDERED"
	ShipmentReceived ShipmentStatus = "RECEIVED"
)

func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPlanning, ShipmentOrdered, ShipmentReceived:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderAwaitingStock OrderStatus = "AWAITING_STOCK"
	OrderReadyToShip   OrderStatus = "READY_TO_SHIP"
	OrderOnHold        OrderStatus = "ON_HOLD"
	OrderCompleted     OrderStatus = "COMPLETED"
	OrderCancelled     OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderAwaitingStock, OrderReadyToShip, OrderOnHold, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal orders reject every further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type OrderSource string

const (
	SourceLocal  OrderSource = "LOCAL"
	SourceAmazon OrderSource = "AMAZON"
)

func (s OrderSource) Valid() bool { return s == SourceLocal || s == SourceAmazon }

type Product struct {
	ID              string `db:"id" json:"id"`
	SKU             string `db:"sku" json:"sku"`
	Name            string `db:"name" json:"name"`
	QuantityInStock int    `db:"quantity_in_stock" json:"quantity_in_stock"`
	CreatedAt       string `db:"created_at" json:"created_at"`
}

type Shipment struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	Status     ShipmentStatus `db:"status" json:"status"`
	CreatedAt  string         `db:"created_at" json:"created_at"`
	OrderedAt  string         `db:"ordered_at" json:"ordered_at,omitempty"`
	ReceivedAt string         `db:"received_at" json:"received_at,omitempty"`
}

// ShipmentItem is one manifest line. An empty CustomerName means general
// stock replenishment, not earmarked for anyone.
type ShipmentItem struct {
	ID           string `db:"id" json:"id"`
	ShipmentID   string `db:"shipment_id" json:"shipment_id"`
	ProductID    string `db:"product_id" json:"product_id"`
	ProductSKU   string `db:"sku" json:"product_sku"`
	ProductName  string `db:"name" json:"product_name"`
	CustomerName string `db:"customer_name" json:"customer_name,omitempty"`
	Qty          int    `db:"qty" json:"quantity"`
}

type ShipmentDetail struct {
	Shipment
	Items []ShipmentItem `json:"items"`
}

// Invoice is the per-SKU consolidation of a shipment manifest, grouped by
// product with quantities summed.
type Invoice struct {
	ShipmentName string        `json:"shipment_name"`
	Items        []InvoiceItem `json:"items"`
	TotalItems   int           `json:"total_items"`
}

type InvoiceItem struct {
	SKU         string `db:"sku" json:"sku"`
	ProductName string `db:"name" json:"product_name"`
	TotalQty    int    `db:"total_qty" json:"total_quantity"`
}

type Order struct {
	ID           string      `db:"id" json:"id"`
	CustomerName string      `db:"customer_name" json:"customer_name"`
	Source       OrderSource `db:"source" json:"source"`
	Status       OrderStatus `db:"status" json:"status"`
	CreatedAt    string      `db:"created_at" json:"created_at"`
}

// OrderItem carries the reservation state for one order line. Allocated
// means the ledger has already been decremented by Qty and the stock is
// held for this line until it ships or is released.
type OrderItem struct {
	ID          string `db:"id" json:"id"`
	OrderID     string `db:"order_id" json:"order_id"`
	ProductID   string `db:"product_id" json:"product_id"`
	ProductSKU  string `db:"sku" json:"product_sku"`
	ProductName string `db:"name" json:"product_name"`
	Qty         int    `db:"qty" json:"quantity"`
	Allocated   bool   `db:"allocated" json:"allocated"`
}

type OrderDetail struct {
	Order
	Items []OrderItem `json:"items"`
}

type User struct {
	ID    string `db:"id"`
	Email string `db:"email"`
	Name  string `db:"name"`
	Hash  string `db:"password_hash"`
	Role  string `db:"role"`
}
