package domain

import "github.com/shopspring/decimal"

type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// allowedTransitions is the explicit table for administrative status updates.
// Cancelled is terminal; every other status may move to any status, including
// backwards (Delivered -> Processing is legal for correction workflows).
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusProcessing: {StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:    {StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled},
	StatusCancelled:  {},
}

// ParseOrderStatus validates a caller-supplied status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", Validationf("'%s' is not a valid order status", s)
}

// CanTransition reports whether an administrative update may move an order
// from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"userId"`
	Number    string          `db:"order_number" json:"orderNumber"`
	Total     decimal.Decimal `db:"total" json:"totalAmount"`
	Status    OrderStatus     `db:"status" json:"status"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
	UpdatedAt string          `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is immutable once created; name and prices are snapshots taken at
// order time and stay untouched by later product edits.
type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"-"`
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"qty" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"totalPrice"`
}
