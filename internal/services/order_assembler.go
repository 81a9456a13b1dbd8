package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// CartLine is one requested (product, quantity) pair.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AssembleOrder turns a cart into a fully priced, unpersisted Pending order.
// Lines are processed in input order and the first failure aborts the whole
// assembly; no partial order is ever produced. Name and price are captured as
// snapshots so later product edits cannot touch order history.
func AssembleOrder(products productGetter, userID string, lines []CartLine) (domain.Order, error) {
	if len(lines) == 0 {
		return domain.Order{}, domain.Validationf("Order must contain at least one item")
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, err := CheckStock(products, line.ProductID, line.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, domain.OrderItem{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
			TotalPrice:  lineTotal,
		})
	}

	return domain.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Total:  total,
		Status: domain.StatusPending,
		Items:  items,
	}, nil
}
