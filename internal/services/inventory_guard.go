package services

import (
	"storefront/internal/domain"
)

// productGetter is the slice of the product repository the guard needs. Inside
// a lifecycle transaction it is the tx-bound repo, so the read shares the
// snapshot with the decrement that follows.
type productGetter interface {
	Get(id string) (domain.Product, error)
}

// CheckStock validates a requested quantity against the live product row and
// returns the product on success. Rejections carry a specific reason:
// not-found, non-positive quantity, inactive product, or insufficient stock
// with available vs requested.
func CheckStock(products productGetter, productID string, qty int) (domain.Product, error) {
	p, err := products.Get(productID)
	if err != nil {
		return domain.Product{}, err
	}
	if qty <= 0 {
		return domain.Product{}, domain.Validationf("Quantity for product %s must be greater than zero", p.Name)
	}
	if !p.Active {
		return domain.Product{}, domain.Conflictf("Product %s is not available for purchase", p.Name)
	}
	if p.Stock < qty {
		return domain.Product{}, domain.Conflictf("Insufficient stock for product %s. Available: %d, Requested: %d", p.Name, p.Stock, qty)
	}
	return p, nil
}
