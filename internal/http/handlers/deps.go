package handlers

import (
	"storefront/internal/cache"
	"storefront/internal/metrics"
	"storefront/internal/services"
	"storefront/internal/store"
)

type Deps struct {
	AuthHandler     *AuthHandler
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	OrderHandler    *OrderHandler

	Auth *services.AuthService
}

// NewDeps wires repositories, services and handlers in one place.
func NewDeps(st *store.Store, c cache.Cache, m *metrics.OrderMetrics, bcryptCost int) *Deps {
	authSvc := services.NewAuthService(st, bcryptCost)
	productSvc := services.NewProductService(st, c)
	categorySvc := services.NewCategoryService(st, c)
	orderSvc := services.NewOrderService(st, services.NewNumberGenerator(), m)

	return &Deps{
		AuthHandler:     &AuthHandler{Auth: authSvc},
		CategoryHandler: &CategoryHandler{Categories: categorySvc},
		ProductHandler:  &ProductHandler{Products: productSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		Auth:            authSvc,
	}
}
