package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newOrderService(t *testing.T, st *store.Store) *OrderService {
	t.Helper()
	return NewOrderService(st, NewNumberGenerator(), metrics.NewWith(prometheus.NewRegistry()))
}

func newProductService(t *testing.T, st *store.Store) *ProductService {
	t.Helper()
	return NewProductService(st, cache.New(time.Minute))
}

func newCategoryService(t *testing.T, st *store.Store) *CategoryService {
	t.Helper()
	return NewCategoryService(st, cache.New(time.Minute))
}

func mustUser(t *testing.T, st *store.Store, id string) domain.User {
	t.Helper()
	u := domain.User{ID: id, Email: id + "@example.test", Name: id, Hash: "x", Role: "USER"}
	require.NoError(t, st.Users.Insert(&u))
	return u
}

func mustCategory(t *testing.T, st *store.Store, id, name string) domain.Category {
	t.Helper()
	c := domain.Category{ID: id, Name: name}
	require.NoError(t, st.Categories.Insert(&c))
	return c
}

func mustProduct(t *testing.T, st *store.Store, id, name string, price float64, stock int) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:     id,
		Name:   name,
		Price:  decimal.NewFromFloat(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, st.Products.Insert(&p))
	return p
}
