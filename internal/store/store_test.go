package store

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedUser(t *testing.T, st *Store, id string) domain.User {
	t.Helper()
	u := domain.User{ID: id, Email: id + "@example.test", Name: id, Hash: "x", Role: "USER"}
	require.NoError(t, st.Users.Insert(&u))
	return u
}

func seedProduct(t *testing.T, st *Store, id string, price float64, stock int) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:     id,
		Name:   "product " + id,
		Price:  decimal.NewFromFloat(price),
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, st.Products.Insert(&p))
	return p
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := newTestStore(t)

	boom := domain.Conflictf("nope")
	err := st.WithTx(func(tx *Tx) error {
		c := domain.Category{ID: "c1", Name: "Garden"}
		if err := tx.Categories.Insert(&c); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Categories.Get("c1")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestWithTxCommits(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.WithTx(func(tx *Tx) error {
		c := domain.Category{ID: "c1", Name: "Garden"}
		return tx.Categories.Insert(&c)
	}))

	c, err := st.Categories.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "Garden", c.Name)
}

func TestDecrementStockGuard(t *testing.T) {
	st := newTestStore(t)
	seedProduct(t, st, "p1", 10, 2)

	ok, err := st.Products.DecrementStock("p1", 3)
	require.NoError(t, err)
	assert.False(t, ok, "over-decrement must lose")

	p, err := st.Products.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock, "losing decrement must not touch stock")

	ok, err = st.Products.DecrementStock("p1", 2)
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = st.Products.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Stock)

	// Nothing left; even one unit must be refused now.
	ok, err = st.Products.DecrementStock("p1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecrementStockSkipsInactive(t *testing.T) {
	st := newTestStore(t)
	seedProduct(t, st, "p1", 10, 5)
	require.NoError(t, st.Products.SetActive("p1", false))

	ok, err := st.Products.DecrementStock("p1", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRestoreStockIsExact(t *testing.T) {
	st := newTestStore(t)
	seedProduct(t, st, "p1", 10, 5)

	require.NoError(t, st.Products.RestoreStock("p1", 3))

	p, err := st.Products.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)
}

func TestProductNameUniqueCaseInsensitive(t *testing.T) {
	st := newTestStore(t)
	seedProduct(t, st, "p1", 10, 5)

	dup := domain.Product{ID: "p2", Name: "PRODUCT P1", Price: decimal.NewFromInt(1), Active: true}
	assert.Error(t, st.Products.Insert(&dup))
}

func TestOrderListByUserNewestFirst(t *testing.T) {
	st := newTestStore(t)
	u := seedUser(t, st, "u1")
	seedProduct(t, st, "p1", 10, 50)

	for i, number := range []string{"ORD-20250101000000-1000", "ORD-20250101000000-1001"} {
		o := domain.Order{
			ID:     fmt.Sprintf("o%d", i+1),
			UserID: u.ID,
			Number: number,
			Total:  decimal.NewFromInt(10),
			Status: domain.StatusPending,
		}
		require.NoError(t, st.Orders.Insert(&o))
		it := domain.OrderItem{
			ID: o.ID + "-i1", OrderID: o.ID, ProductID: "p1", ProductName: "product p1",
			Quantity: 1, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(10),
		}
		require.NoError(t, st.Orders.InsertItem(&it))
	}

	list, err := st.Orders.ListByUser(u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ORD-20250101000000-1001", list[0].Number, "later insert wins the tie-break")
	assert.Equal(t, 1, list[0].ItemCount)
}

func TestOrderNumberUnique(t *testing.T) {
	st := newTestStore(t)
	u := seedUser(t, st, "u1")

	o := domain.Order{ID: "o1", UserID: u.ID, Number: "ORD-20250101000000-1000", Total: decimal.NewFromInt(1), Status: domain.StatusPending}
	require.NoError(t, st.Orders.Insert(&o))

	taken, err := st.Orders.NumberExists(o.Number)
	require.NoError(t, err)
	assert.True(t, taken)

	dup := domain.Order{ID: "o2", UserID: u.ID, Number: o.Number, Total: decimal.NewFromInt(1), Status: domain.StatusPending}
	assert.Error(t, st.Orders.Insert(&dup))
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	st := newTestStore(t)
	err := st.Orders.UpdateStatus("ghost", domain.StatusShipped)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestSeedIdempotent(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.Seed())
	first, err := st.Products.List(1, 100)
	require.NoError(t, err)
	require.NotEmpty(t, first.Items)

	require.NoError(t, st.Seed())
	second, err := st.Products.List(1, 100)
	require.NoError(t, err)
	assert.Equal(t, first.TotalCount, second.TotalCount)

	admin, err := st.Users.ByEmail("admin@storefront.test")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", admin.Role)
}

func TestSessionLifecycle(t *testing.T) {
	st := newTestStore(t)
	u := seedUser(t, st, "u1")

	require.NoError(t, st.Users.BindSession("sid-1", u.ID))
	got, err := st.Users.SessionUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// Rebinding the same session to another user replaces the link.
	other := seedUser(t, st, "u2")
	require.NoError(t, st.Users.BindSession("sid-1", other.ID))
	got, err = st.Users.SessionUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)

	require.NoError(t, st.Users.UnbindSession("sid-1"))
	_, err = st.Users.SessionUser("sid-1")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
