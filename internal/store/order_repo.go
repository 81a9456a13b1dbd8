package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type OrderRepo struct{ db sqlx.Ext }

func NewOrderRepo(db sqlx.Ext) *OrderRepo { return &OrderRepo{db: db} }

// OrderSummary is the list-view shape for a user's order history.
type OrderSummary struct {
	ID        string          `db:"id" json:"id"`
	Number    string          `db:"order_number" json:"orderNumber"`
	Total     decimal.Decimal `db:"total" json:"totalAmount"`
	Status    string          `db:"status" json:"status"`
	ItemCount int             `db:"item_count" json:"itemsCount"`
	CreatedAt string          `db:"created_at" json:"createdAt"`
}

// Insert persists the order header. Items go through InsertItem.
func (r *OrderRepo) Insert(o *domain.Order) error {
	ts := now()
	o.CreatedAt, o.UpdatedAt = ts, ts
	_, err := r.db.Exec(`
	  INSERT INTO orders(id, user_id, order_number, total, status, created_at, updated_at)
	  VALUES(?,?,?,?,?,?,?)
	`, o.ID, o.UserID, o.Number, o.Total, o.Status, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *OrderRepo) InsertItem(it *domain.OrderItem) error {
	_, err := r.db.Exec(`
	  INSERT INTO order_items(id, order_id, product_id, product_name, qty, unit_price, total_price)
	  VALUES(?,?,?,?,?,?,?)
	`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.TotalPrice)
	return err
}

// Get loads the order with its items, in line insertion order.
func (r *OrderRepo) Get(id string) (domain.Order, error) {
	return r.one(`o.id = ?`, id)
}

// ByNumber loads the order by its human-readable number.
func (r *OrderRepo) ByNumber(number string) (domain.Order, error) {
	return r.one(`o.order_number = ?`, number)
}

func (r *OrderRepo) one(where string, arg any) (domain.Order, error) {
	var o domain.Order
	err := sqlx.Get(r.db, &o, `
	  SELECT o.id, o.user_id, o.order_number, o.total, o.status,
	         o.created_at, COALESCE(o.updated_at,'') AS updated_at
	  FROM orders o
	  WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return o, domain.NotFoundf("Order not found")
	}
	if err != nil {
		return o, err
	}
	items := []domain.OrderItem{}
	err = sqlx.Select(r.db, &items, `
	  SELECT id, order_id, product_id, product_name, qty, unit_price, total_price
	  FROM order_items
	  WHERE order_id = ?
	  ORDER BY rowid
	`, o.ID)
	if err != nil {
		return o, err
	}
	o.Items = items
	return o, nil
}

// NumberExists backs the order number generator's uniqueness check.
func (r *OrderRepo) NumberExists(number string) (bool, error) {
	var n int
	if err := sqlx.Get(r.db, &n, `SELECT COUNT(*) FROM orders WHERE order_number = ?`, number); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(userID string) ([]OrderSummary, error) {
	out := []OrderSummary{}
	err := sqlx.Select(r.db, &out, `
	  SELECT o.id, o.order_number, o.total, o.status, o.created_at,
	         (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
	  FROM orders o
	  WHERE o.user_id = ?
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC
	`, userID)
	return out, err
}

// ListLatest feeds the admin overview.
func (r *OrderRepo) ListLatest(limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []OrderSummary{}
	err := sqlx.Select(r.db, &out, `
	  SELECT o.id, o.order_number, o.total, o.status, o.created_at,
	         (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
	  FROM orders o
	  ORDER BY datetime(o.created_at) DESC, o.rowid DESC
	  LIMIT ?
	`, limit)
	return out, err
}

func (r *OrderRepo) UpdateStatus(id string, status domain.OrderStatus) error {
	res, err := r.db.Exec(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("Order with ID %s not found", id)
	}
	return nil
}
