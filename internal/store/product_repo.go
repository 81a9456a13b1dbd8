package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ProductRepo struct{ db sqlx.Ext }

func NewProductRepo(db sqlx.Ext) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `
  p.id, p.category_id, p.name, p.description, p.price, p.stock, p.active,
  p.created_at, COALESCE(p.updated_at,'') AS updated_at,
  COALESCE(c.name,'') AS category_name`

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(r.db, &p, `
	  SELECT `+productColumns+`
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  WHERE p.id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.NotFoundf("Product with ID %s not found", id)
	}
	return p, err
}

func (r *ProductRepo) ByName(name string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(r.db, &p, `
	  SELECT `+productColumns+`
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  WHERE LOWER(p.name) = LOWER(?)
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.NotFoundf("Product with name '%s' not found", name)
	}
	return p, err
}

// List returns one page of products ordered by name, with the overall count.
func (r *ProductRepo) List(pageNumber, pageSize int) (Page[domain.Product], error) {
	var total int
	if err := sqlx.Get(r.db, &total, `SELECT COUNT(*) FROM products`); err != nil {
		return Page[domain.Product]{}, err
	}
	items := []domain.Product{}
	err := sqlx.Select(r.db, &items, `
	  SELECT `+productColumns+`
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  ORDER BY LOWER(p.name)
	  LIMIT ? OFFSET ?
	`, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return Page[domain.Product]{}, err
	}
	return NewPage(items, total, pageNumber, pageSize), nil
}

func (r *ProductRepo) ListByCategory(categoryID string) ([]domain.Product, error) {
	items := []domain.Product{}
	err := sqlx.Select(r.db, &items, `
	  SELECT `+productColumns+`
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  WHERE p.category_id = ?
	  ORDER BY LOWER(p.name)
	`, categoryID)
	return items, err
}

func (r *ProductRepo) ListActive() ([]domain.Product, error) {
	items := []domain.Product{}
	err := sqlx.Select(r.db, &items, `
	  SELECT `+productColumns+`
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  WHERE p.active = 1
	  ORDER BY LOWER(p.name)
	`)
	return items, err
}

// Search filters active products by name/description substring and optional
// category.
func (r *ProductRepo) Search(q, categoryID string, limit, offset int) ([]domain.Product, error) {
	where := `p.active = 1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)`
		pat := "%" + q + "%"
		args = append(args, pat, pat)
	}
	if categoryID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, categoryID)
	}
	args = append(args, limit, offset)

	items := []domain.Product{}
	err := sqlx.Select(r.db, &items, `
	  SELECT `+productColumns+`
	  FROM products p LEFT JOIN categories c ON c.id = p.category_id
	  WHERE `+where+`
	  ORDER BY p.created_at DESC
	  LIMIT ? OFFSET ?
	`, args...)
	return items, err
}

func (r *ProductRepo) Insert(p *domain.Product) error {
	ts := now()
	p.CreatedAt, p.UpdatedAt = ts, ts
	_, err := r.db.Exec(`
	  INSERT INTO products(id, category_id, name, description, price, stock, active, created_at, updated_at)
	  VALUES(?,?,?,?,?,?,?,?,?)
	`, p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.Active, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProductRepo) Update(p *domain.Product) error {
	p.UpdatedAt = now()
	_, err := r.db.Exec(`
	  UPDATE products
	  SET category_id = ?, name = ?, description = ?, price = ?, stock = ?, active = ?, updated_at = ?
	  WHERE id = ?
	`, p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.Active, p.UpdatedAt, p.ID)
	return err
}

// SetActive flips the soft-delete marker.
func (r *ProductRepo) SetActive(id string, active bool) error {
	res, err := r.db.Exec(`UPDATE products SET active = ?, updated_at = ? WHERE id = ?`, active, now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("Product with ID %s not found", id)
	}
	return nil
}

// Delete removes the row physically. Callers must check order references
// first; the RESTRICT foreign key is the last line of defense.
func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("Product with ID %s not found", id)
	}
	return nil
}

// ReferencedByOrders reports whether any order line pins this product.
func (r *ProductRepo) ReferencedByOrders(id string) (bool, error) {
	var n int
	if err := sqlx.Get(r.db, &n, `SELECT COUNT(*) FROM order_items WHERE product_id = ?`, id); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DecrementStock subtracts qty only when enough stock remains. The guard and
// the write share one statement, so two racing orders can never both win.
// Returns false when stock was insufficient at write time.
func (r *ProductRepo) DecrementStock(id string, qty int) (bool, error) {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET stock = stock - ?, updated_at = ?
	  WHERE id = ? AND active = 1 AND stock >= ?
	`, qty, now(), id, qty)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RestoreStock returns exactly qty units; restock is never clamped or
// re-validated against any cap.
func (r *ProductRepo) RestoreStock(id string, qty int) error {
	_, err := r.db.Exec(`
	  UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?
	`, qty, now(), id)
	return err
}
