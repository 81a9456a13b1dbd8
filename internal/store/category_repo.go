package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type CategoryRepo struct{ db sqlx.Ext }

func NewCategoryRepo(db sqlx.Ext) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Get(id string) (domain.Category, error) {
	var c domain.Category
	err := sqlx.Get(r.db, &c, `
	  SELECT id, name, COALESCE(description,'') AS description,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM categories WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.NotFoundf("Category with ID %s not found", id)
	}
	return c, err
}

func (r *CategoryRepo) ByName(name string) (domain.Category, error) {
	var c domain.Category
	err := sqlx.Get(r.db, &c, `
	  SELECT id, name, COALESCE(description,'') AS description,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM categories WHERE LOWER(name) = LOWER(?)
	`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.NotFoundf("Category with name '%s' not found", name)
	}
	return c, err
}

func (r *CategoryRepo) List(pageNumber, pageSize int) (Page[domain.Category], error) {
	var total int
	if err := sqlx.Get(r.db, &total, `SELECT COUNT(*) FROM categories`); err != nil {
		return Page[domain.Category]{}, err
	}
	items := []domain.Category{}
	err := sqlx.Select(r.db, &items, `
	  SELECT id, name, COALESCE(description,'') AS description,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM categories
	  ORDER BY LOWER(name)
	  LIMIT ? OFFSET ?
	`, pageSize, (pageNumber-1)*pageSize)
	if err != nil {
		return Page[domain.Category]{}, err
	}
	return NewPage(items, total, pageNumber, pageSize), nil
}

func (r *CategoryRepo) ListAll() ([]domain.Category, error) {
	items := []domain.Category{}
	err := sqlx.Select(r.db, &items, `
	  SELECT id, name, COALESCE(description,'') AS description,
	         created_at, COALESCE(updated_at,'') AS updated_at
	  FROM categories
	  ORDER BY LOWER(name)
	`)
	return items, err
}

func (r *CategoryRepo) Insert(c *domain.Category) error {
	ts := now()
	c.CreatedAt, c.UpdatedAt = ts, ts
	_, err := r.db.Exec(`
	  INSERT INTO categories(id, name, description, created_at, updated_at)
	  VALUES(?,?,?,?,?)
	`, c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CategoryRepo) Update(c *domain.Category) error {
	c.UpdatedAt = now()
	_, err := r.db.Exec(`
	  UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, c.Name, c.Description, c.UpdatedAt, c.ID)
	return err
}

func (r *CategoryRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("Category with ID %s not found", id)
	}
	return nil
}

// ProductCount counts products still attached to the category; deletion is
// allowed only at zero.
func (r *CategoryRepo) ProductCount(id string) (int, error) {
	var n int
	err := sqlx.Get(r.db, &n, `SELECT COUNT(*) FROM products WHERE category_id = ?`, id)
	return n, err
}
