package store

import (
	"golang.org/x/crypto/bcrypt"
)

// Seed inserts baseline catalog data and default accounts. Idempotent; safe
// to run on every start.
func (s *Store) Seed() error {
	if err := s.seedCatalog(); err != nil {
		return err
	}
	return s.seedUsers()
}

func (s *Store) seedCatalog() error {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	if _, err := tx.Exec(`INSERT INTO categories(id,name,description,created_at) VALUES
	  ('cat-electronics','Electronics','Phones, laptops and accessories',?),
	  ('cat-books','Books','Print and audio books',?),
	  ('cat-home','Home & Kitchen','Household essentials',?)`, ts, ts, ts); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT INTO products(id,category_id,name,description,price,stock,active,created_at) VALUES
	  ('prod-laptop','cat-electronics','Thinkline Laptop 14','14-inch ultrabook, 16GB RAM',899.99,25,1,?),
	  ('prod-headset','cat-electronics','Aural Pro Headset','Over-ear wireless headset',149.50,60,1,?),
	  ('prod-novel','cat-books','The Glass Harbor','Contemporary fiction, hardcover',24.00,120,1,?),
	  ('prod-kettle','cat-home','Rapid Boil Kettle','1.7L electric kettle',39.95,40,1,?)`, ts, ts, ts, ts); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) seedUsers() error {
	type seedUser struct {
		id, email, name, role, password string
	}
	users := []seedUser{
		{"u-admin", "admin@storefront.test", "Admin", "ADMIN", "Adm1n!Pass"},
		{"u-alice", "alice@storefront.test", "Alice", "USER", "Passw0rd!"},
		{"u-bob", "bob@storefront.test", "Bob", "USER", "Passw0rd!"},
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range users {
		h, err := bcrypt.GenerateFromPassword([]byte(u.password), 12)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
		  INSERT INTO users(id,email,name,password_hash,role,created_at)
		  VALUES(?,?,?,?,?,?)
		  ON CONFLICT(email) DO NOTHING
		`, u.id, u.email, u.name, string(h), u.role, now()); err != nil {
			return err
		}
	}

	return tx.Commit()
}
