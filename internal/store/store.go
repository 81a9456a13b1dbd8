package store

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"storefront/internal/domain"
)

// Store owns the sqlite database and hands out repositories. Repositories are
// bound to sqlx.Ext so the same code runs against the pooled DB or inside a
// transaction.
type Store struct {
	db *sqlx.DB

	Products   *ProductRepo
	Categories *CategoryRepo
	Orders     *OrderRepo
	Users      *UserRepo
}

// Tx bundles transaction-bound repositories. Everything staged through it
// commits atomically or not at all.
type Tx struct {
	Products   *ProductRepo
	Categories *CategoryRepo
	Orders     *OrderRepo
	Users      *UserRepo
}

func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// sqlite allows a single writer; one pooled connection keeps concurrent
	// lifecycle transactions serialized instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		return nil, err
	}

	s := &Store{db: db}
	s.Products = NewProductRepo(db)
	s.Categories = NewCategoryRepo(db)
	s.Orders = NewOrderRepo(db)
	s.Users = NewUserRepo(db)
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// WithTx runs fn inside one transaction. A nil return commits all staged
// changes; any error rolls everything back. Commit failures surface as
// transient errors, safe for the caller to retry.
func (s *Store) WithTx(fn func(tx *Tx) error) error {
	txx, err := s.db.Beginx()
	if err != nil {
		return domain.Transientf("could not start transaction, please retry")
	}
	defer func() { _ = txx.Rollback() }()

	t := &Tx{
		Products:   NewProductRepo(txx),
		Categories: NewCategoryRepo(txx),
		Orders:     NewOrderRepo(txx),
		Users:      NewUserRepo(txx),
	}
	if err := fn(t); err != nil {
		return err
	}
	if err := txx.Commit(); err != nil {
		return domain.Transientf("could not commit changes, please retry")
	}
	return nil
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products. category_id is a weak reference: deleting a category nulls it.
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NULL REFERENCES categories(id) ON DELETE SET NULL,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL CHECK (price > 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_name_nocase ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id),
  order_number TEXT NOT NULL UNIQUE,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

-- Order items pin products: history survives product hard-delete attempts.
CREATE TABLE IF NOT EXISTS order_items(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  product_name TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty > 0),
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id);
`
	_, err := db.Exec(schema)
	return err
}
