package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type UserRepo struct{ db sqlx.Ext }

func NewUserRepo(db sqlx.Ext) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) ByID(id string) (domain.User, error) {
	var u domain.User
	err := sqlx.Get(r.db, &u, `
	  SELECT id, email, name, password_hash, role, created_at
	  FROM users WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundf("User not found")
	}
	return u, err
}

func (r *UserRepo) ByEmail(email string) (domain.User, error) {
	var u domain.User
	err := sqlx.Get(r.db, &u, `
	  SELECT id, email, name, password_hash, role, created_at
	  FROM users WHERE LOWER(email) = LOWER(?)
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundf("User not found")
	}
	return u, err
}

func (r *UserRepo) EmailTaken(email string) (bool, error) {
	var n int
	if err := sqlx.Get(r.db, &n, `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`, email); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) Insert(u *domain.User) error {
	u.CreatedAt = now()
	_, err := r.db.Exec(`
	  INSERT INTO users(id, email, name, password_hash, role, created_at)
	  VALUES(?,?,?,?,?,?)
	`, u.ID, u.Email, u.Name, u.Hash, u.Role, u.CreatedAt)
	return err
}

func (r *UserRepo) List() ([]domain.User, error) {
	out := []domain.User{}
	err := sqlx.Select(r.db, &out, `
	  SELECT id, email, name, password_hash, role, created_at
	  FROM users ORDER BY LOWER(email)
	`)
	return out, err
}

// BindSession attaches a session cookie id to a user at login.
func (r *UserRepo) BindSession(sid, userID string) error {
	_, err := r.db.Exec(`
	  INSERT INTO sessions(id, user_id, last_seen)
	  VALUES(?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id, last_seen=CURRENT_TIMESTAMP
	`, sid, userID)
	return err
}

func (r *UserRepo) SessionUser(sid string) (domain.User, error) {
	var u domain.User
	err := sqlx.Get(r.db, &u, `
	  SELECT u.id, u.email, u.name, u.password_hash, u.role, u.created_at
	  FROM sessions s
	  JOIN users u ON u.id = s.user_id
	  WHERE s.id = ?
	`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return u, domain.NotFoundf("no active session")
	}
	return u, err
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.db.Exec(`UPDATE sessions SET user_id=NULL, last_seen=CURRENT_TIMESTAMP WHERE id=?`, sid)
	return err
}
