package db

import (
	"database/sql"
	"time"
)

// User is a stored account row. PassHash is a bcrypt hash with the
// salt embedded; federated accounts store an empty hash.
type User struct {
	ID        string
	Email     string
	PassHash  string
	CreatedAt time.Time
}

// GetUserByEmail returns the user with the given email, or nil
func (db *DB) GetUserByEmail(email string) (*User, error) {
	var u User
	err := db.QueryRow(`
		SELECT id, email, pass_hash, created_at
		FROM users WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.PassHash, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new account row
func (db *DB) CreateUser(u User) error {
	_, err := db.Exec(`
		INSERT INTO users (id, email, pass_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, u.ID, u.Email, u.PassHash, u.CreatedAt)
	return err
}
