package db

import (
	"database/sql"
	"encoding/json"
)

// Storage keys for the local key-value store
const (
	KeyTodos     = "todos"
	KeyTagNames  = "tagOptions"
	KeyTagColors = "tagColors"
)

// GetValue returns the stored string for a key, or "" when absent
func (db *DB) GetValue(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetValue stores a string under a key, replacing any previous value
func (db *DB) SetValue(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// LoadJSON decodes the value stored under key into v. An absent key,
// a read failure, or malformed content leaves v untouched and returns
// false; corruption is never fatal.
func (db *DB) LoadJSON(key string, v any) bool {
	raw, err := db.GetValue(key)
	if err != nil || raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false
	}
	return true
}

// StoreJSON encodes v and stores it under key. Serialization or write
// failures are swallowed: the in-memory state is authoritative and the
// next successful write will catch up.
func (db *DB) StoreJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = db.SetValue(key, string(raw))
}
