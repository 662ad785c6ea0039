package db

import (
	"encoding/json"
	"time"

	"github.com/aknott/kumo/internal/model"
)

// GetTodos returns every todo document for a user, newest first
func (db *DB) GetTodos(uid string) ([]model.Todo, error) {
	rows, err := db.Query(`
		SELECT id, text, completed, tags, due_date, created_at, updated_at
		FROM todos
		WHERE uid = ?
		ORDER BY created_at DESC, id DESC
	`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		var t model.Todo
		var tagsJSON string
		err := rows.Scan(&t.ID, &t.Text, &t.Completed, &tagsJSON, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if tagsJSON != "" {
			// Malformed tag blobs degrade to an untagged todo
			_ = json.Unmarshal([]byte(tagsJSON), &t.Tags)
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

// UpsertTodo writes a todo document keyed by its id, stamping a creation
// time if the record carries none
func (db *DB) UpsertTodo(uid string, t model.Todo) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO todos (uid, id, text, completed, tags, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid, id) DO UPDATE SET
			text = excluded.text,
			completed = excluded.completed,
			tags = excluded.tags,
			due_date = excluded.due_date,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`, uid, t.ID, t.Text, t.Completed, string(tagsJSON), t.DueDate, t.CreatedAt, t.UpdatedAt)
	return err
}

// DeleteTodo removes a todo document. Deleting an absent id is a no-op.
func (db *DB) DeleteTodo(uid, id string) error {
	_, err := db.Exec(`DELETE FROM todos WHERE uid = ? AND id = ?`, uid, id)
	return err
}
