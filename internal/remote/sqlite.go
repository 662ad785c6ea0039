package remote

import (
	"context"
	"sync"
	"time"

	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
)

// DefaultPollInterval paces the re-query for writes made by other
// processes sharing the sync database file
const DefaultPollInterval = 2 * time.Second

// SQLite serves todo documents out of the shared sync database. Writes
// from this process wake matching subscriptions immediately; a poll tick
// catches writes landed by other devices through file synchronization.
type SQLite struct {
	db   *db.DB
	poll time.Duration

	mu   sync.Mutex
	subs map[*Subscription]string // subscription -> uid
}

// NewSQLite wraps an open sync database
func NewSQLite(database *db.DB, poll time.Duration) *SQLite {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &SQLite{
		db:   database,
		poll: poll,
		subs: make(map[*Subscription]string),
	}
}

// Subscribe opens a snapshot stream for a user. The pump delivers the
// current collection at once, then again whenever it changes.
func (s *SQLite) Subscribe(ctx context.Context, uid string) (*Subscription, error) {
	sub := newSubscription()

	s.mu.Lock()
	s.subs[sub] = uid
	s.mu.Unlock()

	go s.pump(ctx, uid, sub)
	return sub, nil
}

// Upsert writes a document and wakes this user's subscriptions
func (s *SQLite) Upsert(ctx context.Context, uid string, todo model.Todo) error {
	if err := s.db.UpsertTodo(uid, todo); err != nil {
		return err
	}
	s.wakeUser(uid)
	return nil
}

// Delete removes a document and wakes this user's subscriptions
func (s *SQLite) Delete(ctx context.Context, uid, id string) error {
	if err := s.db.DeleteTodo(uid, id); err != nil {
		return err
	}
	s.wakeUser(uid)
	return nil
}

func (s *SQLite) wakeUser(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub, owner := range s.subs {
		if owner == uid {
			sub.notify()
		}
	}
}

func (s *SQLite) drop(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// pump queries and delivers snapshots until the subscription is closed
// or the context ends
func (s *SQLite) pump(ctx context.Context, uid string, sub *Subscription) {
	defer s.drop(sub)
	defer close(sub.snapshots)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	var last []model.Todo
	delivered := false

	deliver := func() bool {
		todos, err := s.db.GetTodos(uid)
		if err != nil {
			// Transient read failure: skip this round, the next wake
			// or tick retries
			return true
		}
		if delivered && equalSnapshots(todos, last) {
			return true
		}
		select {
		case sub.snapshots <- todos:
			last = todos
			delivered = true
			return true
		case <-sub.stop:
			return false
		case <-ctx.Done():
			return false
		}
	}

	if !deliver() {
		return
	}

	for {
		select {
		case <-sub.stop:
			return
		case <-ctx.Done():
			return
		case <-sub.wake:
			if !deliver() {
				return
			}
		case <-ticker.C:
			if !deliver() {
				return
			}
		}
	}
}

func equalSnapshots(a, b []model.Todo) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalTodo(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalTodo(a, b model.Todo) bool {
	if a.ID != b.ID || a.Text != b.Text || a.Completed != b.Completed {
		return false
	}
	if len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	if !equalTimePtr(a.DueDate, b.DueDate) || !equalTimePtr(a.UpdatedAt, b.UpdatedAt) {
		return false
	}
	return a.CreatedAt.Equal(b.CreatedAt)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
