// Package remote is the boundary to the per-user document store that
// backs authenticated sessions. A subscription delivers full-collection
// snapshots, newest first, whenever the underlying collection changes.
package remote

import (
	"context"
	"sync"

	"github.com/aknott/kumo/internal/model"
)

// Store addresses todo documents per user id
type Store interface {
	// Subscribe opens a snapshot stream scoped to a user. The first
	// snapshot is delivered immediately.
	Subscribe(ctx context.Context, uid string) (*Subscription, error)

	// Upsert writes a full todo record keyed by its id, stamping a
	// creation time if the record carries none
	Upsert(ctx context.Context, uid string, todo model.Todo) error

	// Delete removes a todo record; absent ids are a no-op
	Delete(ctx context.Context, uid, id string) error
}

// Subscription is a single-consumer stream of collection snapshots.
// It is not restartable: once closed, the channel is closed for good.
type Subscription struct {
	snapshots chan []model.Todo
	wake      chan struct{}
	stop      chan struct{}
	closeOnce sync.Once
}

func newSubscription() *Subscription {
	return &Subscription{
		snapshots: make(chan []model.Todo, 1),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
}

// Snapshots returns the stream of full-collection snapshots
func (s *Subscription) Snapshots() <-chan []model.Todo {
	return s.snapshots
}

// Close tears the subscription down. Safe to call more than once;
// disposal happens exactly once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

// notify nudges the pump without blocking; pending nudges coalesce
func (s *Subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
