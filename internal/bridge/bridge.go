// Package bridge decides how the todo store is persisted: the local
// key-value store when no identity is signed in, the remote document
// store with a live snapshot subscription when one is. Exactly one
// subscription is live at a time; switching modes replaces the
// collection wholesale, never merges.
package bridge

import (
	"context"
	"sync"

	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
	"github.com/aknott/kumo/internal/remote"
	"github.com/aknott/kumo/internal/store"
)

// KV is the slice of the local database the bridge reads from
type KV interface {
	LoadJSON(key string, v any) bool
}

// Snapshot is a remote collection delivery tagged with the mode
// generation it belongs to, so deliveries that straddle a sign-out are
// recognized as stale and dropped
type Snapshot struct {
	gen   int
	Todos []model.Todo
}

// Bridge owns the persistence mode state machine
type Bridge struct {
	store *store.Store
	kv    KV
	docs  remote.Store

	mu     sync.Mutex
	sub    *remote.Subscription
	gen    int
	snaps  chan Snapshot
	closed chan struct{}
}

// New wires a bridge; call Start to load the initial local collection
func New(st *store.Store, kv KV, docs remote.Store) *Bridge {
	return &Bridge{
		store:  st,
		kv:     kv,
		docs:   docs,
		snaps:  make(chan Snapshot, 1),
		closed: make(chan struct{}),
	}
}

// Start enters local mode: the collection is loaded once from the
// key-value store. Absent or unreadable data means an empty collection,
// never an error.
func (b *Bridge) Start() {
	b.store.UseLocal()
	b.store.ReplaceAll(b.loadLocal())
}

// Snapshots delivers remote collections for the consumer to apply via
// Apply on its own goroutine
func (b *Bridge) Snapshots() <-chan Snapshot {
	return b.snaps
}

// Apply installs a remote snapshot into the store. It reports false,
// applying nothing, when the snapshot belongs to a subscription that
// has since been torn down.
func (b *Bridge) Apply(s Snapshot) bool {
	b.mu.Lock()
	current := s.gen == b.gen && b.sub != nil
	b.mu.Unlock()

	if !current {
		return false
	}
	b.store.ReplaceAll(s.Todos)
	return true
}

// SignedIn switches to remote mode for the given user. Any previous
// subscription is terminated before the new one is established.
func (b *Bridge) SignedIn(ctx context.Context, uid string) error {
	b.mu.Lock()
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	sub, err := b.docs.Subscribe(ctx, uid)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.sub = sub
	b.mu.Unlock()

	// Local edits now mirror per-document; the local todos key is
	// left alone until sign-out
	b.store.UseRemote(b.docs, uid)

	go b.forward(sub, gen)
	return nil
}

// SignedOut tears the subscription down and returns to local mode; the
// pre-sign-in local collection becomes visible again
func (b *Bridge) SignedOut() {
	b.mu.Lock()
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	b.gen++
	b.mu.Unlock()

	b.store.UseLocal()
	b.store.ReplaceAll(b.loadLocal())
}

// Close disposes the bridge and any live subscription
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.sub != nil {
		b.sub.Close()
		b.sub = nil
	}
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
	b.mu.Unlock()
}

// forward pumps one subscription's snapshots to the consumer channel
func (b *Bridge) forward(sub *remote.Subscription, gen int) {
	for todos := range sub.Snapshots() {
		select {
		case b.snaps <- Snapshot{gen: gen, Todos: todos}:
		case <-b.closed:
			return
		}
	}
}

func (b *Bridge) loadLocal() []model.Todo {
	var todos []model.Todo
	b.kv.LoadJSON(db.KeyTodos, &todos)
	return todos
}
