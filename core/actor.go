// Package core implements the keyspace actor: a serialized, single-
// threaded command processor that owns one shard's ordered KV store,
// translates data-type commands into read-modify-write operations on
// typed Items, and mediates blocking list operations.
package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/guateandrew/edis/log"
	"github.com/guateandrew/edis/message"
	"github.com/guateandrew/edis/store"
)

// handlerFunc is the signature every command handler implements. caller is
// non-nil only for the blocking commands (BLPOP/BRPOP/BRPOPLPUSH); every
// other handler ignores it.
type handlerFunc func(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error)

// Actor is one shard's entire mutable state. A mutex held for the whole
// of Run (and for Receive/Discard, which enter from another shard's MOVE)
// serializes command processing: operations on a shard execute strictly
// one at a time, no matter how many connections dispatch concurrently, so
// no two read-modify-write sequences against the same key interleave.
type Actor struct {
	Index int

	// mu serializes Run, Receive, Discard and Close. MOVE never calls
	// back into its own actor (cmdMove rejects a same-shard destination),
	// so holding one actor's mutex while taking another's cannot cycle.
	mu sync.Mutex

	st       *store.Store
	notifier Notifier
	mover    Mover

	startTime time.Time
	lastSave  float64

	accesses *shardedMap[int64] // key -> seconds-offset-since-start at last access

	blocking *blockingRegistry

	rng *randKeySampler
}

// NewActor opens (or creates) the shard's store at path and constructs an
// actor around it.
func NewActor(index int, path string, notifier Notifier, mover Mover) (*Actor, error) {
	st, err := store.Open(path, true)
	if err != nil {
		return nil, fmt.Errorf("core: opening shard %d at %s: %w", index, path, err)
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Actor{
		Index:     index,
		st:        st,
		notifier:  notifier,
		mover:     mover,
		startTime: time.Now(),
		accesses:  newShardedMap[int64](),
		blocking:  newBlockingRegistry(),
		rng:       newRandKeySampler(),
	}, nil
}

// Close releases the shard's store handle.
func (a *Actor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.Close()
}

// Run processes one command to completion under the actor's mutex. caller
// is only consulted by the blocking list commands; pass nil for anything
// else.
func (a *Actor) Run(cmd *message.Command, caller ReplySink) (interface{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.notifier.Notify(a.Index, cmd); err != nil {
		return nil, fmt.Errorf("notify failed: %w", err)
	}

	a.blocking.sweep(time.Now())

	handler, ok := handlers[cmd.Cmd]
	if !ok {
		return nil, ErrUnexpectedRequest
	}

	result, err := handler(a, cmd, caller)
	if err != nil {
		log.Debugf("shard %d: %s failed: %s", a.Index, cmd.Cmd, err)
	}
	return result, err
}

// touch stamps key as accessed just now. Handlers call this on every user
// key they successfully read or wrote.
func (a *Actor) touch(key []byte) {
	a.accesses.Set(string(key), int64(time.Since(a.startTime).Seconds()))
}

// idleSeconds returns how long key has gone untouched, 0 if never stamped.
func (a *Actor) idleSeconds(key []byte) int64 {
	last, ok := a.accesses.Get(string(key))
	if !ok {
		return 0
	}
	elapsed := int64(time.Since(a.startTime).Seconds())
	idle := elapsed - last
	if idle < 0 {
		idle = 0
	}
	return idle
}

// wake re-examines waiters parked on key after a push-like mutation.
func (a *Actor) wake(key []byte) {
	if err := a.blocking.wake(a, key); err != nil {
		log.Errorf("shard %d: waking %q: %s", a.Index, key, err)
	}
}

// save records the current instant as the last accepted SAVE call. It does
// not flush anything: goleveldb already durably persists every Put/Write,
// so SAVE's entire job is LASTSAVE bookkeeping.
func (a *Actor) save() {
	a.lastSave = float64(time.Now().UnixNano()) / 1e9
}

// flushDB destroys and recreates the shard's store, and resets the
// process-local accesses/waiters bookkeeping. Only reachable from a
// handler, so Run's mutex is already held.
func (a *Actor) flushDB() error {
	path := a.st.Path()
	if err := a.st.Destroy(); err != nil {
		return err
	}
	st, err := store.Open(path, true)
	if err != nil {
		return err
	}
	a.st = st

	a.accesses.Reset()
	a.blocking = newBlockingRegistry()

	return nil
}

// Receive implements Mover for the destination side of MOVE: adopt item
// under key, or fail with ErrFound if it's already occupied. The caller
// is another shard's actor, so Receive takes this actor's mutex itself.
func (a *Actor) Receive(key []byte, item *Item) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	exists, err := existsItem(a.st, key)
	if err != nil {
		return err
	}
	if exists {
		return ErrFound
	}
	return putItem(a.st, key, item)
}

// Discard implements the destination side of MOVE's compensation: drop
// key, undoing an earlier Receive.
func (a *Actor) Discard(key []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.Delete(key)
}
