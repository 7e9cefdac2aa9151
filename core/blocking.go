package core

import (
	"time"

	"github.com/guateandrew/edis/message"
)

// ReplySink is the abstract handle to a parked client: the actor can later
// deliver a reply to it, or ask whether it has disconnected. Deliver must
// not block the actor.
type ReplySink interface {
	Deliver(reply interface{}, err error)
	Alive() bool
}

// waiter is a single parked caller, reachable from every key in keys so a
// wake-up can remove it from all of them at once.
type waiter struct {
	deadline *time.Time
	keys     []string
	caller   ReplySink
	// retry re-attempts the caller's non-blocking operation; ErrNotFound
	// means it would still block.
	retry func(a *Actor) (interface{}, error)
}

func (w *waiter) expired(now time.Time) bool {
	return w.deadline != nil && !w.deadline.After(now)
}

// blockingRegistry is the actor's blocked_list_ops table: a shardedMap
// (bucketed by xxhash, same as the actor's idle-access map) from key to its
// FIFO waiter queue.
type blockingRegistry struct {
	byKey *shardedMap[[]*waiter]
}

func newBlockingRegistry() *blockingRegistry {
	return &blockingRegistry{byKey: newShardedMap[[]*waiter]()}
}

// park registers w on every one of its keys.
func (r *blockingRegistry) park(w *waiter) {
	for _, k := range w.keys {
		r.byKey.Mutate(k, func(queue []*waiter, _ bool) ([]*waiter, bool) {
			return append(queue, w), true
		})
	}
}

// removeCallerWaiters drops any waiter owned by caller from the given keys,
// used when a caller re-issues BLPOP/BRPOP and may already own a park on
// these same keys from an earlier attempt.
func (r *blockingRegistry) removeCallerWaiters(caller ReplySink, keys [][]byte) {
	for _, k := range keys {
		key := string(k)
		r.byKey.Mutate(key, func(queue []*waiter, _ bool) ([]*waiter, bool) {
			filtered := queue[:0]
			for _, w := range queue {
				if w.caller != caller {
					filtered = append(filtered, w)
				}
			}
			return filtered, len(filtered) > 0
		})
	}
}

// removeFromAll removes w from every key it was parked on.
func (r *blockingRegistry) removeFromAll(w *waiter) {
	for _, k := range w.keys {
		r.byKey.Mutate(k, func(queue []*waiter, _ bool) ([]*waiter, bool) {
			for i, candidate := range queue {
				if candidate == w {
					queue = append(queue[:i], queue[i+1:]...)
					break
				}
			}
			return queue, len(queue) > 0
		})
	}
}

// sweep drops every deadline-elapsed waiter across all keys, delivering
// message.Undefined to callers still alive. Called both per-command and
// whenever a push wakes a key.
func (r *blockingRegistry) sweep(now time.Time) {
	seen := map[*waiter]bool{}
	r.byKey.RangeMutate(func(_ string, queue []*waiter) ([]*waiter, bool) {
		var kept []*waiter
		for _, w := range queue {
			if seen[w] {
				continue
			}
			if w.expired(now) {
				seen[w] = true
				if w.caller.Alive() {
					w.caller.Deliver(message.Undefined, nil)
				}
				continue
			}
			kept = append(kept, w)
		}
		return kept, len(kept) > 0
	})
}

// wake runs after a list-mutating command succeeds on key (LPUSH/RPUSH and
// push-like composites): drop stale waiters, then retry live waiters FIFO,
// delivering a reply to each one whose retry succeeds, until one fails or
// the queue is empty.
func (r *blockingRegistry) wake(a *Actor, key []byte) error {
	now := time.Now()
	k := string(key)
	for {
		queue, _ := r.byKey.Get(k)
		if len(queue) == 0 {
			return nil
		}

		w := queue[0]
		switch {
		case w.expired(now):
			r.removeFromAll(w)
			if w.caller.Alive() {
				w.caller.Deliver(message.Undefined, nil)
			}
			continue
		case !w.caller.Alive():
			r.removeFromAll(w)
			continue
		}

		result, err := w.retry(a)
		if err == ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		r.removeFromAll(w)
		w.caller.Deliver(result, nil)
	}
}
