// Package router owns the fixed set of N keyspace actors and fans each
// request to the actor its database index names. Picking a shard is not
// the keyspace actor's own concern -- only running one command at a time
// once it arrives there is.
package router

import (
	"fmt"
	"path/filepath"

	"github.com/guateandrew/edis/core"
	"github.com/guateandrew/edis/log"
	"github.com/guateandrew/edis/message"
)

// shardDirPattern names the on-disk layout: one directory per shard at
// <data_dir>/edis-<index>.
const shardDirPattern = "edis-%d"

// Router is the fixed table of index -> actor handle: the only
// process-wide state besides the actors themselves.
type Router struct {
	actors []*core.Actor
}

// New opens num shards rooted at dataDir, wiring each actor's Notifier to
// the shared bus and its Mover back to the router itself so MOVE can reach
// any other shard.
func New(dataDir string, num int) (*Router, error) {
	if num <= 0 {
		return nil, fmt.Errorf("router: databases must be positive, got %d", num)
	}

	r := &Router{actors: make([]*core.Actor, num)}
	notifier := busNotifier{}

	for i := 0; i < num; i++ {
		path := filepath.Join(dataDir, fmt.Sprintf(shardDirPattern, i))
		actor, err := core.NewActor(i, path, notifier, r)
		if err != nil {
			r.closeOpened(i)
			return nil, fmt.Errorf("router: opening shard %d: %w", i, err)
		}
		r.actors[i] = actor
	}

	return r, nil
}

func (r *Router) closeOpened(upto int) {
	for i := 0; i < upto; i++ {
		if err := r.actors[i].Close(); err != nil {
			log.Errorf("router: closing shard %d during failed startup: %s", i, err)
		}
	}
}

// NumShards returns the fixed shard count this router was built with.
func (r *Router) NumShards() int { return len(r.actors) }

// Dispatch routes cmd to the actor at dbIndex: a client request is routed
// to exactly one actor by database index.
func (r *Router) Dispatch(dbIndex int, cmd *message.Command, caller core.ReplySink) (interface{}, error) {
	actor, err := r.actor(dbIndex)
	if err != nil {
		return nil, err
	}
	return actor.Run(cmd, caller)
}

func (r *Router) actor(dbIndex int) (*core.Actor, error) {
	if dbIndex < 0 || dbIndex >= len(r.actors) {
		return nil, fmt.Errorf("router: database index %d out of range [0,%d)", dbIndex, len(r.actors))
	}
	return r.actors[dbIndex], nil
}

// Receive implements core.Mover for MOVE: a synchronous request/response
// into the destination shard, never raw shared memory between actors.
func (r *Router) Receive(dbIndex int, key []byte, item *core.Item) error {
	actor, err := r.actor(dbIndex)
	if err != nil {
		return err
	}
	return actor.Receive(key, item)
}

// Discard implements the compensation half of core.Mover: drop key from
// the destination shard after a MOVE whose Receive failed (other than
// ErrFound) or whose source-side delete failed.
func (r *Router) Discard(dbIndex int, key []byte) error {
	actor, err := r.actor(dbIndex)
	if err != nil {
		return err
	}
	return actor.Discard(key)
}

// Close releases every shard's store handle.
func (r *Router) Close() error {
	var firstErr error
	for i, actor := range r.actors {
		if err := actor.Close(); err != nil {
			log.Errorf("router: closing shard %d: %s", i, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// busNotifier is the router's best-effort stand-in for an external pub/sub
// bus: the core only needs to know that notifying succeeded before it
// executes a command, and the actual fan-out to subscribers lives outside
// this module's scope.
type busNotifier struct{}

func (busNotifier) Notify(actorIndex int, cmd *message.Command) error {
	log.Debugf("shard %d: notify %s", actorIndex, cmd.Cmd)
	return nil
}
