// Package message defines the command envelope the core keyspace actor
// consumes from its dispatcher, and the reply algebra it produces. The
// wire encoding is not the core's concern: Reply values are native Go
// values (nil, bool, int64, float64, []byte, []interface{}), not a
// RESP-specific type.
package message

import "time"

// Command is one request routed to a single shard's keyspace actor.
type Command struct {
	// Cmd is the uppercased command name, e.g. "SET", "BLPOP".
	Cmd string
	// Args is the list of positional arguments, exactly as received.
	Args [][]byte
	// Deadline, if set, is when the caller's wait for a reply expires,
	// distinct from any BLPOP-style blocking deadline recorded in the
	// actor's registry.
	Deadline *time.Time
	// Batch carries the nested commands of an EXEC request; nil for every
	// other command.
	Batch []*Command
}

// NewCommand builds a Command with no deadline.
func NewCommand(cmd string, args ...[]byte) *Command {
	return &Command{Cmd: cmd, Args: args}
}

// SuspendedType is the reply sentinel type for a blocking command that
// parked the caller instead of answering immediately.
type SuspendedType struct{}

// Suspended is returned by Actor.Run when the command parked the caller on
// the blocking registry; no reply should be sent to the client yet.
var Suspended = SuspendedType{}

// OKType is the reply sentinel type for a command whose entire contract is
// "succeeded, no payload" (SET, LTRIM, FLUSHDB, ...) -- distinct from a
// handler returning a genuine boolean value (SISMEMBER, SMOVE), which
// stays a plain Go bool so the wire layer can tell the two apart.
type OKType struct{}

// OK is the reply used by status-only commands.
var OK = OKType{}

// UndefinedType is the reply sentinel type for a blocked waiter whose
// deadline elapsed before a push could satisfy it -- Redis's "nil
// multi-bulk" result.
type UndefinedType struct{}

// Undefined is the reply used for an expired blocking wait, including a
// blocking command that times out while replayed inside EXEC.
var Undefined = UndefinedType{}
