package core

import "github.com/guateandrew/edis/message"

// Notifier is the external pub/sub bus collaborator: before executing any
// command, the actor calls Notify and aborts the command if it fails. The
// core never interprets what's on the other side of this call --
// subscription matching and fan-out live outside core.
type Notifier interface {
	Notify(actorIndex int, cmd *message.Command) error
}

// NoopNotifier satisfies Notifier for actors run without a notification
// bus, e.g. in unit tests.
type NoopNotifier struct{}

func (NoopNotifier) Notify(int, *message.Command) error { return nil }
