package core

import "github.com/guateandrew/edis/message"

// cmdExec replays a queued batch of commands through this same actor,
// collecting one reply per command. There is no rollback and no isolation
// beyond the actor's own serialization -- a failing command just carries
// its own error in its reply slot, and a command that would have blocked
// (ErrNotFound from a blocking handler run with no caller) resolves to
// message.Undefined instead of parking, since EXEC cannot suspend
// mid-batch.
func cmdExec(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	commands, err := decodeExecBatch(cmd)
	if err != nil {
		return nil, err
	}

	replies := make([]ExecReply, len(commands))
	for i, sub := range commands {
		handler, ok := handlers[sub.Cmd]
		if !ok {
			replies[i] = ExecReply{Err: ErrUnexpectedRequest}
			continue
		}

		result, err := handler(a, sub, nil)
		switch err {
		case nil:
			replies[i] = ExecReply{Value: result}
		case ErrNotFound:
			replies[i] = ExecReply{Value: message.Undefined}
		default:
			replies[i] = ExecReply{Err: err}
		}
	}
	return replies, nil
}

// ExecReply is one EXEC reply slot: exactly one of Value/Err is
// meaningful. EXEC never fails the whole batch for one command's error.
type ExecReply struct {
	Value interface{}
	Err   error
}

// decodeExecBatch pulls out the nested commands an EXEC request carries;
// they arrive out of band via message.Command.Batch rather than Args,
// since each sub-command has its own name and argument list.
func decodeExecBatch(cmd *message.Command) ([]*message.Command, error) {
	if cmd.Batch == nil {
		return nil, ErrSyntax
	}
	return cmd.Batch, nil
}
