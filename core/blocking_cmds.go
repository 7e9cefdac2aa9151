package core

import (
	"time"

	"github.com/guateandrew/edis/message"
)

// parseBlockDeadline turns a BLPOP/BRPOP/BRPOPLPUSH timeout argument (whole
// or fractional seconds, 0 meaning never) into an absolute deadline, or nil
// for "never time out".
func parseBlockDeadline(cmd *message.Command, i int) (*time.Time, error) {
	seconds, err := argFloat(cmd, i)
	if err != nil {
		return nil, err
	}
	if seconds <= 0 {
		return nil, nil
	}
	deadline := time.Now().Add(time.Duration(seconds * float64(time.Second)))
	return &deadline, nil
}

func cmdBLPop(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	return doBlockingPop(a, cmd, caller, true)
}

func cmdBRPop(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	return doBlockingPop(a, cmd, caller, false)
}

// doBlockingPop tries every key in order with a non-blocking pop; the
// first success replies immediately with (key, value). Otherwise it parks
// the caller on every key with the shared deadline.
func doBlockingPop(a *Actor, cmd *message.Command, caller ReplySink, left bool) (interface{}, error) {
	if argc(cmd) < 2 {
		return nil, ErrSyntax
	}
	keys := cmd.Args[:argc(cmd)-1]
	deadline, err := parseBlockDeadline(cmd, argc(cmd)-1)
	if err != nil {
		return nil, err
	}

	if caller != nil {
		a.blocking.removeCallerWaiters(caller, keys)
	}

	for _, key := range keys {
		value, err := popNonBlocking(a, key, left)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		a.touch(key)
		return []interface{}{key, value}, nil
	}

	if caller == nil {
		return nil, ErrNotFound
	}

	keyStrs := make([]string, len(keys))
	for i, k := range keys {
		keyStrs[i] = string(k)
	}
	w := &waiter{
		deadline: deadline,
		keys:     keyStrs,
		caller:   caller,
		retry: func(a *Actor) (interface{}, error) {
			for _, key := range keys {
				value, err := popNonBlocking(a, key, left)
				if err == ErrNotFound {
					continue
				}
				if err != nil {
					return nil, err
				}
				a.touch(key)
				return []interface{}{key, value}, nil
			}
			return nil, ErrNotFound
		},
	}
	a.blocking.park(w)
	return message.Suspended, nil
}

// cmdBRPopLpush attempts RPOPLPUSH; on ErrNotFound it parks the caller on
// src only.
func cmdBRPopLpush(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	src, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	dst, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}
	deadline, err := parseBlockDeadline(cmd, 2)
	if err != nil {
		return nil, err
	}

	if caller != nil {
		a.blocking.removeCallerWaiters(caller, [][]byte{src})
	}

	value, err := doRPopLpush(a, src, dst)
	if err == nil {
		return value, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	if caller == nil {
		return nil, ErrNotFound
	}

	w := &waiter{
		deadline: deadline,
		keys:     []string{string(src)},
		caller:   caller,
		retry: func(a *Actor) (interface{}, error) {
			return doRPopLpush(a, src, dst)
		},
	}
	a.blocking.park(w)
	return message.Suspended, nil
}
