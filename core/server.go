package core

import (
	"fmt"
	"time"

	"github.com/guateandrew/edis/message"
)

func cmdPing(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return "PONG", nil
}

func cmdEcho(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return argBytes(cmd, 0)
}

// cmdDBSize counts only non-expired keys, via a full scan.
func cmdDBSize(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	var n int64
	now := time.Now()
	err := a.st.Fold(func(key, value []byte) bool {
		item, decErr := decodeItem(value)
		if decErr == nil && !item.expired(now) {
			n++
		}
		return true
	}, storeFoldOptionsFast)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// cmdFlushDB destroys and recreates the shard's store, resetting accesses
// and waiters.
func cmdFlushDB(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	if err := a.flushDB(); err != nil {
		return nil, err
	}
	return message.OK, nil
}

func cmdInfo(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	info := fmt.Sprintf(
		"# Server\r\nedis_shard:%d\r\nuptime_in_seconds:%d\r\n# Persistence\r\nlast_save_time:%d\r\n",
		a.Index, int64(time.Since(a.startTime).Seconds()), int64(a.lastSave),
	)
	return []byte(info), nil
}

func cmdLastSave(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return int64(a.lastSave), nil
}

// cmdSave records the SAVE instant; goleveldb already persists every
// Put/Write durably, so this is pure LASTSAVE bookkeeping.
func cmdSave(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	a.save()
	return message.OK, nil
}
