package core

import (
	"fmt"
	"regexp"
	"time"

	"github.com/guateandrew/edis/log"
	"github.com/guateandrew/edis/message"
)

func cmdDel(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	keys, err := argVariadicBytes(cmd, 0)
	if err != nil {
		return nil, err
	}

	var removed int64
	for _, key := range keys {
		_, found, err := getItem(a.st, TypeNone, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if err := a.st.Delete(key); err != nil {
			return nil, err
		}
		removed++
	}
	return removed, nil
}

func cmdExists(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	_, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if found {
		a.touch(key)
		return int64(1), nil
	}
	return int64(0), nil
}

func cmdExpire(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	seconds, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	return doExpireAt(a, key, nowPlusSeconds(seconds))
}

func cmdExpireAt(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	unixSeconds, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	return doExpireAt(a, key, time.Unix(int64(unixSeconds), 0))
}

// doExpireAt deletes the key immediately when the deadline is at or
// before now, instead of storing a past TTL.
func doExpireAt(a *Actor, key []byte, at time.Time) (interface{}, error) {
	item, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}

	if !at.After(time.Now()) {
		if err := a.st.Delete(key); err != nil {
			return nil, err
		}
		return int64(1), nil
	}

	item.ExpireAt(at)
	if err := putItem(a.st, key, item); err != nil {
		return nil, err
	}
	a.touch(key)
	return int64(1), nil
}

func cmdPersist(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if !found || !item.HasExpiry() {
		return int64(0), nil
	}

	item.Persist()
	if err := putItem(a.st, key, item); err != nil {
		return nil, err
	}
	a.touch(key)
	return int64(1), nil
}

func cmdTTL(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if !found || !item.HasExpiry() {
		return int64(-1), nil
	}
	a.touch(key)
	remaining := time.Until(time.Unix(0, item.Expire))
	return int64(remaining.Seconds()), nil
}

func cmdType(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return TypeNone.String(), nil
	}
	a.touch(key)
	return item.Type.String(), nil
}

func cmdObject(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	sub, err := argString(cmd, 0)
	if err != nil {
		return nil, err
	}
	key, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSuchKey
	}

	switch sub {
	case "REFCOUNT":
		return int64(1), nil
	case "ENCODING":
		return item.Encoding.String(), nil
	case "IDLETIME":
		return a.idleSeconds(key), nil
	default:
		return nil, ErrSyntax
	}
}

// cmdKeys matches pattern, a POSIX-style regular expression, against every
// non-expired key in the shard.
func cmdKeys(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	pattern, err := argString(cmd, 0)
	if err != nil {
		return nil, err
	}
	re, err := regexp.CompilePOSIX(pattern)
	if err != nil {
		return nil, ErrBadPattern
	}

	var matches [][]byte
	now := time.Now()
	err = a.st.Fold(func(key, value []byte) bool {
		item, decErr := decodeItem(value)
		if decErr != nil || item.expired(now) {
			return true
		}
		if re.Match(key) {
			matches = append(matches, append([]byte(nil), key...))
		}
		return true
	}, storeFoldOptionsFast)
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func cmdRandomKey(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := a.randomKey()
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, nil
	}
	return key, nil
}

func cmdRename(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doRename(a, cmd, false)
}

func cmdRenameNx(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doRename(a, cmd, true)
}

// doRename implements RENAME/RENAMENX, preserving type, encoding, expire
// and value via a single get+put+delete sequence (put dst, then delete src).
func doRename(a *Actor, cmd *message.Command, nx bool) (interface{}, error) {
	src, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	dst, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeNone, src)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSuchKey
	}

	if nx {
		_, dstFound, err := getItem(a.st, TypeNone, dst)
		if err != nil {
			return nil, err
		}
		if dstFound {
			return int64(0), nil
		}
	}

	if err := putItem(a.st, dst, item); err != nil {
		return nil, err
	}
	if err := a.st.Delete(src); err != nil {
		return nil, err
	}
	a.touch(dst)
	if nx {
		return int64(1), nil
	}
	return message.OK, nil
}

// cmdMove reads from this shard, hands the item to the destination actor
// via Mover.Receive, and only then deletes the source -- rolling back with
// a destination delete if Receive fails for a reason other than "already
// present", or if the source delete fails after the destination adopted
// the item.
func cmdMove(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	dbIndex, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	// Receive takes the destination actor's mutex while this actor holds
	// its own; a same-shard MOVE would take the same mutex twice.
	if dbIndex == a.Index {
		return nil, fmt.Errorf("MOVE: source and destination are the same shard")
	}

	item, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return false, nil
	}

	if err := a.mover.Receive(dbIndex, key, item); err != nil {
		if err == ErrFound {
			return false, nil
		}
		if derr := a.mover.Discard(dbIndex, key); derr != nil {
			log.Errorf("shard %d: MOVE rollback for %q on shard %d: %s", a.Index, key, dbIndex, derr)
		}
		return nil, err
	}

	if err := a.st.Delete(key); err != nil {
		// The destination already adopted the item; take it back so the key
		// doesn't end up live in two shards at once.
		if derr := a.mover.Discard(dbIndex, key); derr != nil {
			log.Errorf("shard %d: MOVE compensation for %q on shard %d: %s", a.Index, key, dbIndex, derr)
		}
		return nil, err
	}
	return true, nil
}
