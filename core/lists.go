package core

import (
	"github.com/guateandrew/edis/message"
)

func cmdLLen(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeList, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	return int64(len(item.List)), nil
}

func cmdLIndex(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	index, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeList, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	a.touch(key)
	idx, ok := normalizeIndex(len(item.List), index)
	if !ok {
		return nil, nil
	}
	return item.List[idx], nil
}

// cmdLSet reports ErrNoSuchKey for absent keys and ErrOutOfRange for bad
// indices.
func cmdLSet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	index, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	_, err = update(a.st, key, TypeList, func(item *Item) (bool, *Item, error) {
		idx, ok := normalizeIndex(len(item.List), index)
		if !ok {
			return false, nil, ErrOutOfRange
		}
		item.List[idx] = value
		return true, item, nil
	})
	switch err {
	case ErrNotFound:
		return nil, ErrNoSuchKey
	case nil:
		a.touch(key)
		return message.OK, nil
	default:
		return nil, err
	}
}

// cmdLRange shares the index-normalization rules of GETRANGE, inclusive of
// both ends.
func cmdLRange(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	start, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	end, err := argInt(cmd, 2)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeList, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return [][]byte{}, nil
	}
	a.touch(key)
	s, e, ok := normalizeRange(len(item.List), start, end)
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, e-s+1)
	copy(out, item.List[s:e+1])
	return out, nil
}

func cmdLTrim(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	start, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	end, err := argInt(cmd, 2)
	if err != nil {
		return nil, err
	}

	_, err = updateOrDefault(a.st, key, TypeList, false, func(item *Item) (bool, *Item, error) {
		s, e, ok := normalizeRange(len(item.List), start, end)
		if !ok {
			item.List = [][]byte{}
		} else {
			trimmed := make([][]byte, e-s+1)
			copy(trimmed, item.List[s:e+1])
			item.List = trimmed
		}
		return true, item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return message.OK, nil
}

// cmdLRem: count > 0 removes the first count occurrences scanning from the
// head, count < 0 scans from the tail, count == 0 removes every occurrence.
func cmdLRem(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	count, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	removed, err := updateOrDefault(a.st, key, TypeList, int64(0), func(item *Item) (int64, *Item, error) {
		var kept [][]byte
		var n int64
		switch {
		case count == 0:
			for _, v := range item.List {
				if bytesEqual(v, value) {
					n++
					continue
				}
				kept = append(kept, v)
			}
		case count > 0:
			for _, v := range item.List {
				if n < int64(count) && bytesEqual(v, value) {
					n++
					continue
				}
				kept = append(kept, v)
			}
		default:
			limit := -count
			for i := len(item.List) - 1; i >= 0; i-- {
				v := item.List[i]
				if n < int64(limit) && bytesEqual(v, value) {
					n++
					continue
				}
				kept = append([][]byte{v}, kept...)
			}
		}
		item.List = kept
		return n, item, nil
	})
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		a.touch(key)
	}
	return removed, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func cmdLPush(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	return doPush(a, cmd, true, false)
}

func cmdRPush(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	return doPush(a, cmd, false, false)
}

func cmdLPushX(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	return doPush(a, cmd, true, true)
}

func cmdRPushX(a *Actor, cmd *message.Command, caller ReplySink) (interface{}, error) {
	return doPush(a, cmd, false, true)
}

// doPush handles LPUSH/RPUSH and their X variants: LPUSH v1 v2 prepends one
// at a time, so the final head order is v2, v1, ...old.... The X variants
// fail to 0 rather than create the key. A successful push wakes blocked
// waiters on key.
func doPush(a *Actor, cmd *message.Command, left bool, requireExisting bool) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	values, err := argVariadicBytes(cmd, 1)
	if err != nil || len(values) == 0 {
		return nil, ErrSyntax
	}

	mutate := func(item *Item) (int64, *Item, error) {
		for _, v := range values {
			if left {
				item.List = append([][]byte{v}, item.List...)
			} else {
				item.List = append(item.List, v)
			}
		}
		return int64(len(item.List)), item, nil
	}

	var length int64
	if requireExisting {
		length, err = updateOrDefault(a.st, key, TypeList, int64(0), mutate)
		if err != nil {
			return nil, err
		}
		if length == 0 {
			return int64(0), nil
		}
	} else {
		length, err = updateOrCreate(a.st, key, TypeList, NewListItem, mutate)
		if err != nil {
			return nil, err
		}
	}
	a.touch(key)
	a.wake(key)
	return length, nil
}

func cmdLPop(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doPop(a, cmd, true)
}

func cmdRPop(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doPop(a, cmd, false)
}

// doPop deletes key once the list empties, and returns nil when the key
// was absent to begin with.
func doPop(a *Actor, cmd *message.Command, left bool) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	value, err := popNonBlocking(a, key, left)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	a.touch(key)
	return value, nil
}

// popNonBlocking is the internal "try" operation BLPOP/BRPOP use before
// parking: returns ErrNotFound (an internal signal, never surfaced to a
// client directly) when the list is absent or empty.
func popNonBlocking(a *Actor, key []byte, left bool) ([]byte, error) {
	item, found, err := getItem(a.st, TypeList, key)
	if err != nil {
		return nil, err
	}
	if !found || len(item.List) == 0 {
		return nil, ErrNotFound
	}

	var value []byte
	if left {
		value = item.List[0]
		item.List = item.List[1:]
	} else {
		value = item.List[len(item.List)-1]
		item.List = item.List[:len(item.List)-1]
	}
	if err := putItem(a.st, key, item); err != nil {
		return nil, err
	}
	return value, nil
}

func cmdLInsert(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	where, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	pivot, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 3)
	if err != nil {
		return nil, err
	}

	length, err := updateOrDefault(a.st, key, TypeList, int64(0), func(item *Item) (int64, *Item, error) {
		idx := -1
		for i, v := range item.List {
			if bytesEqual(v, pivot) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return -1, item, nil
		}
		insertAt := idx
		if where == "AFTER" {
			insertAt = idx + 1
		}
		newList := make([][]byte, 0, len(item.List)+1)
		newList = append(newList, item.List[:insertAt]...)
		newList = append(newList, value)
		newList = append(newList, item.List[insertAt:]...)
		item.List = newList
		return int64(len(item.List)), item, nil
	})
	if err != nil {
		return nil, err
	}
	if length > 0 {
		a.touch(key)
	}
	return length, nil
}

// cmdRPopLpush implements RPOPLPUSH, including the in-place rotation when
// source == dest.
func cmdRPopLpush(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	src, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	dst, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}
	value, err := doRPopLpush(a, src, dst)
	if err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// doRPopLpush is the shared, non-blocking core both RPOPLPUSH and
// BRPOPLPUSH retry against: ErrNotFound means source is empty/absent.
func doRPopLpush(a *Actor, src, dst []byte) ([]byte, error) {
	srcItem, found, err := getItem(a.st, TypeList, src)
	if err != nil {
		return nil, err
	}
	if !found || len(srcItem.List) == 0 {
		return nil, ErrNotFound
	}

	value := srcItem.List[len(srcItem.List)-1]

	if string(src) == string(dst) {
		rest := srcItem.List[:len(srcItem.List)-1]
		srcItem.List = append([][]byte{value}, rest...)
		if err := putItem(a.st, src, srcItem); err != nil {
			return nil, err
		}
		a.touch(src)
		a.wake(dst)
		return value, nil
	}

	dstItem, dstFound, err := getItem(a.st, TypeList, dst)
	if err != nil {
		return nil, err
	}
	if !dstFound {
		dstItem = NewListItem()
	}
	dstItem.List = append([][]byte{value}, dstItem.List...)

	srcItem.List = srcItem.List[:len(srcItem.List)-1]
	if err := putItem(a.st, dst, dstItem); err != nil {
		return nil, err
	}
	if err := putItem(a.st, src, srcItem); err != nil {
		return nil, err
	}
	a.touch(src)
	a.touch(dst)
	a.wake(dst)
	return value, nil
}
