package core

import (
	"strconv"

	"github.com/guateandrew/edis/message"
)

func cmdGet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeString, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	a.touch(key)
	return item.Str, nil
}

func cmdSet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	if err := putItem(a.st, key, NewStringItem(value)); err != nil {
		return nil, err
	}
	a.touch(key)
	return message.OK, nil
}

func cmdSetEx(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	seconds, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	item := NewStringItem(value)
	item.ExpireAt(nowPlusSeconds(seconds))
	if err := putItem(a.st, key, item); err != nil {
		return nil, err
	}
	a.touch(key)
	return message.OK, nil
}

func cmdSetNx(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	_, found, err := getItem(a.st, TypeNone, key)
	if err != nil {
		return nil, err
	}
	if found {
		return int64(0), nil
	}
	if err := putItem(a.st, key, NewStringItem(value)); err != nil {
		return nil, err
	}
	a.touch(key)
	return int64(1), nil
}

func cmdMSet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	if argc(cmd) == 0 || argc(cmd)%2 != 0 {
		return nil, ErrSyntax
	}
	for i := 0; i < argc(cmd); i += 2 {
		key, value := cmd.Args[i], cmd.Args[i+1]
		if err := putItem(a.st, key, NewStringItem(value)); err != nil {
			return nil, err
		}
		a.touch(key)
	}
	return message.OK, nil
}

// cmdMSetNx is MSET's all-or-nothing sibling: any existing target key
// aborts the whole batch without writing anything.
func cmdMSetNx(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	if argc(cmd) == 0 || argc(cmd)%2 != 0 {
		return nil, ErrSyntax
	}
	for i := 0; i < argc(cmd); i += 2 {
		_, found, err := getItem(a.st, TypeNone, cmd.Args[i])
		if err != nil {
			return nil, err
		}
		if found {
			return int64(0), nil
		}
	}
	for i := 0; i < argc(cmd); i += 2 {
		key, value := cmd.Args[i], cmd.Args[i+1]
		if err := putItem(a.st, key, NewStringItem(value)); err != nil {
			return nil, err
		}
		a.touch(key)
	}
	return int64(1), nil
}

func cmdAppend(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	length, err := updateOrCreate(a.st, key, TypeString, func() *Item { return NewStringItem(nil) },
		func(item *Item) (int64, *Item, error) {
			item.Str = append(item.Str, value...)
			return int64(len(item.Str)), item, nil
		})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return length, nil
}

func cmdGetSet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeString, key)
	if err != nil {
		return nil, err
	}

	if err := putItem(a.st, key, NewStringItem(value)); err != nil {
		return nil, err
	}
	a.touch(key)
	if !found {
		return nil, nil
	}
	return item.Str, nil
}

func cmdStrLen(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeString, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	return int64(len(item.Str)), nil
}

func cmdGetRange(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
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

	item, found, err := getItem(a.st, TypeString, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return []byte{}, nil
	}
	a.touch(key)

	s, e, ok := normalizeRange(len(item.Str), start, end)
	if !ok {
		return []byte{}, nil
	}
	return item.Str[s : e+1], nil
}

func cmdSetRange(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	offset, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, ErrOutOfRange
	}
	value, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	length, err := updateOrCreate(a.st, key, TypeString, func() *Item { return NewStringItem(nil) },
		func(item *Item) (int64, *Item, error) {
			needed := offset + len(value)
			if len(item.Str) < needed {
				padded := make([]byte, needed)
				copy(padded, item.Str)
				item.Str = padded
			}
			copy(item.Str[offset:], value)
			return int64(len(item.Str)), item, nil
		})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return length, nil
}

func cmdGetBit(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	offset, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, ErrOutOfRange
	}

	item, found, err := getItem(a.st, TypeString, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)

	byteIdx, bitIdx := offset/8, offset%8
	if byteIdx >= len(item.Str) {
		return int64(0), nil
	}
	bit := (item.Str[byteIdx] >> (7 - uint(bitIdx))) & 1
	return int64(bit), nil
}

// cmdSetBit rebuilds the byte string so that only the target bit changes:
// bits before offset keep their value, the target bit takes the new value,
// and bits after offset keep theirs too.
func cmdSetBit(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	offset, err := argInt(cmd, 1)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, ErrOutOfRange
	}
	bitVal, err := argInt(cmd, 2)
	if err != nil {
		return nil, err
	}
	if bitVal != 0 && bitVal != 1 {
		return nil, ErrOutOfRange
	}

	byteIdx, bitIdx := offset/8, offset%8

	oldBit, err := updateOrCreate(a.st, key, TypeString, func() *Item { return NewStringItem(nil) },
		func(item *Item) (int64, *Item, error) {
			if len(item.Str) <= byteIdx {
				padded := make([]byte, byteIdx+1)
				copy(padded, item.Str)
				item.Str = padded
			}
			mask := byte(1) << (7 - uint(bitIdx))
			old := int64(0)
			if item.Str[byteIdx]&mask != 0 {
				old = 1
			}
			if bitVal == 1 {
				item.Str[byteIdx] |= mask
			} else {
				item.Str[byteIdx] &^= mask
			}
			return old, item, nil
		})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return oldBit, nil
}

func cmdIncrBy(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return incrByCommand(a, cmd, 1)
}

func cmdIncr(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return incrFixedCommand(a, cmd, 1)
}

func cmdDecrBy(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return incrByCommand(a, cmd, -1)
}

func cmdDecr(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return incrFixedCommand(a, cmd, -1)
}

func incrFixedCommand(a *Actor, cmd *message.Command, sign int64) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	return doIncrBy(a, key, sign)
}

func incrByCommand(a *Actor, cmd *message.Command, sign int64) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	delta, err := argInt(cmd, 1)
	if err != nil {
		return nil, ErrNotInteger
	}
	return doIncrBy(a, key, sign*int64(delta))
}

// doIncrBy treats a missing key as starting from the literal "0" before
// applying delta.
func doIncrBy(a *Actor, key []byte, delta int64) (interface{}, error) {
	newValue, err := updateOrCreate(a.st, key, TypeString, func() *Item { return NewStringItem([]byte("0")) },
		func(item *Item) (int64, *Item, error) {
			cur, err := strconv.ParseInt(string(item.Str), 10, 64)
			if err != nil {
				return 0, nil, ErrNotInteger
			}
			cur += delta
			item.Str = []byte(strconv.FormatInt(cur, 10))
			return cur, item, nil
		})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return newValue, nil
}
