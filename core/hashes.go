package core

import (
	"strconv"

	"github.com/guateandrew/edis/message"
)

func cmdHGet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	field, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	a.touch(key)
	value, ok := item.Hash[field]
	if !ok {
		return nil, nil
	}
	return value, nil
}

func cmdHMGet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	fields, err := argVariadicBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(fields))
	if found {
		a.touch(key)
		for i, f := range fields {
			if v, ok := item.Hash[string(f)]; ok {
				result[i] = v
			}
		}
	}
	return result, nil
}

func cmdHExists(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	field, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	if _, ok := item.Hash[field]; ok {
		return int64(1), nil
	}
	return int64(0), nil
}

func cmdHLen(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	return int64(len(item.Hash)), nil
}

func cmdHGetAll(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return [][]byte{}, nil
	}
	a.touch(key)
	flat := make([][]byte, 0, len(item.Hash)*2)
	for field, value := range item.Hash {
		flat = append(flat, []byte(field), value)
	}
	return flat, nil
}

func cmdHKeys(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return [][]byte{}, nil
	}
	a.touch(key)
	fields := make([][]byte, 0, len(item.Hash))
	for field := range item.Hash {
		fields = append(fields, []byte(field))
	}
	return fields, nil
}

func cmdHVals(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeHash, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return [][]byte{}, nil
	}
	a.touch(key)
	values := make([][]byte, 0, len(item.Hash))
	for _, v := range item.Hash {
		values = append(values, v)
	}
	return values, nil
}

func cmdHSet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	field, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	added, err := updateOrCreate(a.st, key, TypeHash, NewHashItem, func(item *Item) (int64, *Item, error) {
		_, existed := item.Hash[field]
		item.Hash[field] = value
		if existed {
			return 0, item, nil
		}
		return 1, item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return added, nil
}

func cmdHSetNx(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	field, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	value, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	added, err := updateOrCreate(a.st, key, TypeHash, NewHashItem, func(item *Item) (bool, *Item, error) {
		if _, existed := item.Hash[field]; existed {
			return false, item, nil
		}
		item.Hash[field] = value
		return true, item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return added, nil
}

func cmdHMSet(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	rest := cmd.Args[1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, ErrSyntax
	}

	_, err = updateOrCreate(a.st, key, TypeHash, NewHashItem, func(item *Item) (int64, *Item, error) {
		var added int64
		for i := 0; i < len(rest); i += 2 {
			field, value := string(rest[i]), rest[i+1]
			if _, existed := item.Hash[field]; !existed {
				added++
			}
			item.Hash[field] = value
		}
		return added, item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return message.OK, nil
}

func cmdHDel(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	fields, err := argVariadicBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	removed, err := updateOrDefault(a.st, key, TypeHash, int64(0), func(item *Item) (int64, *Item, error) {
		var removed int64
		for _, f := range fields {
			if _, ok := item.Hash[string(f)]; ok {
				delete(item.Hash, string(f))
				removed++
			}
		}
		return removed, item, nil
	})
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		a.touch(key)
	}
	return removed, nil
}

// cmdHIncrBy creates a missing field (or key) starting from 0.
func cmdHIncrBy(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	field, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	delta, err := argInt(cmd, 2)
	if err != nil {
		return nil, err
	}

	newValue, err := updateOrCreate(a.st, key, TypeHash, NewHashItem, func(item *Item) (int64, *Item, error) {
		cur := int64(0)
		if raw, ok := item.Hash[field]; ok {
			parsed, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return 0, nil, ErrNotInteger
			}
			cur = parsed
		}
		cur += int64(delta)
		item.Hash[field] = []byte(strconv.FormatInt(cur, 10))
		return cur, item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return newValue, nil
}
