package core

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/guateandrew/edis/store"
	"github.com/mshaverdo/assert"
)

func init() {
	gob.Register(&ZSet{})
}

// encodeItem serializes an Item into the self-describing blob stored in the
// KV store. gob round-trips the tagged union (Str/Hash/List/Set/ZSet)
// without hand-rolled framing.
func encodeItem(item *Item) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(item); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeItem deserializes a blob written by encodeItem. A decode failure
// (unrecognized type record) is reported as ErrWrongType and the corrupt
// bytes are left untouched in the store.
func decodeItem(data []byte) (*Item, error) {
	item := new(Item)
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(item); err != nil {
		return nil, ErrWrongType
	}
	return item, nil
}

// getItem fetches key, lazily evicting it if expired, and gates on
// expectedType. Passing TypeNone as expectedType skips the type check
// (used by TYPE/OBJECT/RENAME, which operate regardless of type).
func getItem(s *store.Store, expectedType ValueType, key []byte) (item *Item, found bool, err error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	item, err = decodeItem(raw)
	if err != nil {
		return nil, false, err
	}

	if item.expired(time.Now()) {
		if err := s.Delete(key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	if expectedType != TypeNone && item.Type != expectedType {
		return nil, false, ErrWrongType
	}

	return item, true, nil
}

// existsItem reports whether key occupies a byte slot in the store,
// ignoring expiry -- MOVE's destination guard (Actor.Receive) wants "is the
// slot occupied", distinct from the gated reader above.
func existsItem(s *store.Store, key []byte) (bool, error) {
	_, ok, err := s.Get(key)
	return ok, err
}

// putItem persists item under key: an aggregate value with no members is
// deleted instead of written.
func putItem(s *store.Store, key []byte, item *Item) error {
	assert.True(item != nil, "core: putItem called with a nil *Item")
	if item.IsEmptyContainer() {
		return s.Delete(key)
	}
	data, err := encodeItem(item)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}
