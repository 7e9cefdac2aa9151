package core

import (
	"testing"
	"time"

	"github.com/go-test/deep"
	"github.com/guateandrew/edis/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), true)
	if err != nil {
		t.Fatalf("store.Open: %s", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestItemCodec_RoundTripsEveryValueFamily(t *testing.T) {
	str := NewStringItem([]byte("v"))

	hash := NewHashItem()
	hash.Hash["f"] = []byte("v")

	list := NewListItem()
	list.List = append(list.List, []byte("a"), []byte("b"))

	set := NewSetItem()
	set.Set["m"] = struct{}{}

	zset := NewZSetItem()
	zset.ZSet.Set("m", 1.5)

	for name, item := range map[string]*Item{
		"string": str, "hash": hash, "list": list, "set": set, "zset": zset,
	} {
		data, err := encodeItem(item)
		if err != nil {
			t.Fatalf("%s: encodeItem: %s", name, err)
		}
		out, err := decodeItem(data)
		if err != nil {
			t.Fatalf("%s: decodeItem: %s", name, err)
		}
		if diff := deep.Equal(out, item); diff != nil {
			t.Errorf("%s round trip: %s", name, diff)
		}
	}

	// deep skips ZSet's unexported score map, so check it explicitly.
	data, err := encodeItem(zset)
	if err != nil {
		t.Fatalf("zset: encodeItem: %s", err)
	}
	out, err := decodeItem(data)
	if err != nil {
		t.Fatalf("zset: decodeItem: %s", err)
	}
	if score, ok := out.ZSet.Score("m"); !ok || score != 1.5 {
		t.Errorf("zset round-tripped score: got (%v, %v), want (1.5, true)", score, ok)
	}
}

func TestGetItem_TypeGate(t *testing.T) {
	s := newTestStore(t)
	key := []byte("k")

	if err := putItem(s, key, NewStringItem([]byte("v"))); err != nil {
		t.Fatalf("putItem: %s", err)
	}

	if _, _, err := getItem(s, TypeList, key); err != ErrWrongType {
		t.Errorf("getItem with mismatched type: got err %v, want ErrWrongType", err)
	}

	item, found, err := getItem(s, TypeNone, key)
	if err != nil || !found {
		t.Fatalf("getItem with TypeNone: found=%v err=%v", found, err)
	}
	if item.Type != TypeString {
		t.Errorf("getItem with TypeNone: got type %s, want string", item.Type)
	}
}

func TestGetItem_LazilyDeletesExpired(t *testing.T) {
	s := newTestStore(t)
	key := []byte("k")

	item := NewStringItem([]byte("v"))
	item.ExpireAt(time.Now().Add(-time.Second))
	if err := putItem(s, key, item); err != nil {
		t.Fatalf("putItem: %s", err)
	}

	// The raw byte slot is occupied until something reads through the gate.
	occupied, err := existsItem(s, key)
	if err != nil {
		t.Fatalf("existsItem: %s", err)
	}
	if !occupied {
		t.Fatalf("existsItem before the gated read: got false, want true")
	}

	_, found, err := getItem(s, TypeNone, key)
	if err != nil {
		t.Fatalf("getItem: %s", err)
	}
	if found {
		t.Errorf("getItem on expired key: got found, want absent")
	}

	occupied, _ = existsItem(s, key)
	if occupied {
		t.Errorf("expired record still present after the gated read evicted it")
	}
}

func TestPutItem_EmptyContainerDeletesKey(t *testing.T) {
	s := newTestStore(t)
	key := []byte("k")

	full := NewSetItem()
	full.Set["m"] = struct{}{}
	if err := putItem(s, key, full); err != nil {
		t.Fatalf("putItem: %s", err)
	}

	if err := putItem(s, key, NewSetItem()); err != nil {
		t.Fatalf("putItem with empty set: %s", err)
	}
	occupied, err := existsItem(s, key)
	if err != nil {
		t.Fatalf("existsItem: %s", err)
	}
	if occupied {
		t.Errorf("empty container persisted instead of deleting the key")
	}
}

func TestDecodeItem_GarbageIsWrongType(t *testing.T) {
	if _, err := decodeItem([]byte("not a gob stream")); err != ErrWrongType {
		t.Errorf("decodeItem on garbage: got err %v, want ErrWrongType", err)
	}
}
