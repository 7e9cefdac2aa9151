package core

import "time"

// ValueType is the declared type of a stored Item, checked on every access.
type ValueType int

const (
	TypeNone ValueType = iota
	TypeString
	TypeHash
	TypeList
	TypeSet
	TypeZSet
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeHash:
		return "hash"
	case TypeList:
		return "list"
	case TypeSet:
		return "set"
	case TypeZSet:
		return "zset"
	default:
		return "none"
	}
}

// Encoding is advisory metadata describing how Value is represented.
// Unrecognized values may arrive via migration from another implementation
// and must be preserved on read.
type Encoding int

const (
	EncRaw Encoding = iota
	EncInt
	EncZiplist
	EncLinkedList
	EncIntset
	EncHashtable
	EncZipmap
	EncSkiplist
)

func (e Encoding) String() string {
	switch e {
	case EncRaw:
		return "raw"
	case EncInt:
		return "int"
	case EncZiplist:
		return "ziplist"
	case EncLinkedList:
		return "linkedlist"
	case EncIntset:
		return "intset"
	case EncHashtable:
		return "hashtable"
	case EncZipmap:
		return "zipmap"
	case EncSkiplist:
		return "skiplist"
	default:
		return "unknown"
	}
}

// canonicalEncoding returns the encoding this implementation always writes
// for a freshly created value of the given type.
func canonicalEncoding(t ValueType) Encoding {
	switch t {
	case TypeString:
		return EncRaw
	case TypeHash:
		return EncHashtable
	case TypeList:
		return EncLinkedList
	case TypeSet:
		return EncHashtable
	case TypeZSet:
		return EncSkiplist
	default:
		return EncRaw
	}
}

// neverExpire is the sentinel stored when a key has no TTL.
const neverExpire int64 = 0

// Item is the typed, tagged-union record persisted under one key. Exactly
// one of Str/Hash/List/Set/ZSet is meaningful, selected by Type.
type Item struct {
	Type     ValueType
	Encoding Encoding
	// Expire is a Unix-nanosecond absolute deadline, or neverExpire.
	Expire int64

	Str  []byte
	Hash map[string][]byte
	List [][]byte
	Set  map[string]struct{}
	ZSet *ZSet
}

// NewStringItem builds a fresh string Item.
func NewStringItem(value []byte) *Item {
	return &Item{Type: TypeString, Encoding: canonicalEncoding(TypeString), Str: value}
}

// NewHashItem builds a fresh, empty hash Item.
func NewHashItem() *Item {
	return &Item{Type: TypeHash, Encoding: canonicalEncoding(TypeHash), Hash: map[string][]byte{}}
}

// NewListItem builds a fresh, empty list Item.
func NewListItem() *Item {
	return &Item{Type: TypeList, Encoding: canonicalEncoding(TypeList), List: [][]byte{}}
}

// NewSetItem builds a fresh, empty set Item.
func NewSetItem() *Item {
	return &Item{Type: TypeSet, Encoding: canonicalEncoding(TypeSet), Set: map[string]struct{}{}}
}

// NewZSetItem builds a fresh, empty zset Item.
func NewZSetItem() *Item {
	return &Item{Type: TypeZSet, Encoding: canonicalEncoding(TypeZSet), ZSet: NewZSet()}
}

// IsEmptyContainer reports whether an aggregate Item has no members left;
// such Items must be deleted rather than persisted.
func (i *Item) IsEmptyContainer() bool {
	switch i.Type {
	case TypeHash:
		return len(i.Hash) == 0
	case TypeList:
		return len(i.List) == 0
	case TypeSet:
		return len(i.Set) == 0
	case TypeZSet:
		return i.ZSet == nil || i.ZSet.Len() == 0
	default:
		return false
	}
}

// expired reports whether the item's TTL has elapsed as of now.
func (i *Item) expired(now time.Time) bool {
	return i.Expire != neverExpire && i.Expire <= now.UnixNano()
}

// ExpireAt sets an absolute expiry instant.
func (i *Item) ExpireAt(t time.Time) {
	i.Expire = t.UnixNano()
}

// Persist clears any TTL.
func (i *Item) Persist() {
	i.Expire = neverExpire
}

// HasExpiry reports whether the item carries a TTL.
func (i *Item) HasExpiry() bool {
	return i.Expire != neverExpire
}
