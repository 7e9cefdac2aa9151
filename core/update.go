package core

import "github.com/guateandrew/edis/store"

// MutateFunc is the shape every command handler's read-modify-write step
// takes: given the current item, compute a reply fragment and the item's
// new state. Returning a non-nil error aborts the write.
type MutateFunc[R any] func(item *Item) (R, *Item, error)

// update does get -> mutate -> put, failing with ErrNotFound if key is
// absent. Used by handlers like LSET that require an existing container.
func update[R any](s *store.Store, key []byte, typ ValueType, fn MutateFunc[R]) (R, error) {
	var zero R
	item, found, err := getItem(s, typ, key)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ErrNotFound
	}
	return applyMutation(s, key, item, fn)
}

// updateOrDefault implements the second variant: when key is absent,
// return defaultResult unchanged and perform no write at all.
func updateOrDefault[R any](s *store.Store, key []byte, typ ValueType, defaultResult R, fn MutateFunc[R]) (R, error) {
	item, found, err := getItem(s, typ, key)
	if err != nil {
		return defaultResult, err
	}
	if !found {
		return defaultResult, nil
	}
	return applyMutation(s, key, item, fn)
}

// updateOrCreate implements the third variant: when key is absent, build a
// fresh Item via makeDefault before applying fn, and persist the result
// even if this is the item's first write.
func updateOrCreate[R any](s *store.Store, key []byte, typ ValueType, makeDefault func() *Item, fn MutateFunc[R]) (R, error) {
	var zero R
	item, found, err := getItem(s, typ, key)
	if err != nil {
		return zero, err
	}
	if !found {
		item = makeDefault()
	}
	return applyMutation(s, key, item, fn)
}

func applyMutation[R any](s *store.Store, key []byte, item *Item, fn MutateFunc[R]) (R, error) {
	var zero R
	result, newItem, err := fn(item)
	if err != nil {
		return zero, err
	}
	if err := putItem(s, key, newItem); err != nil {
		return zero, err
	}
	return result, nil
}
