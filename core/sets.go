package core

import (
	"sort"

	"github.com/guateandrew/edis/message"
)

func cmdSAdd(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	members, err := argVariadicBytes(cmd, 1)
	if err != nil || len(members) == 0 {
		return nil, ErrSyntax
	}

	added, err := updateOrCreate(a.st, key, TypeSet, NewSetItem, func(item *Item) (int64, *Item, error) {
		var n int64
		for _, m := range members {
			if _, exists := item.Set[string(m)]; !exists {
				item.Set[string(m)] = struct{}{}
				n++
			}
		}
		return n, item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return added, nil
}

func cmdSCard(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	return int64(len(item.Set)), nil
}

// cmdSRem deletes the key once the set empties.
func cmdSRem(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	members, err := argVariadicBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	removed, err := updateOrDefault(a.st, key, TypeSet, int64(0), func(item *Item) (int64, *Item, error) {
		var n int64
		for _, m := range members {
			if _, exists := item.Set[string(m)]; exists {
				delete(item.Set, string(m))
				n++
			}
		}
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

func cmdSIsMember(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	member, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return false, nil
	}
	a.touch(key)
	_, exists := item.Set[string(member)]
	return exists, nil
}

// sortedMembers returns a set's members in byte order, since the
// underlying map gives no ordering guarantee of its own.
func sortedMembers(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func cmdSMembers(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return [][]byte{}, nil
	}
	a.touch(key)
	members := sortedMembers(item.Set)
	out := make([][]byte, len(members))
	for i, m := range members {
		out[i] = []byte(m)
	}
	return out, nil
}

// cmdSMove is atomic within the actor: decrement source (deleting it if it
// empties), then add to dest.
func cmdSMove(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	src, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	dst, err := argBytes(cmd, 1)
	if err != nil {
		return nil, err
	}
	member, err := argBytes(cmd, 2)
	if err != nil {
		return nil, err
	}

	srcItem, found, err := getItem(a.st, TypeSet, src)
	if err != nil {
		return nil, err
	}
	if !found {
		return false, nil
	}
	if _, exists := srcItem.Set[string(member)]; !exists {
		return false, nil
	}

	dstItem, dstFound, err := getItem(a.st, TypeSet, dst)
	if err != nil {
		return nil, err
	}
	if !dstFound {
		dstItem = NewSetItem()
	}
	dstItem.Set[string(member)] = struct{}{}

	delete(srcItem.Set, string(member))
	if err := putItem(a.st, dst, dstItem); err != nil {
		return nil, err
	}
	if err := putItem(a.st, src, srcItem); err != nil {
		return nil, err
	}
	a.touch(src)
	a.touch(dst)
	return true, nil
}

// cmdSPop removes and returns the smallest member by byte order, a
// deliberately deterministic choice rather than a random one.
func cmdSPop(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}

	var popped []byte
	_, err = updateOrDefault(a.st, key, TypeSet, false, func(item *Item) (bool, *Item, error) {
		members := sortedMembers(item.Set)
		if len(members) == 0 {
			return false, item, nil
		}
		popped = []byte(members[0])
		delete(item.Set, members[0])
		return true, item, nil
	})
	if err != nil {
		return nil, err
	}
	if popped == nil {
		return nil, nil
	}
	a.touch(key)
	return popped, nil
}

// cmdSRandMember draws uniformly from the set's current size using the
// actor's single process-lifetime RNG, never reseeded per call.
func cmdSRandMember(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeSet, key)
	if err != nil {
		return nil, err
	}
	if !found || len(item.Set) == 0 {
		return nil, nil
	}
	a.touch(key)
	members := sortedMembers(item.Set)
	return []byte(members[a.rng.randomIndex(len(members))]), nil
}

func setOf(a *Actor, key []byte) (map[string]struct{}, bool, error) {
	item, found, err := getItem(a.st, TypeSet, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return map[string]struct{}{}, false, nil
	}
	a.touch(key)
	return item.Set, true, nil
}

// sdiff computes the set-difference of the first key against the rest.
func sdiff(a *Actor, keys [][]byte) (map[string]struct{}, error) {
	first, _, err := setOf(a, keys[0])
	if err != nil {
		return nil, err
	}
	result := map[string]struct{}{}
	for m := range first {
		result[m] = struct{}{}
	}
	for _, k := range keys[1:] {
		other, _, err := setOf(a, k)
		if err != nil {
			return nil, err
		}
		for m := range other {
			delete(result, m)
		}
	}
	return result, nil
}

// sinter computes the intersection across keys; any missing key makes the
// whole result empty.
func sinter(a *Actor, keys [][]byte) (map[string]struct{}, error) {
	result := map[string]struct{}{}
	first, found, err := setOf(a, keys[0])
	if err != nil {
		return nil, err
	}
	if !found {
		return result, nil
	}
	for m := range first {
		result[m] = struct{}{}
	}
	for _, k := range keys[1:] {
		other, found, err := setOf(a, k)
		if err != nil {
			return nil, err
		}
		if !found {
			return map[string]struct{}{}, nil
		}
		for m := range result {
			if _, ok := other[m]; !ok {
				delete(result, m)
			}
		}
	}
	return result, nil
}

// sunion treats a missing key as an empty set and never fails.
func sunion(a *Actor, keys [][]byte) (map[string]struct{}, error) {
	result := map[string]struct{}{}
	for _, k := range keys {
		s, _, err := setOf(a, k)
		if err != nil {
			return nil, err
		}
		for m := range s {
			result[m] = struct{}{}
		}
	}
	return result, nil
}

func membersOf(set map[string]struct{}) [][]byte {
	members := sortedMembers(set)
	out := make([][]byte, len(members))
	for i, m := range members {
		out[i] = []byte(m)
	}
	return out
}

func cmdSDiff(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	keys, err := argVariadicBytes(cmd, 0)
	if err != nil || len(keys) == 0 {
		return nil, ErrSyntax
	}
	result, err := sdiff(a, keys)
	if err != nil {
		return nil, err
	}
	return membersOf(result), nil
}

func cmdSInter(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	keys, err := argVariadicBytes(cmd, 0)
	if err != nil || len(keys) == 0 {
		return nil, ErrSyntax
	}
	result, err := sinter(a, keys)
	if err != nil {
		return nil, err
	}
	return membersOf(result), nil
}

func cmdSUnion(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	keys, err := argVariadicBytes(cmd, 0)
	if err != nil || len(keys) == 0 {
		return nil, ErrSyntax
	}
	result, err := sunion(a, keys)
	if err != nil {
		return nil, err
	}
	return membersOf(result), nil
}

// storeSet is shared by the three *STORE variants: write the computed set
// to dest, deleting dest instead when the result is empty.
func storeSet(a *Actor, dest []byte, result map[string]struct{}) (int64, error) {
	item := &Item{Type: TypeSet, Encoding: canonicalEncoding(TypeSet), Set: result}
	if err := putItem(a.st, dest, item); err != nil {
		return 0, err
	}
	a.touch(dest)
	return int64(len(result)), nil
}

func cmdSDiffStore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	dest, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	keys, err := argVariadicBytes(cmd, 1)
	if err != nil || len(keys) == 0 {
		return nil, ErrSyntax
	}
	result, err := sdiff(a, keys)
	if err != nil {
		return nil, err
	}
	return storeSet(a, dest, result)
}

func cmdSInterStore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	dest, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	keys, err := argVariadicBytes(cmd, 1)
	if err != nil || len(keys) == 0 {
		return nil, ErrSyntax
	}
	result, err := sinter(a, keys)
	if err != nil {
		return nil, err
	}
	return storeSet(a, dest, result)
}

func cmdSUnionStore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	dest, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	keys, err := argVariadicBytes(cmd, 1)
	if err != nil || len(keys) == 0 {
		return nil, ErrSyntax
	}
	result, err := sunion(a, keys)
	if err != nil {
		return nil, err
	}
	return storeSet(a, dest, result)
}
