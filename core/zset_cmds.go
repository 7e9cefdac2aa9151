package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/guateandrew/edis/message"
)

// parseScoreBound parses one ZCOUNT/ZRANGEBYSCORE endpoint: a raw float is
// an inclusive bound, a "(" prefix makes it exclusive, and +inf/-inf give
// unbounded ends.
func parseScoreBound(s string) (ScoreBound, error) {
	exclusive := false
	if strings.HasPrefix(s, "(") {
		exclusive = true
		s = s[1:]
	}
	switch strings.ToLower(s) {
	case "+inf", "inf":
		return ScoreBound{Value: math.Inf(1), Exclusive: exclusive}, nil
	case "-inf":
		return ScoreBound{Value: math.Inf(-1), Exclusive: exclusive}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ScoreBound{}, ErrNotFloat
	}
	return ScoreBound{Value: v, Exclusive: exclusive}, nil
}

func cmdZAdd(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	rest := cmd.Args[1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		return nil, ErrSyntax
	}

	added, err := updateOrCreate(a.st, key, TypeZSet, NewZSetItem, func(item *Item) (int64, *Item, error) {
		var n int64
		for i := 0; i < len(rest); i += 2 {
			score, err := strconv.ParseFloat(string(rest[i]), 64)
			if err != nil {
				return 0, nil, ErrNotFloat
			}
			if item.ZSet.Set(string(rest[i+1]), score) {
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

func cmdZCard(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeZSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	return int64(item.ZSet.Len()), nil
}

func cmdZScore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	member, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeZSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	a.touch(key)
	score, ok := item.ZSet.Score(member)
	if !ok {
		return nil, nil
	}
	return score, nil
}

func cmdZIncrBy(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	delta, err := argFloat(cmd, 1)
	if err != nil {
		return nil, ErrNotFloat
	}
	member, err := argString(cmd, 2)
	if err != nil {
		return nil, err
	}

	newScore, err := updateOrCreate(a.st, key, TypeZSet, NewZSetItem, func(item *Item) (float64, *Item, error) {
		return item.ZSet.IncrBy(member, delta), item, nil
	})
	if err != nil {
		return nil, err
	}
	a.touch(key)
	return newScore, nil
}

func cmdZRem(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	members, err := argVariadicBytes(cmd, 1)
	if err != nil {
		return nil, err
	}

	removed, err := updateOrDefault(a.st, key, TypeZSet, int64(0), func(item *Item) (int64, *Item, error) {
		var n int64
		for _, m := range members {
			if item.ZSet.Remove(string(m)) {
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

func cmdZRank(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZRank(a, cmd, false)
}

func cmdZRevRank(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZRank(a, cmd, true)
}

func doZRank(a *Actor, cmd *message.Command, reverse bool) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	member, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	item, found, err := getItem(a.st, TypeZSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	rank, ok := item.ZSet.Rank(member)
	if !ok {
		return nil, nil
	}
	a.touch(key)
	if reverse {
		rank = item.ZSet.Len() - 1 - rank
	}
	return int64(rank), nil
}

func entriesToFlat(entries []ZEntry, withScores bool) []interface{} {
	if !withScores {
		out := make([]interface{}, len(entries))
		for i, e := range entries {
			out[i] = []byte(e.Member)
		}
		return out
	}
	out := make([]interface{}, 0, len(entries)*2)
	for _, e := range entries {
		out = append(out, []byte(e.Member), e.Score)
	}
	return out
}

func reverseEntries(entries []ZEntry) []ZEntry {
	out := make([]ZEntry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func cmdZRange(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZRange(a, cmd, false)
}

func cmdZRevRange(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZRange(a, cmd, true)
}

// doZRange implements ZRANGE/ZREVRANGE with the same index-normalization
// rules as LRANGE, over rank order (ascending for ZRANGE, descending for
// ZREVRANGE), with an optional trailing WITHSCORES flag.
func doZRange(a *Actor, cmd *message.Command, reverse bool) (interface{}, error) {
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
	withScores := argc(cmd) > 3 && strings.EqualFold(string(cmd.Args[3]), "WITHSCORES")

	item, found, err := getItem(a.st, TypeZSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return []interface{}{}, nil
	}
	a.touch(key)

	entries := item.ZSet.Entries()
	if reverse {
		entries = reverseEntries(entries)
	}
	s, e, ok := normalizeRange(len(entries), start, end)
	if !ok {
		return []interface{}{}, nil
	}
	return entriesToFlat(entries[s:e+1], withScores), nil
}

func cmdZCount(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	minRaw, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	maxRaw, err := argString(cmd, 2)
	if err != nil {
		return nil, err
	}
	min, err := parseScoreBound(minRaw)
	if err != nil {
		return nil, err
	}
	max, err := parseScoreBound(maxRaw)
	if err != nil {
		return nil, err
	}

	item, found, err := getItem(a.st, TypeZSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return int64(0), nil
	}
	a.touch(key)
	return int64(item.ZSet.CountByScore(min, max)), nil
}

func cmdZRangeByScore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZRangeByScore(a, cmd, false)
}

func cmdZRevRangeByScore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZRangeByScore(a, cmd, true)
}

// doZRangeByScore implements ZRANGEBYSCORE/ZREVRANGEBYSCORE, returning []
// uniformly for a missing key. The REV form takes max before min, as in
// Redis, and the result is reversed.
func doZRangeByScore(a *Actor, cmd *message.Command, reverse bool) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	var minRaw, maxRaw string
	if reverse {
		maxRaw, err = argString(cmd, 1)
		if err != nil {
			return nil, err
		}
		minRaw, err = argString(cmd, 2)
		if err != nil {
			return nil, err
		}
	} else {
		minRaw, err = argString(cmd, 1)
		if err != nil {
			return nil, err
		}
		maxRaw, err = argString(cmd, 2)
		if err != nil {
			return nil, err
		}
	}
	min, err := parseScoreBound(minRaw)
	if err != nil {
		return nil, err
	}
	max, err := parseScoreBound(maxRaw)
	if err != nil {
		return nil, err
	}
	withScores := argc(cmd) > 3 && strings.EqualFold(string(cmd.Args[3]), "WITHSCORES")

	item, found, err := getItem(a.st, TypeZSet, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return []interface{}{}, nil
	}
	a.touch(key)

	entries := item.ZSet.RangeByScore(min, max)
	if reverse {
		entries = reverseEntries(entries)
	}
	return entriesToFlat(entries, withScores), nil
}

// cmdZRemRangeByRank composes a rank range with removal.
func cmdZRemRangeByRank(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
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

	removed, err := updateOrDefault(a.st, key, TypeZSet, int64(0), func(item *Item) (int64, *Item, error) {
		entries := item.ZSet.Entries()
		s, e, ok := normalizeRange(len(entries), start, end)
		if !ok {
			return 0, item, nil
		}
		var n int64
		for _, entry := range entries[s : e+1] {
			if item.ZSet.Remove(entry.Member) {
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

func cmdZRemRangeByScore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	key, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	minRaw, err := argString(cmd, 1)
	if err != nil {
		return nil, err
	}
	maxRaw, err := argString(cmd, 2)
	if err != nil {
		return nil, err
	}
	min, err := parseScoreBound(minRaw)
	if err != nil {
		return nil, err
	}
	max, err := parseScoreBound(maxRaw)
	if err != nil {
		return nil, err
	}

	removed, err := updateOrDefault(a.st, key, TypeZSet, int64(0), func(item *Item) (int64, *Item, error) {
		entries := item.ZSet.RangeByScore(min, max)
		var n int64
		for _, entry := range entries {
			if item.ZSet.Remove(entry.Member) {
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

// aggFunc combines the running accumulator with a new (score*weight) term.
type aggFunc func(acc float64, present bool, term float64) float64

func aggFor(name string) (aggFunc, error) {
	switch strings.ToUpper(name) {
	case "", "SUM":
		return func(acc float64, present bool, term float64) float64 {
			if !present {
				return term
			}
			return acc + term
		}, nil
	case "MIN":
		return func(acc float64, present bool, term float64) float64 {
			if !present || term < acc {
				return term
			}
			return acc
		}, nil
	case "MAX":
		return func(acc float64, present bool, term float64) float64 {
			if !present || term > acc {
				return term
			}
			return acc
		}, nil
	default:
		return nil, ErrSyntax
	}
}

// weightedInput is one (zset, weight) pair of a ZUNIONSTORE/ZINTERSTORE operand list.
type weightedInput struct {
	zset   *ZSet
	weight float64
}

func loadWeightedInputs(a *Actor, keys [][]byte, weights []float64) ([]weightedInput, error) {
	inputs := make([]weightedInput, len(keys))
	for i, k := range keys {
		item, found, err := getItem(a.st, TypeZSet, k)
		if err != nil {
			return nil, err
		}
		z := NewZSet()
		if found {
			z = item.ZSet
		}
		inputs[i] = weightedInput{zset: z, weight: weights[i]}
	}
	return inputs, nil
}

// zsetUnion implements ZUNIONSTORE's union: every member appearing in any
// input contributes agg(score_i * weight_i) over only the inputs where it
// is present.
func zsetUnion(inputs []weightedInput, agg aggFunc) *ZSet {
	out := NewZSet()
	acc := map[string]float64{}
	present := map[string]bool{}
	for _, in := range inputs {
		for _, e := range in.zset.Entries() {
			term := e.Score * in.weight
			acc[e.Member] = agg(acc[e.Member], present[e.Member], term)
			present[e.Member] = true
		}
	}
	for m, s := range acc {
		out.Set(m, s)
	}
	return out
}

// zsetIntersect implements ZINTERSTORE's intersection: only members
// present in every input appear, scored by agg(score_i * weight_i); any
// missing input key (an empty zset here) makes the whole result empty.
func zsetIntersect(inputs []weightedInput, agg aggFunc) *ZSet {
	out := NewZSet()
	if len(inputs) == 0 {
		return out
	}
	for _, e := range inputs[0].zset.Entries() {
		term := e.Score * inputs[0].weight
		acc := agg(0, false, term)
		inAll := true
		for _, in := range inputs[1:] {
			score, ok := in.zset.Score(e.Member)
			if !ok {
				inAll = false
				break
			}
			acc = agg(acc, true, score*in.weight)
		}
		if inAll {
			out.Set(e.Member, acc)
		}
	}
	return out
}

func cmdZUnionStore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZSetStore(a, cmd, zsetUnion)
}

func cmdZInterStore(a *Actor, cmd *message.Command, _ ReplySink) (interface{}, error) {
	return doZSetStore(a, cmd, zsetIntersect)
}

// doZSetStore parses "dest numkeys key [key ...] [WEIGHTS w...] [AGGREGATE
// SUM|MIN|MAX]" and applies combine. A zero-member result deletes the
// destination, via the empty-container invariant in putItem.
func doZSetStore(a *Actor, cmd *message.Command, combine func([]weightedInput, aggFunc) *ZSet) (interface{}, error) {
	dest, err := argBytes(cmd, 0)
	if err != nil {
		return nil, err
	}
	numKeys, err := argInt(cmd, 1)
	if err != nil || numKeys <= 0 {
		return nil, ErrSyntax
	}
	if argc(cmd) < 2+numKeys {
		return nil, ErrSyntax
	}
	keys := cmd.Args[2 : 2+numKeys]

	weights := make([]float64, numKeys)
	for i := range weights {
		weights[i] = 1
	}
	aggName := "SUM"

	i := 2 + numKeys
	for i < argc(cmd) {
		switch strings.ToUpper(string(cmd.Args[i])) {
		case "WEIGHTS":
			if argc(cmd) < i+1+numKeys {
				return nil, ErrSyntax
			}
			for j := 0; j < numKeys; j++ {
				w, err := strconv.ParseFloat(string(cmd.Args[i+1+j]), 64)
				if err != nil {
					return nil, ErrNotFloat
				}
				weights[j] = w
			}
			i += 1 + numKeys
		case "AGGREGATE":
			if argc(cmd) < i+2 {
				return nil, ErrSyntax
			}
			aggName = string(cmd.Args[i+1])
			i += 2
		default:
			return nil, fmt.Errorf("%s: unexpected token %q", cmd.Cmd, cmd.Args[i])
		}
	}

	agg, err := aggFor(aggName)
	if err != nil {
		return nil, err
	}
	inputs, err := loadWeightedInputs(a, keys, weights)
	if err != nil {
		return nil, err
	}
	result := combine(inputs, agg)

	item := &Item{Type: TypeZSet, Encoding: canonicalEncoding(TypeZSet), ZSet: result}
	if err := putItem(a.st, dest, item); err != nil {
		return nil, err
	}
	a.touch(dest)
	return int64(result.Len()), nil
}
