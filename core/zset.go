package core

import (
	"bytes"
	"encoding/gob"
	"sort"
)

// ZEntry is one (member, score) pair of a sorted set, ordered by
// (score, member).
type ZEntry struct {
	Member string
	Score  float64
}

// ZSet is the sorted-set value family: scores live in a map for O(1)
// ZSCORE/ZINCRBY, and the rank-ordered view is rebuilt on demand for the
// handful of operations (ZRANGE family, ZRANK) that need it.
type ZSet struct {
	scores map[string]float64
}

// NewZSet constructs an empty sorted set.
func NewZSet() *ZSet {
	return &ZSet{scores: map[string]float64{}}
}

// Len returns the member count.
func (z *ZSet) Len() int {
	if z == nil {
		return 0
	}
	return len(z.scores)
}

// Score returns the member's score.
func (z *ZSet) Score(member string) (float64, bool) {
	if z == nil {
		return 0, false
	}
	s, ok := z.scores[member]
	return s, ok
}

// Set inserts or overwrites member's score, returning true iff the member
// is new.
func (z *ZSet) Set(member string, score float64) bool {
	_, existed := z.scores[member]
	z.scores[member] = score
	return !existed
}

// IncrBy adds delta to member's current score (0 if absent) and returns the
// new score.
func (z *ZSet) IncrBy(member string, delta float64) float64 {
	newScore := z.scores[member] + delta
	z.scores[member] = newScore
	return newScore
}

// Remove deletes member, returning true iff it was present.
func (z *ZSet) Remove(member string) bool {
	_, ok := z.scores[member]
	delete(z.scores, member)
	return ok
}

// Entries returns all members ordered by (score, member) ascending.
func (z *ZSet) Entries() []ZEntry {
	if z == nil {
		return nil
	}
	entries := make([]ZEntry, 0, len(z.scores))
	for m, s := range z.scores {
		entries = append(entries, ZEntry{Member: m, Score: s})
	}
	sortEntries(entries)
	return entries
}

func sortEntries(entries []ZEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score < entries[j].Score
		}
		return entries[i].Member < entries[j].Member
	})
}

// Rank returns the 0-based ascending rank of member: the count of members
// with strictly smaller score, or equal score and a lexicographically
// smaller member.
func (z *ZSet) Rank(member string) (int, bool) {
	score, ok := z.Score(member)
	if !ok {
		return 0, false
	}
	entries := z.Entries()
	idx := sort.Search(len(entries), func(i int) bool {
		if entries[i].Score != score {
			return entries[i].Score >= score
		}
		return entries[i].Member >= member
	})
	return idx, true
}

// ScoreBound describes one side of a ZCOUNT/ZRANGEBYSCORE range: Value may
// be ±Inf, and Exclusive selects "(" vs default inclusive bounds.
type ScoreBound struct {
	Value     float64
	Exclusive bool
}

func (b ScoreBound) satisfiesMin(score float64) bool {
	if b.Exclusive {
		return score > b.Value
	}
	return score >= b.Value
}

func (b ScoreBound) satisfiesMax(score float64) bool {
	if b.Exclusive {
		return score < b.Value
	}
	return score <= b.Value
}

// RangeByScore returns entries with min <= score <= max (bounds exclusivity
// per ScoreBound), ascending.
func (z *ZSet) RangeByScore(min, max ScoreBound) []ZEntry {
	var out []ZEntry
	for _, e := range z.Entries() {
		if min.satisfiesMin(e.Score) && max.satisfiesMax(e.Score) {
			out = append(out, e)
		}
	}
	return out
}

// CountByScore counts members within [min, max].
func (z *ZSet) CountByScore(min, max ScoreBound) int {
	return len(z.RangeByScore(min, max))
}

// Clone returns a deep copy of the sorted set.
func (z *ZSet) Clone() *ZSet {
	out := NewZSet()
	for m, s := range z.scores {
		out.scores[m] = s
	}
	return out
}

// GobEncode/GobDecode let ZSet -- whose score map is unexported -- round
// trip through the gob-based Item codec.
func (z *ZSet) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(z.scores); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (z *ZSet) GobDecode(data []byte) error {
	z.scores = map[string]float64{}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(&z.scores)
}
