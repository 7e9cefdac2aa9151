package core

import (
	"math/rand"
	"time"
)

// randKeySampler is the actor's single process-lifetime random source,
// created once and never reseeded per call: RANDOMKEY and SRANDMEMBER
// share one long-lived generator instead of reseeding on every draw.
type randKeySampler struct {
	rng *rand.Rand
}

func newRandKeySampler() *randKeySampler {
	return &randKeySampler{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// randomOffset returns a draw in [1, bound].
func (s *randKeySampler) randomOffset(bound int) int {
	return s.rng.Intn(bound) + 1
}

func (s *randKeySampler) randomIndex(n int) int {
	return s.rng.Intn(n)
}

// randomSampleBound is the window RANDOMKEY samples within: a documented,
// bounded sampler rather than a uniform draw over the whole keyspace.
const randomSampleBound = 500

// randomKey picks an ordinal in [1,500], walks the store in its natural
// order counting non-expired keys, and returns the key at that ordinal.
// If the store holds fewer live keys than the draw, it wraps back to the
// start with the remainder -- bounded to two passes so the scan always
// terminates.
func (a *Actor) randomKey() ([]byte, error) {
	target := a.rng.randomOffset(randomSampleBound)

	for pass := 0; pass < 2; pass++ {
		count := 0
		var result []byte
		err := a.st.Fold(func(key, value []byte) bool {
			item, err := decodeItem(value)
			if err != nil || item.expired(time.Now()) {
				return true
			}
			count++
			if count == target {
				result = append([]byte(nil), key...)
				return false
			}
			return true
		}, storeFoldOptionsFast)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		if count == 0 {
			return nil, nil
		}
		// Fewer live keys than the draw: wrap the remainder so the second
		// pass always lands on an ordinal in [1, count].
		target = (target-1)%count + 1
	}
	return nil, nil
}
