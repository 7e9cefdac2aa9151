package core

import (
	"testing"

	"github.com/go-test/deep"
)

func zadd(t *testing.T, a *Actor, key string, pairs ...string) {
	t.Helper()
	args := append([]string{key}, pairs...)
	if _, err := run(t, a, "ZADD", args...); err != nil {
		t.Fatalf("ZADD %s: %s", key, err)
	}
}

func TestZSetCmds_AddReturnsCardinalityDelta(t *testing.T) {
	a := newTestActor(t)

	added, err := run(t, a, "ZADD", "z", "1", "a", "2", "b")
	if err != nil {
		t.Fatalf("ZADD: %s", err)
	}
	if added.(int64) != 2 {
		t.Errorf("ZADD fresh members: got %d, want 2", added.(int64))
	}

	// Updating a's score adds no cardinality; c does.
	added, err = run(t, a, "ZADD", "z", "9", "a", "3", "c")
	if err != nil {
		t.Fatalf("ZADD update+insert: %s", err)
	}
	if added.(int64) != 1 {
		t.Errorf("ZADD update+insert: got %d, want 1", added.(int64))
	}

	card, _ := run(t, a, "ZCARD", "z")
	if card.(int64) != 3 {
		t.Errorf("ZCARD: got %d, want 3", card.(int64))
	}

	score, _ := run(t, a, "ZSCORE", "z", "a")
	if score.(float64) != 9 {
		t.Errorf("ZSCORE a after update: got %v, want 9", score)
	}
	if score, _ := run(t, a, "ZSCORE", "z", "missing"); score != nil {
		t.Errorf("ZSCORE absent member: got %v, want nil", score)
	}
}

func TestZSetCmds_RangeAndRangeByScore(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "z", "1", "a", "2", "b", "3", "c")

	got, err := run(t, a, "ZRANGEBYSCORE", "z", "1", "2")
	if err != nil {
		t.Fatalf("ZRANGEBYSCORE: %s", err)
	}
	want := []interface{}{[]byte("a"), []byte("b")}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("ZRANGEBYSCORE 1 2: %s", diff)
	}

	got, err = run(t, a, "ZRANGE", "z", "0", "-1", "WITHSCORES")
	if err != nil {
		t.Fatalf("ZRANGE WITHSCORES: %s", err)
	}
	want = []interface{}{
		[]byte("a"), float64(1),
		[]byte("b"), float64(2),
		[]byte("c"), float64(3),
	}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("ZRANGE 0 -1 WITHSCORES: %s", diff)
	}

	got, err = run(t, a, "ZREVRANGE", "z", "0", "1")
	if err != nil {
		t.Fatalf("ZREVRANGE: %s", err)
	}
	want = []interface{}{[]byte("c"), []byte("b")}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("ZREVRANGE 0 1: %s", diff)
	}

	// REV takes max before min on the wire, and reverses the result.
	got, err = run(t, a, "ZREVRANGEBYSCORE", "z", "3", "2")
	if err != nil {
		t.Fatalf("ZREVRANGEBYSCORE: %s", err)
	}
	want = []interface{}{[]byte("c"), []byte("b")}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("ZREVRANGEBYSCORE 3 2: %s", diff)
	}
}

func TestZSetCmds_RangeByScoreOnMissingKeyIsEmpty(t *testing.T) {
	a := newTestActor(t)

	for _, cmd := range []string{"ZRANGEBYSCORE", "ZREVRANGEBYSCORE"} {
		got, err := run(t, a, cmd, "missing", "0", "10")
		if err != nil {
			t.Fatalf("%s on missing key: %s", cmd, err)
		}
		if diff := deep.Equal(got, []interface{}{}); diff != nil {
			t.Errorf("%s on missing key: %s", cmd, diff)
		}
	}
}

func TestZSetCmds_CountBounds(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "z", "1", "a", "2", "b", "3", "c")

	tests := []struct {
		min, max string
		want     int64
	}{
		{"1", "3", 3},
		{"(1", "3", 2},
		{"(1", "(3", 1},
		{"-inf", "+inf", 3},
		{"2", "2", 1},
		{"5", "9", 0},
	}
	for _, tst := range tests {
		got, err := run(t, a, "ZCOUNT", "z", tst.min, tst.max)
		if err != nil {
			t.Fatalf("ZCOUNT %s %s: %s", tst.min, tst.max, err)
		}
		if got.(int64) != tst.want {
			t.Errorf("ZCOUNT %s %s: got %d, want %d", tst.min, tst.max, got.(int64), tst.want)
		}
	}

	if _, err := run(t, a, "ZCOUNT", "z", "x", "3"); err != ErrNotFloat {
		t.Errorf("ZCOUNT with junk bound: got err %v, want ErrNotFloat", err)
	}
}

func TestZSetCmds_Rank(t *testing.T) {
	a := newTestActor(t)
	// b and c tie on score; the member breaks the tie.
	zadd(t, a, "z", "1", "a", "2", "c", "2", "b")

	tests := []struct {
		member string
		want   int64
	}{
		{"a", 0},
		{"b", 1},
		{"c", 2},
	}
	for _, tst := range tests {
		got, err := run(t, a, "ZRANK", "z", tst.member)
		if err != nil {
			t.Fatalf("ZRANK %s: %s", tst.member, err)
		}
		if got.(int64) != tst.want {
			t.Errorf("ZRANK %s: got %d, want %d", tst.member, got.(int64), tst.want)
		}

		rev, err := run(t, a, "ZREVRANK", "z", tst.member)
		if err != nil {
			t.Fatalf("ZREVRANK %s: %s", tst.member, err)
		}
		if rev.(int64) != 2-tst.want {
			t.Errorf("ZREVRANK %s: got %d, want %d", tst.member, rev.(int64), 2-tst.want)
		}
	}

	if got, _ := run(t, a, "ZRANK", "z", "missing"); got != nil {
		t.Errorf("ZRANK absent member: got %v, want nil", got)
	}
}

func TestZSetCmds_IncrBy(t *testing.T) {
	a := newTestActor(t)

	score, err := run(t, a, "ZINCRBY", "z", "2.5", "m")
	if err != nil {
		t.Fatalf("ZINCRBY on missing member: %s", err)
	}
	if score.(float64) != 2.5 {
		t.Errorf("ZINCRBY missing member starts at 0: got %v, want 2.5", score)
	}

	score, err = run(t, a, "ZINCRBY", "z", "-0.5", "m")
	if err != nil {
		t.Fatalf("ZINCRBY: %s", err)
	}
	if score.(float64) != 2 {
		t.Errorf("ZINCRBY: got %v, want 2", score)
	}
}

func TestZSetCmds_RemEmptyingZSetDeletesKey(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "z", "1", "a", "2", "b")

	removed, err := run(t, a, "ZREM", "z", "a", "b", "missing")
	if err != nil {
		t.Fatalf("ZREM: %s", err)
	}
	if removed.(int64) != 2 {
		t.Errorf("ZREM: got %d, want 2", removed.(int64))
	}
	exists, _ := run(t, a, "EXISTS", "z")
	if exists.(int64) != 0 {
		t.Errorf("EXISTS after ZREM emptied the zset: got %d, want 0", exists.(int64))
	}
}

func TestZSetCmds_RemRangeByRank(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "z", "1", "a", "2", "b", "3", "c", "4", "d")

	removed, err := run(t, a, "ZREMRANGEBYRANK", "z", "0", "1")
	if err != nil {
		t.Fatalf("ZREMRANGEBYRANK: %s", err)
	}
	if removed.(int64) != 2 {
		t.Errorf("ZREMRANGEBYRANK 0 1: got %d, want 2", removed.(int64))
	}

	got, _ := run(t, a, "ZRANGE", "z", "0", "-1")
	want := []interface{}{[]byte("c"), []byte("d")}
	if diff := deep.Equal(got, want); diff != nil {
		t.Errorf("ZRANGE after ZREMRANGEBYRANK: %s", diff)
	}
}

func TestZSetCmds_RemRangeByScore(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "z", "1", "a", "2", "b", "3", "c")

	removed, err := run(t, a, "ZREMRANGEBYSCORE", "z", "(1", "3")
	if err != nil {
		t.Fatalf("ZREMRANGEBYSCORE: %s", err)
	}
	if removed.(int64) != 2 {
		t.Errorf("ZREMRANGEBYSCORE (1 3: got %d, want 2", removed.(int64))
	}

	got, _ := run(t, a, "ZRANGE", "z", "0", "-1")
	if diff := deep.Equal(got, []interface{}{[]byte("a")}); diff != nil {
		t.Errorf("ZRANGE after ZREMRANGEBYSCORE: %s", diff)
	}
}

func TestZSetCmds_UnionStoreSum(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "a", "1", "m", "2", "n")
	zadd(t, a, "b", "3", "m")

	card, err := run(t, a, "ZUNIONSTORE", "dst", "2", "a", "b")
	if err != nil {
		t.Fatalf("ZUNIONSTORE: %s", err)
	}
	if card.(int64) != 2 {
		t.Errorf("ZUNIONSTORE: got %d, want 2", card.(int64))
	}

	score, _ := run(t, a, "ZSCORE", "dst", "m")
	if score.(float64) != 4 {
		t.Errorf("ZSCORE dst m: got %v, want 4 (1+3)", score)
	}
	score, _ = run(t, a, "ZSCORE", "dst", "n")
	if score.(float64) != 2 {
		t.Errorf("ZSCORE dst n: got %v, want 2 (present in one input only)", score)
	}
}

func TestZSetCmds_UnionStoreWeightsAndAggregate(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "a", "1", "m")
	zadd(t, a, "b", "2", "m")

	card, err := run(t, a, "ZUNIONSTORE", "dst", "2", "a", "b", "WEIGHTS", "10", "1", "AGGREGATE", "MAX")
	if err != nil {
		t.Fatalf("ZUNIONSTORE weighted: %s", err)
	}
	if card.(int64) != 1 {
		t.Errorf("ZUNIONSTORE weighted: got %d, want 1", card.(int64))
	}
	score, _ := run(t, a, "ZSCORE", "dst", "m")
	if score.(float64) != 10 {
		t.Errorf("ZSCORE with WEIGHTS 10 1 AGGREGATE MAX: got %v, want 10", score)
	}

	card, err = run(t, a, "ZUNIONSTORE", "dst2", "2", "a", "b", "AGGREGATE", "MIN")
	if err != nil {
		t.Fatalf("ZUNIONSTORE min: %s", err)
	}
	if card.(int64) != 1 {
		t.Errorf("ZUNIONSTORE min: got %d, want 1", card.(int64))
	}
	score, _ = run(t, a, "ZSCORE", "dst2", "m")
	if score.(float64) != 1 {
		t.Errorf("ZSCORE with AGGREGATE MIN: got %v, want 1", score)
	}
}

func TestZSetCmds_InterStore(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "a", "1", "m", "5", "only")
	zadd(t, a, "b", "3", "m")

	card, err := run(t, a, "ZINTERSTORE", "dst", "2", "a", "b")
	if err != nil {
		t.Fatalf("ZINTERSTORE: %s", err)
	}
	if card.(int64) != 1 {
		t.Errorf("ZINTERSTORE: got %d, want 1", card.(int64))
	}
	score, _ := run(t, a, "ZSCORE", "dst", "m")
	if score.(float64) != 4 {
		t.Errorf("ZSCORE dst m: got %v, want 4", score)
	}
	if score, _ := run(t, a, "ZSCORE", "dst", "only"); score != nil {
		t.Errorf("member outside the intersection leaked into dst: got %v", score)
	}
}

func TestZSetCmds_InterStoreWithMissingInputDeletesDestination(t *testing.T) {
	a := newTestActor(t)
	zadd(t, a, "a", "1", "m")
	zadd(t, a, "dst", "9", "stale")

	card, err := run(t, a, "ZINTERSTORE", "dst", "2", "a", "missing")
	if err != nil {
		t.Fatalf("ZINTERSTORE with missing input: %s", err)
	}
	if card.(int64) != 0 {
		t.Errorf("ZINTERSTORE with missing input: got %d, want 0", card.(int64))
	}
	exists, _ := run(t, a, "EXISTS", "dst")
	if exists.(int64) != 0 {
		t.Errorf("EXISTS dst after empty ZINTERSTORE: got %d, want 0", exists.(int64))
	}
}
