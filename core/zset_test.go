package core

import "testing"

func TestZSet_SetScoreRemove(t *testing.T) {
	z := NewZSet()

	if !z.Set("a", 1) {
		t.Errorf("Set on new member: got false, want true")
	}
	if z.Set("a", 2) {
		t.Errorf("Set on existing member: got true, want false")
	}

	score, ok := z.Score("a")
	if !ok || score != 2 {
		t.Errorf("Score(a): got (%v, %v), want (2, true)", score, ok)
	}

	if !z.Remove("a") {
		t.Errorf("Remove existing member: got false, want true")
	}
	if z.Remove("a") {
		t.Errorf("Remove already-removed member: got true, want false")
	}
}

func TestZSet_IncrBy(t *testing.T) {
	z := NewZSet()
	if got := z.IncrBy("a", 5); got != 5 {
		t.Errorf("IncrBy on missing member: got %v, want 5", got)
	}
	if got := z.IncrBy("a", -2); got != 3 {
		t.Errorf("IncrBy on existing member: got %v, want 3", got)
	}
}

func TestZSet_EntriesOrdering(t *testing.T) {
	z := NewZSet()
	z.Set("b", 1)
	z.Set("a", 1)
	z.Set("c", 0)

	entries := z.Entries()
	want := []string{"c", "a", "b"}
	if len(entries) != len(want) {
		t.Fatalf("Entries length: got %d, want %d", len(entries), len(want))
	}
	for i, m := range want {
		if entries[i].Member != m {
			t.Errorf("Entries[%d]: got %q, want %q", i, entries[i].Member, m)
		}
	}
}

func TestZSet_Rank(t *testing.T) {
	z := NewZSet()
	z.Set("a", 1)
	z.Set("b", 2)
	z.Set("c", 3)

	for i, m := range []string{"a", "b", "c"} {
		rank, ok := z.Rank(m)
		if !ok || rank != i {
			t.Errorf("Rank(%q): got (%d, %v), want (%d, true)", m, rank, ok, i)
		}
	}

	if _, ok := z.Rank("missing"); ok {
		t.Errorf("Rank(missing): got ok=true, want false")
	}
}

func TestZSet_RangeByScore(t *testing.T) {
	z := NewZSet()
	z.Set("a", 1)
	z.Set("b", 2)
	z.Set("c", 3)

	got := z.RangeByScore(ScoreBound{Value: 1, Exclusive: true}, ScoreBound{Value: 3})
	if len(got) != 2 || got[0].Member != "b" || got[1].Member != "c" {
		t.Errorf("RangeByScore(1,excl; 3,incl): got %v, want [b c]", got)
	}

	got = z.RangeByScore(ScoreBound{Value: 1}, ScoreBound{Value: 3})
	if len(got) != 3 {
		t.Errorf("RangeByScore(1,3) inclusive: got %d entries, want 3", len(got))
	}
}

func TestZSet_Clone(t *testing.T) {
	z := NewZSet()
	z.Set("a", 1)

	clone := z.Clone()
	clone.Set("a", 99)
	clone.Set("b", 2)

	if score, _ := z.Score("a"); score != 1 {
		t.Errorf("original mutated by clone write: got %v, want 1", score)
	}
	if _, ok := z.Score("b"); ok {
		t.Errorf("original gained clone's new member")
	}
}

func TestZSet_GobRoundTrip(t *testing.T) {
	z := NewZSet()
	z.Set("a", 1.5)
	z.Set("b", -2)

	data, err := z.GobEncode()
	if err != nil {
		t.Fatalf("GobEncode: %s", err)
	}

	out := NewZSet()
	if err := out.GobDecode(data); err != nil {
		t.Fatalf("GobDecode: %s", err)
	}
	if score, ok := out.Score("a"); !ok || score != 1.5 {
		t.Errorf("round-tripped Score(a): got (%v,%v), want (1.5,true)", score, ok)
	}
	if score, ok := out.Score("b"); !ok || score != -2 {
		t.Errorf("round-tripped Score(b): got (%v,%v), want (-2,true)", score, ok)
	}
}
