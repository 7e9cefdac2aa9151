package store

import (
	"testing"

	"github.com/go-test/deep"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), true)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_PutGetDelete(t *testing.T) {
	s := openTestStore(t)

	if _, found, err := s.Get([]byte("k")); err != nil || found {
		t.Fatalf("Get on empty store: found=%v err=%v", found, err)
	}

	if err := s.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %s", err)
	}
	value, found, err := s.Get([]byte("k"))
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if diff := deep.Equal(value, []byte("v")); diff != nil {
		t.Errorf("Get value: %s", diff)
	}

	if err := s.Delete([]byte("k")); err != nil {
		t.Fatalf("Delete: %s", err)
	}
	if _, found, _ := s.Get([]byte("k")); found {
		t.Errorf("Get after Delete: key still present")
	}

	if err := s.Delete([]byte("absent")); err != nil {
		t.Errorf("Delete on absent key: got err %v, want nil", err)
	}
}

func TestStore_FoldVisitsKeysInOrder(t *testing.T) {
	s := openTestStore(t)

	for _, k := range []string{"c", "a", "b"} {
		if err := s.Put([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Put %s: %s", k, err)
		}
	}

	var visited []string
	err := s.Fold(func(key, value []byte) bool {
		visited = append(visited, string(key))
		return true
	}, FoldOptions{})
	if err != nil {
		t.Fatalf("Fold: %s", err)
	}
	if diff := deep.Equal(visited, []string{"a", "b", "c"}); diff != nil {
		t.Errorf("Fold order: %s", diff)
	}

	// fn returning false stops the scan.
	visited = nil
	err = s.Fold(func(key, value []byte) bool {
		visited = append(visited, string(key))
		return false
	}, FoldOptions{})
	if err != nil {
		t.Fatalf("Fold with early stop: %s", err)
	}
	if len(visited) != 1 {
		t.Errorf("Fold with early stop: visited %d keys, want 1", len(visited))
	}
}

func TestStore_FoldKeys(t *testing.T) {
	s := openTestStore(t)

	for _, k := range []string{"b", "a"} {
		if err := s.Put([]byte(k), []byte("v")); err != nil {
			t.Fatalf("Put %s: %s", k, err)
		}
	}

	var visited []string
	err := s.FoldKeys(func(key []byte) bool {
		visited = append(visited, string(key))
		return true
	}, FoldOptions{VerifyChecksums: true})
	if err != nil {
		t.Fatalf("FoldKeys: %s", err)
	}
	if diff := deep.Equal(visited, []string{"a", "b"}); diff != nil {
		t.Errorf("FoldKeys order: %s", diff)
	}
}

func TestStore_BatchWriteIsApplied(t *testing.T) {
	s := openTestStore(t)

	if err := s.Put([]byte("doomed"), []byte("v")); err != nil {
		t.Fatalf("Put: %s", err)
	}

	b := s.NewBatch()
	b.Put([]byte("k1"), []byte("v1"))
	b.Put([]byte("k2"), []byte("v2"))
	b.Delete([]byte("doomed"))
	if b.Len() != 3 {
		t.Fatalf("Batch.Len: got %d, want 3", b.Len())
	}

	if err := s.Write(b); err != nil {
		t.Fatalf("Write: %s", err)
	}

	for _, k := range []string{"k1", "k2"} {
		if _, found, _ := s.Get([]byte(k)); !found {
			t.Errorf("batched Put of %s not applied", k)
		}
	}
	if _, found, _ := s.Get([]byte("doomed")); found {
		t.Errorf("batched Delete not applied")
	}
}

func TestStore_IsEmpty(t *testing.T) {
	s := openTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil {
		t.Fatalf("IsEmpty: %s", err)
	}
	if !empty {
		t.Errorf("IsEmpty on a fresh store: got false, want true")
	}

	if err := s.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %s", err)
	}
	empty, _ = s.IsEmpty()
	if empty {
		t.Errorf("IsEmpty after a Put: got true, want false")
	}
}

func TestStore_DestroyThenReopenIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, true)
	if err != nil {
		t.Fatalf("Open: %s", err)
	}
	if err := s.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %s", err)
	}

	if err := s.Destroy(); err != nil {
		t.Fatalf("Destroy: %s", err)
	}

	s2, err := Open(dir, true)
	if err != nil {
		t.Fatalf("reopen after Destroy: %s", err)
	}
	defer s2.Close()
	if _, found, _ := s2.Get([]byte("k")); found {
		t.Errorf("key survived Destroy")
	}
}
