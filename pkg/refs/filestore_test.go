package refs

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/grovevcs/grove/pkg/object"
)

func TestFileStore_CreateResolveDelete(t *testing.T) {
	s := NewFileStore(t.TempDir())

	h := object.HashBytes([]byte("c1"))
	// Creation is a CAS with absent expected-old.
	if err := s.CompareAndSwap("heads/main", "", h); err != nil {
		t.Fatalf("CompareAndSwap(create): %v", err)
	}

	got, err := s.Resolve("heads/main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != h {
		t.Fatalf("Resolve = %s, want %s", got, h)
	}

	if err := s.Delete("heads/main"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Resolve("heads/main"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Resolve after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("heads/main"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: err = %v, want ErrNotFound", err)
	}
}

func TestFileStore_CASStaleOnExistingRef(t *testing.T) {
	s := NewFileStore(t.TempDir())

	h1 := object.HashBytes([]byte("c1"))
	if err := s.CompareAndSwap("heads/main", "", h1); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Creating again must fail: the ref exists, expected-old was absent.
	if err := s.CompareAndSwap("heads/main", "", object.HashBytes([]byte("c2"))); !errors.Is(err, ErrStale) {
		t.Fatalf("create over existing: err = %v, want ErrStale", err)
	}

	// Wrong expected-old must fail and leave the ref untouched.
	wrong := object.HashBytes([]byte("never-the-head"))
	if err := s.CompareAndSwap("heads/main", wrong, object.HashBytes([]byte("c3"))); !errors.Is(err, ErrStale) {
		t.Fatalf("wrong expected-old: err = %v, want ErrStale", err)
	}
	got, err := s.Resolve("heads/main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != h1 {
		t.Fatalf("ref moved on failed CAS: %s, want %s", got, h1)
	}
}

func TestFileStore_ConcurrentCASSingleWinner(t *testing.T) {
	s := NewFileStore(t.TempDir())

	base := object.Hash("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if err := s.CompareAndSwap("heads/main", "", base); err != nil {
		t.Fatalf("create base: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)

	successCh := make(chan object.Hash, workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			next := object.Hash(fmt.Sprintf("%064x", i+1))
			if err := s.CompareAndSwap("heads/main", base, next); err != nil {
				errCh <- err
				return
			}
			successCh <- next
		}()
	}

	wg.Wait()
	close(successCh)
	close(errCh)

	var winner object.Hash
	successes := 0
	for h := range successCh {
		successes++
		winner = h
	}
	if successes != 1 {
		t.Fatalf("successful CAS updates = %d, want 1", successes)
	}

	stale := 0
	for err := range errCh {
		if errors.Is(err, ErrStale) {
			stale++
			continue
		}
		t.Fatalf("unexpected error type: %v", err)
	}
	if stale != workers-1 {
		t.Fatalf("stale CAS results = %d, want %d", stale, workers-1)
	}

	got, err := s.Resolve("heads/main")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != winner {
		t.Fatalf("heads/main = %s, want winner %s", got, winner)
	}
}

func TestFileStore_ListByPrefix(t *testing.T) {
	s := NewFileStore(t.TempDir())

	want := map[string]object.Hash{
		"heads/main":    object.HashBytes([]byte("1")),
		"heads/feature": object.HashBytes([]byte("2")),
		"tags/v1":       object.HashBytes([]byte("3")),
	}
	for name, h := range want {
		if err := s.CompareAndSwap(name, "", h); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	heads, err := s.List("heads")
	if err != nil {
		t.Fatalf("List(heads): %v", err)
	}
	if len(heads) != 2 {
		t.Fatalf("List(heads) = %d refs, want 2", len(heads))
	}
	if heads["heads/main"] != want["heads/main"] {
		t.Errorf("heads/main = %s, want %s", heads["heads/main"], want["heads/main"])
	}

	all, err := s.List("")
	if err != nil {
		t.Fatalf("List(\"\"): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(\"\") = %d refs, want 3", len(all))
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"heads/main", "tags/v1.0", "heads/feature/deep"} {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "/heads", "heads/", "heads//main", "heads/../etc", "bad name"} {
		if err := ValidateName(name); err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
		}
	}
}
