package tree

import (
	"errors"
	"testing"

	"github.com/grovevcs/grove/pkg/object"
)

func TestLookup_Errors(t *testing.T) {
	s := newTestStore(t)
	root := mustUpsert(t, s, "", "dir/file.txt", "x")

	if _, err := Lookup(s, root, []string{"missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup(missing): err = %v, want ErrNotFound", err)
	}
	if _, err := Lookup(s, root, []string{"dir", "file.txt", "deeper"}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Lookup through blob: err = %v, want ErrTypeMismatch", err)
	}
	if _, err := Lookup(s, "", []string{"anything"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup in absent root: err = %v, want ErrNotFound", err)
	}
}

func TestReadFile_Directory(t *testing.T) {
	s := newTestStore(t)
	root := mustUpsert(t, s, "", "dir/file.txt", "x")

	if _, err := ReadFile(s, root, []string{"dir"}); !errors.Is(err, ErrIsDirectory) {
		t.Errorf("ReadFile(dir): err = %v, want ErrIsDirectory", err)
	}
}

func TestList_RootAndSubdirectory(t *testing.T) {
	s := newTestStore(t)
	root := mustUpsert(t, s, "", "b.txt", "2")
	root = mustUpsert(t, s, root, "a.txt", "1")
	root = mustUpsert(t, s, root, "src/main.go", "package main")

	entries, err := List(s, root, nil)
	if err != nil {
		t.Fatalf("List(root): %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List(root) = %d entries, want 3", len(entries))
	}
	// Entries come back in name order.
	for i, want := range []string{"a.txt", "b.txt", "src"} {
		if entries[i].Name != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}

	sub, err := List(s, root, []string{"src"})
	if err != nil {
		t.Fatalf("List(src): %v", err)
	}
	if len(sub) != 1 || sub[0].Name != "main.go" {
		t.Fatalf("List(src) = %+v, want [main.go]", sub)
	}

	if _, err := List(s, root, []string{"a.txt"}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("List(a.txt): err = %v, want ErrTypeMismatch", err)
	}
}

func TestFlatten(t *testing.T) {
	s := newTestStore(t)
	root := mustUpsert(t, s, "", "z.txt", "z")
	root = mustUpsert(t, s, root, "a/b/c.txt", "c")
	root = mustUpsert(t, s, root, "a/d.txt", "d")

	files, err := Flatten(s, root)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	wantPaths := []string{"a/b/c.txt", "a/d.txt", "z.txt"}
	if len(files) != len(wantPaths) {
		t.Fatalf("Flatten = %d files, want %d", len(files), len(wantPaths))
	}
	for i, want := range wantPaths {
		if files[i].Path != want {
			t.Errorf("files[%d].Path = %q, want %q", i, files[i].Path, want)
		}
	}

	empty, err := Flatten(s, "")
	if err != nil {
		t.Fatalf("Flatten(absent): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Flatten(absent) = %v, want empty", empty)
	}
}

func TestSplitPath(t *testing.T) {
	segments, err := SplitPath("a/b/c")
	if err != nil {
		t.Fatalf("SplitPath: %v", err)
	}
	if len(segments) != 3 || segments[0] != "a" || segments[2] != "c" {
		t.Fatalf("SplitPath = %v", segments)
	}

	for _, bad := range []string{"", "/a", "a/", "a//b"} {
		if _, err := SplitPath(bad); err == nil {
			t.Errorf("SplitPath(%q) succeeded, want error", bad)
		}
	}
}

// Guard against entries ever landing unsorted in a stored tree.
func TestWrittenTreesAreSorted(t *testing.T) {
	s := newTestStore(t)
	root := mustUpsert(t, s, "", "zz", "1")
	root = mustUpsert(t, s, root, "aa", "2")
	root = mustUpsert(t, s, root, "mm", "3")

	tr, err := object.ReadTree(s, root)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	for i := 1; i < len(tr.Entries); i++ {
		if tr.Entries[i-1].Name >= tr.Entries[i].Name {
			t.Fatalf("entries out of order: %q before %q", tr.Entries[i-1].Name, tr.Entries[i].Name)
		}
	}
}
