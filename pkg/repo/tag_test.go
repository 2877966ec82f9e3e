package repo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/refs"
)

func TestLightweightTagPointsAtCommit(t *testing.T) {
	r := newTestRepo(t)
	c1 := mustPut(t, r, "main", "a.txt", "1")

	if err := r.CreateTag("v1", "main", ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	raw, err := r.Refs.Resolve("tags/v1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if raw != c1 {
		t.Fatalf("tags/v1 = %s, want commit %s", raw, c1)
	}
}

func TestAnnotatedTagDereferences(t *testing.T) {
	r := newTestRepo(t)
	c1 := mustPut(t, r, "main", "a.txt", "1")

	if err := r.CreateTag("v1", "main", "first release"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	// The ref points at a tag object, not the commit.
	raw, err := r.Refs.Resolve("tags/v1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if raw == c1 {
		t.Fatal("annotated tag ref points directly at the commit")
	}
	tag, err := object.ReadTag(r.Store, raw)
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if tag.TargetHash != c1 || tag.Message != "first release" {
		t.Fatalf("tag = %+v", tag)
	}

	// ResolveRef follows the tag object down to the commit.
	got, err := r.ResolveRef("tags/v1")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != c1 {
		t.Fatalf("ResolveRef(tags/v1) = %s, want %s", got, c1)
	}

	// The tagged tree stays readable through the tag.
	if got := mustRead(t, r, "v1", "a.txt"); got != "1" {
		t.Fatalf("read through tag = %q", got)
	}
}

func TestTagPinsHistory(t *testing.T) {
	r := newTestRepo(t)
	c1 := mustPut(t, r, "main", "a.txt", "1")
	if err := r.CreateTag("v1", "main", ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	mustPut(t, r, "main", "a.txt", "2")

	got, err := r.ResolveRef("v1")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if got != c1 {
		t.Fatalf("tag moved with branch: %s", got)
	}
	if got := mustRead(t, r, "v1", "a.txt"); got != "1" {
		t.Fatalf("tagged content = %q, want original", got)
	}
}

func TestTagDuplicateAndDelete(t *testing.T) {
	r := newTestRepo(t)
	mustPut(t, r, "main", "a.txt", "1")

	if err := r.CreateTag("v1", "main", ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := r.CreateTag("v1", "main", ""); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate tag err = %v, want ErrAlreadyExists", err)
	}

	tags, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if want := []string{"v1"}; !reflect.DeepEqual(tags, want) {
		t.Fatalf("ListTags = %v, want %v", tags, want)
	}

	if err := r.DeleteTag("v1"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if err := r.DeleteTag("v1"); !errors.Is(err, refs.ErrNotFound) {
		t.Fatalf("delete missing tag err = %v, want refs.ErrNotFound", err)
	}
}
