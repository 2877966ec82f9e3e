package tree

import (
	"sort"

	"github.com/grovevcs/grove/pkg/object"
)

// Resolutions supplies replacement content for conflicting paths, keyed by
// full slash-separated path. A resolution settles a conflict by becoming a
// fresh blob in the merged tree.
type Resolutions map[string][]byte

// Merge performs a three-way structural merge of the ours and theirs trees
// against their common base, recursing per directory. An empty hash stands
// for an absent tree on any of the three sides.
//
// For each name in the union of the three entry sets the standard content
// rule applies: identical on both sides keeps either; changed on one side
// only takes that side; changed on both sides is a conflict, settled by a
// supplied resolution or failing the whole merge with ConflictError. A
// blob-vs-directory disagreement between ours and theirs is itself a
// conflict rather than being resolved implicitly.
//
// Directories whose merged entry set ends up empty are omitted, mirroring
// removal pruning; an entirely empty result is reported as an empty hash
// and the caller decides whether to materialize the canonical empty tree.
// The result depends only on (base, ours, theirs, resolutions).
func Merge(s object.Store, base, ours, theirs object.Hash, resolutions Resolutions) (object.Hash, error) {
	return mergeDir(s, base, ours, theirs, "", resolutions)
}

func mergeDir(s object.Store, base, ours, theirs object.Hash, prefix string, resolutions Resolutions) (object.Hash, error) {
	// Whole-subtree shortcuts: the three-way rule at directory granularity.
	// These keep unchanged subtrees shared by hash instead of rebuilt.
	if ours == theirs {
		return ours, nil
	}
	if ours == base {
		return theirs, nil
	}
	if theirs == base {
		return ours, nil
	}

	baseTree, err := readEntries(s, base)
	if err != nil {
		return "", err
	}
	oursTree, err := readEntries(s, ours)
	if err != nil {
		return "", err
	}
	theirsTree, err := readEntries(s, theirs)
	if err != nil {
		return "", err
	}

	baseByName := indexEntries(baseTree)
	oursByName := indexEntries(oursTree)
	theirsByName := indexEntries(theirsTree)

	var merged []object.TreeEntry
	for _, name := range unionNames(baseByName, oursByName, theirsByName) {
		b, hasBase := baseByName[name]
		o, hasOurs := oursByName[name]
		t, hasTheirs := theirsByName[name]
		path := joinPath(prefix, name)

		// Ours and theirs disagree on file-vs-directory identity: an
		// explicit conflict pending resolution.
		if hasOurs && hasTheirs && o.IsDir != t.IsDir {
			entry, err := resolveConflict(s, path, name, o, hasOurs, t, hasTheirs, resolutions)
			if err != nil {
				return "", err
			}
			merged = append(merged, entry)
			continue
		}

		// Either side a directory (the other dir or absent): recurse.
		if (hasOurs && o.IsDir) || (hasTheirs && t.IsDir) {
			var baseSub, oursSub, theirsSub object.Hash
			if hasBase && b.IsDir {
				baseSub = b.SubtreeHash
			}
			if hasOurs {
				oursSub = o.SubtreeHash
			}
			if hasTheirs {
				theirsSub = t.SubtreeHash
			}
			subHash, err := mergeDir(s, baseSub, oursSub, theirsSub, path, resolutions)
			if err != nil {
				return "", err
			}
			if subHash == "" {
				// Empty merge result: prune the directory entry.
				continue
			}
			merged = append(merged, object.TreeEntry{
				Name: name, IsDir: true, Mode: object.TreeModeDir, SubtreeHash: subHash,
			})
			continue
		}

		// Standard three-way content rule on (kind, hash) identity.
		baseKey := entryKey(b, hasBase)
		oursKey := entryKey(o, hasOurs)
		theirsKey := entryKey(t, hasTheirs)

		switch {
		case oursKey == theirsKey:
			if hasOurs {
				merged = append(merged, o)
			}
			// Both absent: nothing to keep.
		case oursKey == baseKey:
			// Only theirs changed; absence means deletion.
			if hasTheirs {
				merged = append(merged, t)
			}
		case theirsKey == baseKey:
			if hasOurs {
				merged = append(merged, o)
			}
		default:
			entry, err := resolveConflict(s, path, name, o, hasOurs, t, hasTheirs, resolutions)
			if err != nil {
				return "", err
			}
			merged = append(merged, entry)
		}
	}

	if len(merged) == 0 {
		return "", nil
	}
	return writeEntries(s, merged)
}

// resolveConflict settles a conflicting path with supplied content, or
// fails the merge naming the path.
func resolveConflict(s object.Store, path, name string, o object.TreeEntry, hasOurs bool, t object.TreeEntry, hasTheirs bool, resolutions Resolutions) (object.TreeEntry, error) {
	content, ok := resolutions[path]
	if !ok {
		return object.TreeEntry{}, &ConflictError{Path: path}
	}
	blobHash, err := object.WriteBlob(s, &object.Blob{Data: content})
	if err != nil {
		return object.TreeEntry{}, err
	}
	mode := object.TreeModeFile
	if hasOurs && !o.IsDir && o.Mode != "" {
		mode = o.Mode
	} else if hasTheirs && !t.IsDir && t.Mode != "" {
		mode = t.Mode
	}
	return object.TreeEntry{Name: name, Mode: mode, BlobHash: blobHash}, nil
}

// entryKey is an identity for the three-way comparison: kind plus content
// hash. Absent entries compare equal to each other and to nothing else.
func entryKey(e object.TreeEntry, present bool) string {
	if !present {
		return ""
	}
	if e.IsDir {
		return "tree:" + string(e.SubtreeHash)
	}
	return "blob:" + string(e.BlobHash)
}

func indexEntries(entries []object.TreeEntry) map[string]object.TreeEntry {
	m := make(map[string]object.TreeEntry, len(entries))
	for _, e := range entries {
		m[e.Name] = e
	}
	return m
}

// unionNames returns the sorted union of entry names across the three maps.
func unionNames(maps ...map[string]object.TreeEntry) []string {
	seen := make(map[string]struct{})
	for _, m := range maps {
		for name := range m {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
