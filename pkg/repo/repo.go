// Package repo ties the object store, the ref store, and the tree logic
// into the caller-facing operation surface: branch management, direct file
// publication, branch merging, and reads.
//
// Every mutating operation follows the same publish pipeline: read the
// parent commit from a ref, compute a new tree, write a commit, and publish
// it with a single compare-and-swap on the ref. Nothing before the CAS is
// externally visible, and a lost CAS leaves only harmless orphan objects
// for the collector.
package repo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grovevcs/grove/pkg/badgerstore"
	"github.com/grovevcs/grove/pkg/object"
	"github.com/grovevcs/grove/pkg/refs"
)

// ErrAlreadyExists reports a branch or tag creation against a name that is
// already taken.
var ErrAlreadyExists = errors.New("ref already exists")

// CommitSigner signs canonical commit payload bytes and returns an encoded
// signature string to be persisted in the commit.
type CommitSigner func(payload []byte) (string, error)

// Repo is an opened grove repository. The repository is bare: content moves
// between caller and store directly, there is no working tree and no
// implicit current branch — every operation names its ref explicitly.
type Repo struct {
	Dir    string
	Store  object.Store
	Refs   refs.Store
	Config *Config

	// Signer, when set, signs every commit this repo writes.
	Signer CommitSigner

	closer io.Closer
}

// Init creates a new repository at dir. A nil cfg takes defaults (file
// backend, compression on). Returns an error if dir already holds one.
func Init(dir string, cfg *Config) (*Repo, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir %s: %w", dir, err)
	}
	if err := WriteConfig(configPath, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	if cfg.Storage.Backend == BackendFile {
		for _, d := range []string{
			filepath.Join(dir, "objects"),
			filepath.Join(dir, "refs", "heads"),
		} {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
			}
		}
	}

	return Open(dir)
}

// Open opens an existing repository at dir, constructing the stores named
// by its config.
func Open(dir string) (*Repo, error) {
	cfg, err := LoadConfig(filepath.Join(dir, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("open: not a grove repository: %s", dir)
		}
		return nil, fmt.Errorf("open: %w", err)
	}

	r := &Repo{Dir: dir, Config: cfg}
	switch cfg.Storage.Backend {
	case BackendFile:
		if cfg.Storage.Compression {
			r.Store = object.NewFileStore(dir)
		} else {
			r.Store = object.NewFileStoreUncompressed(dir)
		}
		r.Refs = refs.NewFileStore(filepath.Join(dir, "refs"))
	case BackendBadger:
		bs, err := badgerstore.Open(badgerstore.DefaultConfig(filepath.Join(dir, "badger")))
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		r.Store = bs
		r.Refs = bs.Refs()
		r.closer = bs
	default:
		return nil, fmt.Errorf("open: unknown storage backend %q", cfg.Storage.Backend)
	}
	return r, nil
}

// Close releases backend resources. Safe on file-backed repositories.
func (r *Repo) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// headsRef maps a branch name to its full ref name.
func headsRef(branch string) string {
	return "heads/" + branch
}

// tagsRef maps a tag name to its full ref name.
func tagsRef(name string) string {
	return "tags/" + name
}

// ResolveRef resolves a ref spec to a commit hash. Full ref names
// ("heads/main", "tags/v1") resolve directly; a bare name tries heads/
// first, then tags/. Tag refs pointing at annotated tag objects are
// dereferenced to the tagged commit.
func (r *Repo) ResolveRef(spec string) (object.Hash, error) {
	var h object.Hash
	var err error
	if strings.Contains(spec, "/") {
		h, err = r.Refs.Resolve(spec)
	} else {
		h, err = r.Refs.Resolve(headsRef(spec))
		if errors.Is(err, refs.ErrNotFound) {
			h, err = r.Refs.Resolve(tagsRef(spec))
		}
	}
	if err != nil {
		return "", err
	}
	return r.derefTag(h)
}

// derefTag follows annotated tag objects down to the commit they name.
func (r *Repo) derefTag(h object.Hash) (object.Hash, error) {
	for {
		objType, data, err := r.Store.Read(h)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				// Dangling ref targets surface at commit-read time.
				return h, nil
			}
			return "", err
		}
		if objType != object.TypeTag {
			return h, nil
		}
		tag, err := object.UnmarshalTag(data)
		if err != nil {
			return "", err
		}
		h = tag.TargetHash
	}
}

// treeOf returns the root tree hash of the commit a ref spec points at.
func (r *Repo) treeOf(spec string) (object.Hash, error) {
	commitHash, err := r.ResolveRef(spec)
	if err != nil {
		return "", err
	}
	commit, err := object.ReadCommit(r.Store, commitHash)
	if err != nil {
		return "", err
	}
	return commit.TreeHash, nil
}
