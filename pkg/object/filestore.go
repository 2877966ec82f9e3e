package object

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstd frame magic, used to recognize compressed objects on read so stores
// written with and without compression stay interchangeable.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// FileStore is a content-addressed object store backed by the filesystem,
// with a 2-character fan-out directory layout: objects/ab/cdef0123...
//
// The on-disk format is "type len\0content", optionally zstd-compressed at
// rest. Hashes are always computed over the uncompressed envelope content,
// so compression never changes object identity.
type FileStore struct {
	root     string
	compress bool
}

// NewFileStore creates a FileStore rooted at the given directory. The
// objects/ subdirectory is created lazily on first write.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root, compress: true}
}

// NewFileStoreUncompressed creates a FileStore that writes raw envelopes.
func NewFileStoreUncompressed(root string) *FileStore {
	return &FileStore{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (s *FileStore) objectPath(h Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *FileStore) Has(h Hash) bool {
	if len(h) < 3 {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash. Writes are atomic:
// data goes to a temp file which is then renamed into place, so concurrent
// or repeated writes of the same content are harmless.
func (s *FileStore) Write(objType ObjectType, data []byte) (Hash, error) {
	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)

	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	if s.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return "", fmt.Errorf("object write compress: %w", err)
		}
		raw = enc.EncodeAll(raw, nil)
		enc.Close()
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *FileStore) Read(h Hash) (ObjectType, []byte, error) {
	if len(h) < 3 {
		return "", nil, fmt.Errorf("object read %q: %w", h, ErrNotFound)
	}
	raw, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	if bytes.HasPrefix(raw, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return "", nil, fmt.Errorf("object read %s: decompress: %w", h, err)
		}
		raw, err = dec.DecodeAll(raw, nil)
		dec.Close()
		if err != nil {
			return "", nil, fmt.Errorf("object read %s: decompress: %w", h, err)
		}
	}

	return parseEnvelope(h, raw)
}

// Objects lists the hashes of all loose objects in the store.
func (s *FileStore) Objects() ([]Hash, error) {
	objectsDir := filepath.Join(s.root, "objects")
	fanouts, err := os.ReadDir(objectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list objects: %w", err)
	}

	var out []Hash
	for _, fan := range fanouts {
		if !fan.IsDir() || len(fan.Name()) != 2 {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(objectsDir, fan.Name()))
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", fan.Name(), err)
		}
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
				continue
			}
			out = append(out, Hash(fan.Name()+e.Name()))
		}
	}
	return out, nil
}

// Delete removes a loose object. Only the collector calls this, and only
// for objects proven unreachable.
func (s *FileStore) Delete(h Hash) error {
	if err := os.Remove(s.objectPath(h)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("object delete %s: %w", h, err)
	}
	return nil
}

// parseEnvelope splits "type len\0content" and validates the length field.
func parseEnvelope(h Hash, raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object read %s: invalid format (no NUL)", h)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object read %s: invalid header %q", h, header)
	}
	objType := ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object read %s: length mismatch (header=%d, actual=%d)", h, length, len(content))
	}

	return objType, content, nil
}
