package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Exactly one of BlobHash and
// SubtreeHash is set, according to IsDir.
type TreeEntry struct {
	Name        string
	IsDir       bool
	Mode        string
	BlobHash    Hash
	SubtreeHash Hash
}

// TreeObj holds a sorted list of tree entries with unique names.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// Entry returns the entry with the given name, if present.
func (t *TreeObj) Entry(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// CommitObj represents a commit pointing to a tree with metadata. Parents
// holds zero, one, or two hashes; for merge commits the first parent is the
// receiving branch.
type CommitObj struct {
	TreeHash           Hash
	Parents            []Hash
	Author             string
	Timestamp          int64
	Committer          string
	CommitterTimestamp int64
	Signature          string
	Message            string
}

// TagObj is an annotated tag pointing at another object.
type TagObj struct {
	TargetHash Hash
	Name       string
	Tagger     string
	Timestamp  int64
	Message    string
}
