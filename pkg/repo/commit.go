package repo

import (
	"errors"
	"fmt"
	"time"

	"github.com/grovevcs/grove/pkg/object"
)

// writeCommit wraps a tree hash into a commit object and writes it to the
// store. Pure construction plus one object write; publication is the
// caller's CAS.
func (r *Repo) writeCommit(treeHash object.Hash, parents []object.Hash, message string) (object.Hash, error) {
	now := time.Now().Unix()
	ident := r.identity()
	commit := &object.CommitObj{
		TreeHash:           treeHash,
		Parents:            parents,
		Author:             ident,
		Timestamp:          now,
		Committer:          ident,
		CommitterTimestamp: now,
		Message:            message,
	}
	if r.Signer != nil {
		signature, err := r.Signer(object.CommitSigningPayload(commit))
		if err != nil {
			return "", fmt.Errorf("sign commit: %w", err)
		}
		commit.Signature = signature
	}
	return object.WriteCommit(r.Store, commit)
}

// LogEntry pairs a commit with its hash for history listings.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks the history from the given ref spec, following first-parent
// links (the receiving branch of each merge), returning up to limit entries
// newest first. limit <= 0 means no limit.
func (r *Repo) Log(spec string, limit int) ([]LogEntry, error) {
	current, err := r.ResolveRef(spec)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	var entries []LogEntry
	for current != "" {
		if limit > 0 && len(entries) >= limit {
			break
		}
		commit, err := object.ReadCommit(r.Store, current)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: commit})

		if len(commit.Parents) == 0 {
			break
		}
		current = commit.Parents[0]
	}
	return entries, nil
}
