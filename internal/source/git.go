package source

import (
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

// Snapshot is the set of documents found in one commit.
type Snapshot struct {
	Commit    string
	Documents []Document
}

// GitRevision reads the Markdown documents of repoPath as they are in rev
// (a branch, tag, or commit hash), without touching the worktree.
func GitRevision(repoPath, rev string, include []string) (*Snapshot, error) {
	m, err := NewMatcher(include)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, gitError(err, "failed to open repository", repoPath, rev)
	}
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, gitError(err, "failed to resolve revision", repoPath, rev)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, gitError(err, "failed to load commit", repoPath, rev)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, gitError(err, "failed to load tree", repoPath, rev)
	}

	snap := &Snapshot{Commit: commit.Hash.String()}
	err = tree.Files().ForEach(func(f *object.File) error {
		if !f.Mode.IsFile() || !m.Match(f.Name) {
			return nil
		}
		content, err := readBlob(f)
		if err != nil {
			return err
		}
		snap.Documents = append(snap.Documents, Document{Path: f.Name, Content: content})
		return nil
	})
	if err != nil {
		return nil, gitError(err, "failed to read tree", repoPath, rev)
	}
	sortDocuments(snap.Documents)
	return snap, nil
}

func readBlob(f *object.File) ([]byte, error) {
	r, err := f.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

func gitError(err error, msg, repoPath, rev string) error {
	return errors.GitError(msg).
		WithCause(err).
		WithContextMap(errors.ErrorContext{"repository": repoPath, "revision": rev}).
		Build()
}
