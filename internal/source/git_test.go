package source

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

func commitAll(t *testing.T, repo *git.Repository, msg string) string {
	t.Helper()
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(".")
	require.NoError(t, err)
	hash, err := w.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestGitRevision_ReadsCommitNotWorktree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "repo")
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)

	writeFile(t, root, "docs/index.md", "# First")
	writeFile(t, root, "main.go", "package main")
	first := commitAll(t, repo, "first")

	writeFile(t, root, "docs/index.md", "# Second")
	writeFile(t, root, "docs/new.md", "new")
	second := commitAll(t, repo, "second")

	writeFile(t, root, "docs/index.md", "# Uncommitted")

	snap, err := GitRevision(root, first, nil)
	require.NoError(t, err)
	assert.Equal(t, first, snap.Commit)
	require.Equal(t, []string{"docs/index.md"}, paths(snap.Documents))
	assert.Equal(t, "# First", string(snap.Documents[0].Content))

	snap, err = GitRevision(root, "HEAD", []string{"docs/*.md"})
	require.NoError(t, err)
	assert.Equal(t, second, snap.Commit)
	assert.Equal(t, []string{"docs/index.md", "docs/new.md"}, paths(snap.Documents))
	assert.Equal(t, "# Second", string(snap.Documents[0].Content))
}

func TestGitRevision_Errors(t *testing.T) {
	_, err := GitRevision(t.TempDir(), "HEAD", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryGit))

	root := filepath.Join(t.TempDir(), "repo")
	repo, err := git.PlainInit(root, false)
	require.NoError(t, err)
	writeFile(t, root, "a.md", "a")
	commitAll(t, repo, "init")

	_, err = GitRevision(root, "no-such-branch", nil)
	require.Error(t, err)
	ce, ok := errors.AsClassified(err)
	require.True(t, ok)
	rev, _ := ce.Context().GetString("revision")
	assert.Equal(t, "no-such-branch", rev)
	repoPath, _ := ce.Context().GetString("repository")
	assert.Equal(t, root, repoPath)
	assert.Error(t, ce.Unwrap())
}
