package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdpo/internal/foundation/errors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func paths(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func TestDir_DefaultsToMarkdown(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.md", "# B")
	writeFile(t, root, "docs/a.markdown", "A")
	writeFile(t, root, "docs/notes.txt", "no")
	writeFile(t, root, ".hidden/c.md", "hidden")
	writeFile(t, root, "UPPER.MD", "upper")

	docs, err := Dir(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"UPPER.MD", "b.md", "docs/a.markdown"}, paths(docs))
	assert.Equal(t, "# B", string(docs[1].Content))
}

func TestDir_IncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guide/intro.md", "intro")
	writeFile(t, root, "guide/setup.md", "setup")
	writeFile(t, root, "blog/post.md", "post")
	writeFile(t, root, "README.txt", "readme")

	docs, err := Dir(root, []string{"guide/*.md", "*.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.txt", "guide/intro.md", "guide/setup.md"}, paths(docs))
}

func TestDir_InvalidPattern(t *testing.T) {
	_, err := Dir(t.TempDir(), []string{"[unclosed"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestDir_MissingRoot(t *testing.T) {
	_, err := Dir(filepath.Join(t.TempDir(), "absent"), nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/page.md", "Hello")

	doc, err := File(filepath.Join(root, "docs", "page.md"))
	require.NoError(t, err)
	assert.Equal(t, Document{Path: "page.md", Content: []byte("Hello")}, doc)

	_, err = File(filepath.Join(root, "missing.md"))
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}
