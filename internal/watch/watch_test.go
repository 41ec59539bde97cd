package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	seen  chan struct{}
}

func (r *recorder) handle(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.seen <- struct{}{}
	return nil
}

func isMarkdown(rel string) bool { return strings.HasSuffix(rel, ".md") }

func TestWatcher_DebouncesMarkdownChanges(t *testing.T) {
	root := t.TempDir()
	rec := &recorder{seen: make(chan struct{}, 4)}

	w, err := New([]string{root}, isMarkdown, rec.handle, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("one"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("two"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.txt"), []byte("x"), 0o600))

	select {
	case <-rec.seen:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	require.NoError(t, <-done)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.calls)
	assert.Equal(t, []string{"a.md"}, rec.calls[0])
}

func TestWatcher_RelevantFiltersEvents(t *testing.T) {
	root := t.TempDir()
	w, err := New([]string{root}, isMarkdown, func(context.Context, []string) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })
	base := w.roots[0].path

	rel, ok := w.relevant(fsEvent(filepath.Join(base, "docs", "x.md"), true))
	assert.True(t, ok)
	assert.Equal(t, "docs/x.md", rel)

	_, ok = w.relevant(fsEvent(filepath.Join(base, "x.txt"), true))
	assert.False(t, ok)

	_, ok = w.relevant(fsEvent(filepath.Join(base, "x.md"), false))
	assert.False(t, ok, "chmod is ignored")

	_, ok = w.relevant(fsEvent(filepath.Join(filepath.Dir(base), "outside.md"), true))
	assert.False(t, ok)
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "absent")}, nil, nil)
	assert.Error(t, err)
}

func TestWatcher_FileRoot(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("one"), 0o600))
	rec := &recorder{seen: make(chan struct{}, 4)}

	w, err := New([]string{readme}, isMarkdown, rec.handle, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(readme, []byte("two"), 0o600))

	select {
	case <-rec.seen:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	require.NoError(t, <-done)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.calls)
	assert.Equal(t, []string{"README.md"}, rec.calls[0])
}

func TestWatcher_RelevantAcrossRoots(t *testing.T) {
	docs := t.TempDir()
	other := t.TempDir()
	single := filepath.Join(other, "notes.txt")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0o600))

	w, err := New([]string{docs, single}, isMarkdown, func(context.Context, []string) error { return nil })
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.watcher.Close() })
	require.Len(t, w.roots, 2)
	assert.False(t, w.roots[0].file)
	assert.True(t, w.roots[1].file)

	rel, ok := w.relevant(fsEvent(filepath.Join(w.roots[0].path, "guide", "a.md"), true))
	assert.True(t, ok)
	assert.Equal(t, "guide/a.md", rel)

	rel, ok = w.relevant(fsEvent(w.roots[1].path, true))
	assert.True(t, ok, "a file root is reported whatever its extension")
	assert.Equal(t, "notes.txt", rel)

	_, ok = w.relevant(fsEvent(filepath.Join(filepath.Dir(w.roots[1].path), "sibling.md"), true))
	assert.False(t, ok, "siblings of a file root are not watched")
}

func fsEvent(name string, write bool) fsnotify.Event {
	op := fsnotify.Chmod
	if write {
		op = fsnotify.Write
	}
	return fsnotify.Event{Name: name, Op: op}
}
