package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/showcase/internal/fsutil"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	changes chan []string
	cancel  context.CancelFunc
	done    chan error
}

func start(t *testing.T, targets []string) *harness {
	t.Helper()
	h := &harness{changes: make(chan []string, 8), done: make(chan error, 1)}
	w, err := New(targets, 50*time.Millisecond, func(ctx context.Context, changed []string) {
		h.changes <- changed
	}, logging.Nop())
	require.NoError(t, err)

	var ctx context.Context
	ctx, h.cancel = context.WithCancel(context.Background())
	go func() { h.done <- w.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	h.cancel()
	<-h.done
}

func (h *harness) next(t *testing.T) []string {
	t.Helper()
	select {
	case changed := <-h.changes:
		return changed
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
		return nil
	}
}

func (h *harness) quiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case changed := <-h.changes:
		t.Fatalf("unexpected change: %v", changed)
	case <-time.After(d):
	}
}

func TestWatcher_FileTargetSeesAtomicSave(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(base, []byte("{}"), 0644))
	h := start(t, []string{base})

	require.NoError(t, fsutil.WriteFileAtomic(base, []byte(`{"meta":{}}`)))

	assert.Equal(t, []string{base}, h.next(t))
}

func TestWatcher_IgnoresSiblingsOfFileTargets(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(base, []byte("{}"), 0644))
	h := start(t, []string{base})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	h.quiet(t, 300*time.Millisecond)
}

func TestWatcher_DirectoryTargetDebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	h := start(t, []string{dir})

	for _, name := range []string{"data_zh.json", "data_en.json", "data_zh.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".data_zh.json.swp"), []byte("x"), 0644))

	assert.Equal(t, []string{
		filepath.Join(dir, "data_en.json"),
		filepath.Join(dir, "data_zh.json"),
	}, h.next(t))
	h.quiet(t, 200*time.Millisecond)
}

func TestWatcher_MissingFileWatchedThroughParent(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "template.js")
	h := start(t, []string{"", tmpl})

	require.NoError(t, os.WriteFile(tmpl, []byte("x"), 0644))

	assert.Equal(t, []string{tmpl}, h.next(t))
}

func TestNew_NothingToWatch(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "a", "b", "cases.json")

	_, err := New([]string{missing}, 0, func(context.Context, []string) {}, nil)

	assert.ErrorContains(t, err, "nothing to watch")
}

func TestRelevant(t *testing.T) {
	w := &Watcher{
		dirs:  map[string]bool{"/w/editor": true},
		files: map[string]bool{"/w/config/cases.json": true},
	}

	assert.True(t, w.relevant(fsnotify.Event{Name: "/w/config/cases.json", Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/w/editor/data_en.json", Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: "/w/editor/data_en.json", Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/w/editor/data_en.json", Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/w/config/other.json", Op: fsnotify.Write}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/w/editor/.data_en.json.123", Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: "/w/editor/sub/data.json", Op: fsnotify.Create}))
}
