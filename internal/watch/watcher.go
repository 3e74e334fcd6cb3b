// Package watch triggers rebuilds when catalog or template files change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/showcase/internal/fsutil"
	"github.com/alexanderramin/showcase/internal/logging"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called once per settled burst of events with the changed
// paths in lexical order.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches a set of files and directories. Files are watched through
// their parent directory so editors that save via rename are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	dirs     map[string]bool
	files    map[string]bool
	onChange ChangeFunc
	debounce time.Duration
	log      *logging.Logger
}

// New registers targets with a new fsnotify watcher. Empty targets are
// ignored. A target that does not exist yet is watched through its parent
// when the parent exists. debounce <= 0 means DefaultDebounce.
func New(targets []string, debounce time.Duration, onChange ChangeFunc, log *logging.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		dirs:     make(map[string]bool),
		files:    make(map[string]bool),
		onChange: onChange,
		debounce: debounce,
		log:      logging.OrNop(log).With("component", "watch"),
	}

	added := make(map[string]bool)
	for _, target := range targets {
		if target == "" {
			continue
		}
		target = filepath.Clean(target)
		dir := target
		if fsutil.IsDir(target) {
			w.dirs[target] = true
		} else {
			dir = filepath.Dir(target)
			w.files[target] = true
		}
		if added[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			w.log.Warn("cannot watch", "path", target, "error", err)
			continue
		}
		added[dir] = true
		w.log.Debug("watching", "dir", dir)
	}

	if len(added) == 0 {
		_ = fw.Close()
		return nil, errors.New("nothing to watch: none of the watched paths exist")
	}
	return w, nil
}

// Run delivers debounced changes until ctx is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	pending := make(map[string]bool)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			if len(changed) > 0 {
				w.onChange(ctx, changed)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	// Dot files are editor swap files and our own atomic-write temps.
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	return w.dirs[filepath.Dir(name)]
}
