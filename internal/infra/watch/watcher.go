// Package watch re-runs work when suite or rulebook files change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aalvaropc/diagroute/internal/infra/logger"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher batches filesystem events on YAML files and reports the changed
// paths once the burst settles.
type Watcher struct {
	debounce time.Duration
	exts     []string
}

type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for further events before firing.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithExtensions restricts events to files with these extensions.
func WithExtensions(exts ...string) Option {
	return func(w *Watcher) {
		w.exts = exts
	}
}

func New(opts ...Option) *Watcher {
	w := &Watcher{debounce: defaultDebounce, exts: []string{".yaml", ".yml"}}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Run watches paths (files or directories) until ctx is done. onChange runs on
// the caller's goroutine with the sorted set of files touched since the last call.
// A file path is watched through its parent directory so editors that replace
// the file on save keep being tracked.
func (w *Watcher) Run(ctx context.Context, paths []string, onChange func(changed []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	t := targets{files: map[string]bool{}, dirs: map[string]bool{}}
	for _, p := range paths {
		dir, err := t.add(p)
		if err != nil {
			return err
		}
		if err := fw.Add(dir); err != nil {
			return err
		}
	}

	var (
		pending = map[string]bool{}
		timer   *time.Timer
		fire    <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev, t) {
				continue
			}
			pending[filepath.Clean(ev.Name)] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.L().Warn("watch.error", "err", err)

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			onChange(changed)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event, t targets) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if t.files[name] {
		return true
	}
	if !t.dirs[filepath.Dir(name)] {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range w.exts {
		if ext == e {
			return true
		}
	}
	return false
}

// targets separates explicitly named files from directories watched whole.
type targets struct {
	files map[string]bool
	dirs  map[string]bool
}

// add registers p and returns the directory to hand to fsnotify.
func (t targets) add(p string) (string, error) {
	p = filepath.Clean(p)
	st, err := os.Stat(p)
	if err != nil {
		return "", err
	}
	if st.IsDir() {
		t.dirs[p] = true
		return p, nil
	}
	t.files[p] = true
	return filepath.Dir(p), nil
}
