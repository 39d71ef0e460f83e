// Package watcher maps filesystem changes to permission cache
// invalidations. The engine itself takes no responsibility for detecting
// file edits; this component is the collaborator that does.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Invalidator is the slice of the permission service the watcher needs.
type Invalidator interface {
	InvalidateDefaults()
	InvalidateWorkspace(workspaceRoot string)
	InvalidateSource(workspaceRoot, sourceSlug string)
}

// Watcher watches the permission files of one workspace plus the app
// defaults and calls the matching invalidation entry point on change.
type Watcher struct {
	watcher       *fsnotify.Watcher
	service       Invalidator
	defaultsDir   string
	workspaceRoot string
	sourcesDir    string
	stopCh        chan struct{}
	doneCh        chan struct{}
	started       bool
	mu            sync.Mutex
}

// New creates a watcher for the given defaults directory
// (<config-root>/permissions) and workspace root.
func New(service Invalidator, defaultsDir, workspaceRoot string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Directories are watched rather than files: editors replace files
	// on save, which drops a file-level watch.
	dirs := []string{defaultsDir, workspaceRoot}
	sourcesDir := filepath.Join(workspaceRoot, "sources")
	if entries, err := os.ReadDir(sourcesDir); err == nil {
		dirs = append(dirs, sourcesDir)
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, filepath.Join(sourcesDir, e.Name()))
			}
		}
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("config watch skipped")
		}
	}

	log.Info().Str("defaults", defaultsDir).Str("workspace", workspaceRoot).
		Msg("config watcher initialized")

	return &Watcher{
		watcher:       w,
		service:       service,
		defaultsDir:   defaultsDir,
		workspaceRoot: workspaceRoot,
		sourcesDir:    sourcesDir,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("config watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// A new source directory appears: start watching it.
	if ev.Op&fsnotify.Create != 0 && filepath.Dir(ev.Name) == w.sourcesDir {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(ev.Name); err != nil {
				log.Debug().Err(err).Str("dir", ev.Name).Msg("source watch skipped")
			}
			return
		}
	}

	if filepath.Base(ev.Name) != "permissions.json" && filepath.Base(ev.Name) != "default.json" {
		return
	}

	switch {
	case strings.HasPrefix(ev.Name, w.defaultsDir+string(os.PathSeparator)):
		w.service.InvalidateDefaults()
	case ev.Name == filepath.Join(w.workspaceRoot, "permissions.json"):
		w.service.InvalidateWorkspace(w.workspaceRoot)
	case strings.HasPrefix(ev.Name, w.sourcesDir+string(os.PathSeparator)):
		slug := filepath.Base(filepath.Dir(ev.Name))
		w.service.InvalidateSource(w.workspaceRoot, slug)
	}
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}

	err := w.watcher.Close()
	if started {
		<-w.doneCh
	}
	return err
}
