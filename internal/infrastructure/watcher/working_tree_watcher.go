package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/modelgit/internal/domain/entities"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// WorkingTreeWatcher publishes EventWorkingTreeChanged when files of a
// working copy change. Bursts of file events collapse into one event.
type WorkingTreeWatcher struct {
	repo  entities.Repository
	bus   *entities.EventBus
	delay time.Duration

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debouncer
	done     chan struct{}
	ctx      context.Context
}

// NewWorkingTreeWatcher creates a watcher for the repository's working folder.
func NewWorkingTreeWatcher(repo entities.Repository, bus *entities.EventBus, delay time.Duration) *WorkingTreeWatcher {
	return &WorkingTreeWatcher{repo: repo, bus: bus, delay: delay}
}

// Start watches the working folder and the assets folder until ctx is done
// or Close is called.
func (it *WorkingTreeWatcher) Start(ctx context.Context) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.watcher != nil {
		if it.ctx.Err() == nil {
			return nil
		}
		// the previous loop closes its watcher once its context is done
		<-it.done
		it.watcher = nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	for _, path := range it.watchPaths() {
		logger.Debugf("[watch] Watching %s", path)
		if addErr := w.Add(path); addErr != nil {
			return fmt.Errorf("watch %s: %w", path, errors.Join(addErr, w.Close()))
		}
	}

	it.watcher = w
	it.ctx = ctx
	it.done = make(chan struct{})
	it.debounce = newDebouncer(it.delay, func() {
		it.bus.Publish(entities.RepositoryEvent{
			Type:       entities.EventWorkingTreeChanged,
			Repository: it.repo,
		})
	})
	go it.loop(ctx, w, it.debounce, it.done)
	return nil
}

// Close stops watching. Pending events are dropped.
func (it *WorkingTreeWatcher) Close() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.watcher == nil {
		return nil
	}
	it.debounce.Stop()
	err := it.watcher.Close()
	<-it.done
	it.watcher = nil
	return err
}

func (it *WorkingTreeWatcher) loop(ctx context.Context, w *fsnotify.Watcher, d *debouncer, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			d.Stop()
			if err := w.Close(); err != nil {
				logger.Debugf("[watch] Failed to close watcher: %v", err)
			}
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&relevantOps == 0 || it.ignored(ev.Name) {
				continue
			}
			logger.Debugf("[watch] %s %s", ev.Op, ev.Name)
			if ev.Op&fsnotify.Create != 0 && filepath.Base(ev.Name) == entities.AssetsFolderName {
				if err := w.Add(ev.Name); err != nil {
					logger.Warnf("[watch] Failed to watch %s: %v", ev.Name, err)
				}
			}
			d.Trigger()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Errorf("[watch] fsnotify error: %v", err)
		}
	}
}

func (it *WorkingTreeWatcher) watchPaths() []string {
	paths := []string{it.repo.WorkingFolder()}
	if info, err := os.Stat(it.repo.AssetsFolder()); err == nil && info.IsDir() {
		paths = append(paths, it.repo.AssetsFolder())
	}
	return paths
}

// ignored filters VCS metadata and temporary files written while saving.
func (it *WorkingTreeWatcher) ignored(name string) bool {
	rel, err := filepath.Rel(it.repo.WorkingFolder(), name)
	if err != nil {
		return true
	}
	first := strings.Split(filepath.ToSlash(rel), "/")[0]
	if first == entities.GitFolderName {
		return true
	}
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))
	return strings.HasPrefix(base, ".model-") || ext == ".lock" || ext == ".tmp" || strings.HasSuffix(base, "~")
}

// debouncer runs fn once after the last Trigger of a burst.
type debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
	fn    func()
}

func newDebouncer(delay time.Duration, fn func()) *debouncer {
	return &debouncer{delay: delay, fn: fn}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()
		if !stale {
			d.fn()
		}
	})
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
