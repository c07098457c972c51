package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"mantis/internal/domain"
)

const defaultDebounce = 500 * time.Millisecond

// Loader reads the knowledge base at path.
type Loader func(path string) ([]domain.Chunk, error)

// Swapper installs a freshly loaded corpus.
type Swapper interface {
	Swap(chunks []domain.Chunk, origin string) *domain.KnowledgeBase
}

// KBWatcher reloads the knowledge base file when it changes on disk. It
// watches the parent directory because saves replace the file by rename.
type KBWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	load     Loader
	target   Swapper
	log      *logrus.Entry
	debounce time.Duration

	pending   bool
	lastEvent time.Time
	reloads   int
	failures  int

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

func NewKBWatcher(path string, load Loader, target Swapper, log *logrus.Entry) (*KBWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.WithField("component", "kb_watcher")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	return &KBWatcher{
		watcher:  w,
		path:     abs,
		load:     load,
		target:   target,
		log:      log,
		debounce: defaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes the quiet period before a reload. Call before Start.
func (kw *KBWatcher) SetDebounce(d time.Duration) {
	kw.mu.Lock()
	kw.debounce = d
	kw.mu.Unlock()
}

// Start begins watching. It is non-blocking.
func (kw *KBWatcher) Start(ctx context.Context) error {
	kw.mu.Lock()
	if kw.running {
		kw.mu.Unlock()
		return nil
	}
	kw.running = true
	kw.mu.Unlock()

	dir := filepath.Dir(kw.path)
	if err := kw.watcher.Add(dir); err != nil {
		kw.mu.Lock()
		kw.running = false
		kw.mu.Unlock()
		return err
	}
	kw.log.WithField("path", kw.path).Info("watching knowledge base")

	go kw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (kw *KBWatcher) Stop() {
	kw.mu.Lock()
	wasRunning := kw.running
	kw.running = false
	kw.mu.Unlock()

	if wasRunning {
		close(kw.stopCh)
		<-kw.doneCh
	}
	if err := kw.watcher.Close(); err != nil {
		kw.log.WithError(err).Warn("closing watcher")
	}
}

func (kw *KBWatcher) run(ctx context.Context) {
	defer close(kw.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-kw.stopCh:
			return
		case event, ok := <-kw.watcher.Events:
			if !ok {
				return
			}
			kw.handleEvent(event)
		case err, ok := <-kw.watcher.Errors:
			if !ok {
				return
			}
			kw.log.WithError(err).Warn("watch error")
		case <-ticker.C:
			kw.reloadIfSettled()
		}
	}
}

func (kw *KBWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != kw.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	kw.mu.Lock()
	kw.pending = true
	kw.lastEvent = time.Now()
	kw.mu.Unlock()
}

func (kw *KBWatcher) reloadIfSettled() {
	kw.mu.Lock()
	if !kw.pending || time.Since(kw.lastEvent) < kw.debounce {
		kw.mu.Unlock()
		return
	}
	kw.pending = false
	kw.mu.Unlock()

	chunks, err := kw.load(kw.path)
	if err != nil {
		kw.mu.Lock()
		kw.failures++
		kw.mu.Unlock()
		// keep serving the previous snapshot
		kw.log.WithError(err).Warn("reload failed")
		return
	}

	kb := kw.target.Swap(chunks, kw.path)
	kw.mu.Lock()
	kw.reloads++
	kw.mu.Unlock()
	kw.log.WithField("chunks", kb.Len()).Info("knowledge base reloaded")
}

// Counts returns the number of successful and failed reloads.
func (kw *KBWatcher) Counts() (reloads, failures int) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	return kw.reloads, kw.failures
}
