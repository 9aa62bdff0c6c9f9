package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 16
)

// FileEvent reports that a watched file changed.
type FileEvent struct {
	Path      string
	Timestamp time.Time
}

// FileWatcher watches data files for changes made by other processes, such as
// the CLI editing tasks while the TUI is open. Directories are watched rather
// than files so atomic rename-over writes are observed.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	log     zerolog.Logger

	mu          sync.Mutex
	dirs        map[string]bool
	subscribers map[string][]chan<- FileEvent // absolute path -> channels
	debounce    map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileWatcher starts a watcher with no subscriptions.
func NewFileWatcher(log zerolog.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		watcher:     watcher,
		log:         log,
		dirs:        make(map[string]bool),
		subscribers: make(map[string][]chan<- FileEvent),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Watch returns a channel that receives an event each time path changes. The
// subscription ends when ctx is done.
func (fw *FileWatcher) Watch(ctx context.Context, path string) (<-chan FileEvent, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw.mu.Lock()
	if !fw.dirs[dir] {
		if err := fw.watcher.Add(dir); err != nil {
			fw.mu.Unlock()
			return nil, err
		}
		fw.dirs[dir] = true
	}
	ch := make(chan FileEvent, eventBufferSize)
	fw.subscribers[abs] = append(fw.subscribers[abs], ch)
	fw.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			fw.unsubscribe(abs, ch)
		case <-fw.ctx.Done():
			// Watcher is closing, channel will be closed by Close()
		}
	}()

	return ch, nil
}

// Close stops watching and closes all subscriber channels.
func (fw *FileWatcher) Close() error {
	fw.cancel()

	fw.mu.Lock()
	for _, timer := range fw.debounce {
		timer.Stop()
	}
	for _, subs := range fw.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	fw.subscribers = make(map[string][]chan<- FileEvent)
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

func (fw *FileWatcher) unsubscribe(path string, ch chan<- FileEvent) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	subs := fw.subscribers[path]
	for i, sub := range subs {
		if sub == ch {
			fw.subscribers[path] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(fw.subscribers[path]) == 0 {
		delete(fw.subscribers, path)
	}
}

func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	path := filepath.Clean(event.Name)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, watched := fw.subscribers[path]; !watched {
		return
	}

	if timer, exists := fw.debounce[path]; exists {
		timer.Stop()
	}
	fw.debounce[path] = time.AfterFunc(debounceDelay, func() {
		fw.notify(path)
	})
}

func (fw *FileWatcher) notify(path string) {
	event := FileEvent{Path: path, Timestamp: time.Now()}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for _, ch := range fw.subscribers[path] {
		select {
		case ch <- event:
		default:
			// Channel full, drop event to prevent blocking
		}
	}

	delete(fw.debounce, path)
}
