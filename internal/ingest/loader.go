package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"compras/internal/cache"
	"compras/internal/core"
	"compras/internal/log"
)

// LoaderConfig configures the parse memo.
type LoaderConfig struct {
	CacheSize int
	CacheTTL  time.Duration
	// Watch invalidates cached files when they change on disk.
	Watch  bool
	Logger *log.Logger
}

// Loader memoizes parsed sources keyed by identity: the absolute path for
// files, the content hash for uploads. The memo is advisory; a miss
// always re-parses.
type Loader struct {
	cache  *cache.LRUCache[core.Table]
	group  singleflight.Group
	logger *log.Logger

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	watched  map[string]string // file path -> cache key
	dirs     map[string]bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoader creates a loader. When cfg.Watch is set and the platform
// supports it, changed files are evicted from the memo.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 32
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default(log.ComponentIngest)
	}

	l := &Loader{
		cache:   cache.NewLRUCache[core.Table](cfg.CacheSize, cfg.CacheTTL),
		logger:  logger,
		watched: make(map[string]string),
		dirs:    make(map[string]bool),
		done:    make(chan struct{}),
	}

	if cfg.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create file watcher: %w", err)
		}
		l.watcher = w
		go l.watchLoop()
	}
	return l, nil
}

// Cache exposes the memo so a cache.Manager can sweep it.
func (l *Loader) Cache() *cache.LRUCache[core.Table] {
	return l.cache
}

// LoadFile parses the file at path, using the memo when possible.
func (l *Loader) LoadFile(ctx context.Context, path string) (core.Table, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return core.Table{}, fmt.Errorf("resolve path %q: %w", path, err)
	}
	format, err := FormatFromName(abs)
	if err != nil {
		return core.Table{}, err
	}
	key := "file:" + abs

	return l.load(ctx, key, func() (core.Table, error) {
		f, err := os.Open(abs)
		if err != nil {
			return core.Table{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		tbl, err := Parse(f, format)
		if err != nil {
			return core.Table{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
		l.watch(abs, key)
		return tbl, nil
	})
}

// LoadBytes parses an uploaded document. Identical uploads share a memo
// entry regardless of their file name.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (core.Table, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return core.Table{}, err
	}
	sum := sha256.Sum256(data)
	key := "upload:" + string(format) + ":" + hex.EncodeToString(sum[:])

	return l.load(ctx, key, func() (core.Table, error) {
		tbl, err := ParseBytes(data, format)
		if err != nil {
			return core.Table{}, fmt.Errorf("parse %s: %w", name, err)
		}
		return tbl, nil
	})
}

func (l *Loader) load(ctx context.Context, key string, parse func() (core.Table, error)) (core.Table, error) {
	if tbl, ok := l.cache.Get(key); ok {
		l.logger.DebugContext(ctx, "Source cache hit", "key", key, log.FieldRows, tbl.Len())
		return tbl, nil
	}

	v, err, shared := l.group.Do(key, func() (any, error) {
		start := time.Now()
		tbl, err := parse()
		if err != nil {
			return core.Table{}, err
		}
		l.cache.Set(key, tbl)
		l.logger.InfoContext(ctx, "Source parsed",
			"key", key,
			log.FieldRows, tbl.Len(),
			log.FieldDuration, time.Since(start).Milliseconds())
		return tbl, nil
	})
	if err != nil {
		return core.Table{}, err
	}
	if shared {
		l.logger.DebugContext(ctx, "Source parse shared with concurrent caller", "key", key)
	}
	return v.(core.Table), nil
}

// Invalidate drops the memo entry for a file path.
func (l *Loader) Invalidate(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	l.cache.Delete("file:" + abs)
}

func (l *Loader) watch(abs, key string) {
	if l.watcher == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.watched[abs] = key
	dir := filepath.Dir(abs)
	if l.dirs[dir] {
		return
	}
	// Editors replace files by rename, so watch the directory.
	if err := l.watcher.Add(dir); err != nil {
		l.logger.Warn("Cannot watch source directory", "dir", dir, log.FieldError, err)
		return
	}
	l.dirs[dir] = true
}

func (l *Loader) watchLoop() {
	for {
		select {
		case <-l.done:
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			l.mu.Lock()
			key, tracked := l.watched[name]
			l.mu.Unlock()
			if tracked {
				l.cache.Delete(key)
				l.logger.Info("Source changed on disk, cache entry dropped", log.FieldSource, name, "op", ev.Op.String())
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("File watcher error", log.FieldError, err)
		}
	}
}

// Close stops the file watcher.
func (l *Loader) Close() error {
	var err error
	l.stopOnce.Do(func() {
		close(l.done)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
	})
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}
