// Package presets provides the curated stock-image catalog and fills
// remaining slots from it, reusing the same default-crop path as uploads.
package presets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Entry is one preset image in the catalog.
type Entry struct {
	Path    string `json:"path"`
	Label   string `json:"label"`
	GroupID string `json:"group"`
}

// Catalog is the theme-grouped preset list, loaded from a JSON file and
// hot-reloaded when the file changes.
type Catalog struct {
	mu      sync.RWMutex
	path    string
	entries []Entry
	watcher *fsnotify.Watcher
}

// NewCatalog loads the catalog at path and starts watching it for changes.
// A missing file is an empty catalog, not an error.
func NewCatalog(path string) (*Catalog, error) {
	c := &Catalog{path: path}

	if err := c.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("presets: could not create fsnotify watcher", "err", err)
		return c, nil
	}
	c.watcher = watcher

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		slog.Warn("presets: could not watch catalog dir", "err", err)
	}

	go c.watchLoop()
	return c, nil
}

// Reload re-reads the catalog file.
func (c *Catalog) Reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.mu.Lock()
			c.entries = nil
			c.mu.Unlock()
			return nil
		}
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	slog.Debug("presets: reloaded catalog", "count", len(entries))
	return nil
}

// Entries returns the current catalog, in file order.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Contains reports whether path is a catalog entry.
func (c *Catalog) Contains(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Path == path {
			return true
		}
	}
	return false
}

// Close stops the file watcher.
func (c *Catalog) Close() {
	if c.watcher != nil {
		c.watcher.Close()
	}
}

func (c *Catalog) watchLoop() {
	if c.watcher == nil {
		return
	}
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Name == c.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				if err := c.Reload(); err != nil {
					slog.Warn("presets: failed to reload catalog", "err", err)
				}
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("presets: watcher error", "err", err)
		}
	}
}
