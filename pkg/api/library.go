package api

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tamriel-io/goesp/pkg/plugin"
)

// Library holds the parsed plugins served by the API. Plugins load once
// at startup or on demand; reads are concurrent.
type Library struct {
	mu      sync.RWMutex
	plugins map[string]*plugin.Plugin
	opts    []plugin.Option
	metrics *Metrics
}

// NewLibrary creates an empty library. The options apply to every
// plugin parsed through it.
func NewLibrary(opts ...plugin.Option) *Library {
	return &Library{
		plugins: make(map[string]*plugin.Plugin),
		opts:    opts,
	}
}

// SetMetrics attaches the metrics sink; every subsequent parse through
// the library records its outcome and duration there.
func (l *Library) SetMetrics(m *Metrics) {
	l.metrics = m
}

// LoadDir parses every .esp and .esm file in dir. Files that fail to
// parse abort the load; a library serving half a load order is worse
// than one that refuses to start.
func (l *Library) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	loaded := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".esp" && ext != ".esm" {
			continue
		}
		if err := l.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

// LoadFile parses a single plugin file and adds it under its base name.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read plugin: %w", err)
	}
	start := time.Now()
	p, err := plugin.Parse(data, l.opts...)
	if l.metrics != nil {
		l.metrics.RecordParse(err == nil, time.Since(start))
	}
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	l.Add(filepath.Base(path), p)
	return nil
}

// Add registers a parsed plugin under name, replacing any previous one.
func (l *Library) Add(name string, p *plugin.Plugin) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.plugins[name] = p
}

// Get returns the plugin registered under name.
func (l *Library) Get(name string) (*plugin.Plugin, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.plugins[name]
	return p, ok
}

// Names returns the registered plugin names in sorted order.
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.plugins))
	for name := range l.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded plugins.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.plugins)
}
