package tagtree

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Loader resolves template names to source text. Unknown names must return
// an error matching ErrTemplateNotFound so the engine can try the next loader.
type Loader interface {
	// Name identifies the loader in logs and errors
	Name() string
	// Load returns the source of the named template
	Load(ctx context.Context, name string) (string, error)
}

// MemoryLoader serves templates from an in-memory map.
// It is safe for concurrent use.
type MemoryLoader struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewMemoryLoader creates a loader seeded with templates, which may be nil
func NewMemoryLoader(templates map[string]string) *MemoryLoader {
	m := &MemoryLoader{templates: make(map[string]string, len(templates))}
	for name, source := range templates {
		m.templates[name] = source
	}
	return m
}

// Name implements Loader
func (m *MemoryLoader) Name() string {
	return LoaderNameMemory
}

// Load implements Loader
func (m *MemoryLoader) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	source, ok := m.templates[name]
	if !ok {
		return "", NewTemplateNotFoundError(name)
	}
	return source, nil
}

// Set stores or replaces a template
func (m *MemoryLoader) Set(name, source string) error {
	if name == "" {
		return NewEmptyTemplateNameError()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[name] = source
	return nil
}

// Delete removes a template
func (m *MemoryLoader) Delete(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.templates, name)
}

// List returns the template names in sorted order
func (m *MemoryLoader) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FileSystemLoader reads templates from files under one or more root
// directories, searched in order. Template names are slash-separated paths
// relative to a root and may not escape it.
type FileSystemLoader struct {
	dirs []string
}

// NewFileSystemLoader creates a loader over dirs
func NewFileSystemLoader(dirs ...string) *FileSystemLoader {
	return &FileSystemLoader{dirs: dirs}
}

// Name implements Loader
func (f *FileSystemLoader) Name() string {
	return LoaderNameFileSystem
}

// Dirs returns the search directories
func (f *FileSystemLoader) Dirs() []string {
	return f.dirs
}

// Load implements Loader
func (f *FileSystemLoader) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" {
		return "", NewEmptyTemplateNameError()
	}
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", NewInvalidTemplateNameError(name)
	}

	for _, dir := range f.dirs {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", NewLoaderError(LoaderNameFileSystem, name, err)
		}
		return string(data), nil
	}
	return "", NewTemplateNotFoundError(name)
}
