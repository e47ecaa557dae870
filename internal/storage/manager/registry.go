package manager

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/leengari/stripetable/internal/domain/table"
	"github.com/leengari/stripetable/internal/storage/loader"
	"github.com/leengari/stripetable/internal/storage/marshal"
	"github.com/leengari/stripetable/internal/storage/metadata"
	"github.com/leengari/stripetable/internal/storage/writer"
)

// Registry manages stored tables under a base directory in a thread-safe way.
// Every table lives in its own directory named after the table.
type Registry struct {
	mu       sync.RWMutex
	loaded   map[string]*table.Table
	basePath string
	format   marshal.Format
	opts     marshal.Options
}

// NewRegistry creates a registry that stores new tables in format
func NewRegistry(basePath string, format marshal.Format, opts marshal.Options) *Registry {
	return &Registry{
		loaded:   make(map[string]*table.Table),
		basePath: basePath,
		format:   format,
		opts:     opts,
	}
}

// BasePath returns the directory holding the tables
func (r *Registry) BasePath() string { return r.basePath }

func (r *Registry) dir(name string) string {
	return filepath.Join(r.basePath, name)
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// Create stores t under name and keeps it loaded
func (r *Registry) Create(name string, t *table.Table) error {
	if err := validName(name); err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("cannot create table '%s': nil table", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loaded[name]; ok {
		return fmt.Errorf("table '%s' already exists (loaded)", name)
	}
	if _, err := os.Stat(r.dir(name)); !os.IsNotExist(err) {
		return fmt.Errorf("table '%s' already exists", name)
	}

	t.SetName(name)
	if _, err := writer.SaveTable(t, r.dir(name), r.format, r.opts); err != nil {
		return err
	}
	r.loaded[name] = t
	return nil
}

// Get loads a table (or returns the cached one)
func (r *Registry) Get(name string) (*table.Table, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	r.mu.RLock()
	t, ok := r.loaded[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.loaded[name]; ok {
		return t, nil
	}
	t, _, err := loader.LoadTable(r.dir(name), r.opts)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("table '%s' does not exist", name)
		}
		return nil, err
	}
	r.loaded[name] = t
	return t, nil
}

// Meta reads the stored metadata without loading the data
func (r *Registry) Meta(name string) (metadata.TableMeta, error) {
	if err := validName(name); err != nil {
		return metadata.TableMeta{}, err
	}
	return metadata.Read(r.dir(name))
}

// Save writes a loaded table back in the registry format
func (r *Registry) Save(name string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.loaded[name]
	if !ok {
		return fmt.Errorf("table '%s' is not loaded", name)
	}
	_, err := writer.SaveTable(t, r.dir(name), r.format, r.opts)
	return err
}

// SaveAll saves every loaded table. Failures are logged and returned together.
func (r *Registry) SaveAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for name, t := range r.loaded {
		if _, err := writer.SaveTable(t, r.dir(name), r.format, r.opts); err != nil {
			slog.Error("failed to save table", "name", name, "error", err)
			errs = append(errs, fmt.Errorf("table %s: %w", name, err))
		}
	}
	return stderrors.Join(errs...)
}

// Drop unloads and deletes a table
func (r *Registry) Drop(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.loaded, name)
	dir := r.dir(name)
	if _, err := metadata.Read(dir); err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("table '%s' does not exist", name)
		}
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove table directory: %w", err)
	}
	slog.Info("Table dropped", slog.String("table", name))
	return nil
}

// Rename saves, unloads and renames a table
func (r *Registry) Rename(oldName, newName string) error {
	if err := validName(oldName); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.dir(oldName)); os.IsNotExist(err) {
		return fmt.Errorf("table '%s' does not exist", oldName)
	}
	if _, err := os.Stat(r.dir(newName)); !os.IsNotExist(err) {
		return fmt.Errorf("table '%s' already exists", newName)
	}

	t, ok := r.loaded[oldName]
	if !ok {
		var err error
		if t, _, err = loader.LoadTable(r.dir(oldName), r.opts); err != nil {
			return fmt.Errorf("failed to load table before rename: %w", err)
		}
	}
	if err := os.Rename(r.dir(oldName), r.dir(newName)); err != nil {
		return fmt.Errorf("failed to rename table directory: %w", err)
	}
	delete(r.loaded, oldName)

	t.SetName(newName)
	if _, err := writer.SaveTable(t, r.dir(newName), r.format, r.opts); err != nil {
		return fmt.Errorf("failed to save table after rename: %w", err)
	}
	r.loaded[newName] = t
	return nil
}

// List returns the names of all stored tables, sorted
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.basePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.basePath, e.Name(), metadata.FileName)); err == nil {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}
