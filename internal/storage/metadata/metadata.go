package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// FileName is the metadata file inside every table directory
const FileName = "meta.json"

// TableMeta describes a stored table
type TableMeta struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Format       string    `json:"format"`
	DataFile     string    `json:"data_file"`
	RowCount     int       `json:"row_count"`
	ColumnCount  int       `json:"column_count"`
	ColumnTitles bool      `json:"column_titles"`
	RowTitles    bool      `json:"row_titles"`
	Delimiter    string    `json:"delimiter,omitempty"`
	Quote        string    `json:"quote,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// Read loads meta.json from dir
func Read(dir string) (TableMeta, error) {
	var meta TableMeta
	b, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse %s in %s: %w", FileName, dir, err)
	}
	return meta, nil
}

// Encode renders meta as indented JSON
func Encode(meta TableMeta) ([]byte, error) {
	return json.MarshalIndent(meta, "", "  ")
}

// WriteAtomic writes data to path through a temp file and a rename, so
// readers never see a half-written file
func WriteAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", filepath.Base(tmpPath), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp → %s: %w", filepath.Base(path), err)
	}
	return nil
}
