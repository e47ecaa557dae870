package marshal

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a serialisation format
type Format string

const (
	CSV  Format = "csv"
	XML  Format = "xml"
	JSON Format = "json"
	YAML Format = "yaml"
	Text Format = "text"
	XLSX Format = "xlsx"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{CSV, XML, JSON, YAML, Text, XLSX}
}

// ParseFormat accepts a format name or a common alias, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return CSV, nil
	case "xml":
		return XML, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "text", "txt", "tsv":
		return Text, nil
	case "xlsx", "excel":
		return XLSX, nil
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("cannot infer format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Ext is the file extension used when storing the format, without the dot
func (f Format) Ext() string {
	if f == Text {
		return "tsv"
	}
	return string(f)
}

func (f Format) String() string { return string(f) }
