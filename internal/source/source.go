// Package source reads raw statistics tables from disk.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/kinderstats/internal/logging"
	"github.com/KaramelBytes/kinderstats/internal/tidy"
)

// Options controls how a table is decoded.
type Options struct {
	// Delimiter for CSV. If 0, ';' is used (tab for .tsv).
	Delimiter rune
	// Encoding of CSV input: "utf-8" (default) or "latin1"/"windows-1252".
	Encoding string
	// XLSX sheet selection; SheetName wins over the 1-based SheetIndex.
	SheetName  string
	SheetIndex int
}

// DefaultOptions matches the regional statistics exports.
func DefaultOptions() Options {
	return Options{Delimiter: ';', Encoding: "utf-8", SheetIndex: 1}
}

// MissingInputError reports a configured input path that does not exist.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input file not found: %s", e.Path)
}

// Is lets callers match with errors.Is(err, fs.ErrNotExist).
func (e *MissingInputError) Is(target error) bool { return target == fs.ErrNotExist }

// Reader decodes one file format into a raw table.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*tidy.RawTable, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates no reader handles the file extension.
var ErrUnsupported = errors.New("unsupported table format")

// Load checks that path exists and decodes it with the first matching reader.
func Load(path string, opt Options) (*tidy.RawTable, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingInputError{Path: path}
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	for _, r := range registry {
		if !r.CanRead(path) {
			continue
		}
		raw, err := r.Read(path, opt)
		if err != nil {
			return nil, err
		}
		if raw.Name == "" {
			raw.Name = filepath.Base(path)
		}
		logging.Logger().Debug("table loaded", "path", path, "rows", len(raw.Rows))
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
}

// Exists reports whether a configured input is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func hasSuffix(path string, exts ...string) bool {
	name := strings.ToLower(path)
	for _, e := range exts {
		if strings.HasSuffix(name, e) {
			return true
		}
	}
	return false
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
