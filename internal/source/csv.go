package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/kinderstats/internal/tidy"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type csvReader struct{}

func (csvReader) CanRead(path string) bool {
	return hasSuffix(path, ".csv", ".tsv", ".txt")
}

func (csvReader) Read(path string, opt Options) (*tidy.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	dec, err := decoderFor(opt.Encoding)
	if err != nil {
		return nil, err
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ';'
		if hasSuffix(path, ".tsv") {
			delim = '\t'
		}
	}
	return ReadCSV(transform.NewReader(f, dec), delim)
}

// ReadCSV parses already-decoded CSV text. The first record is the header and
// the rest become rows.
func ReadCSV(in io.Reader, delim rune) (*tidy.RawTable, error) {
	r := csv.NewReader(in)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input", tidy.ErrMalformedTable)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	raw := &tidy.RawTable{Header: trimAll(header)}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(raw.Rows)+1, err)
		}
		raw.Rows = append(raw.Rows, rec)
	}
	return raw, nil
}

// decoderFor returns a transformer yielding UTF-8. A UTF-8 BOM is dropped;
// UTF-16 input with a BOM is detected as well.
func decoderFor(name string) (transform.Transformer, error) {
	var fallback encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		fallback = unicode.UTF8
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s (use utf-8|latin1|windows-1252)", name)
	}
	return unicode.BOMOverride(fallback.NewDecoder()), nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
