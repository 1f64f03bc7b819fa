package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Entry is a single catalog row.
type Entry struct {
	RowIndex int    `json:"row_index"`
	Title    string `json:"title"`
	MovieID  int64  `json:"movie_id,omitempty"`
}

// Catalog is the ordered, read-only list of known titles.
type Catalog struct {
	entries []Entry
}

// New builds a catalog from entries. Each entry's RowIndex must equal its
// position; the matrix is joined on that index.
func New(entries []Entry) (*Catalog, error) {
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		if entry.RowIndex != i {
			return nil, fmt.Errorf("catalog row %d: row_index %d does not match position", i, entry.RowIndex)
		}
		entry.Title = strings.TrimSpace(entry.Title)
		if entry.Title == "" {
			return nil, fmt.Errorf("catalog row %d: empty title", i)
		}
		out[i] = entry
	}
	return &Catalog{entries: out}, nil
}

// FromTitles builds a catalog from titles in order.
func FromTitles(titles ...string) (*Catalog, error) {
	entries := make([]Entry, len(titles))
	for i, title := range titles {
		entries[i] = Entry{RowIndex: i, Title: title}
	}
	return New(entries)
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entry returns row i.
func (c *Catalog) Entry(i int) Entry {
	return c.entries[i]
}

// Title returns the title at row i.
func (c *Catalog) Title(i int) string {
	return c.entries[i].Title
}

// Entries returns a copy of all rows in order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Duplicates returns titles that appear on more than one row, in first-seen order.
func (c *Catalog) Duplicates() []string {
	seen := make(map[string]int, len(c.entries))
	var dups []string
	for _, entry := range c.entries {
		seen[entry.Title]++
		if seen[entry.Title] == 2 {
			dups = append(dups, entry.Title)
		}
	}
	return dups
}

// LoadCatalog reads a catalog file, choosing the decoder by extension.
func LoadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return DecodeCSV(file)
	case ".json":
		return DecodeJSON(file)
	default:
		return nil, fmt.Errorf("catalog %s: unsupported format (want .csv or .json)", path)
	}
}

// DecodeJSON reads a JSON array of catalog entries. Entries without a
// row_index take their position.
func DecodeJSON(r io.Reader) (*Catalog, error) {
	var raw []struct {
		RowIndex *int   `json:"row_index"`
		Title    string `json:"title"`
		MovieID  int64  `json:"movie_id"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	entries := make([]Entry, len(raw))
	for i, item := range raw {
		entries[i] = Entry{RowIndex: i, Title: item.Title, MovieID: item.MovieID}
		if item.RowIndex != nil {
			entries[i].RowIndex = *item.RowIndex
		}
	}
	return New(entries)
}

// DecodeCSV reads a CSV catalog. A header row with a "title" column is
// required; "row_index" and "movie_id" (or "id") columns are optional.
func DecodeCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decode catalog csv: missing header row")
		}
		return nil, fmt.Errorf("decode catalog csv header: %w", err)
	}
	titleCol, indexCol, idCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "title":
			titleCol = i
		case "row_index", "index":
			indexCol = i
		case "movie_id", "id":
			if idCol < 0 {
				idCol = i
			}
		}
	}
	if titleCol < 0 {
		return nil, errors.New("decode catalog csv: header has no title column")
	}

	var entries []Entry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode catalog csv line %d: %w", line, err)
		}
		if titleCol >= len(record) {
			return nil, fmt.Errorf("decode catalog csv line %d: missing title", line)
		}
		entry := Entry{RowIndex: len(entries), Title: record[titleCol]}
		if indexCol >= 0 && indexCol < len(record) {
			value, err := strconv.Atoi(strings.TrimSpace(record[indexCol]))
			if err != nil {
				return nil, fmt.Errorf("decode catalog csv line %d: row_index: %w", line, err)
			}
			if value != len(entries) {
				return nil, fmt.Errorf("decode catalog csv line %d: row_index %d does not match position %d", line, value, len(entries))
			}
		}
		if idCol >= 0 && idCol < len(record) {
			if value := strings.TrimSpace(record[idCol]); value != "" {
				id, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("decode catalog csv line %d: movie_id: %w", line, err)
				}
				entry.MovieID = id
			}
		}
		entries = append(entries, entry)
	}
	return New(entries)
}
