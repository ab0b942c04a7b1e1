package portfolio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/amishk599/coldreach/internal/model"
)

// Column names of the portfolio table.
const (
	ColumnTechstack = "Techstack"
	ColumnLinks     = "Links"
)

var (
	// ErrMissingColumn is returned when the CSV header lacks Techstack or Links.
	ErrMissingColumn = errors.New("portfolio csv: missing required column")
	// ErrEmptyField is returned by Append when either field is blank.
	ErrEmptyField = errors.New("portfolio entry: techstack and link are both required")
)

// CSVStore is the CSV-backed portfolio table. Rows are only ever appended.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// Open returns a store for the CSV file at path. The file is not touched until
// the first Load or Append.
func Open(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the location of the CSV file.
func (s *CSVStore) Path() string { return s.path }

// Load reads every row of the table. Columns are located by header name, so
// their order does not matter and extra columns are ignored.
func (s *CSVStore) Load() ([]model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening portfolio %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading portfolio %s: %w", s.path, ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading portfolio header %s: %w", s.path, err)
	}
	techIdx, linkIdx, err := columnIndexes(header)
	if err != nil {
		return nil, fmt.Errorf("reading portfolio %s: %w", s.path, err)
	}

	var entries []model.Entry
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading portfolio %s: %w", s.path, err)
		}
		entries = append(entries, model.Entry{
			Techstack: field(rec, techIdx),
			Links:     field(rec, linkIdx),
		})
	}
	return entries, nil
}

// Count returns the number of data rows in the table.
func (s *CSVStore) Count() (int, error) {
	entries, err := s.Load()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Append adds one row to the end of the table, creating the file with a
// header if it does not exist yet. Existing rows are left untouched.
func (s *CSVStore) Append(e model.Entry) error {
	e.Techstack = strings.TrimSpace(e.Techstack)
	e.Links = strings.TrimSpace(e.Links)
	if e.Techstack == "" || e.Links == "" {
		return ErrEmptyField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.create(e)
	}
	if err != nil {
		return fmt.Errorf("reading portfolio %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(existing)) == 0 {
		return s.create(e)
	}

	header, err := csv.NewReader(bytes.NewReader(existing)).Read()
	if err != nil {
		return fmt.Errorf("reading portfolio header %s: %w", s.path, err)
	}
	techIdx, linkIdx, err := columnIndexes(header)
	if err != nil {
		return fmt.Errorf("appending to portfolio %s: %w", s.path, err)
	}

	row := make([]string, len(header))
	row[techIdx] = e.Techstack
	row[linkIdx] = e.Links

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening portfolio %s for append: %w", s.path, err)
	}
	defer f.Close()

	if existing[len(existing)-1] != '\n' {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("appending to portfolio %s: %w", s.path, err)
		}
	}
	return writeRows(f, s.path, row)
}

func (s *CSVStore) create(e model.Entry) error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating portfolio %s: %w", s.path, err)
	}
	defer f.Close()
	return writeRows(f, s.path, []string{ColumnTechstack, ColumnLinks}, []string{e.Techstack, e.Links})
}

func writeRows(w io.Writer, path string, rows ...[]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing portfolio %s: %w", path, err)
	}
	return nil
}

func columnIndexes(header []string) (techIdx, linkIdx int, err error) {
	techIdx, linkIdx = -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case ColumnTechstack:
			techIdx = i
		case ColumnLinks:
			linkIdx = i
		}
	}
	if techIdx < 0 {
		return 0, 0, fmt.Errorf("%w %q", ErrMissingColumn, ColumnTechstack)
	}
	if linkIdx < 0 {
		return 0, 0, fmt.Errorf("%w %q", ErrMissingColumn, ColumnLinks)
	}
	return techIdx, linkIdx, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
