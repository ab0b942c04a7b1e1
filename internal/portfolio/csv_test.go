package portfolio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amishk599/coldreach/internal/model"
)

func writeCSV(t *testing.T, content string) *CSVStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return Open(path)
}

func TestLoad_ReadsRowsByHeaderName(t *testing.T) {
	s := writeCSV(t, "Links,Notes,Techstack\n"+
		"https://example.com/react,old,\"React, Node.js, MongoDB\"\n"+
		"https://example.com/ml,,Python\n")

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []model.Entry{
		{Techstack: "React, Node.js, MongoDB", Links: "https://example.com/react"},
		{Techstack: "Python", Links: "https://example.com/ml"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_StripsByteOrderMark(t *testing.T) {
	s := writeCSV(t, "\ufeffTechstack,Links\nGo,https://example.com/go\n")

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].Techstack != "Go" {
		t.Errorf("Load = %+v", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope.csv"))
	if _, err := s.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_MissingColumn(t *testing.T) {
	s := writeCSV(t, "Techstack,URL\nGo,https://example.com\n")
	if _, err := s.Load(); !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("Load error = %v, want ErrMissingColumn", err)
	}
}

func TestAppend_IncreasesCountByOneAndPreservesRows(t *testing.T) {
	original := "Techstack,Links\nReact,https://example.com/react\nGo,https://example.com/go\n"
	s := writeCSV(t, original)

	before, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Append(model.Entry{Techstack: "Rust, Tokio", Links: "https://example.com/rust"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	after, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("row count = %d, want %d", len(after), len(before)+1)
	}
	if diff := cmp.Diff(before, after[:len(before)]); diff != "" {
		t.Errorf("prior rows changed (-before +after):\n%s", diff)
	}
	if after[len(after)-1] != (model.Entry{Techstack: "Rust, Tokio", Links: "https://example.com/rust"}) {
		t.Errorf("last row = %+v", after[len(after)-1])
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), original) {
		t.Errorf("existing bytes were rewritten:\n%s", raw)
	}
}

func TestAppend_RepairsMissingTrailingNewline(t *testing.T) {
	s := writeCSV(t, "Techstack,Links\nReact,https://example.com/react")

	if err := s.Append(model.Entry{Techstack: "Go", Links: "https://example.com/go"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
}

func TestAppend_RespectsExistingColumnOrder(t *testing.T) {
	s := writeCSV(t, "Links,Techstack\nhttps://example.com/a,A\n")

	if err := s.Append(model.Entry{Techstack: "B", Links: "https://example.com/b"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[1].Techstack != "B" || got[1].Links != "https://example.com/b" {
		t.Errorf("appended row = %+v", got[1])
	}
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.csv")
	s := Open(path)

	if err := s.Append(model.Entry{Techstack: "Go", Links: "https://example.com/go"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "Techstack,Links\nGo,https://example.com/go\n" {
		t.Errorf("file content = %q", raw)
	}
}

func TestAppend_RejectsBlankFields(t *testing.T) {
	s := writeCSV(t, "Techstack,Links\n")

	tests := []model.Entry{
		{Techstack: "", Links: "https://example.com"},
		{Techstack: "Go", Links: "   "},
	}
	for _, e := range tests {
		if err := s.Append(e); !errors.Is(err, ErrEmptyField) {
			t.Errorf("Append(%+v) error = %v, want ErrEmptyField", e, err)
		}
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}
