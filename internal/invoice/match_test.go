package invoice

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestMatchSingle(t *testing.T) {
	got, err := Match("12345", []string{"12345_jan.pdf", "67890_jan.pdf", "notes.txt"}, ".pdf")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if got != "12345_jan.pdf" {
		t.Errorf("got %q, want %q", got, "12345_jan.pdf")
	}
}

func TestMatchCaseInsensitiveExtension(t *testing.T) {
	got, err := Match("12345", []string{"12345_jan.PDF"}, ".pdf")
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if got != "12345_jan.PDF" {
		t.Errorf("got %q, want %q", got, "12345_jan.PDF")
	}
}

func TestMatchNotFound(t *testing.T) {
	cases := []struct {
		name      string
		filenames []string
	}{
		{"empty directory", nil},
		{"no prefix match", []string{"99999_jan.pdf"}},
		{"prefix without separator", []string{"123456.pdf"}},
		{"wrong extension", []string{"12345_jan.txt"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Match("12345", tc.filenames, ".pdf")
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
			if nf.Account != "12345" {
				t.Errorf("error names account %q, want 12345", nf.Account)
			}
		})
	}
}

func TestMatchAmbiguous(t *testing.T) {
	_, err := Match("12345", []string{"12345_jan.pdf", "12345_feb.pdf"}, ".pdf")
	var amb *AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %v", amb.Candidates)
	}
}

func TestDirListerSnapshotsPlainFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"12345_jan.pdf", "67890_jan.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := DirLister{Dir: dir}.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	sort.Strings(got)
	want := []string{"12345_jan.pdf", "67890_jan.pdf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDirListerMissingDirectory(t *testing.T) {
	_, err := DirLister{Dir: filepath.Join(t.TempDir(), "nope")}.List()
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
