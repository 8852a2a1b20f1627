package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSearchFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"annual_report-2023.pdf": "%PDF-1.4",
		"Invoice (march).PDF":    "%PDF-1.4",
		"notes.txt":              "text",
		"empty.pdf":              "",
		"sub/deep.pdf":           "%PDF-1.7",
		".hidden/secret.pdf":     "%PDF-1.4",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestSearch_SearchDirectory(t *testing.T) {
	dir := createSearchFixture(t)
	search := NewSearch(1024)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no query", "", []string{"Invoice (march).PDF", "annual_report-2023.pdf", "deep.pdf"}},
		{"substring", "report", []string{"annual_report-2023.pdf"}},
		{"case insensitive", "INVOICE", []string{"Invoice (march).PDF"}},
		{"words in any order", "2023 annual", []string{"annual_report-2023.pdf"}},
		{"no match", "budget", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := search.SearchDirectory(PDFSearchDirectoryRequest{Directory: dir, Query: tt.query})
			require.NoError(t, err)

			var names []string
			for _, f := range result.Files {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), result.TotalCount)
			assert.Equal(t, tt.query, result.SearchQuery)
		})
	}
}

func TestSearch_Limit(t *testing.T) {
	dir := createSearchFixture(t)
	files, err := NewSearch(1024).FindPDFsInDirectoryLimited(dir, 1)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSearch_Errors(t *testing.T) {
	search := NewSearch(1024)

	if _, err := search.SearchDirectory(PDFSearchDirectoryRequest{}); err == nil {
		t.Error("expected error for empty directory")
	}
	if _, err := search.SearchDirectory(PDFSearchDirectoryRequest{Directory: "/does/not/exist"}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSearch_SkipsOversized(t *testing.T) {
	dir := createSearchFixture(t)
	files, err := NewSearch(4).FindPDFsInDirectoryLimited(dir, 0)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMatchesQuery(t *testing.T) {
	tests := []struct {
		filename string
		query    string
		want     bool
	}{
		{"report.pdf", "", true},
		{"report.pdf", "rep", true},
		{"my_tax-form.pdf", "tax form", true},
		{"my_tax-form.pdf", "tax invoice", false},
		{"Scan (2).pdf", "scan 2", true},
	}
	for _, tt := range tests {
		if got := matchesQuery(tt.filename, tt.query); got != tt.want {
			t.Errorf("matchesQuery(%q, %q) = %v, want %v", tt.filename, tt.query, got, tt.want)
		}
	}
}

func TestService_PDFSearchDirectory(t *testing.T) {
	dir := createSearchFixture(t)
	svc, err := NewService(1024, dir)
	require.NoError(t, err)

	result, err := svc.PDFSearchDirectory(PDFSearchDirectoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalCount)

	_, err = svc.PDFSearchDirectory(PDFSearchDirectoryRequest{Directory: t.TempDir()})
	assert.Error(t, err)
}
