package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Search finds candidate PDF files below a directory
type Search struct {
	reader *Reader
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{reader: NewReader(maxFileSize)}
}

// SearchDirectory walks req.Directory and returns PDF files whose names
// match req.Query. Hidden directories are skipped.
func (s *Search) SearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	files, dir, err := s.walk(req.Directory, strings.ToLower(strings.TrimSpace(req.Query)), 0)
	if err != nil {
		return nil, err
	}
	return &PDFSearchDirectoryResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   dir,
		SearchQuery: req.Query,
	}, nil
}

// FindPDFsInDirectoryLimited returns at most limit PDF files from directory
func (s *Search) FindPDFsInDirectoryLimited(directory string, limit int) ([]FileInfo, error) {
	files, _, err := s.walk(directory, "", limit)
	return files, err
}

func (s *Search) walk(directory, query string, limit int) ([]FileInfo, string, error) {
	if directory == "" {
		return nil, "", fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve directory path: %w", err)
	}

	var pdfFiles []FileInfo
	err = filepath.WalkDir(absDirectory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absDirectory {
				return filepath.SkipDir
			}
			return nil
		}
		if limit > 0 && len(pdfFiles) >= limit {
			return filepath.SkipAll
		}
		if !isPDFFile(d.Name()) || !matchesQuery(d.Name(), query) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr
		}
		if err := s.reader.validateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // skip invalid files
		}

		pdfFiles = append(pdfFiles, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(pdfFiles, func(i, j int) bool { return pdfFiles[i].Path < pdfFiles[j].Path })
	return pdfFiles, absDirectory, nil
}

// matchesQuery performs fuzzy matching on the filename. query must already
// be lower-cased.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	fileName := strings.ToLower(filename)
	if strings.Contains(fileName, query) {
		return true
	}

	words := splitIntoWords(strings.TrimSuffix(fileName, ".pdf"))
	for _, queryWord := range splitIntoWords(query) {
		found := false
		for _, word := range words {
			if strings.Contains(word, queryWord) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitIntoWords splits a string on common filename separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
