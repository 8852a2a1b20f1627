package pdf

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/a3tai/pdfgraph/internal/pdf/crosscheck"
	"github.com/a3tai/pdfgraph/internal/pdf/document"
	"github.com/a3tai/pdfgraph/internal/pdf/filters"
	"github.com/a3tai/pdfgraph/internal/pdf/security"
)

// Service reads files from a sandboxed directory and exposes the object
// graph of each one.
type Service struct {
	maxFileSize   int64
	maxDecoded    int64
	timeout       time.Duration
	extended      bool
	docOpts       []document.Option
	counters      []crosscheck.Counter
	reader        *Reader
	search        *Search
	pathValidator *security.PathValidator
	cacheSize     int
	cache         *lruCache[docKey, cachedDoc]
}

// decodedSizeFactor scales the file size limit into the default limit on
// decompressed stream data
const decodedSizeFactor = 10

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithDocumentOptions passes opts to every document.Open
func WithDocumentOptions(opts ...document.Option) ServiceOption {
	return func(s *Service) {
		s.docOpts = append(s.docOpts, opts...)
	}
}

// WithExtendedFilters decodes every supported filter instead of treating
// the non-Flate ones as placeholders
func WithExtendedFilters(enabled bool) ServiceOption {
	return func(s *Service) {
		s.extended = enabled
	}
}

// WithTimeout bounds each document assembly; zero means no limit
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithMaxDecodedSize caps the decompressed size of each Flate stream. The
// default is decodedSizeFactor times the maximum file size.
func WithMaxDecodedSize(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxDecoded = n
		}
	}
}

// WithCacheSize sets how many assembled documents are kept between calls;
// zero disables caching
func WithCacheSize(n int) ServiceOption {
	return func(s *Service) {
		if n >= 0 {
			s.cacheSize = n
		}
	}
}

// WithCounters replaces the reference libraries used by CrossCheck
func WithCounters(counters ...crosscheck.Counter) ServiceOption {
	return func(s *Service) {
		s.counters = counters
	}
}

// NewService creates a new PDF service rooted at configuredDirectory
func NewService(maxFileSize int64, configuredDirectory string, opts ...ServiceOption) (*Service, error) {
	if maxFileSize <= 0 {
		return nil, errors.New("maxFileSize must be greater than 0")
	}
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create path validator")
	}

	s := &Service{
		maxFileSize:   maxFileSize,
		maxDecoded:    maxFileSize * decodedSizeFactor,
		reader:        NewReader(maxFileSize),
		search:        NewSearch(maxFileSize),
		pathValidator: pathValidator,
		cacheSize:     DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newLRUCache[docKey, cachedDoc](s.cacheSize)
	return s, nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// resolvePath confines path to the configured directory. Relative paths are
// taken relative to it.
func (s *Service) resolvePath(path string) (string, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", errors.Wrap(err, "security validation failed")
	}
	return resolved, nil
}

// CacheStats reports document cache usage
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// open reads and assembles the document at path. Documents are cached by
// resolved path, size and modification time.
func (s *Service) open(ctx context.Context, path string) (*document.Document, []byte, os.FileInfo, error) {
	resolved, err := s.resolvePath(path)
	if err != nil {
		return nil, nil, nil, err
	}
	info, err := s.reader.Stat(resolved)
	if err != nil {
		return nil, nil, nil, err
	}
	key := newDocKey(resolved, info)
	if hit, ok := s.cache.Get(key); ok {
		return hit.doc, hit.data, hit.info, nil
	}

	data, info, err := s.reader.ReadFile(resolved)
	if err != nil {
		return nil, nil, nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := append([]document.Option{
		document.WithFilterOptions(filters.Options{Extended: s.extended, MaxDecodedSize: s.maxDecoded}),
	}, s.docOpts...)

	doc, err := document.OpenContext(ctx, data, opts...)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "parsing %s", path)
	}
	s.cache.Put(newDocKey(resolved, info), cachedDoc{doc: doc, data: data, info: info})
	return doc, data, info, nil
}

// Open assembles the document at path
func (s *Service) Open(ctx context.Context, path string) (*document.Document, error) {
	doc, _, _, err := s.open(ctx, path)
	return doc, err
}

// Inflate FlateDecodes a raw byte range of a file
func (s *Service) Inflate(req PDFInflateRequest) (*PDFInflateResult, error) {
	path, err := s.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	raw, err := s.reader.ReadRange(path, req.Offset, req.Length)
	if err != nil {
		return nil, err
	}
	decoded, err := filters.Inflate(raw, s.maxDecoded)
	if err != nil {
		return nil, errors.Wrapf(err, "inflating %d bytes at #%d", req.Length, req.Offset)
	}
	return &PDFInflateResult{
		Path:          req.Path,
		Offset:        req.Offset,
		Length:        req.Length,
		DecodedLength: len(decoded),
		Data:          string(decoded),
	}, nil
}

// CrossCheck compares the page count against the reference libraries
func (s *Service) CrossCheck(ctx context.Context, req PDFCrossCheckRequest) (*PDFCrossCheckResult, error) {
	doc, data, _, err := s.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	report, err := crosscheck.Compare(ctx, data, len(doc.Pages()), s.counters...)
	if err != nil {
		return nil, err
	}
	return &PDFCrossCheckResult{Path: req.Path, Report: report}, nil
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}
	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, errors.Wrap(err, "security validation failed")
	}
	return s.search.SearchDirectory(req)
}
