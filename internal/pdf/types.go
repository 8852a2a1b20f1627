package pdf

import (
	"github.com/a3tai/pdfgraph/internal/pdf/crosscheck"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// PDFStructureRequest asks for the object-graph summary of a file
type PDFStructureRequest struct {
	Path string `json:"path"`
}

// PDFPageContentRequest asks for the tokenized content stream of one page
type PDFPageContentRequest struct {
	Path  string `json:"path"`
	Page  int    `json:"page"`            // 1-based, breadth-first page order
	Limit int    `json:"limit,omitempty"` // 0 means no limit
}

// PDFObjectRequest asks for a single indirect object
type PDFObjectRequest struct {
	Path       string `json:"path"`
	ID         int    `json:"id"`
	Generation int    `json:"generation"`
}

// PDFObjectsRequest asks for every in-use object
type PDFObjectsRequest struct {
	Path string `json:"path"`
}

// PDFInflateRequest asks for a raw byte range to be FlateDecoded
type PDFInflateRequest struct {
	Path   string `json:"path"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
}

// PDFCrossCheckRequest asks for the page count to be compared against
// reference libraries
type PDFCrossCheckRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// Response Types

// PageSummary describes one leaf page
type PageSummary struct {
	Number       int            `json:"number"`
	Object       string         `json:"object,omitempty"` // "id gen R", empty for inline pages
	ContentBytes int            `json:"content_bytes"`
	Instructions int            `json:"instructions"`
	Operators    map[string]int `json:"operators,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// PDFStructureResult is the object-graph summary of a file
type PDFStructureResult struct {
	Path         string        `json:"path"`
	Size         int64         `json:"size"`
	Version      string        `json:"version"`
	StartXRef    int           `json:"startxref"`
	XRefOffset   int           `json:"xref_offset"`
	XRefEntries  int           `json:"xref_entries"`
	InUseObjects int           `json:"in_use_objects"`
	TrailerKeys  []string      `json:"trailer_keys"`
	Catalog      string        `json:"catalog"`
	PageCount    int           `json:"page_count"`
	Pages        []PageSummary `json:"pages"`
}

// InstructionInfo is one content-stream instruction with operands rendered
// in PDF syntax
type InstructionInfo struct {
	Operator string   `json:"operator"`
	Operands []string `json:"operands,omitempty"`
}

// PDFPageContentResult holds a page's instructions
type PDFPageContentResult struct {
	Path              string            `json:"path"`
	Page              int               `json:"page"`
	Object            string            `json:"object,omitempty"`
	ContentBytes      int               `json:"content_bytes"`
	TotalInstructions int               `json:"total_instructions"`
	Instructions      []InstructionInfo `json:"instructions"`
	Truncated         bool              `json:"truncated,omitempty"`
}

// PDFObjectResult is one resolved object
type PDFObjectResult struct {
	Path       string   `json:"path"`
	ID         int      `json:"id"`
	Generation int      `json:"generation"`
	Offset     int      `json:"offset"`
	Kind       string   `json:"kind"`
	Value      string   `json:"value"`
	Filters    []string `json:"filters,omitempty"`
	RawLength  int      `json:"raw_length,omitempty"`
	Data       string   `json:"data,omitempty"` // decoded stream payload
}

// PDFObjectsResult lists every in-use object in id order
type PDFObjectsResult struct {
	Path    string            `json:"path"`
	Objects []PDFObjectResult `json:"objects"`
}

// PDFInflateResult is the decompressed byte range
type PDFInflateResult struct {
	Path          string `json:"path"`
	Offset        int    `json:"offset"`
	Length        int    `json:"length"`
	DecodedLength int    `json:"decoded_length"`
	Data          string `json:"data"`
}

// PDFCrossCheckResult compares this reader with reference libraries
type PDFCrossCheckResult struct {
	Path   string             `json:"path"`
	Report *crosscheck.Report `json:"report"`
}

// PDFSearchDirectoryResult represents the result of a PDF search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// ToolInfo describes an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	ExtendedFilters   bool       `json:"extended_filters"`
	Cache             CacheStats `json:"cache"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
}
