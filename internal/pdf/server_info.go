package pdf

import (
	"time"
)

const (
	serverInfoFileLimit = 100
	serverInfoScanLimit = 5 * time.Second
)

// Tools lists the operations exposed by the MCP server
func Tools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "pdf_structure",
			Description: "Summarize the object graph: version, xref, trailer and page tree",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_page_content",
			Description: "List the content-stream instructions of one page",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"page (required): 1-based page number, limit (optional): maximum instructions",
		},
		{
			Name:        "pdf_object",
			Description: "Resolve one indirect object by id and generation",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"id (required): object number, generation (optional): generation number",
		},
		{
			Name:        "pdf_objects",
			Description: "List every in-use object with its kind and offset",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_inflate",
			Description: "FlateDecode a raw byte range of a file",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"offset (required): first byte, length (required): number of bytes",
		},
		{
			Name:        "pdf_crosscheck",
			Description: "Compare the page count with pdfcpu and ledongthuc/pdf",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_search_directory",
			Description: "Search for PDF files in a directory with optional fuzzy search",
			Parameters: "directory (optional): Directory path to search (uses default if empty), " +
				"query (optional): Search query for fuzzy matching",
		},
		{
			Name:        "pdf_server_info",
			Description: "Get server information, available tools and PDF files in the default directory",
			Parameters:  "none",
		},
	}
}

// PDFServerInfo describes the server and lists up to a hundred PDF files in
// the default directory. A slow or failing directory scan yields an empty
// listing.
func (s *Service) PDFServerInfo(serverName, version string) *PDFServerInfoResult {
	dir := s.pathValidator.GetConfiguredDirectory()

	resultChan := make(chan []FileInfo, 1)
	go func() {
		files, err := s.search.FindPDFsInDirectoryLimited(dir, serverInfoFileLimit)
		if err != nil {
			files = nil
		}
		resultChan <- files
	}()

	var contents []FileInfo
	select {
	case contents = <-resultChan:
	case <-time.After(serverInfoScanLimit):
	}
	if contents == nil {
		contents = []FileInfo{}
	}

	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		MaxFileSize:       s.maxFileSize,
		ExtendedFilters:   s.extended,
		Cache:             s.CacheStats(),
		AvailableTools:    Tools(),
		DirectoryContents: contents,
	}
}
