package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/pdfgraph/internal/config"
	"github.com/a3tai/pdfgraph/internal/pdf"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}
	s.registerTools()

	return s, nil
}

func pathArgument() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Full path to the PDF file"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_structure",
		mcp.WithDescription("Summarize the object graph of a PDF: version, cross-reference table, trailer and page tree"),
		pathArgument(),
	), s.handlePDFStructure)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_page_content",
		mcp.WithDescription("List the content-stream instructions of one page"),
		pathArgument(),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Min(1),
			mcp.Description("1-based page number in page-tree order"),
		),
		mcp.WithNumber("limit",
			mcp.Min(0),
			mcp.Description("Maximum number of instructions to return (0 for all)"),
		),
	), s.handlePDFPageContent)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_object",
		mcp.WithDescription("Resolve one indirect object"),
		pathArgument(),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Min(1),
			mcp.Description("Object number"),
		),
		mcp.WithNumber("generation",
			mcp.Min(0),
			mcp.DefaultNumber(0),
			mcp.Description("Generation number"),
		),
	), s.handlePDFObject)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_objects",
		mcp.WithDescription("List every in-use object with its kind and offset"),
		pathArgument(),
	), s.handlePDFObjects)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_inflate",
		mcp.WithDescription("FlateDecode a raw byte range of a file"),
		pathArgument(),
		mcp.WithNumber("offset", mcp.Required(), mcp.Min(0), mcp.Description("Offset of the first byte")),
		mcp.WithNumber("length", mcp.Required(), mcp.Min(1), mcp.Description("Number of bytes")),
	), s.handlePDFInflate)

	if s.config.CrossCheck {
		s.mcpServer.AddTool(mcp.NewTool(
			"pdf_crosscheck",
			mcp.WithDescription("Compare the page count with pdfcpu and ledongthuc/pdf"),
			pathArgument(),
		), s.handlePDFCrossCheck)
	}

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription("Search for PDF files in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	), s.handlePDFSearchDirectory)

	s.mcpServer.AddTool(mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription("Get server information, available tools and directory contents"),
	), s.handlePDFServerInfo)
}

func (s *Server) handlePDFStructure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Structure(ctx, pdf.PDFStructureRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatStructureResult(result)), nil
}

func (s *Server) handlePDFPageContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PageContent(ctx, pdf.PDFPageContentRequest{
		Path:  path,
		Page:  page,
		Limit: request.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPageContentResult(result)), nil
}

func (s *Server) handlePDFObject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Object(ctx, pdf.PDFObjectRequest{
		Path:       path,
		ID:         id,
		Generation: request.GetInt("generation", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatObjectResult(result)), nil
}

func (s *Server) handlePDFObjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Objects(ctx, pdf.PDFObjectsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatObjectsResult(result)), nil
}

func (s *Server) handlePDFInflate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	offset, err := request.RequireInt("offset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	length, err := request.RequireInt("length")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.Inflate(pdf.PDFInflateRequest{Path: path, Offset: offset, Length: length})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatInflateResult(result)), nil
}

func (s *Server) handlePDFCrossCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.CrossCheck(ctx, pdf.PDFCrossCheckRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCrossCheckResult(result)), nil
}

func (s *Server) handlePDFSearchDirectory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.PDFSearchDirectoryRequest{
		Directory: request.GetString("directory", ""),
		Query:     request.GetString("query", ""),
	}
	result, err := s.pdfService.PDFSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSearchDirectoryResult(result)), nil
}

func (s *Server) handlePDFServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.pdfService.PDFServerInfo(s.config.ServerName, s.config.Version)
	if !s.config.CrossCheck {
		tools := result.AvailableTools[:0]
		for _, tool := range result.AvailableTools {
			if tool.Name != "pdf_crosscheck" {
				tools = append(tools, tool)
			}
		}
		result.AvailableTools = tools
	}
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// Run serves MCP until ctx is canceled or the transport fails
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting pdfgraph in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting pdfgraph SSE server on %s", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
