package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdfgraph/internal/config"
	"github.com/a3tai/pdfgraph/internal/mcp"
	"github.com/a3tai/pdfgraph/internal/pdf"
)

var (
	version   = "dev"     // set by build flags
	buildTime = "unknown" // set by build flags
	gitCommit = "unknown" // set by build flags
)

// setupLogging configures the standard logger for the server mode. stdout
// carries the protocol in stdio mode, so logs go to stderr and only when
// debugging.
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// runServerMode runs the SSE server until a signal arrives
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) error {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()
		if err := <-serverErrCh; err != nil {
			return fmt.Errorf("server shutdown with error: %w", err)
		}
	case err := <-serverErrCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Println("Server stopped successfully")
	return nil
}

// runStdioMode serves until the parent process closes stdin
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server) error {
	return server.Run(ctx)
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory, cfg.ServiceOptions(log.Default())...)
	if err != nil {
		return fmt.Errorf("failed to create PDF service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server)
	}
	return runStdioMode(ctx, cancel, server)
}

func main() {
	err := run(os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "pdfgraph: %v\n", err)
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "pdfgraph\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
