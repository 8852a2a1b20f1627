// Command pdfdump prints the object graph of a single PDF file.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/a3tai/pdfgraph/internal/config"
	"github.com/a3tai/pdfgraph/internal/pdf"
	"github.com/a3tai/pdfgraph/internal/pdf/document"
)

type options struct {
	format     string
	extended   bool
	trace      bool
	strict     bool
	xrefWindow int
	offset     int
	length     int
	limit      int
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pdfdump: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flags := pflag.NewFlagSet("pdfdump", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.StringVar(&opts.format, "format", "text", "Output format: text, json")
	flags.BoolVar(&opts.extended, "extended", false, "Decode every supported filter, not just FlateDecode")
	flags.BoolVar(&opts.trace, "trace", false, "Trace parser states and object reads to stderr")
	flags.BoolVar(&opts.strict, "strict", false, "Reject objects whose generation differs from the reference")
	flags.IntVar(&opts.xrefWindow, "xrefwindow", 0, "Trailing bytes searched for startxref (0 for the default)")
	flags.IntVar(&opts.offset, "offset", 0, "inflate: offset of the first byte")
	flags.IntVar(&opts.length, "length", 0, "inflate: number of bytes")
	flags.IntVar(&opts.limit, "limit", 0, "page: maximum instructions to print")
	flags.Usage = func() { printUsage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		return err
	}
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	if flags.NArg() < 2 {
		flags.Usage()
		return fmt.Errorf("command and PDF file path required")
	}

	command, path := flags.Arg(0), flags.Arg(1)
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	svc, err := pdf.NewService(config.DefaultMaxFileSize, filepath.Dir(abs), serviceOptions(opts, stderr)...)
	if err != nil {
		return err
	}

	result, err := dispatch(ctx, svc, command, abs, flags.Args()[2:], opts)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printText(stdout, result)
	return nil
}

func serviceOptions(opts options, stderr io.Writer) []pdf.ServiceOption {
	var docOpts []document.Option
	if opts.trace {
		docOpts = append(docOpts, document.WithTracer(document.NewLogTracer(log.New(stderr, "", 0))))
	}
	if opts.strict {
		docOpts = append(docOpts, document.WithStrictGenerations())
	}
	if opts.xrefWindow > 0 {
		docOpts = append(docOpts, document.WithXRefWindow(opts.xrefWindow))
	}
	return []pdf.ServiceOption{
		pdf.WithExtendedFilters(opts.extended),
		pdf.WithDocumentOptions(docOpts...),
	}
}

func dispatch(ctx context.Context, svc *pdf.Service, command, path string, rest []string, opts options) (any, error) {
	switch command {
	case "structure":
		return svc.Structure(ctx, pdf.PDFStructureRequest{Path: path})
	case "objects":
		return svc.Objects(ctx, pdf.PDFObjectsRequest{Path: path})
	case "object":
		ints, err := parseInts(rest, 1, 2)
		if err != nil {
			return nil, fmt.Errorf("object: %w", err)
		}
		req := pdf.PDFObjectRequest{Path: path, ID: ints[0]}
		if len(ints) > 1 {
			req.Generation = ints[1]
		}
		return svc.Object(ctx, req)
	case "page":
		ints, err := parseInts(rest, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("page: %w", err)
		}
		return svc.PageContent(ctx, pdf.PDFPageContentRequest{Path: path, Page: ints[0], Limit: opts.limit})
	case "inflate":
		if opts.length <= 0 {
			return nil, fmt.Errorf("inflate: --length must be positive")
		}
		return svc.Inflate(pdf.PDFInflateRequest{Path: path, Offset: opts.offset, Length: opts.length})
	case "crosscheck":
		return svc.CrossCheck(ctx, pdf.PDFCrossCheckRequest{Path: path})
	default:
		return nil, fmt.Errorf("unknown command %q", command)
	}
}

func parseInts(args []string, lo, hi int) ([]int, error) {
	if len(args) < lo || len(args) > hi {
		return nil, fmt.Errorf("expected %d to %d numeric arguments, got %d", lo, hi, len(args))
	}
	ints := make([]int, len(args))
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		ints[i] = n
	}
	return ints, nil
}

func printText(w io.Writer, result any) {
	switch r := result.(type) {
	case *pdf.PDFStructureResult:
		fmt.Fprintf(w, "version   %s\n", r.Version)
		fmt.Fprintf(w, "startxref %d\n", r.StartXRef)
		fmt.Fprintf(w, "xref      #%d, %d entries, %d in use\n", r.XRefOffset, r.XRefEntries, r.InUseObjects)
		fmt.Fprintf(w, "trailer   %s\n", strings.Join(r.TrailerKeys, " "))
		fmt.Fprintf(w, "catalog   %s\n", r.Catalog)
		fmt.Fprintf(w, "pages     %d\n", r.PageCount)
		for _, p := range r.Pages {
			if p.Error != "" {
				fmt.Fprintf(w, "  %3d %-8s %6dB  error: %s\n", p.Number, p.Object, p.ContentBytes, p.Error)
				continue
			}
			fmt.Fprintf(w, "  %3d %-8s %6dB %5d ops\n", p.Number, p.Object, p.ContentBytes, p.Instructions)
		}
	case *pdf.PDFObjectsResult:
		for _, o := range r.Objects {
			fmt.Fprintf(w, "%5d %d %-10s #%d\n", o.ID, o.Generation, o.Kind, o.Offset)
		}
	case *pdf.PDFObjectResult:
		fmt.Fprintf(w, "%d %d obj\n%s\nendobj\n", r.ID, r.Generation, r.Value)
		if r.Kind == "stream" {
			fmt.Fprintf(w, "\n%s\n", r.Data)
		}
	case *pdf.PDFPageContentResult:
		for _, ins := range r.Instructions {
			if len(ins.Operands) > 0 {
				fmt.Fprintf(w, "%s ", strings.Join(ins.Operands, " "))
			}
			fmt.Fprintln(w, ins.Operator)
		}
		if r.Truncated {
			fmt.Fprintf(w, "%% %d of %d instructions\n", len(r.Instructions), r.TotalInstructions)
		}
	case *pdf.PDFInflateResult:
		io.WriteString(w, r.Data)
	case *pdf.PDFCrossCheckResult:
		fmt.Fprintf(w, "pdfgraph   %d\n", r.Report.Pages)
		for _, res := range r.Report.Results {
			if res.Error != "" {
				fmt.Fprintf(w, "%-10s error: %s\n", res.Library, res.Error)
				continue
			}
			fmt.Fprintf(w, "%-10s %d\n", res.Library, res.Pages)
		}
		fmt.Fprintf(w, "agree      %t\n", r.Report.Agree)
	}
}

func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: pdfdump [options] <command> <file.pdf> [args]\n\n")
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  structure           version, xref, trailer and page summary\n")
	fmt.Fprintf(w, "  objects             every in-use object\n")
	fmt.Fprintf(w, "  object <id> [gen]   one resolved object\n")
	fmt.Fprintf(w, "  page <n>            content-stream instructions of page n\n")
	fmt.Fprintf(w, "  inflate             FlateDecode --length bytes at --offset\n")
	fmt.Fprintf(w, "  crosscheck          compare page count with pdfcpu and ledongthuc/pdf\n\n")
	fmt.Fprintf(w, "Options:\n")
	flags.PrintDefaults()
}
