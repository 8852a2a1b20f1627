// Package crosscheck compares the page count found by the object-graph
// reader with the counts reported by independent PDF libraries.
package crosscheck

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Library names a reference reader
type Library string

const (
	LibraryPDFCPU     Library = "pdfcpu"
	LibraryLedongthuc Library = "ledongthuc"
)

// Counter reports how many pages a reference library finds in a buffer
type Counter interface {
	Library() Library
	PageCount(data []byte) (int, error)
}

// Result is one library's answer
type Result struct {
	Library Library `json:"library"`
	Pages   int     `json:"pages"`
	Match   bool    `json:"match"`
	Error   string  `json:"error,omitempty"`
}

// Report collects every library's answer next to the expected count.
// Agree is true when every library that succeeded matched.
type Report struct {
	Pages   int      `json:"pages"`
	Results []Result `json:"results"`
	Agree   bool     `json:"agree"`
}

// Default returns the reference readers in a stable order
func Default() []Counter {
	return []Counter{PDFCPU{}, Ledongthuc{}}
}

// Compare runs every counter against data. Library failures are recorded in
// the report rather than returned; only cancellation is an error.
func Compare(ctx context.Context, data []byte, pages int, counters ...Counter) (*Report, error) {
	if len(counters) == 0 {
		counters = Default()
	}

	report := &Report{Pages: pages, Agree: true}
	for _, c := range counters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := Result{Library: c.Library()}
		n, err := safeCount(c, data)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Pages = n
			res.Match = n == pages
			if !res.Match {
				report.Agree = false
			}
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// safeCount turns a panic inside a third-party reader into an error
func safeCount(c Counter, data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", c.Library(), r)
		}
	}()
	return c.PageCount(data)
}

// PDFCPU counts pages with pdfcpu in relaxed validation mode
type PDFCPU struct{}

func (PDFCPU) Library() Library { return LibraryPDFCPU }

func (PDFCPU) PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// Ledongthuc counts pages with ledongthuc/pdf
type Ledongthuc struct{}

func (Ledongthuc) Library() Library { return LibraryLedongthuc }

func (Ledongthuc) PageCount(data []byte) (int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r.NumPage(), nil
}
