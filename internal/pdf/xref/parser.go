// Package xref locates and reads the cross-reference table and trailer of a
// PDF file. Only a single classic xref block is supported; /Prev chains and
// cross-reference streams are not followed.
package xref

import (
	"bytes"
	"strconv"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/parser"
	"github.com/a3tai/pdfgraph/internal/pdf/scanner"
)

// DefaultWindow is how many trailing bytes FindXRef searches for startxref
const DefaultWindow = 50

const startXRefKeyword = "startxref"

// Location is the result of FindXRef
type Location struct {
	// StartXRef is the offset of the "startxref" keyword itself
	StartXRef int `json:"startxref"`
	// XRefOffset is the byte offset it names
	XRefOffset int `json:"xref_offset"`
}

// FindXRef scans backward from the end of the buffer for
// "startxref" EOL+ digits. The keyword must begin within the last window
// bytes.
func FindXRef(s *scanner.Scanner, window int) (Location, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	data := s.Bytes()
	n := len(data)

	for i := n - 1; i >= 0 && n-i <= window; i-- {
		if data[i] != 's' || !bytes.HasPrefix(data[i:], []byte(startXRefKeyword)) {
			continue
		}
		if offset, ok := startXRefValue(data[i+len(startXRefKeyword):]); ok {
			return Location{StartXRef: i, XRefOffset: offset}, nil
		}
	}
	return Location{}, pdferrors.Newf(pdferrors.ErrorTypeXRefNotFound,
		"startxref not found in the last %d bytes", window)
}

// startXRefValue parses [\r\n]+ digits+
func startXRefValue(rest []byte) (int, bool) {
	i := 0
	for i < len(rest) && scanner.IsNewline(rest[i]) {
		i++
	}
	if i == 0 {
		return 0, false
	}
	start := i
	for i < len(rest) && scanner.IsDigit(rest[i]) {
		i++
	}
	if i == start {
		return 0, false
	}
	offset, err := strconv.Atoi(string(rest[start:i]))
	if err != nil {
		return 0, false
	}
	return offset, true
}

// entrySize is the fixed width of one xref entry line
const entrySize = 20

// ReadXRef reads the xref block at offset. It returns the subsections in
// scan order and the cursor position after the last one, which is where the
// trailer is expected.
func ReadXRef(p *parser.Parser, offset int) ([]Subsection, int, error) {
	s := p.Scanner()
	if err := s.Seek(offset); err != nil {
		return nil, 0, err
	}
	if err := s.Expect("xref"); err != nil {
		return nil, 0, err
	}
	s.SkipWhitespace()

	var sections []Subsection
	for {
		header, ok := scanner.Try(s, func() ([2]int, error) { return readHeader(p) })
		if !ok {
			break
		}
		firstID, count := header[0], header[1]

		sec := Subsection{FirstID: firstID, Entries: make([]Entry, 0, min(count, (s.Len()-s.Pos())/entrySize))}
		for i := 0; i < count; i++ {
			e, err := readEntry(p)
			if err != nil {
				return nil, 0, err
			}
			sec.Entries = append(sec.Entries, e)
		}
		sections = append(sections, sec)
	}
	return sections, s.Pos(), nil
}

// readHeader parses "firstId count" followed by whitespace
func readHeader(p *parser.Parser) ([2]int, error) {
	first, err := p.Uint()
	if err != nil {
		return [2]int{}, err
	}
	if err := whitespace(p.Scanner()); err != nil {
		return [2]int{}, err
	}
	count, err := p.Uint()
	if err != nil {
		return [2]int{}, err
	}
	if err := whitespace(p.Scanner()); err != nil {
		return [2]int{}, err
	}
	return [2]int{first, count}, nil
}

// readEntry parses "offset generation n|f" and any trailing whitespace
func readEntry(p *parser.Parser) (Entry, error) {
	s := p.Scanner()
	offset, err := p.Uint()
	if err != nil {
		return Entry{}, err
	}
	if err := whitespace(s); err != nil {
		return Entry{}, err
	}
	gen, err := p.Uint()
	if err != nil {
		return Entry{}, err
	}
	if err := whitespace(s); err != nil {
		return Entry{}, err
	}

	pos := s.Pos()
	marker, err := s.Byte()
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Offset: offset, Generation: gen}
	switch marker {
	case 'n':
		e.Type = EntryInUse
	case 'f':
		e.Type = EntryFree
	default:
		return Entry{}, pdferrors.Malformed("n|f", pos, []byte{marker})
	}
	s.SkipWhitespace()
	return e, nil
}

func whitespace(s *scanner.Scanner) error {
	ch, ok := s.Peek()
	if !ok || !scanner.IsWhitespace(ch) {
		return pdferrors.Malformed("whitespace", s.Pos(), s.PeekBytes(1))
	}
	s.SkipWhitespace()
	return nil
}

// GetTrailer reads "trailer <<...>>" at offset
func GetTrailer(p *parser.Parser, offset int) (*object.Dictionary, error) {
	s := p.Scanner()
	if err := s.Seek(offset); err != nil {
		return nil, err
	}
	if err := s.Expect("trailer"); err != nil {
		return nil, err
	}
	s.SkipWhitespace()
	return p.Dictionary()
}
