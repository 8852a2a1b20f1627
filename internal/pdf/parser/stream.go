package parser

import (
	"errors"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/scanner"
)

// ParseStream parses "<<dict>> stream EOL bytes endstream". The body is
// taken verbatim using the dictionary's Length, which may be an indirect
// reference resolved through r. Decoding is left to the caller.
func (p *Parser) ParseStream(r Resolver) (*object.Stream, error) {
	dict, err := p.Dictionary()
	if err != nil {
		return nil, err
	}
	p.s.SkipWhitespace()
	if err := p.s.Expect("stream"); err != nil {
		return nil, err
	}
	if err := p.streamEOL(); err != nil {
		return nil, err
	}

	length, err := p.streamLength(dict, r)
	if err != nil {
		return nil, err
	}
	body, err := p.s.ConsumeBytes(length)
	if err != nil {
		return nil, err
	}
	p.s.SkipWhitespace()
	if err := p.s.Expect("endstream"); err != nil {
		return nil, err
	}
	return &object.Stream{Dict: dict, Raw: body, Data: body}, nil
}

// streamEOL accepts CRLF, LF or a lone CR
func (p *Parser) streamEOL() error {
	ch, ok := p.s.Peek()
	switch {
	case ok && ch == scanner.CarriageReturnChar:
		_ = p.s.Advance(1)
		if next, ok := p.s.Peek(); ok && next == scanner.LineFeedChar {
			_ = p.s.Advance(1)
		}
		return nil
	case ok && ch == scanner.LineFeedChar:
		_ = p.s.Advance(1)
		return nil
	default:
		return pdferrors.Malformed("end of line", p.s.Pos(), p.s.PeekBytes(2))
	}
}

func (p *Parser) streamLength(dict *object.Dictionary, r Resolver) (int, error) {
	pos := p.s.Pos()
	switch v := dict.Get("Length").(type) {
	case object.Number:
		if v < 0 || !v.IsInteger() {
			return 0, pdferrors.NewAt(pdferrors.ErrorTypeMalformedToken, pos, "stream Length must be a non-negative integer")
		}
		return v.Int(), nil
	case object.Reference:
		return p.indirectLength(v, r)
	case object.Null:
		return 0, pdferrors.NewAt(pdferrors.ErrorTypeMalformedToken, pos, "stream dictionary has no Length")
	default:
		return 0, pdferrors.NewAt(pdferrors.ErrorTypeMalformedToken, pos,
			"stream Length has unsupported type "+v.Kind().String())
	}
}

// indirectLength jumps to the referenced object and restores the cursor
// afterwards whatever the outcome.
func (p *Parser) indirectLength(ref object.Reference, r Resolver) (int, error) {
	pos := p.s.Pos()
	if r == nil {
		return 0, pdferrors.Newf(pdferrors.ErrorTypeUnresolvedReference, "cannot resolve Length %s without an xref table", ref)
	}
	offset, ok := r.Lookup(ref.ID)
	if !ok {
		return 0, pdferrors.Newf(pdferrors.ErrorTypeUnresolvedReference, "Length %s is not in the xref table", ref)
	}
	if p.pending[ref.ID] {
		return 0, pdferrors.Newf(pdferrors.ErrorTypeUnresolvedReference, "Length %s refers back to itself", ref)
	}
	p.pending[ref.ID] = true
	defer delete(p.pending, ref.ID)
	defer p.s.Restore(pos)

	obj, err := p.ReadIndirectObject(offset, r)
	if err != nil {
		return 0, err
	}
	n, ok := obj.Value.(object.Number)
	if !ok || n < 0 || !n.IsInteger() {
		return 0, pdferrors.NewAt(pdferrors.ErrorTypeMalformedToken, offset,
			"indirect stream Length is not a non-negative integer")
	}
	return n.Int(), nil
}

// ReadIndirectObject seeks to offset and parses "id gen obj value endobj".
// A stream is attempted first; on an ordinary grammar mismatch the body is
// parsed as a plain value instead. Non-grammar failures such as an
// unresolvable Length are returned as-is.
func (p *Parser) ReadIndirectObject(offset int, r Resolver) (*object.IndirectObject, error) {
	if err := p.s.Seek(offset); err != nil {
		return nil, err
	}
	p.s.SkipWhitespace()

	id, err := p.Uint()
	if err != nil {
		return nil, err
	}
	if err := p.requireWhitespace(); err != nil {
		return nil, err
	}
	gen, err := p.Uint()
	if err != nil {
		return nil, err
	}
	if err := p.requireWhitespace(); err != nil {
		return nil, err
	}
	if err := p.Keyword("obj"); err != nil {
		return nil, err
	}
	p.s.SkipWhitespace()

	var val object.Value
	stream, streamErr := scanner.Attempt(p.s, func() (*object.Stream, error) { return p.ParseStream(r) })
	switch {
	case streamErr == nil:
		val = stream
	case !pdferrors.IsBacktrackable(streamErr):
		return nil, streamErr
	default:
		v, err := p.ParseValue()
		if err != nil {
			return nil, farthest(streamErr, err)
		}
		val = v
	}

	p.s.SkipWhitespace()
	if err := p.Keyword("endobj"); err != nil {
		return nil, farthest(streamErr, err)
	}
	return &object.IndirectObject{ID: id, Generation: gen, Value: val}, nil
}

// farthest returns whichever error occurred later in the input.
func farthest(a, b error) error {
	if a == nil {
		return b
	}
	ao, bo := offsetOf(a), offsetOf(b)
	if ao > bo {
		return a
	}
	return b
}

func offsetOf(err error) int {
	var pe *pdferrors.PDFError
	if !errors.As(err, &pe) {
		return -1
	}
	return pe.Offset
}
