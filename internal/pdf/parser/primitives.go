package parser

import (
	"strconv"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/scanner"
)

// Keyword consumes literal and requires it to end at a token boundary, so
// "true" does not match the start of "trueish".
func (p *Parser) Keyword(literal string) error {
	start := p.s.Pos()
	if err := p.s.Expect(literal); err != nil {
		return err
	}
	if ch, ok := p.s.Peek(); ok && scanner.IsRegular(ch) {
		p.s.Restore(start)
		return pdferrors.Malformed(literal, start, p.s.PeekBytes(len(literal)+1))
	}
	return nil
}

// Boolean parses "true" or "false"
func (p *Parser) Boolean() (object.Bool, error) {
	if err := p.Keyword("true"); err == nil {
		return true, nil
	}
	if err := p.Keyword("false"); err != nil {
		return false, pdferrors.Malformed("true|false", p.s.Pos(), p.s.PeekBytes(5))
	}
	return false, nil
}

// Null parses "null"
func (p *Parser) Null() (object.Null, error) {
	if err := p.Keyword("null"); err != nil {
		return object.Null{}, err
	}
	return object.Null{}, nil
}

// Name parses "/name" up to the next whitespace or delimiter. The result
// excludes the slash.
func (p *Parser) Name() (object.Name, error) {
	if err := p.s.Expect("/"); err != nil {
		return "", err
	}
	start := p.s.Pos()
	for {
		ch, ok := p.s.Peek()
		if !ok || !scanner.IsRegular(ch) {
			break
		}
		_ = p.s.Advance(1)
	}
	return object.Name(p.s.Bytes()[start:p.s.Pos()]), nil
}

// Number parses an optionally signed integer or real. A real needs at least
// one digit after the point (".5" is valid); "1." reads as 1 and leaves the
// point unconsumed.
func (p *Parser) Number() (object.Number, error) {
	start := p.s.Pos()
	if ch, ok := p.s.Peek(); ok && (ch == '+' || ch == '-') {
		_ = p.s.Advance(1)
	}
	intDigits := p.skipDigits()

	end := p.s.Pos()
	if ch, ok := p.s.Peek(); ok && ch == '.' {
		if next, ok := p.s.PeekAt(1); ok && scanner.IsDigit(next) {
			_ = p.s.Advance(1)
			p.skipDigits()
			end = p.s.Pos()
		} else if intDigits == 0 {
			return 0, pdferrors.Malformed("number", start, p.s.PeekBytes(2))
		}
	} else if intDigits == 0 {
		p.s.Restore(start)
		return 0, pdferrors.Malformed("number", start, p.s.PeekBytes(1))
	}
	p.s.Restore(end)

	f, err := strconv.ParseFloat(string(p.s.Bytes()[start:end]), 64)
	if err != nil {
		return 0, pdferrors.Malformed("number", start, p.s.Bytes()[start:end])
	}
	return object.Number(f), nil
}

// Uint parses a run of decimal digits as a non-negative integer. Object ids,
// generations and xref fields use this rather than Number.
func (p *Parser) Uint() (int, error) {
	start := p.s.Pos()
	if p.skipDigits() == 0 {
		return 0, pdferrors.Malformed("unsigned integer", start, p.s.PeekBytes(1))
	}
	n, err := strconv.Atoi(string(p.s.Bytes()[start:p.s.Pos()]))
	if err != nil {
		p.s.Restore(start)
		return 0, pdferrors.Malformed("unsigned integer", start, p.s.PeekBytes(12))
	}
	return n, nil
}

func (p *Parser) skipDigits() int {
	n := 0
	for {
		ch, ok := p.s.Peek()
		if !ok || !scanner.IsDigit(ch) {
			return n
		}
		_ = p.s.Advance(1)
		n++
	}
}

// Comment parses "%..." up to, not including, the next end-of-line and
// returns the text after the percent sign.
func (p *Parser) Comment() (string, error) {
	if err := p.s.Expect("%"); err != nil {
		return "", err
	}
	start := p.s.Pos()
	for {
		ch, ok := p.s.Peek()
		if !ok || scanner.IsNewline(ch) {
			break
		}
		_ = p.s.Advance(1)
	}
	return string(p.s.Bytes()[start:p.s.Pos()]), nil
}
