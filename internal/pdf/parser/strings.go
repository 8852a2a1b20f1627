package parser

import (
	"bytes"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/scanner"
)

// String parses a literal "(...)" or hexadecimal "<...>" string
func (p *Parser) String() (object.String, error) {
	ch, ok := p.s.Peek()
	if !ok {
		return "", pdferrors.OutOfBounds(p.s.Pos()+1, p.s.Len())
	}
	switch ch {
	case scanner.LeftParen:
		return p.LiteralString()
	case scanner.LeftAngle:
		return p.HexString()
	default:
		return "", pdferrors.Malformed("( or <", p.s.Pos(), p.s.PeekBytes(1))
	}
}

// LiteralString parses a balanced-parenthesis string and decodes its escape
// sequences. Octal escapes take one to three octal digits. An empty "()" is
// rejected.
func (p *Parser) LiteralString() (object.String, error) {
	start := p.s.Pos()
	if err := p.s.Expect("("); err != nil {
		return "", err
	}
	if p.s.HasPrefix(")") {
		return "", pdferrors.Malformed("string content", start, []byte("()"))
	}

	var buffer bytes.Buffer
	depth := 1
	for {
		ch, err := p.s.Byte()
		if err != nil {
			return "", pdferrors.Malformed(")", start, p.s.Bytes()[start:min(start+16, p.s.Len())])
		}

		switch ch {
		case scanner.LeftParen:
			depth++
			buffer.WriteByte(ch)
		case scanner.RightParen:
			depth--
			if depth == 0 {
				return object.String(buffer.String()), nil
			}
			buffer.WriteByte(ch)
		case '\\':
			if err := p.escape(&buffer); err != nil {
				return "", pdferrors.Malformed(")", start, p.s.Bytes()[start:min(start+16, p.s.Len())])
			}
		default:
			buffer.WriteByte(ch)
		}
	}
}

func (p *Parser) escape(buffer *bytes.Buffer) error {
	ch, err := p.s.Byte()
	if err != nil {
		return err
	}
	switch ch {
	case 'n':
		buffer.WriteByte('\n')
	case 'r':
		buffer.WriteByte('\r')
	case 't':
		buffer.WriteByte('\t')
	case 'b':
		buffer.WriteByte('\b')
	case 'f':
		buffer.WriteByte('\f')
	case scanner.CarriageReturnChar:
		// line continuation, CRLF counts as one break
		if next, ok := p.s.Peek(); ok && next == scanner.LineFeedChar {
			_ = p.s.Advance(1)
		}
	case scanner.LineFeedChar:
	default:
		if !isOctal(ch) {
			// covers \( \) \\ and unknown escapes, which drop the backslash
			buffer.WriteByte(ch)
			return nil
		}
		code := int(ch - '0')
		for i := 0; i < 2; i++ {
			next, ok := p.s.Peek()
			if !ok || !isOctal(next) {
				break
			}
			_ = p.s.Advance(1)
			code = code*8 + int(next-'0')
		}
		buffer.WriteByte(byte(code))
	}
	return nil
}

func isOctal(ch byte) bool {
	return ch >= '0' && ch <= '7'
}

// HexString parses "<hex digits>" ignoring embedded whitespace. An odd final
// digit is padded with a zero low nibble; "<>" is the empty string.
func (p *Parser) HexString() (object.String, error) {
	start := p.s.Pos()
	if err := p.s.Expect("<"); err != nil {
		return "", err
	}
	if p.s.HasPrefix("<") {
		// "<<" opens a dictionary
		p.s.Restore(start)
		return "", pdferrors.Malformed("hex string", start, []byte("<<"))
	}

	var out []byte
	var hi byte
	half := false
	for {
		ch, err := p.s.Byte()
		if err != nil {
			return "", pdferrors.Malformed(">", start, p.s.Bytes()[start:min(start+16, p.s.Len())])
		}
		if ch == scanner.RightAngle {
			break
		}
		if scanner.IsWhitespace(ch) {
			continue
		}
		nibble, ok := hexValue(ch)
		if !ok {
			return "", pdferrors.Malformed("hex digit", p.s.Pos()-1, []byte{ch})
		}
		if half {
			out = append(out, hi<<4|nibble)
		} else {
			hi = nibble
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return object.String(out), nil
}

func hexValue(ch byte) (byte, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10, true
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10, true
	default:
		return 0, false
	}
}
