// Package content tokenizes decoded page content streams into
// operator/operand instructions.
package content

import (
	"bytes"
	"strings"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/parser"
	"github.com/a3tai/pdfgraph/internal/pdf/scanner"
)

// Instruction is one operator together with the operands that preceded it
type Instruction struct {
	Operator string         `json:"operator"`
	Operands []object.Value `json:"-"`
}

// String renders the instruction in content-stream syntax
func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Operator
	}
	parts := make([]string, 0, len(in.Operands)+1)
	for _, op := range in.Operands {
		parts = append(parts, op.String())
	}
	return strings.Join(append(parts, in.Operator), " ")
}

// Parse tokenizes data. Operands accumulate until an operator closes them
// into an instruction. Anything that is neither a valid operand nor a known
// operator fails with InvalidToken.
func Parse(data []byte) ([]Instruction, error) {
	p := parser.NewFromBytes(data)
	s := p.Scanner()

	var program []Instruction
	var operands []object.Value
	for {
		skipFiller(s)
		if s.AtEnd() {
			return program, nil
		}

		if v, ok := scanner.Try(s, p.ParseOperand); ok {
			operands = append(operands, v)
			continue
		}

		op, ok := matchOperator(s)
		if !ok {
			return nil, pdferrors.InvalidToken(s.Pos(), s.PeekBytes(10))
		}
		program = append(program, Instruction{Operator: op, Operands: operands})
		operands = nil

		if op == "ID" {
			data, err := inlineImageData(s)
			if err != nil {
				return nil, err
			}
			operands = []object.Value{object.String(data)}
		}
	}
}

// skipFiller skips whitespace and % comments
func skipFiller(s *scanner.Scanner) {
	for {
		s.SkipWhitespace()
		ch, ok := s.Peek()
		if !ok || ch != scanner.PercentSign {
			return
		}
		for {
			ch, ok := s.Peek()
			if !ok || scanner.IsNewline(ch) {
				break
			}
			_ = s.Advance(1)
		}
	}
}

// matchOperator consumes the longest known operator at the cursor. The
// operator must end at a token boundary.
func matchOperator(s *scanner.Scanner) (string, bool) {
	upcoming := s.PeekBytes(maxOperatorLength + 1)
	for _, op := range operatorTable {
		if !bytes.HasPrefix(upcoming, []byte(op)) {
			continue
		}
		if len(upcoming) > len(op) && scanner.IsRegular(upcoming[len(op)]) {
			continue
		}
		_ = s.Advance(len(op))
		return op, true
	}
	return "", false
}

// inlineImageData consumes the binary payload between "ID" and "EI". One
// whitespace byte follows ID; the payload ends at the whitespace before an
// EI that stands alone as a token. Parse hands the payload to the EI
// instruction as its only operand; ID keeps the image dictionary entries.
func inlineImageData(s *scanner.Scanner) ([]byte, error) {
	start := s.Pos()
	if ch, ok := s.Peek(); ok && scanner.IsWhitespace(ch) {
		_ = s.Advance(1)
	}
	begin := s.Pos()
	data := s.Bytes()

	for i := begin; i+2 <= len(data); i++ {
		if data[i] != 'E' || data[i+1] != 'I' {
			continue
		}
		if i > begin && !scanner.IsWhitespace(data[i-1]) {
			continue
		}
		if i+2 < len(data) && scanner.IsRegular(data[i+2]) {
			continue
		}
		end := i
		if end > begin {
			end--
		}
		if err := s.Advance(i - s.Pos()); err != nil {
			return nil, err
		}
		return data[begin:end], nil
	}
	return nil, pdferrors.InvalidToken(start, s.PeekBytes(10))
}
