// Package scanner provides a random-access cursor over an immutable PDF
// byte buffer, with snapshot/restore support for grammar backtracking.
package scanner

import (
	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
)

// PDF whitespace characters
const (
	NullChar           = '\000'
	TabChar            = '\t'
	LineFeedChar       = '\n'
	FormFeedChar       = '\f'
	CarriageReturnChar = '\r'
	SpaceChar          = ' '
)

// PDF delimiters
const (
	LeftParen   = '('
	RightParen  = ')'
	LeftAngle   = '<'
	RightAngle  = '>'
	LeftSquare  = '['
	RightSquare = ']'
	LeftCurly   = '{'
	RightCurly  = '}'
	Solidus     = '/'
	PercentSign = '%'
)

// IsWhitespace checks if a character is PDF whitespace
func IsWhitespace(ch byte) bool {
	return ch == NullChar || ch == TabChar || ch == LineFeedChar ||
		ch == FormFeedChar || ch == CarriageReturnChar || ch == SpaceChar
}

// IsNewline checks if a character is an end-of-line marker
func IsNewline(ch byte) bool {
	return ch == LineFeedChar || ch == CarriageReturnChar
}

// IsDelimiter checks if a character is a PDF delimiter
func IsDelimiter(ch byte) bool {
	return ch == LeftParen || ch == RightParen || ch == LeftAngle || ch == RightAngle ||
		ch == LeftSquare || ch == RightSquare || ch == LeftCurly || ch == RightCurly ||
		ch == Solidus || ch == PercentSign
}

// IsRegular checks if a character is a regular character (not whitespace or delimiter)
func IsRegular(ch byte) bool {
	return !IsWhitespace(ch) && !IsDelimiter(ch)
}

// IsDigit checks for an ASCII decimal digit
func IsDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Scanner is a position cursor over an immutable byte buffer. It is not safe
// for concurrent use; callers that share one must serialize access.
type Scanner struct {
	data []byte
	pos  int
}

// New creates a scanner positioned at the start of data
func New(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Bytes returns the underlying buffer
func (s *Scanner) Bytes() []byte {
	return s.data
}

// Len returns the buffer length
func (s *Scanner) Len() int {
	return len(s.data)
}

// Pos returns the current cursor position
func (s *Scanner) Pos() int {
	return s.pos
}

// AtEnd reports whether the cursor is at or past the end of the buffer
func (s *Scanner) AtEnd() bool {
	return s.pos >= len(s.data)
}

// Advance moves the cursor n bytes forward. Landing exactly on the end of the
// buffer is allowed; going past it is not.
func (s *Scanner) Advance(n int) error {
	if n < 0 || s.pos+n > len(s.data) {
		return pdferrors.OutOfBounds(s.pos+n, len(s.data))
	}
	s.pos += n
	return nil
}

// Peek returns the byte under the cursor without consuming it
func (s *Scanner) Peek() (byte, bool) {
	if s.AtEnd() {
		return 0, false
	}
	return s.data[s.pos], true
}

// PeekAt returns the byte at cursor+offset without consuming anything
func (s *Scanner) PeekAt(offset int) (byte, bool) {
	i := s.pos + offset
	if i < 0 || i >= len(s.data) {
		return 0, false
	}
	return s.data[i], true
}

// PeekBytes returns up to n bytes without consuming them. It truncates at
// the end of the buffer instead of failing.
func (s *Scanner) PeekBytes(n int) []byte {
	if s.AtEnd() || n <= 0 {
		return nil
	}
	end := s.pos + n
	if end > len(s.data) {
		end = len(s.data)
	}
	return s.data[s.pos:end]
}

// Byte consumes and returns one byte
func (s *Scanner) Byte() (byte, error) {
	if s.AtEnd() {
		return 0, pdferrors.OutOfBounds(s.pos+1, len(s.data))
	}
	ch := s.data[s.pos]
	s.pos++
	return ch, nil
}

// ConsumeBytes consumes exactly n bytes and returns them
func (s *Scanner) ConsumeBytes(n int) ([]byte, error) {
	start := s.pos
	if err := s.Advance(n); err != nil {
		return nil, err
	}
	return s.data[start:s.pos], nil
}

// Seek moves the cursor to an absolute position inside the buffer
func (s *Scanner) Seek(pos int) error {
	if pos < 0 || pos >= len(s.data) {
		return pdferrors.OutOfBounds(pos, len(s.data))
	}
	s.pos = pos
	return nil
}

// SkipWhitespace consumes NUL, TAB, LF, FF, CR and SPACE
func (s *Scanner) SkipWhitespace() {
	for s.pos < len(s.data) && IsWhitespace(s.data[s.pos]) {
		s.pos++
	}
}

// SkipNewline consumes LF and CR only
func (s *Scanner) SkipNewline() {
	for s.pos < len(s.data) && IsNewline(s.data[s.pos]) {
		s.pos++
	}
}

// Expect consumes literal if the upcoming bytes equal it exactly, and
// otherwise fails with a MalformedToken carrying what was found.
func (s *Scanner) Expect(literal string) error {
	found := s.PeekBytes(len(literal))
	if string(found) != literal {
		return pdferrors.Malformed(literal, s.pos, found)
	}
	s.pos += len(literal)
	return nil
}

// HasPrefix reports whether the upcoming bytes start with literal
func (s *Scanner) HasPrefix(literal string) bool {
	return string(s.PeekBytes(len(literal))) == literal
}

// Try runs fn with a snapshot of the cursor. On failure the cursor is
// restored and ok is false; on success the new cursor is kept.
func Try[T any](s *Scanner, fn func() (T, error)) (value T, ok bool) {
	value, err := Attempt(s, fn)
	return value, err == nil
}

// Attempt is Try for callers that need to inspect why the alternative failed.
// The cursor is restored whenever err is non-nil.
func Attempt[T any](s *Scanner, fn func() (T, error)) (T, error) {
	mark := s.pos
	value, err := fn()
	if err != nil {
		s.pos = mark
		var zero T
		return zero, err
	}
	return value, nil
}

// Restore moves the cursor back to a position previously returned by Pos.
// Unlike Seek it accepts the end-of-buffer position.
func (s *Scanner) Restore(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.data) {
		pos = len(s.data)
	}
	s.pos = pos
}
