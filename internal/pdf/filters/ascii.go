package filters

import (
	"bytes"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"

	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// ASCIIHexDecoder implements ASCII hex decoding
type ASCIIHexDecoder struct{}

func (a *ASCIIHexDecoder) Name() string {
	return "ASCIIHexDecode"
}

// Decode ignores whitespace, stops at the '>' EOD marker and pads an odd
// trailing digit with zero.
func (a *ASCIIHexDecoder) Decode(data []byte, _ *object.Dictionary) ([]byte, error) {
	digits := make([]byte, 0, len(data))
	for _, ch := range data {
		if ch == '>' {
			break
		}
		switch ch {
		case ' ', '\t', '\n', '\r', '\f', 0:
			continue
		}
		digits = append(digits, ch)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	out := make([]byte, hex.DecodedLen(len(digits)))
	if _, err := hex.Decode(out, digits); err != nil {
		return nil, fmt.Errorf("invalid hex data: %w", err)
	}
	return out, nil
}

// ASCII85Decoder implements base-85 decoding
type ASCII85Decoder struct{}

func (a *ASCII85Decoder) Name() string {
	return "ASCII85Decode"
}

// Decode accepts an optional "<~" prefix and stops at the "~>" EOD marker.
func (a *ASCII85Decoder) Decode(data []byte, _ *object.Dictionary) ([]byte, error) {
	data = bytes.TrimLeft(data, " \t\r\n\f\x00")
	data = bytes.TrimPrefix(data, []byte("<~"))
	if end := bytes.Index(data, []byte("~>")); end >= 0 {
		data = data[:end]
	}

	out := make([]byte, 4*len(data)+4)
	n, _, err := ascii85.Decode(out, data, true)
	if err != nil {
		return nil, fmt.Errorf("invalid ascii85 data: %w", err)
	}
	return out[:n], nil
}
