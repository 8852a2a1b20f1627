package filters

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"

	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// LZWDecoder implements LZW decompression. Unlike compress/lzw, the
// hhrutter reader honors EarlyChange.
type LZWDecoder struct{}

func (l *LZWDecoder) Name() string {
	return "LZWDecode"
}

func (l *LZWDecoder) Decode(data []byte, params *object.Dictionary) ([]byte, error) {
	earlyChange := intParam(params, "EarlyChange", 1)

	reader := lzw.NewReader(bytes.NewReader(data), earlyChange == 1)
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("LZW decode error: %w", err)
	}
	return applyPredictor(decoded, params)
}
