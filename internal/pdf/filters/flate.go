package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// DefaultMaxDecodedSize bounds the output of a single FlateDecode pass
const DefaultMaxDecodedSize = 1 << 30

// FlateDecoder implements zlib decompression
type FlateDecoder struct {
	// Predictors enables DecodeParms Predictor handling
	Predictors bool
	// Limit caps the decompressed size; zero means DefaultMaxDecodedSize
	Limit int64
}

func (f *FlateDecoder) Name() string {
	return "FlateDecode"
}

func (f *FlateDecoder) Decode(data []byte, params *object.Dictionary) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib header: %w", err)
	}
	defer reader.Close()

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultMaxDecodedSize
	}
	decoded, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, fmt.Errorf("flate decode error: %w", err)
	}
	if int64(len(decoded)) > limit {
		return nil, fmt.Errorf("decoded data exceeds %d bytes", limit)
	}

	if f.Predictors {
		return applyPredictor(decoded, params)
	}
	return decoded, nil
}

// Inflate decompresses a zlib payload without looking at any dictionary.
// Output beyond limit bytes fails; a limit of zero means
// DefaultMaxDecodedSize.
func Inflate(data []byte, limit int64) ([]byte, error) {
	out, err := (&FlateDecoder{Limit: limit}).Decode(data, nil)
	if err != nil {
		return nil, pdferrors.New(pdferrors.ErrorTypeFilterFailed, err.Error())
	}
	return out, nil
}

func applyPredictor(data []byte, params *object.Dictionary) ([]byte, error) {
	predictor := intParam(params, "Predictor", 1)
	if predictor <= 1 {
		return data, nil
	}
	columns := intParam(params, "Columns", 1)
	bitsPerComponent := intParam(params, "BitsPerComponent", 8)
	colors := intParam(params, "Colors", 1)
	if len(data) == 0 {
		return data, nil
	}
	if !rowFits(len(data), columns, colors, bitsPerComponent) {
		return nil, fmt.Errorf("invalid predictor parameters: columns=%d colors=%d bpc=%d", columns, colors, bitsPerComponent)
	}

	switch {
	case predictor == 2:
		return applyTIFFPredictor(data, columns, bitsPerComponent, colors)
	case predictor >= 10 && predictor <= 15:
		return applyPNGPredictor(data, columns, bitsPerComponent, colors)
	default:
		return nil, fmt.Errorf("unknown predictor %d", predictor)
	}
}

// rowFits reports whether one row of columns*colors*bpc bits is positive and
// no longer than n bytes. Each product is checked by division so no step
// overflows.
func rowFits(n, columns, colors, bitsPerComponent int) bool {
	if columns < 1 || colors < 1 || bitsPerComponent < 1 {
		return false
	}
	bits := n * 8
	if colors > bits/bitsPerComponent {
		return false
	}
	pixelBits := colors * bitsPerComponent
	return columns <= bits/pixelBits
}

func applyTIFFPredictor(data []byte, columns, bitsPerComponent, colors int) ([]byte, error) {
	if bitsPerComponent != 8 {
		return nil, fmt.Errorf("TIFF predictor only supports 8 bits per component")
	}

	rowSize := columns * colors
	if len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data length %d not multiple of row size %d", len(data), rowSize)
	}

	result := make([]byte, len(data))
	copy(result, data)
	for rowStart := 0; rowStart < len(result); rowStart += rowSize {
		for i := colors; i < rowSize; i++ {
			result[rowStart+i] += result[rowStart+i-colors]
		}
	}
	return result, nil
}

// applyPNGPredictor undoes per-row PNG filtering. Each row carries its own
// filter type byte, so Predictor 10 through 15 all decode the same way.
func applyPNGPredictor(data []byte, columns, bitsPerComponent, colors int) ([]byte, error) {
	bytesPerPixel := (bitsPerComponent*colors + 7) / 8
	rowSize := (columns*bitsPerComponent*colors + 7) / 8
	stride := rowSize + 1

	if len(data)%stride != 0 {
		return nil, fmt.Errorf("data length %d not multiple of row size %d", len(data), stride)
	}

	rows := len(data) / stride
	result := make([]byte, rows*rowSize)
	prev := make([]byte, rowSize)

	for row := 0; row < rows; row++ {
		src := data[row*stride+1 : (row+1)*stride]
		cur := result[row*rowSize : (row+1)*rowSize]
		copy(cur, src)

		switch kind := data[row*stride]; kind {
		case 0:
		case 1: // Sub
			for i := bytesPerPixel; i < rowSize; i++ {
				cur[i] += cur[i-bytesPerPixel]
			}
		case 2: // Up
			for i := 0; i < rowSize; i++ {
				cur[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowSize; i++ {
				var left int
				if i >= bytesPerPixel {
					left = int(cur[i-bytesPerPixel])
				}
				cur[i] += byte((left + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowSize; i++ {
				var left, upLeft byte
				if i >= bytesPerPixel {
					left = cur[i-bytesPerPixel]
					upLeft = prev[i-bytesPerPixel]
				}
				cur[i] += paeth(left, prev[i], upLeft)
			}
		default:
			return nil, fmt.Errorf("unknown PNG filter type %d in row %d", kind, row)
		}
		prev = cur
	}
	return result, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
