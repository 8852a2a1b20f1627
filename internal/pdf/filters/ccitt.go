package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"

	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// CCITTFaxDecoder implements Group 3 (1-D) and Group 4 fax decoding. The
// output is one bit per pixel, rows padded to a byte, 0 meaning black
// unless BlackIs1 is set.
type CCITTFaxDecoder struct{}

func (c *CCITTFaxDecoder) Name() string {
	return "CCITTFaxDecode"
}

func (c *CCITTFaxDecoder) Decode(data []byte, params *object.Dictionary) ([]byte, error) {
	k := intParam(params, "K", 0)
	columns := intParam(params, "Columns", 1728)
	rows := intParam(params, "Rows", 0)

	var sf ccitt.SubFormat
	switch {
	case k < 0:
		sf = ccitt.Group4
	case k == 0:
		sf = ccitt.Group3
	default:
		return nil, fmt.Errorf("mixed 1-D/2-D encoding (K=%d) is not supported", k)
	}

	height := rows
	if height <= 0 {
		height = ccitt.AutoDetectHeight
	}

	reader := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, height, &ccitt.Options{
		Align:  boolParam(params, "EncodedByteAlign", false),
		Invert: boolParam(params, "BlackIs1", false),
	})

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("CCITT decode error: %w", err)
	}
	return decoded, nil
}
