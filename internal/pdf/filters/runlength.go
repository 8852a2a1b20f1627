package filters

import (
	"bytes"
	"fmt"

	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// RunLengthDecoder implements run-length decompression
type RunLengthDecoder struct{}

func (r *RunLengthDecoder) Name() string {
	return "RunLengthDecode"
}

func (r *RunLengthDecoder) Decode(data []byte, _ *object.Dictionary) ([]byte, error) {
	var result []byte

	for i := 0; i < len(data); {
		length := int(data[i])
		i++

		switch {
		case length == 128:
			return result, nil
		case length < 128:
			count := length + 1
			if i+count > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes at %d exceeds input", count, i)
			}
			result = append(result, data[i:i+count]...)
			i += count
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("replicate run at %d has no byte", i)
			}
			result = append(result, bytes.Repeat(data[i:i+1], 257-length)...)
			i++
		}
	}
	return result, nil
}
