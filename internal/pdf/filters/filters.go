// Package filters decodes stream payloads according to the Filter entry of
// the stream dictionary.
package filters

import (
	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// Decoder is a single named stream filter
type Decoder interface {
	Decode(data []byte, params *object.Dictionary) ([]byte, error)
	Name() string
}

// Options selects how much of the filter set is decoded
type Options struct {
	// Extended enables real decoders for ASCIIHexDecode, ASCII85Decode,
	// LZWDecode, RunLengthDecode and CCITTFaxDecode, and PNG/TIFF predictors
	// on FlateDecode and LZWDecode. Without it those filters yield no data.
	Extended bool
	// MaxDecodedSize caps FlateDecode output per stream; zero means
	// DefaultMaxDecodedSize
	MaxDecodedSize int64
}

// Placeholders are filters that are recognized but not decoded by default.
// A stream using one yields empty content instead of an error.
var Placeholders = []string{
	"ASCIIHexDecode",
	"ASCII85Decode",
	"LZWDecode",
	"RunLengthDecode",
	"CCITTFaxDecode",
	"JBIG2Decode",
	"DCTDecode",
	"JPXDecode",
	"Crypt",
}

var placeholderSet = func() map[string]bool {
	m := make(map[string]bool, len(Placeholders))
	for _, name := range Placeholders {
		m[name] = true
	}
	return m
}()

// extendedRegistry holds the decoders enabled by Options.Extended
var extendedRegistry = map[string]Decoder{
	"ASCIIHexDecode":  &ASCIIHexDecoder{},
	"ASCII85Decode":   &ASCII85Decoder{},
	"LZWDecode":       &LZWDecoder{},
	"RunLengthDecode": &RunLengthDecoder{},
	"CCITTFaxDecode":  &CCITTFaxDecoder{},
}

// Lookup returns the decoder for name. A nil decoder with a nil error means
// the filter is a placeholder.
func Lookup(name string, opts Options) (Decoder, error) {
	if name == "FlateDecode" {
		return &FlateDecoder{Predictors: opts.Extended, Limit: opts.MaxDecodedSize}, nil
	}
	if opts.Extended {
		if dec, ok := extendedRegistry[name]; ok {
			return dec, nil
		}
	}
	if placeholderSet[name] {
		return nil, nil
	}
	return nil, pdferrors.Newf(pdferrors.ErrorTypeUnknownFilter, "unknown filter /%s", name)
}

// Decode runs raw through every filter named by dict's Filter entry, in
// order. With no Filter the payload is returned unchanged. Every name is
// checked before any decoding starts, so an unknown filter always fails
// even when it follows a placeholder.
func Decode(dict *object.Dictionary, raw []byte, opts Options) ([]byte, error) {
	names, err := filterNames(dict)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return raw, nil
	}

	decoders := make([]Decoder, len(names))
	for i, name := range names {
		if decoders[i], err = Lookup(name, opts); err != nil {
			return nil, err
		}
	}

	data := raw
	for i, dec := range decoders {
		if dec == nil {
			return []byte{}, nil
		}
		data, err = dec.Decode(data, decodeParms(dict, i))
		if err != nil {
			return nil, pdferrors.Newf(pdferrors.ErrorTypeFilterFailed, "/%s: %v", dec.Name(), err)
		}
	}
	return data, nil
}

// DecodeStream decodes s in place, setting Data and Decoded
func DecodeStream(s *object.Stream, opts Options) error {
	data, err := Decode(s.Dict, s.Raw, opts)
	if err != nil {
		return err
	}
	s.Data = data
	s.Decoded = true
	return nil
}

func filterNames(dict *object.Dictionary) ([]string, error) {
	if dict == nil {
		return nil, nil
	}
	switch f := dict.Get("Filter").(type) {
	case object.Null:
		return nil, nil
	case object.Name:
		return []string{string(f)}, nil
	case object.Array:
		names := make([]string, 0, len(f))
		for _, elem := range f {
			n, ok := elem.(object.Name)
			if !ok {
				return nil, pdferrors.Newf(pdferrors.ErrorTypeUnknownFilter, "filter array holds a %s", elem.Kind())
			}
			names = append(names, string(n))
		}
		return names, nil
	default:
		return nil, pdferrors.Newf(pdferrors.ErrorTypeUnknownFilter, "Filter is a %s, not a name", f.Kind())
	}
}

// decodeParms returns the parameter dictionary for the i-th filter. DecodeParms
// is either one dictionary (single filter) or an array parallel to Filter.
func decodeParms(dict *object.Dictionary, i int) *object.Dictionary {
	switch p := dict.Get("DecodeParms").(type) {
	case *object.Dictionary:
		if i == 0 {
			return p
		}
	case object.Array:
		if d, ok := p.Get(i).(*object.Dictionary); ok {
			return d
		}
	}
	return nil
}

func intParam(params *object.Dictionary, key string, def int) int {
	if params == nil {
		return def
	}
	if n, ok := params.GetNumber(key); ok {
		return n.Int()
	}
	return def
}

func boolParam(params *object.Dictionary, key string, def bool) bool {
	if params == nil {
		return def
	}
	if b, ok := params.Get(key).(object.Bool); ok {
		return bool(b)
	}
	return def
}
