package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/filters"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/pdftest"
)

func TestOpen_TwoPages(t *testing.T) {
	doc, err := Open(pdftest.Pages("BT (a) Tj ET", "q Q"))
	require.NoError(t, err)

	assert.Equal(t, Version{Major: 1, Minor: 4}, doc.Version())
	assert.Equal(t, "Catalog", doc.Catalog().GetName("Type"))
	assert.Equal(t, 7, doc.XRef().Len())
	assert.Equal(t, 6, doc.XRef().InUseCount())

	pages := doc.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, object.Reference{ID: 3}, pages[0].Reference())
	assert.Equal(t, object.Reference{ID: 5}, pages[1].Reference())
	assert.Equal(t, "BT (a) Tj ET", string(pages[0].RawContent()))
	assert.Equal(t, "q Q", string(pages[1].RawContent()))
	assert.Equal(t, "Page", pages[0].Dictionary().GetName("Type"))

	instructions, err := pages[0].Contents()
	require.NoError(t, err)
	require.Len(t, instructions, 3)
	assert.Equal(t, "BT", instructions[0].Operator)
	assert.Equal(t, "Tj", instructions[1].Operator)
	assert.Equal(t, []object.Value{object.String("a")}, instructions[1].Operands)
	assert.Equal(t, "ET", instructions[2].Operator)
}

func TestOpen_BreadthFirstOrder(t *testing.T) {
	// 2 -> [3 (Pages), 4 (Page)], 3 -> [5 (Page)]
	// depth-first would yield 5, 4; breadth-first yields 4, 5
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[3 0 R 4 0 R]/Count 2>>").
		Object(3, "<</Type/Pages/Parent 2 0 R/Kids[5 0 R]/Count 1>>").
		Object(4, "<</Type/Page/Parent 2 0 R/Contents 6 0 R>>").
		Object(5, "<</Type/Page/Parent 3 0 R/Contents 7 0 R>>").
		Stream(6, "", []byte("(shallow) Tj")).
		Stream(7, "", []byte("(deep) Tj")).
		Build(1)

	doc, err := Open(data)
	require.NoError(t, err)

	pages := doc.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, 4, pages[0].Reference().ID)
	assert.Equal(t, 5, pages[1].Reference().ID)
	assert.Equal(t, "(shallow) Tj", string(pages[0].RawContent()))
	assert.Equal(t, "(deep) Tj", string(pages[1].RawContent()))
}

func TestOpen_EmptyPageTree(t *testing.T) {
	doc, err := Open(pdftest.Pages())
	require.NoError(t, err)
	assert.Empty(t, doc.Pages())
}

func TestOpen_Version(t *testing.T) {
	b := pdftest.New()
	b.Version = "2.0"
	b.Object(1, "<</Type/Catalog/Pages 2 0 R>>").Object(2, "<</Type/Pages/Kids[]>>")

	doc, err := Open(b.Build(1))
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2, Minor: 0}, doc.Version())
	assert.Equal(t, "2.0", doc.Version().String())
}

func TestOpen_InvalidHeader(t *testing.T) {
	valid := pdftest.Pages("q Q")

	tests := []struct {
		name string
		old  string
		new  string
	}{
		{"wrong signature", "%PDF-1.4", "%FDP-1.4"},
		{"no comment", "%PDF-1.4", "PDF-1.4 "},
		{"missing minor", "%PDF-1.4", "%PDF-1.x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Replace(valid, []byte(tt.old), []byte(tt.new), 1)
			_, err := Open(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, pdferrors.ErrInvalidHeader), "got %v", err)
		})
	}
}

func TestOpen_XRefNotFound(t *testing.T) {
	data := bytes.Replace(pdftest.Pages("q Q"), []byte("startxref"), []byte("startxrex"), 1)
	_, err := Open(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrXRefNotFound))
}

func TestOpen_XRefCountOutOfRange(t *testing.T) {
	data := bytes.Replace(pdftest.Pages("q Q"), []byte("xref\n0 5\n"), []byte("xref\n0 99999999999999999\n"), 1)
	require.Contains(t, string(data), "0 99999999999999999")

	var err error
	assert.NotPanics(t, func() { _, err = Open(data) })
	assert.Error(t, err)
}

func TestOpen_XRefWindow(t *testing.T) {
	// Trailing garbage pushes startxref out of a small window
	data := append(pdftest.Pages("q Q"), bytes.Repeat([]byte("\n"), 100)...)

	_, err := Open(data, WithXRefWindow(50))
	assert.True(t, errors.Is(err, pdferrors.ErrXRefNotFound))

	doc, err := Open(data, WithXRefWindow(200))
	require.NoError(t, err)
	assert.Len(t, doc.Pages(), 1)
}

func TestOpen_CatalogInvalid(t *testing.T) {
	tests := []struct {
		name string
		root string
	}{
		{"wrong type", "<</Type/Pages/Kids[]>>"},
		{"missing type", "<</Pages 2 0 R>>"},
		{"not a dictionary", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := pdftest.New().
				Object(1, tt.root).
				Object(2, "<</Type/Pages/Kids[]>>").
				Build(1)
			_, err := Open(data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, pdferrors.ErrCatalogInvalid), "got %v", err)
		})
	}
}

func TestOpen_RootNotInXRef(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[]>>").
		Build(9)
	_, err := Open(data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrUnresolvedReference))
}

func TestOpen_PageTreeCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		objects map[int]string
	}{
		{
			name: "unknown node type",
			objects: map[int]string{
				2: "<</Type/Pages/Kids[3 0 R]>>",
				3: "<</Type/Template/Contents 4 0 R>>",
			},
		},
		{
			name: "pages without kids",
			objects: map[int]string{
				2: "<</Type/Pages/Count 0>>",
			},
		},
		{
			name: "page without contents",
			objects: map[int]string{
				2: "<</Type/Pages/Kids[3 0 R]>>",
				3: "<</Type/Page>>",
			},
		},
		{
			name: "kid is not a dictionary",
			objects: map[int]string{
				2: "<</Type/Pages/Kids[3 0 R]>>",
				3: "(page)",
			},
		},
		{
			name: "contents is not a stream",
			objects: map[int]string{
				2: "<</Type/Pages/Kids[3 0 R]>>",
				3: "<</Type/Page/Contents 4 0 R>>",
				4: "<</Length 0>>",
			},
		},
		{
			name: "cycle back to root",
			objects: map[int]string{
				2: "<</Type/Pages/Kids[3 0 R]>>",
				3: "<</Type/Pages/Kids[2 0 R]>>",
			},
		},
		{
			name: "kid listed twice",
			objects: map[int]string{
				2: "<</Type/Pages/Kids[3 0 R 3 0 R]>>",
				3: "<</Type/Page/Contents 4 0 R>>",
				4: "<</Length 0>>\nstream\n\nendstream",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := pdftest.New().Object(1, "<</Type/Catalog/Pages 2 0 R>>")
			for id, body := range tt.objects {
				b.Object(id, body)
			}
			_, err := Open(b.Build(1))
			require.Error(t, err)
			assert.True(t, errors.Is(err, pdferrors.ErrPageTreeCorrupt), "got %v", err)
		})
	}
}

func TestOpen_InlineKid(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[<</Type/Page/Contents 3 0 R>>]>>").
		Stream(3, "", []byte("q Q")).
		Build(1)

	doc, err := Open(data)
	require.NoError(t, err)
	require.Len(t, doc.Pages(), 1)
	assert.Equal(t, object.Reference{}, doc.Pages()[0].Reference())
	assert.Equal(t, "q Q", string(doc.Pages()[0].RawContent()))
}

func TestOpen_ContentsArray(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[3 0 R]>>").
		Object(3, "<</Type/Page/Contents[4 0 R 5 0 R]>>").
		Stream(4, "", []byte("q")).
		FlateStream(5, "", []byte("Q")).
		Build(1)

	doc, err := Open(data)
	require.NoError(t, err)
	page := doc.Pages()[0]
	assert.Equal(t, "q\nQ", string(page.RawContent()))

	instructions, err := page.Contents()
	require.NoError(t, err)
	require.Len(t, instructions, 2)
	assert.Equal(t, "q", instructions[0].Operator)
	assert.Equal(t, "Q", instructions[1].Operator)
}

func TestOpen_IndirectLength(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[3 0 R]>>").
		Object(3, "<</Type/Page/Contents 4 0 R>>").
		Object(4, "<</Length 5 0 R>>\nstream\n0 0 m\nendstream").
		Object(5, "5").
		Build(1)

	doc, err := Open(data)
	require.NoError(t, err)
	assert.Equal(t, "0 0 m", string(doc.Pages()[0].RawContent()))
}

func TestOpen_Filters(t *testing.T) {
	build := func(filter string, data []byte) []byte {
		return pdftest.New().
			Object(1, "<</Type/Catalog/Pages 2 0 R>>").
			Object(2, "<</Type/Pages/Kids[3 0 R]>>").
			Object(3, "<</Type/Page/Contents 4 0 R>>").
			Stream(4, filter, data).
			Build(1)
	}

	t.Run("unknown filter fails assembly", func(t *testing.T) {
		_, err := Open(build("/Filter/BogusDecode", []byte("q Q")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, pdferrors.ErrUnknownFilter))
	})

	t.Run("placeholder yields empty content", func(t *testing.T) {
		doc, err := Open(build("/Filter/DCTDecode", []byte{0xff, 0xd8, 0xff}))
		require.NoError(t, err)
		page := doc.Pages()[0]
		assert.Empty(t, page.RawContent())
		instructions, err := page.Contents()
		require.NoError(t, err)
		assert.Empty(t, instructions)
	})

	t.Run("ASCIIHex is a placeholder by default", func(t *testing.T) {
		doc, err := Open(build("/Filter/ASCIIHexDecode", []byte("712051>")))
		require.NoError(t, err)
		assert.Empty(t, doc.Pages()[0].RawContent())
	})

	t.Run("ASCIIHex decodes in extended mode", func(t *testing.T) {
		doc, err := Open(build("/Filter/ASCIIHexDecode", []byte("712051>")),
			WithFilterOptions(filters.Options{Extended: true}))
		require.NoError(t, err)
		assert.Equal(t, "q Q", string(doc.Pages()[0].RawContent()))
	})

	t.Run("corrupt flate fails assembly", func(t *testing.T) {
		_, err := Open(build("/Filter/FlateDecode", []byte("not zlib")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, pdferrors.ErrFilterFailed))
	})
}

func TestPage_ContentsMemoized(t *testing.T) {
	doc, err := Open(pdftest.Pages("1 0 0 1 72 720 cm"))
	require.NoError(t, err)
	page := doc.Pages()[0]

	first, err := page.Contents()
	require.NoError(t, err)
	second, err := page.Contents()
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.True(t, &first[0] == &second[0], "second call must return the cached slice")
}

func TestPage_ContentsErrorCached(t *testing.T) {
	doc, err := Open(pdftest.Pages("q ??? Q"))
	require.NoError(t, err, "content is not tokenized during assembly")
	page := doc.Pages()[0]

	_, first := page.Contents()
	_, second := page.Contents()
	require.Error(t, first)
	assert.True(t, errors.Is(first, pdferrors.ErrInvalidToken))
	assert.Same(t, first, second)
}

func TestDocument_Resolve(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[]>>").
		Object(4, "[1 2 3]").
		Build(1)

	doc, err := Open(data)
	require.NoError(t, err)

	v, err := doc.Resolve(object.Reference{ID: 4})
	require.NoError(t, err)
	assert.Equal(t, object.Array{object.Number(1), object.Number(2), object.Number(3)}, v)

	again, err := doc.Resolve(object.Reference{ID: 4})
	require.NoError(t, err)
	assert.Equal(t, v, again)

	_, err = doc.Resolve(object.Reference{ID: 3})
	assert.True(t, errors.Is(err, pdferrors.ErrUnresolvedReference), "free entry")

	_, err = doc.Resolve(object.Reference{ID: 40})
	assert.True(t, errors.Is(err, pdferrors.ErrUnresolvedReference), "missing entry")
}

func TestDocument_Objects(t *testing.T) {
	doc, err := Open(pdftest.Pages("q Q"))
	require.NoError(t, err)

	objects, err := doc.Objects()
	require.NoError(t, err)
	require.Len(t, objects, 4)

	stream, ok := objects[4].(*object.Stream)
	require.True(t, ok)
	assert.True(t, stream.Decoded)
	assert.Equal(t, "q Q", string(stream.Data))
	assert.NotEqual(t, stream.Raw, stream.Data)
}

func TestDocument_Accessors(t *testing.T) {
	data := pdftest.Pages("q Q")
	doc, err := Open(data)
	require.NoError(t, err)

	loc := doc.StartXRef()
	assert.Equal(t, bytes.LastIndex(data, []byte("startxref")), loc.StartXRef)
	assert.Equal(t, bytes.LastIndex(data, []byte("xref\n0 ")), loc.XRefOffset)

	size, ok := doc.Trailer().GetNumber("Size")
	require.True(t, ok)
	assert.Equal(t, 5, size.Int())
}

func TestOpen_StrictGenerations(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[3 1 R]>>").
		Object(3, "<</Type/Page/Contents 4 0 R>>").
		Stream(4, "", []byte("q Q")).
		Build(1)

	doc, err := Open(data)
	require.NoError(t, err, "generations are not checked by default")
	assert.Len(t, doc.Pages(), 1)

	_, err = Open(data, WithStrictGenerations())
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrUnresolvedReference))
}

func TestOpen_MaxDepth(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R/Deep [[[[1]]]]>>").
		Object(2, "<</Type/Pages/Kids[]>>").
		Build(1)

	_, err := Open(data)
	require.NoError(t, err)

	_, err = Open(data, WithMaxDepth(3))
	require.Error(t, err)
}

func TestOpenContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := OpenContext(ctx, pdftest.Pages("q Q"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrCanceled))
}

type recordingTracer struct {
	states []State
	hits   []string
}

func (r *recordingTracer) Step(state State, format string, args ...any) {
	r.states = append(r.states, state)
}

func (r *recordingTracer) Hit(kind string, offset int) {
	r.hits = append(r.hits, fmt.Sprintf("%s@%d", kind, offset))
}

func TestOpen_Tracer(t *testing.T) {
	tracer := &recordingTracer{}
	_, err := Open(pdftest.Pages("q Q", "Q"), WithTracer(tracer))
	require.NoError(t, err)

	assert.Equal(t, []State{
		StateVersionRead,
		StateXRefLocated,
		StateXRefRead,
		StateTrailerRead,
		StateXRefMerged,
		StateCatalogResolved,
		StatePagesWalked,
		StateReady,
	}, tracer.states)
	// catalog, pages root, two pages and two content streams
	assert.Len(t, tracer.hits, 6)
	assert.Contains(t, tracer.hits[0], "dictionary@")
}

func TestOpen_TracerStopsAtFailure(t *testing.T) {
	tracer := &recordingTracer{}
	data := bytes.Replace(pdftest.Pages("q Q"), []byte("/Type/Catalog"), []byte("/Type/Katalog"), 1)

	_, err := Open(data, WithTracer(tracer))
	require.Error(t, err)
	assert.Equal(t, StateXRefMerged, tracer.states[len(tracer.states)-1])
	assert.Contains(t, err.Error(), "xref-merged -> catalog-resolved")
}

func TestLogTracer(t *testing.T) {
	var buf bytes.Buffer
	_, err := Open(pdftest.Pages("q Q"), WithTracer(NewLogTracer(log.New(&buf, "", 0))))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[version-read] PDF version 1.4\n")
	assert.Contains(t, out, "[ready] 1 pages\n")
	assert.Contains(t, out, "  read stream at #")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "unknown", State(99).String())
}
