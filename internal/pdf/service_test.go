package pdf

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdfgraph/internal/pdf/crosscheck"
	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/pdftest"
	"github.com/a3tai/pdfgraph/internal/pdf/security"
)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewService(1024*1024, dir, opts...)
	require.NoError(t, err)
	return svc, dir
}

func writePDF(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path, err := pdftest.WriteFile(dir, name, data)
	require.NoError(t, err)
	return path
}

func TestNewService(t *testing.T) {
	_, err := NewService(0, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, "maxFileSize must be greater than 0", err.Error())

	_, err = NewService(1024, "")
	assert.Error(t, err)

	svc, err := NewService(2048, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int64(2048), svc.GetMaxFileSize())
}

func TestService_Structure(t *testing.T) {
	svc, dir := newTestService(t)
	path := writePDF(t, dir, "two.pdf", pdftest.Pages("BT (Hi) Tj ET", "q Q q Q"))

	result, err := svc.Structure(context.Background(), PDFStructureRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "1.4", result.Version)
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, 7, result.XRefEntries)
	assert.Equal(t, 6, result.InUseObjects)
	assert.Equal(t, []string{"Size", "Root"}, result.TrailerKeys)
	assert.Equal(t, "1 0 R", result.Catalog)
	assert.Greater(t, result.XRefOffset, 0)
	assert.Greater(t, result.StartXRef, result.XRefOffset)

	require.Len(t, result.Pages, 2)
	assert.Equal(t, PageSummary{
		Number:       1,
		Object:       "3 0 R",
		ContentBytes: len("BT (Hi) Tj ET"),
		Instructions: 3,
		Operators:    map[string]int{"BT": 1, "Tj": 1, "ET": 1},
	}, result.Pages[0])
	assert.Equal(t, map[string]int{"q": 2, "Q": 2}, result.Pages[1].Operators)
}

func TestService_StructureBadContent(t *testing.T) {
	svc, dir := newTestService(t)
	path := writePDF(t, dir, "bad.pdf", pdftest.Pages("q @@@"))

	result, err := svc.Structure(context.Background(), PDFStructureRequest{Path: path})
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Contains(t, result.Pages[0].Error, "INVALID_TOKEN")
	assert.Zero(t, result.Pages[0].Instructions)
}

func TestService_StructureErrors(t *testing.T) {
	svc, dir := newTestService(t)

	t.Run("outside sandbox", func(t *testing.T) {
		other := writePDF(t, t.TempDir(), "x.pdf", pdftest.Pages("q Q"))
		_, err := svc.Structure(context.Background(), PDFStructureRequest{Path: other})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "security validation failed")
		assert.True(t, errors.Is(err, security.ErrOutsideDirectory))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.Structure(context.Background(), PDFStructureRequest{Path: filepath.Join(dir, "nope.pdf")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("not a pdf", func(t *testing.T) {
		path := writePDF(t, dir, "notes.pdf", []byte("hello"))
		_, err := svc.Structure(context.Background(), PDFStructureRequest{Path: path})
		require.Error(t, err)
		assert.True(t, errors.Is(err, pdferrors.ErrInvalidHeader))
		assert.Contains(t, err.Error(), "parsing "+path)
	})

	t.Run("too large", func(t *testing.T) {
		small, err := NewService(10, dir)
		require.NoError(t, err)
		path := writePDF(t, dir, "big.pdf", pdftest.Pages("q Q"))
		_, err = small.Structure(context.Background(), PDFStructureRequest{Path: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file too large")
	})
}

func TestService_PageContent(t *testing.T) {
	svc, dir := newTestService(t)
	path := writePDF(t, dir, "page.pdf", pdftest.Pages("q", "1 0 0 1 10 20 cm /F1 12 Tf (x) Tj Q"))

	result, err := svc.PageContent(context.Background(), PDFPageContentRequest{Path: path, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, "5 0 R", result.Object)
	assert.Equal(t, 4, result.TotalInstructions)
	assert.False(t, result.Truncated)
	assert.Equal(t, InstructionInfo{
		Operator: "cm",
		Operands: []string{"1", "0", "0", "1", "10", "20"},
	}, result.Instructions[0])
	assert.Equal(t, InstructionInfo{Operator: "Tf", Operands: []string{"/F1", "12"}}, result.Instructions[1])
	assert.Equal(t, InstructionInfo{Operator: "Q"}, result.Instructions[3])

	limited, err := svc.PageContent(context.Background(), PDFPageContentRequest{Path: path, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited.Instructions, 2)
	assert.Equal(t, 4, limited.TotalInstructions)
	assert.True(t, limited.Truncated)

	for _, page := range []int{0, 3} {
		_, err := svc.PageContent(context.Background(), PDFPageContentRequest{Path: path, Page: page})
		assert.Error(t, err, "page %d", page)
	}
}

func TestService_Object(t *testing.T) {
	svc, dir := newTestService(t)
	path := writePDF(t, dir, "obj.pdf", pdftest.Pages("q Q"))

	catalog, err := svc.Object(context.Background(), PDFObjectRequest{Path: path, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "dictionary", catalog.Kind)
	assert.Equal(t, "<</Type /Catalog /Pages 2 0 R>>", catalog.Value)
	assert.Greater(t, catalog.Offset, 0)

	stream, err := svc.Object(context.Background(), PDFObjectRequest{Path: path, ID: 4})
	require.NoError(t, err)
	assert.Equal(t, "stream", stream.Kind)
	assert.Equal(t, []string{"FlateDecode"}, stream.Filters)
	assert.Equal(t, "q Q", stream.Data)
	assert.Equal(t, len(pdftest.Deflate([]byte("q Q"))), stream.RawLength)

	_, err = svc.Object(context.Background(), PDFObjectRequest{Path: path, ID: 99})
	assert.True(t, errors.Is(err, pdferrors.ErrUnresolvedReference))
}

func TestService_Objects(t *testing.T) {
	svc, dir := newTestService(t)
	path := writePDF(t, dir, "all.pdf", pdftest.Pages("q Q", "Q"))

	result, err := svc.Objects(context.Background(), PDFObjectsRequest{Path: path})
	require.NoError(t, err)
	require.Len(t, result.Objects, 6)
	for i, obj := range result.Objects {
		assert.Equal(t, i+1, obj.ID)
	}
	assert.Equal(t, "stream", result.Objects[3].Kind)
}

func TestService_Inflate(t *testing.T) {
	svc, dir := newTestService(t)
	data := pdftest.Pages("BT (inflated) Tj ET")
	path := writePDF(t, dir, "flate.pdf", data)

	compressed := pdftest.Deflate([]byte("BT (inflated) Tj ET"))
	offset := strings.Index(string(data), string(compressed))
	require.Greater(t, offset, 0)

	result, err := svc.Inflate(PDFInflateRequest{Path: path, Offset: offset, Length: len(compressed)})
	require.NoError(t, err)
	assert.Equal(t, "BT (inflated) Tj ET", result.Data)
	assert.Equal(t, len("BT (inflated) Tj ET"), result.DecodedLength)

	_, err = svc.Inflate(PDFInflateRequest{Path: path, Offset: 0, Length: 8})
	assert.True(t, errors.Is(err, pdferrors.ErrFilterFailed), "header bytes are not zlib")

	_, err = svc.Inflate(PDFInflateRequest{Path: path, Offset: len(data) - 2, Length: 10})
	assert.True(t, errors.Is(err, pdferrors.ErrOutOfBounds))
}

func TestService_MaxDecodedSize(t *testing.T) {
	svc, dir := newTestService(t, WithMaxDecodedSize(8))
	data := pdftest.Pages("BT (inflated) Tj ET")
	path := writePDF(t, dir, "bomb.pdf", data)

	compressed := pdftest.Deflate([]byte("BT (inflated) Tj ET"))
	offset := strings.Index(string(data), string(compressed))
	require.Greater(t, offset, 0)

	_, err := svc.Inflate(PDFInflateRequest{Path: path, Offset: offset, Length: len(compressed)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrFilterFailed))
	assert.Contains(t, err.Error(), "exceeds 8 bytes")
}

type stubCounter struct{ pages int }

func (stubCounter) Library() crosscheck.Library { return "stub" }
func (c stubCounter) PageCount([]byte) (int, error) { return c.pages, nil }

func TestService_CrossCheck(t *testing.T) {
	svc, dir := newTestService(t, WithCounters(stubCounter{pages: 2}, stubCounter{pages: 3}))
	path := writePDF(t, dir, "cc.pdf", pdftest.Pages("q Q", "Q"))

	result, err := svc.CrossCheck(context.Background(), PDFCrossCheckRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Report.Pages)
	assert.False(t, result.Report.Agree)
	assert.True(t, result.Report.Results[0].Match)
	assert.False(t, result.Report.Results[1].Match)
}

func TestService_ExtendedFilters(t *testing.T) {
	data := pdftest.New().
		Object(1, "<</Type/Catalog/Pages 2 0 R>>").
		Object(2, "<</Type/Pages/Kids[3 0 R]>>").
		Object(3, "<</Type/Page/Contents 4 0 R>>").
		Stream(4, "/Filter/ASCIIHexDecode", []byte("712051>")).
		Build(1)

	plain, dir := newTestService(t)
	path := writePDF(t, dir, "hex.pdf", data)
	result, err := plain.Structure(context.Background(), PDFStructureRequest{Path: path})
	require.NoError(t, err)
	assert.Zero(t, result.Pages[0].ContentBytes)

	extended, err := NewService(1024*1024, dir, WithExtendedFilters(true))
	require.NoError(t, err)
	result, err = extended.Structure(context.Background(), PDFStructureRequest{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Pages[0].ContentBytes)
	assert.Equal(t, 2, result.Pages[0].Instructions)
}

func TestService_CanceledContext(t *testing.T) {
	svc, dir := newTestService(t, WithTimeout(time.Minute))
	path := writePDF(t, dir, "c.pdf", pdftest.Pages("q Q"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Structure(ctx, PDFStructureRequest{Path: path})
	assert.True(t, errors.Is(err, pdferrors.ErrCanceled))
}

func TestService_ServerInfo(t *testing.T) {
	svc, dir := newTestService(t, WithExtendedFilters(true))
	writePDF(t, dir, "a.pdf", pdftest.Pages("q Q"))

	info := svc.PDFServerInfo("pdfgraph", "1.2.3")
	assert.Equal(t, "pdfgraph", info.ServerName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, dir, info.DefaultDirectory)
	assert.True(t, info.ExtendedFilters)
	assert.Len(t, info.DirectoryContents, 1)
	assert.Equal(t, Tools(), info.AvailableTools)
}
