package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/pdfgraph/internal/pdf"
	"github.com/a3tai/pdfgraph/internal/pdf/pdftest"
)

func fixture(t *testing.T) (string, []byte) {
	t.Helper()
	data := pdftest.Pages("BT /F1 12 Tf (Hello) Tj ET", "q Q")
	path, err := pdftest.WriteFile(t.TempDir(), "doc.pdf", data)
	require.NoError(t, err)
	return path, data
}

func runDump(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_Structure(t *testing.T) {
	path, _ := fixture(t)

	out, _, err := runDump(t, "structure", path)
	require.NoError(t, err)
	assert.Contains(t, out, "version   1.4\n")
	assert.Contains(t, out, "pages     2\n")
	assert.Contains(t, out, "catalog   1 0 R\n")

	out, _, err = runDump(t, "--format=json", "structure", path)
	require.NoError(t, err)
	var result pdf.PDFStructureResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, 4, result.Pages[0].Instructions)
}

func TestRun_ObjectsAndObject(t *testing.T) {
	path, _ := fixture(t)

	out, _, err := runDump(t, "objects", path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)

	out, _, err = runDump(t, "object", path, "1")
	require.NoError(t, err)
	assert.Equal(t, "1 0 obj\n<</Type /Catalog /Pages 2 0 R>>\nendobj\n", out)

	out, _, err = runDump(t, "object", path, "4", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "\nBT /F1 12 Tf (Hello) Tj ET\n")

	_, _, err = runDump(t, "object", path, "x")
	assert.Error(t, err)
	_, _, err = runDump(t, "object", path)
	assert.Error(t, err)
}

func TestRun_Page(t *testing.T) {
	path, _ := fixture(t)

	out, _, err := runDump(t, "page", path, "1")
	require.NoError(t, err)
	assert.Equal(t, "BT\n/F1 12 Tf\n(Hello) Tj\nET\n", out)

	out, _, err = runDump(t, "--limit=1", "page", path, "1")
	require.NoError(t, err)
	assert.Equal(t, "BT\n% 1 of 4 instructions\n", out)

	_, _, err = runDump(t, "page", path, "3")
	assert.Error(t, err)
}

func TestRun_Inflate(t *testing.T) {
	path, data := fixture(t)
	compressed := pdftest.Deflate([]byte("q Q"))
	offset := bytes.Index(data, compressed)
	require.Greater(t, offset, 0)

	out, _, err := runDump(t, "inflate", path, "--offset", strconv.Itoa(offset), "--length", strconv.Itoa(len(compressed)))
	require.NoError(t, err)
	assert.Equal(t, "q Q", out)

	_, _, err = runDump(t, "inflate", path)
	assert.Error(t, err)
}

func TestRun_Trace(t *testing.T) {
	path, _ := fixture(t)
	_, trace, err := runDump(t, "--trace", "structure", path)
	require.NoError(t, err)
	assert.Contains(t, trace, "[version-read]")
	assert.Contains(t, trace, "read dictionary at #")
}

func TestRun_Errors(t *testing.T) {
	path, _ := fixture(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"no file", []string{"structure"}},
		{"unknown command", []string{"explode", path}},
		{"unknown format", []string{"--format=xml", "structure", path}},
		{"unknown flag", []string{"--bogus", "structure", path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runDump(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
