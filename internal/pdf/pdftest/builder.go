// Package pdftest builds small, well-formed PDF files in memory for tests.
// Offsets in the generated xref table are computed from the actual layout.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Builder accumulates numbered objects and lays them out with a classic
// xref table and trailer.
type Builder struct {
	Version string
	objects map[int][]byte
	// Trailer entries beyond Size and Root, e.g. "/Info 9 0 R"
	TrailerExtra string
}

// New returns a builder for a PDF-1.4 file
func New() *Builder {
	return &Builder{Version: "1.4", objects: make(map[int][]byte)}
}

// Object sets the body of object id, e.g. "<</Type/Catalog/Pages 2 0 R>>"
func (b *Builder) Object(id int, body string) *Builder {
	b.objects[id] = []byte(body)
	return b
}

// Stream sets object id to a stream. entries are extra dictionary entries;
// Length is added automatically.
func (b *Builder) Stream(id int, entries string, data []byte) *Builder {
	var body bytes.Buffer
	fmt.Fprintf(&body, "<<%s/Length %d>>\nstream\n", entries, len(data))
	body.Write(data)
	body.WriteString("\nendstream")
	b.objects[id] = body.Bytes()
	return b
}

// FlateStream stores data zlib-compressed with /Filter /FlateDecode
func (b *Builder) FlateStream(id int, entries string, data []byte) *Builder {
	return b.Stream(id, entries+"/Filter/FlateDecode", Deflate(data))
}

// Build lays out the file with objects in ascending id order and the trailer
// pointing at root.
func (b *Builder) Build(root int) []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, "%%PDF-%s\n%%\xe2\xe3\xcf\xd3\n", b.Version)

	ids := make([]int, 0, len(b.objects))
	maxID := 0
	for id := range b.objects {
		ids = append(ids, id)
		if id > maxID {
			maxID = id
		}
	}
	sort.Ints(ids)

	offsets := make(map[int]int, len(ids))
	for _, id := range ids {
		offsets[id] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", id)
		out.Write(b.objects[id])
		out.WriteString("\nendobj\n")
	}

	xrefPos := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", maxID+1)
	for id := 0; id <= maxID; id++ {
		if off, ok := offsets[id]; ok {
			fmt.Fprintf(&out, "%010d 00000 n \n", off)
		} else {
			out.WriteString("0000000000 65535 f \n")
		}
	}
	fmt.Fprintf(&out, "trailer\n<</Size %d/Root %d 0 R%s>>\nstartxref\n%d\n%%%%EOF\n",
		maxID+1, root, b.TrailerExtra, xrefPos)
	return out.Bytes()
}

// Pages builds a complete document: catalog 1, page tree root 2, then one
// page and one FlateDecode content stream per entry of contents.
func Pages(contents ...string) []byte {
	b := New()
	b.Object(1, "<</Type/Catalog/Pages 2 0 R>>")

	kids := ""
	for i, c := range contents {
		pageID := 3 + 2*i
		contentID := pageID + 1
		kids += fmt.Sprintf(" %d 0 R", pageID)
		b.Object(pageID, fmt.Sprintf("<</Type/Page/Parent 2 0 R/MediaBox[0 0 612 792]/Contents %d 0 R>>", contentID))
		b.FlateStream(contentID, "", []byte(c))
	}
	b.Object(2, fmt.Sprintf("<</Type/Pages/Kids[%s]/Count %d>>", kids, len(contents)))
	return b.Build(1)
}

// Deflate zlib-compresses data
func Deflate(data []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(data)
	_ = w.Close()
	return buf.Bytes()
}

// WriteFile writes data to dir/name and returns the full path
func WriteFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
