package document

import (
	"bytes"
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/a3tai/pdfgraph/internal/pdf/content"
	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// Page is a leaf of the page tree with its decoded content bytes. The
// instruction list is tokenized on first use and cached.
type Page struct {
	ref  object.Reference
	dict *object.Dictionary
	raw  []byte

	once     sync.Once
	contents []content.Instruction
	err      error
}

// Reference returns the page object's reference, or the zero value for a
// page stored inline in its parent's Kids.
func (p *Page) Reference() object.Reference {
	return p.ref
}

// Dictionary returns the page dictionary
func (p *Page) Dictionary() *object.Dictionary {
	return p.dict
}

// RawContent returns the decoded content stream bytes
func (p *Page) RawContent() []byte {
	return p.raw
}

// Contents tokenizes the content stream once and returns the cached result
// on later calls, including a cached error.
func (p *Page) Contents() ([]content.Instruction, error) {
	p.once.Do(func() {
		p.contents, p.err = content.Parse(p.raw)
	})
	return p.contents, p.err
}

// pageNode is a queued page-tree node; id is -1 for inline dictionaries
type pageNode struct {
	id   int
	gen  int
	dict *object.Dictionary
}

// walkPages visits the page tree breadth-first from catalog.Pages. Kids are
// resolved when enqueued, and a node id seen twice is a corrupt tree.
func (d *Document) walkPages(ctx context.Context) error {
	visited := make(map[int]bool)

	root, err := d.pageTreeNode(ctx, d.catalog.Get("Pages"), visited)
	if err != nil {
		return errors.Wrap(err, "catalog Pages")
	}

	q := newQueue[pageNode](8)
	q.push(root)

	for q.len() > 0 {
		node, _ := q.pop()

		switch t := node.dict.GetName("Type"); t {
		case "Pages":
			kids, ok := node.dict.GetArray("Kids")
			if !ok {
				return pdferrors.Newf(pdferrors.ErrorTypePageTreeCorrupt, "Pages node %d has no Kids array", node.id)
			}
			for i, kid := range kids {
				child, err := d.pageTreeNode(ctx, kid, visited)
				if err != nil {
					return errors.Wrapf(err, "Kids[%d] of node %d", i, node.id)
				}
				q.push(child)
			}
		case "Page":
			page, err := d.newPage(ctx, node)
			if err != nil {
				return err
			}
			d.pages = append(d.pages, page)
		default:
			return pdferrors.Newf(pdferrors.ErrorTypePageTreeCorrupt, "node %d has Type %q", node.id, t)
		}
	}

	d.opts.tracer.Step(StatePagesWalked, "%d pages", len(d.pages))
	return nil
}

func (d *Document) pageTreeNode(ctx context.Context, v object.Value, visited map[int]bool) (pageNode, error) {
	node := pageNode{id: -1}
	if ref, ok := v.(object.Reference); ok {
		if visited[ref.ID] {
			return node, pdferrors.Newf(pdferrors.ErrorTypePageTreeCorrupt, "node %s visited twice", ref)
		}
		visited[ref.ID] = true
		node.id, node.gen = ref.ID, ref.Generation
	}

	resolved, err := d.deref(ctx, v)
	if err != nil {
		return node, err
	}
	dict, ok := resolved.(*object.Dictionary)
	if !ok {
		return node, pdferrors.Newf(pdferrors.ErrorTypePageTreeCorrupt, "page tree node is a %s", resolved.Kind())
	}
	node.dict = dict
	return node, nil
}

func (d *Document) newPage(ctx context.Context, node pageNode) (*Page, error) {
	raw, err := d.pageContent(ctx, node)
	if err != nil {
		return nil, errors.Wrapf(err, "page %d", node.id)
	}
	page := &Page{dict: node.dict, raw: raw}
	if node.id >= 0 {
		page.ref = object.Reference{ID: node.id, Generation: node.gen}
	}
	return page, nil
}

// pageContent returns the decoded Contents. An array of streams is joined
// with newlines so tokens at the seams stay separate.
func (d *Document) pageContent(ctx context.Context, node pageNode) ([]byte, error) {
	v, ok := node.dict.Lookup("Contents")
	if !ok {
		return nil, pdferrors.New(pdferrors.ErrorTypePageTreeCorrupt, "page has no Contents")
	}

	resolved, err := d.deref(ctx, v)
	if err != nil {
		return nil, err
	}

	switch c := resolved.(type) {
	case *object.Stream:
		return c.Data, nil
	case object.Array:
		parts := make([][]byte, 0, len(c))
		for i, elem := range c {
			part, err := d.deref(ctx, elem)
			if err != nil {
				return nil, errors.Wrapf(err, "Contents[%d]", i)
			}
			stream, ok := part.(*object.Stream)
			if !ok {
				return nil, pdferrors.Newf(pdferrors.ErrorTypePageTreeCorrupt, "Contents[%d] is a %s", i, part.Kind())
			}
			parts = append(parts, stream.Data)
		}
		return bytes.Join(parts, []byte("\n")), nil
	default:
		return nil, pdferrors.Newf(pdferrors.ErrorTypePageTreeCorrupt, "Contents is a %s", resolved.Kind())
	}
}
