// Package document assembles a PDF object graph: version, cross-reference
// table, trailer, catalog and page tree.
package document

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	pdferrors "github.com/a3tai/pdfgraph/internal/pdf/errors"
	"github.com/a3tai/pdfgraph/internal/pdf/filters"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
	"github.com/a3tai/pdfgraph/internal/pdf/parser"
	"github.com/a3tai/pdfgraph/internal/pdf/xref"
)

var versionPattern = regexp.MustCompile(`PDF-(\d+)\.(\d+)`)

// Version is the header version of the file
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Document is a fully assembled, read-only view of one PDF buffer.
// Resolve may be called from several goroutines; the shared cursor is
// guarded by a mutex.
type Document struct {
	version  Version
	location xref.Location
	table    *xref.Table
	trailer  *object.Dictionary
	catalog  *object.Dictionary
	pages    []*Page

	opts   options
	mu     sync.Mutex
	parser *parser.Parser
	cache  map[int]*object.IndirectObject

	// assembly scratch
	state      State
	sections   []xref.Subsection
	trailerPos int
}

// Open assembles a document from data
func Open(data []byte, opts ...Option) (*Document, error) {
	return OpenContext(context.Background(), data, opts...)
}

// OpenContext is Open with cancellation. ctx is checked before every
// assembly step and every object read.
func OpenContext(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Document{
		opts:   o,
		parser: parser.NewFromBytes(data, parser.WithMaxDepth(o.maxDepth)),
		cache:  make(map[int]*object.IndirectObject),
		state:  StateInit,
	}

	steps := []struct {
		next State
		run  func(context.Context) error
	}{
		{StateVersionRead, d.readVersion},
		{StateXRefLocated, d.locateXRef},
		{StateXRefRead, d.readXRef},
		{StateTrailerRead, d.readTrailer},
		{StateXRefMerged, d.mergeXRef},
		{StateCatalogResolved, d.resolveCatalog},
		{StatePagesWalked, d.walkPages},
	}
	for _, step := range steps {
		if err := checkContext(ctx); err != nil {
			return nil, errors.Wrapf(err, "after %s", d.state)
		}
		if err := step.run(ctx); err != nil {
			return nil, errors.Wrapf(err, "%s -> %s", d.state, step.next)
		}
		d.state = step.next
	}

	d.state = StateReady
	d.sections = nil
	d.opts.tracer.Step(StateReady, "%d pages", len(d.pages))
	return d, nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return pdferrors.New(pdferrors.ErrorTypeCanceled, err.Error())
	}
	return nil
}

func (d *Document) readVersion(context.Context) error {
	s := d.parser.Scanner()
	s.Restore(0)
	s.SkipWhitespace()

	comment, err := d.parser.Comment()
	if err != nil {
		return pdferrors.NewAt(pdferrors.ErrorTypeInvalidHeader, s.Pos(), "file does not start with a comment line")
	}
	m := versionPattern.FindStringSubmatch(comment)
	if m == nil {
		e := pdferrors.NewAt(pdferrors.ErrorTypeInvalidHeader, 0, "invalid PDF signature")
		e.Context = comment
		return e
	}
	d.version.Major, _ = strconv.Atoi(m[1])
	d.version.Minor, _ = strconv.Atoi(m[2])

	d.opts.tracer.Step(StateVersionRead, "PDF version %s", d.version)
	return nil
}

func (d *Document) locateXRef(context.Context) error {
	loc, err := xref.FindXRef(d.parser.Scanner(), d.opts.xrefWindow)
	if err != nil {
		return err
	}
	d.location = loc
	d.opts.tracer.Step(StateXRefLocated, "startxref at #%d names #%d", loc.StartXRef, loc.XRefOffset)
	return nil
}

func (d *Document) readXRef(context.Context) error {
	sections, trailerPos, err := xref.ReadXRef(d.parser, d.location.XRefOffset)
	if err != nil {
		return err
	}
	d.sections = sections
	d.trailerPos = trailerPos
	d.opts.tracer.Step(StateXRefRead, "%d subsections, trailer at #%d", len(sections), trailerPos)
	return nil
}

func (d *Document) readTrailer(context.Context) error {
	trailer, err := xref.GetTrailer(d.parser, d.trailerPos)
	if err != nil {
		return err
	}
	d.trailer = trailer
	d.opts.tracer.Step(StateTrailerRead, "%s", trailer)
	return nil
}

func (d *Document) mergeXRef(context.Context) error {
	d.table = xref.Merge(d.sections...)
	d.opts.tracer.Step(StateXRefMerged, "%d entries, %d in use", d.table.Len(), d.table.InUseCount())
	return nil
}

func (d *Document) resolveCatalog(ctx context.Context) error {
	root, ok := d.trailer.GetReference("Root")
	if !ok {
		return pdferrors.New(pdferrors.ErrorTypeCatalogInvalid, "trailer Root is not an indirect reference")
	}
	v, err := d.resolve(ctx, root)
	if err != nil {
		return errors.Wrap(err, "resolving Root")
	}
	catalog, ok := v.(*object.Dictionary)
	if !ok {
		return pdferrors.Newf(pdferrors.ErrorTypeCatalogInvalid, "Root %s is a %s, not a dictionary", root, v.Kind())
	}
	if t := catalog.GetName("Type"); t != "Catalog" {
		return pdferrors.Newf(pdferrors.ErrorTypeCatalogInvalid, "Root %s has Type %q, want \"Catalog\"", root, t)
	}
	d.catalog = catalog
	d.opts.tracer.Step(StateCatalogResolved, "catalog %s", root)
	return nil
}

// Resolve reads the object ref points at. Streams come back decoded.
func (d *Document) Resolve(ref object.Reference) (object.Value, error) {
	return d.ResolveContext(context.Background(), ref)
}

// ResolveContext is Resolve with cancellation
func (d *Document) ResolveContext(ctx context.Context, ref object.Reference) (object.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolve(ctx, ref)
}

// resolve is Resolve without locking; assembly runs single-threaded.
func (d *Document) resolve(ctx context.Context, ref object.Reference) (object.Value, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if obj, ok := d.cache[ref.ID]; ok {
		if err := d.checkGeneration(ref, obj); err != nil {
			return nil, err
		}
		return obj.Value, nil
	}

	offset, ok := d.table.Lookup(ref.ID)
	if !ok {
		return nil, pdferrors.Newf(pdferrors.ErrorTypeUnresolvedReference, "%s has no in-use xref entry", ref)
	}
	obj, err := d.parser.ReadIndirectObject(offset, d.table)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s at #%d", ref, offset)
	}
	if err := d.checkGeneration(ref, obj); err != nil {
		return nil, err
	}
	if stream, ok := obj.Value.(*object.Stream); ok {
		if err := filters.DecodeStream(stream, d.opts.filters); err != nil {
			return nil, errors.Wrapf(err, "decoding stream %s", ref)
		}
	}
	d.opts.tracer.Hit(obj.Value.Kind().String(), offset)

	d.cache[ref.ID] = obj
	return obj.Value, nil
}

func (d *Document) checkGeneration(ref object.Reference, obj *object.IndirectObject) error {
	if !d.opts.strictGeneration {
		return nil
	}
	if obj.ID != ref.ID || obj.Generation != ref.Generation {
		return pdferrors.Newf(pdferrors.ErrorTypeUnresolvedReference,
			"%s resolved to object %d %d", ref, obj.ID, obj.Generation)
	}
	return nil
}

// deref resolves v if it is a reference and returns it unchanged otherwise
func (d *Document) deref(ctx context.Context, v object.Value) (object.Value, error) {
	if ref, ok := v.(object.Reference); ok {
		return d.resolve(ctx, ref)
	}
	return v, nil
}

// Objects resolves every in-use xref entry and returns the values by id
func (d *Document) Objects() (map[int]object.Value, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	objects := make(map[int]object.Value)
	for _, id := range d.table.IDs() {
		e, _ := d.table.Get(id)
		if !e.InUse() || e.Offset == 0 {
			continue
		}
		v, err := d.resolve(context.Background(), object.Reference{ID: id, Generation: e.Generation})
		if err != nil {
			return nil, errors.Wrapf(err, "object %d", id)
		}
		objects[id] = v
	}
	return objects, nil
}

// Version returns the header version
func (d *Document) Version() Version {
	return d.version
}

// Pages returns the leaf pages in breadth-first order
func (d *Document) Pages() []*Page {
	return d.pages
}

// XRef returns the merged cross-reference table
func (d *Document) XRef() *xref.Table {
	return d.table
}

// StartXRef returns where startxref was found and the offset it names
func (d *Document) StartXRef() xref.Location {
	return d.location
}

// Trailer returns the trailer dictionary
func (d *Document) Trailer() *object.Dictionary {
	return d.trailer
}

// Catalog returns the document catalog
func (d *Document) Catalog() *object.Dictionary {
	return d.catalog
}
