package pdf

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/a3tai/pdfgraph/internal/pdf/content"
	"github.com/a3tai/pdfgraph/internal/pdf/document"
	"github.com/a3tai/pdfgraph/internal/pdf/object"
)

// Structure summarizes version, xref, trailer and page tree of a file.
// A page whose content stream does not tokenize is reported with an Error
// rather than failing the whole summary.
func (s *Service) Structure(ctx context.Context, req PDFStructureRequest) (*PDFStructureResult, error) {
	doc, _, info, err := s.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	loc := doc.StartXRef()
	result := &PDFStructureResult{
		Path:         req.Path,
		Size:         info.Size(),
		Version:      doc.Version().String(),
		StartXRef:    loc.StartXRef,
		XRefOffset:   loc.XRefOffset,
		XRefEntries:  doc.XRef().Len(),
		InUseObjects: doc.XRef().InUseCount(),
		TrailerKeys:  append([]string(nil), doc.Trailer().Keys...),
		Catalog:      doc.Trailer().Get("Root").String(),
		PageCount:    len(doc.Pages()),
	}

	for i, page := range doc.Pages() {
		summary := PageSummary{
			Number:       i + 1,
			Object:       pageObject(page),
			ContentBytes: len(page.RawContent()),
		}
		instructions, err := page.Contents()
		if err != nil {
			summary.Error = err.Error()
		} else {
			summary.Instructions = len(instructions)
			summary.Operators = operatorHistogram(instructions)
		}
		result.Pages = append(result.Pages, summary)
	}
	return result, nil
}

// PageContent returns the instructions of one page
func (s *Service) PageContent(ctx context.Context, req PDFPageContentRequest) (*PDFPageContentResult, error) {
	doc, _, _, err := s.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	pages := doc.Pages()
	if req.Page < 1 || req.Page > len(pages) {
		return nil, fmt.Errorf("invalid page number %d (document has %d pages)", req.Page, len(pages))
	}
	page := pages[req.Page-1]

	instructions, err := page.Contents()
	if err != nil {
		return nil, errors.Wrapf(err, "page %d", req.Page)
	}

	result := &PDFPageContentResult{
		Path:              req.Path,
		Page:              req.Page,
		Object:            pageObject(page),
		ContentBytes:      len(page.RawContent()),
		TotalInstructions: len(instructions),
	}
	if req.Limit > 0 && len(instructions) > req.Limit {
		instructions = instructions[:req.Limit]
		result.Truncated = true
	}
	result.Instructions = make([]InstructionInfo, len(instructions))
	for i, ins := range instructions {
		result.Instructions[i] = instructionInfo(ins)
	}
	return result, nil
}

// Object resolves a single indirect object
func (s *Service) Object(ctx context.Context, req PDFObjectRequest) (*PDFObjectResult, error) {
	doc, _, _, err := s.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	ref := object.Reference{ID: req.ID, Generation: req.Generation}
	v, err := doc.ResolveContext(ctx, ref)
	if err != nil {
		return nil, err
	}
	return objectResult(req.Path, doc, ref, v), nil
}

// Objects resolves every in-use object in id order
func (s *Service) Objects(ctx context.Context, req PDFObjectsRequest) (*PDFObjectsResult, error) {
	doc, _, _, err := s.open(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	objects, err := doc.Objects()
	if err != nil {
		return nil, err
	}

	result := &PDFObjectsResult{Path: req.Path}
	for _, id := range doc.XRef().IDs() {
		v, ok := objects[id]
		if !ok {
			continue
		}
		e, _ := doc.XRef().Get(id)
		result.Objects = append(result.Objects,
			*objectResult(req.Path, doc, object.Reference{ID: id, Generation: e.Generation}, v))
	}
	return result, nil
}

func objectResult(path string, doc *document.Document, ref object.Reference, v object.Value) *PDFObjectResult {
	result := &PDFObjectResult{
		Path:       path,
		ID:         ref.ID,
		Generation: ref.Generation,
		Kind:       v.Kind().String(),
		Value:      v.String(),
	}
	if e, ok := doc.XRef().Get(ref.ID); ok {
		result.Offset = e.Offset
	}
	if stream, ok := v.(*object.Stream); ok {
		result.Filters = stream.Filters()
		result.RawLength = len(stream.Raw)
		result.Data = string(stream.Data)
	}
	return result
}

func pageObject(page *document.Page) string {
	ref := page.Reference()
	if ref.ID == 0 {
		return ""
	}
	return ref.String()
}

func instructionInfo(ins content.Instruction) InstructionInfo {
	info := InstructionInfo{Operator: ins.Operator}
	for _, op := range ins.Operands {
		info.Operands = append(info.Operands, op.String())
	}
	return info
}

func operatorHistogram(instructions []content.Instruction) map[string]int {
	if len(instructions) == 0 {
		return nil
	}
	hist := make(map[string]int)
	for _, ins := range instructions {
		hist[ins.Operator]++
	}
	return hist
}
