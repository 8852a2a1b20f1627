package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a3tai/pdfgraph/internal/pdf"
)

// maxListed caps the entries printed for file listings
const maxListed = 10

func formatStructureResult(result *pdf.PDFStructureResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PDF Structure: %s\n", result.Path)
	fmt.Fprintf(&b, "Size: %d bytes\n", result.Size)
	fmt.Fprintf(&b, "Version: %s\n", result.Version)
	fmt.Fprintf(&b, "startxref: %d -> xref at #%d\n", result.StartXRef, result.XRefOffset)
	fmt.Fprintf(&b, "XRef entries: %d (%d in use)\n", result.XRefEntries, result.InUseObjects)
	fmt.Fprintf(&b, "Trailer keys: %s\n", strings.Join(result.TrailerKeys, ", "))
	fmt.Fprintf(&b, "Catalog: %s\n", result.Catalog)
	fmt.Fprintf(&b, "Pages: %d\n", result.PageCount)

	for _, page := range result.Pages {
		object := page.Object
		if object == "" {
			object = "inline"
		}
		fmt.Fprintf(&b, "\n%d. Page %s: %d content bytes", page.Number, object, page.ContentBytes)
		if page.Error != "" {
			fmt.Fprintf(&b, ", content error: %s\n", page.Error)
			continue
		}
		fmt.Fprintf(&b, ", %d instructions\n", page.Instructions)
		if len(page.Operators) > 0 {
			fmt.Fprintf(&b, "   Operators: %s\n", formatHistogram(page.Operators))
		}
	}
	return b.String()
}

// formatHistogram prints the most frequent operators first
func formatHistogram(hist map[string]int) string {
	ops := make([]string, 0, len(hist))
	for op := range hist {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool {
		if hist[ops[i]] != hist[ops[j]] {
			return hist[ops[i]] > hist[ops[j]]
		}
		return ops[i] < ops[j]
	})
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = fmt.Sprintf("%s×%d", op, hist[op])
	}
	return strings.Join(parts, " ")
}

func formatPageContentResult(result *pdf.PDFPageContentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page %d of %s", result.Page, result.Path)
	if result.Object != "" {
		fmt.Fprintf(&b, " (%s)", result.Object)
	}
	fmt.Fprintf(&b, "\nContent bytes: %d\n", result.ContentBytes)
	fmt.Fprintf(&b, "Instructions: %d\n\n", result.TotalInstructions)

	for _, ins := range result.Instructions {
		if len(ins.Operands) > 0 {
			fmt.Fprintf(&b, "%s %s\n", strings.Join(ins.Operands, " "), ins.Operator)
		} else {
			fmt.Fprintf(&b, "%s\n", ins.Operator)
		}
	}
	if result.Truncated {
		fmt.Fprintf(&b, "... %d more instructions\n", result.TotalInstructions-len(result.Instructions))
	}
	return b.String()
}

func formatObjectResult(result *pdf.PDFObjectResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Object %d %d at #%d: %s\n", result.ID, result.Generation, result.Offset, result.Kind)
	fmt.Fprintf(&b, "%s\n", result.Value)
	if result.Kind == "stream" {
		if len(result.Filters) > 0 {
			fmt.Fprintf(&b, "Filters: %s\n", strings.Join(result.Filters, ", "))
		}
		fmt.Fprintf(&b, "Raw length: %d bytes, decoded length: %d bytes\n", result.RawLength, len(result.Data))
		if result.Data != "" {
			fmt.Fprintf(&b, "\nDecoded data:\n%s\n", result.Data)
		}
	}
	return b.String()
}

func formatObjectsResult(result *pdf.PDFObjectsResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d objects in %s\n\n", len(result.Objects), result.Path)
	for _, obj := range result.Objects {
		fmt.Fprintf(&b, "%d %d obj at #%d: %s", obj.ID, obj.Generation, obj.Offset, obj.Kind)
		if len(obj.Filters) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(obj.Filters, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatInflateResult(result *pdf.PDFInflateResult) string {
	text := fmt.Sprintf("Inflated %d bytes at #%d of %s into %d bytes\n\n",
		result.Length, result.Offset, result.Path, result.DecodedLength)
	return text + result.Data
}

func formatCrossCheckResult(result *pdf.PDFCrossCheckResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cross-check for: %s\n", result.Path)
	fmt.Fprintf(&b, "Page count (object graph): %d\n\n", result.Report.Pages)
	for _, r := range result.Report.Results {
		switch {
		case r.Error != "":
			fmt.Fprintf(&b, "%s: error: %s\n", r.Library, r.Error)
		case r.Match:
			fmt.Fprintf(&b, "%s: %d pages (match)\n", r.Library, r.Pages)
		default:
			fmt.Fprintf(&b, "%s: %d pages (MISMATCH)\n", r.Library, r.Pages)
		}
	}
	if result.Report.Agree {
		b.WriteString("\nAll libraries agree.\n")
	} else {
		b.WriteString("\nLibraries disagree.\n")
	}
	return b.String()
}

func formatSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}
	return text
}

func formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	if result.ExtendedFilters {
		text += "🧪 Filters: Flate, ASCIIHex, ASCII85, LZW, RunLength, CCITTFax\n\n"
	} else {
		text += "🧪 Filters: Flate (others are reported but not decoded)\n\n"
	}

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= maxListed {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-maxListed)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}
	return text
}
