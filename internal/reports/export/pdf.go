// Package export renders the current field inventory into downloadable
// report formats. Areas are grouped per owner and each area carries the
// table of products applied to it.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"agro-gps/field-backend/internal/fields"
)

// PDFOptions configures PDF report generation
type PDFOptions struct {
	Title       string
	Orientation string // portrait, landscape
	FontFamily  string
	FontSize    float64
	HeaderColor [3]int
}

// DefaultPDFOptions returns the default report styling
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		Title:       "Field Report",
		Orientation: "portrait",
		FontFamily:  "Arial",
		FontSize:    10,
		HeaderColor: [3]int{68, 114, 196},
	}
}

// FieldReport is the flattened input every exporter consumes: areas
// sorted by owner then name, with each area's products attached.
type FieldReport struct {
	GeneratedAt time.Time
	Owner       string // empty means all owners
	Entries     []ReportEntry
}

// ReportEntry pairs one area with its applied products
type ReportEntry struct {
	Area     fields.Area
	Products []fields.Product
}

// BuildReport assembles a report from the catalog state, optionally
// filtered to one owner.
func BuildReport(areas []fields.Area, products []fields.Product, owner string) FieldReport {
	byArea := make(map[string][]fields.Product, len(areas))
	for _, p := range products {
		byArea[p.AreaID] = append(byArea[p.AreaID], p)
	}

	var entries []ReportEntry
	for _, a := range areas {
		if owner != "" && a.Owner != owner {
			continue
		}
		ps := byArea[a.ID]
		sort.Slice(ps, func(i, j int) bool { return ps[i].Date < ps[j].Date })
		entries = append(entries, ReportEntry{Area: a, Products: ps})
	}

	sort.Slice(entries, func(i, j int) bool {
		oi, oj := strings.ToLower(entries[i].Area.Owner), strings.ToLower(entries[j].Area.Owner)
		if oi != oj {
			return oi < oj
		}
		return strings.ToLower(entries[i].Area.Name) < strings.ToLower(entries[j].Area.Name)
	})

	return FieldReport{
		GeneratedAt: time.Now().UTC(),
		Owner:       owner,
		Entries:     entries,
	}
}

var productColumns = []string{"Date", "Type", "Name", "Quantity", "Unit", "Work"}
var productWidths = []float64{25, 28, 50, 22, 22, 33}

// RenderPDF renders the report as a PDF document
func RenderPDF(report FieldReport, opts PDFOptions) ([]byte, error) {
	orientation := "P"
	if opts.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(opts.FontFamily, "", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	title := opts.Title
	if report.Owner != "" {
		title = fmt.Sprintf("%s - %s", opts.Title, report.Owner)
	}
	pdf.SetFont(opts.FontFamily, "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	pdf.SetFont(opts.FontFamily, "", opts.FontSize-1)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Generated: "+report.GeneratedAt.Format("2006-01-02"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	var totalHectares float64
	for _, e := range report.Entries {
		totalHectares += e.Area.Area
	}
	pdf.SetFont(opts.FontFamily, "", opts.FontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 6, fmt.Sprintf("Areas: %d    Total: %.2f ha", len(report.Entries), totalHectares), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	currentOwner := ""
	for _, entry := range report.Entries {
		if entry.Area.Owner != currentOwner {
			currentOwner = entry.Area.Owner
			pdf.Ln(2)
			pdf.SetFont(opts.FontFamily, "B", opts.FontSize+3)
			pdf.CellFormat(0, 8, "Owner: "+currentOwner, "", 1, "L", false, 0, "")
		}
		renderAreaSection(pdf, entry, opts)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderAreaSection(pdf *gofpdf.Fpdf, entry ReportEntry, opts PDFOptions) {
	pdf.Ln(2)
	pdf.SetFont(opts.FontFamily, "B", opts.FontSize+1)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s (%.2f ha, %s)", entry.Area.Name, entry.Area.Area, entry.Area.Type), "", 1, "L", false, 0, "")

	if len(entry.Products) == 0 {
		pdf.SetFont(opts.FontFamily, "I", opts.FontSize-1)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, "No products applied", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont(opts.FontFamily, "B", opts.FontSize)
	pdf.SetFillColor(opts.HeaderColor[0], opts.HeaderColor[1], opts.HeaderColor[2])
	pdf.SetTextColor(255, 255, 255)
	for i, col := range productColumns {
		pdf.CellFormat(productWidths[i], 7, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(opts.FontFamily, "", opts.FontSize)
	pdf.SetTextColor(0, 0, 0)
	for i, p := range entry.Products {
		if i%2 == 1 {
			pdf.SetFillColor(242, 242, 242)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		cells := []string{p.Date, p.Type, p.Name, fmt.Sprintf("%.2f", p.Quantity), p.Unit, p.WorkType}
		for j, cell := range cells {
			pdf.CellFormat(productWidths[j], 6, cell, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}
}
