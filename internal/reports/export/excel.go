package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	areasSheet    = "Areas"
	productsSheet = "Products"
)

var areaHeader = []string{"Owner", "Name", "Type", "Hectares", "Created"}
var productHeader = []string{"Owner", "Area", "Date", "Type", "Name", "Quantity", "Unit", "Work", "Notes"}

// RenderXLSX renders the report as a workbook with one sheet of areas
// and one sheet of products.
func RenderXLSX(report FieldReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", areasSheet)
	if _, err := f.NewSheet(productsSheet); err != nil {
		return nil, fmt.Errorf("create products sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeHeader(f, areasSheet, areaHeader, headerStyle); err != nil {
		return nil, err
	}
	if err := writeHeader(f, productsSheet, productHeader, headerStyle); err != nil {
		return nil, err
	}

	areaRow, productRow := 2, 2
	for _, entry := range report.Entries {
		a := entry.Area
		if err := f.SetSheetRow(areasSheet, fmt.Sprintf("A%d", areaRow), &[]interface{}{
			a.Owner, a.Name, string(a.Type), a.Area, a.Created.Format("2006-01-02"),
		}); err != nil {
			return nil, fmt.Errorf("write area row: %w", err)
		}
		areaRow++

		for _, p := range entry.Products {
			if err := f.SetSheetRow(productsSheet, fmt.Sprintf("A%d", productRow), &[]interface{}{
				a.Owner, a.Name, p.Date, p.Type, p.Name, p.Quantity, p.Unit, p.WorkType, p.Notes,
			}); err != nil {
				return nil, fmt.Errorf("write product row: %w", err)
			}
			productRow++
		}
	}

	for _, sheet := range []string{areasSheet, productsSheet} {
		f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	for i, col := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("write header cell: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("style header cell: %w", err)
		}
	}
	return nil
}
