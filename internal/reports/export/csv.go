package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// RenderCSV renders the product application log as CSV, one row per
// product with its parent area's owner and name.
func RenderCSV(report FieldReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(productHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, entry := range report.Entries {
		a := entry.Area
		for _, p := range entry.Products {
			row := []string{
				a.Owner, a.Name, p.Date, p.Type, p.Name,
				strconv.FormatFloat(p.Quantity, 'f', -1, 64),
				p.Unit, p.WorkType, p.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
