package formatter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/desertthunder/mtcat/internal/models"
)

// ReportSheet is the worksheet holding the status report.
const ReportSheet = "Status"

var statusFills = map[models.Status]string{
	models.StatusNew:     "#90EE90",
	models.StatusUpdated: "#FFFF00",
	models.StatusRemoved: "#FF0000",
}

const linkColor = "#0000FF"

// ExportStatusXLSX builds the status report workbook: one row per dataset, filled by status,
// with a frozen header row and links in blue.
func ExportStatusXLSX(report []models.StatusRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := append([]string{ColStatus}, CatalogHeaders...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ReportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetRowStyle(ReportSheet, 1, 1, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	rowStyles := make(map[models.Status]int, len(statusFills))
	linkStyles := make(map[models.Status]int, len(statusFills)+1)
	plainLink, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: linkColor, Underline: "single"}})
	if err != nil {
		return nil, fmt.Errorf("failed to create link style: %w", err)
	}
	for status, color := range statusFills {
		fill := excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
		if rowStyles[status], err = f.NewStyle(&excelize.Style{Fill: fill}); err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", status, err)
		}
		if linkStyles[status], err = f.NewStyle(&excelize.Style{
			Fill: fill,
			Font: &excelize.Font{Color: linkColor, Underline: "single"},
		}); err != nil {
			return nil, fmt.Errorf("failed to create %s link style: %w", status, err)
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	linkCol := indexOf(headers, ColLink) + 1
	for i, sr := range report {
		row := i + 2
		values := append([]string{string(sr.Status)}, catalogRecord(sr.CatalogRow)...)
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
			if len(v) > widths[j] {
				widths[j] = len(v)
			}
		}
		// Counts stay numeric so the sheet can be sorted and summed.
		cells[indexOf(headers, ColDownloads)] = sr.Downloads
		cells[indexOf(headers, ColLikes)] = sr.Likes
		cells[indexOf(headers, ColLanguageCount)] = sr.LanguageCount

		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(ReportSheet, start, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}

		if style, ok := rowStyles[sr.Status]; ok {
			if err := f.SetRowStyle(ReportSheet, row, row, style); err != nil {
				return nil, fmt.Errorf("failed to style row %d: %w", row, err)
			}
		}

		if sr.Link == "" {
			continue
		}
		linkCell, _ := excelize.CoordinatesToCellName(linkCol, row)
		if err := f.SetCellHyperLink(ReportSheet, linkCell, sr.Link, "External"); err != nil {
			return nil, fmt.Errorf("failed to link row %d: %w", row, err)
		}
		style, ok := linkStyles[sr.Status]
		if !ok {
			style = plainLink
		}
		if err := f.SetCellStyle(ReportSheet, linkCell, linkCell, style); err != nil {
			return nil, fmt.Errorf("failed to style link on row %d: %w", row, err)
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ReportSheet, col, col, float64(min(w+2, 80))); err != nil {
			return nil, fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.SetPanes(ReportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	return f, nil
}

// WriteStatusReport saves the status report to path. A .csv extension writes CSV, anything else XLSX.
func WriteStatusReport(path string, report []models.StatusRow) error {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		data, err := ExportStatusCSV(report)
		if err != nil {
			return fmt.Errorf("failed to generate CSV: %w", err)
		}
		return writeFile(path, data)
	}

	f, err := ExportStatusXLSX(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
