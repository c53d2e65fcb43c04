package service

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names are a contract with the source spreadsheet. A sheet that
// went missing degrades to an empty section, never an error.
const (
	sheetMetrics      = "Burn_Dashboard"
	sheetTransactions = "Transactions"
	sheetAttachments  = "Attachments_Log"
	sheetVendorRules  = "Rules_Vendors"
)

var rawCells = excelize.Options{RawCellValue: true}

// workbook wraps a parsed xlsx export and hands the builders raw cell
// grids, header-keyed records and per-cell hyperlink targets.
type workbook struct {
	file *excelize.File
}

func openWorkbook(data []byte) (*workbook, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &workbook{file: file}, nil
}

func (w *workbook) close() {
	_ = w.file.Close()
}

// grid returns the raw cell grid of a sheet, header row included.
func (w *workbook) grid(sheet string) [][]string {
	rows, err := w.file.GetRows(sheet, rawCells)
	if err != nil {
		return nil
	}
	return rows
}

// records returns the data rows of a sheet keyed by lower-cased trimmed
// header name. A column absent from the header is simply absent from
// every record; the row accessors turn that into the field default.
func (w *workbook) records(sheet string) []row {
	grid := w.grid(sheet)
	if len(grid) == 0 {
		return nil
	}

	header := make([]string, len(grid[0]))
	for i, name := range grid[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	records := make([]row, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		record := make(row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				record[name] = cells[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

// hyperlink returns the link target attached to a cell, or "".
// Row and column are one-based sheet coordinates.
func (w *workbook) hyperlink(sheet string, r, c int) string {
	cell, err := excelize.CoordinatesToCellName(c, r)
	if err != nil {
		return ""
	}
	ok, target, err := w.file.GetCellHyperLink(sheet, cell)
	if err != nil || !ok {
		return ""
	}
	return target
}

// row is one source row keyed by normalized column name.
type row map[string]string

// get reads a column with the read-or-default policy: a column missing
// from the header and an empty cell both come back as "".
func (r row) get(name string) string {
	return strings.TrimSpace(r[strings.ToLower(name)])
}

// getOr falls back only when the column is missing from the header; a
// present-but-empty cell stays empty.
func (r row) getOr(name, fallback string) string {
	value, ok := r[strings.ToLower(name)]
	if !ok {
		return fallback
	}
	return strings.TrimSpace(value)
}
