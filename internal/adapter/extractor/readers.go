package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// ReadCSV returns the file unmodified.
func ReadCSV(content []byte) (string, error) {
	return string(content), nil
}

// ReadXLSX flattens the active sheet of an OOXML workbook.
func ReadXLSX(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return "", fmt.Errorf("workbook has no sheets")
		}
		sheet = list[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	width, height := 0, len(rows)
	if dim, err := f.GetSheetDimension(sheet); err == nil {
		if cols, rowsN, ok := dimensionSize(dim); ok {
			width = cols
			height = max(height, rowsN)
		}
	}

	for len(rows) < height {
		rows = append(rows, nil)
	}

	return flattenRows(rows, width), nil
}

// dimensionSize returns the column and row extent of a sheet dimension
// reference such as "A1:D20".
func dimensionSize(ref string) (int, int, bool) {
	last := ref
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		last = ref[i+1:]
	}

	col, row, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return 0, 0, false
	}

	return col, row, true
}

// ReadXLS flattens the first sheet of a legacy BIFF workbook.
func ReadXLS(content []byte) (text string, err error) {
	// The BIFF parser panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", fmt.Errorf("workbook has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		// BIFF stores one past the last used column.
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		width = max(width, len(cells))
		rows = append(rows, cells)
	}

	return flattenRows(rows, width), nil
}

// sheetRow returns nil for rows the sheet holds no record of. The BIFF
// parser dereferences a missing row instead of reporting it.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// ReadPDF returns the text of every page in document order.
func ReadPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}

// flattenRows joins each row's cells with commas and terminates every row
// with a newline. Short rows are padded with empty cells up to width so that
// every line carries the same number of separators.
func flattenRows(rows [][]string, width int) string {
	for _, r := range rows {
		width = max(width, len(r))
	}

	var b strings.Builder
	for _, r := range rows {
		for j := 0; j < width; j++ {
			if j > 0 {
				b.WriteByte(',')
			}
			if j < len(r) {
				b.WriteString(r[j])
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}
