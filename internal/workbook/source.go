// Package workbook reads the first sheet of an import workbook as rows of raw cell strings.
//
// Cells come back unformatted: dates and times stay spreadsheet serial numbers ("45000", "0.375")
// so the importer can decode them itself.
package workbook

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var ErrNotFound = errors.New("workbook not found")

// Source locates workbooks by their relative name (for example "Город_import.xlsx").
type Source interface {
	Rows(ctx context.Context, name string) ([][]string, error)
	String() string
}

func notFound(path string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, path)
}

// ReadRows parses an xlsx stream and returns the rows of its first sheet.
func ReadRows(r io.Reader) ([][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := wb.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
