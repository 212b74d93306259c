package excel

import (
	"bytes"
	"fmt"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/ports"
	"github.com/xuri/excelize/v2"
)

// Factory opens uploaded xlsx workbooks and creates output workbooks via
// excelize.
type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) OpenReader(content []byte) (ports.WorkbookReader, error) {
	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Reader{file: file}, nil
}

func (f *Factory) NewWriter() ports.WorkbookWriter {
	return &Writer{file: excelize.NewFile()}
}

type Reader struct {
	file *excelize.File
}

func (r *Reader) FirstSheetColumn(index int) ([]string, error) {
	sheet := r.file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}
	column := make([]string, len(rows))
	for i, row := range rows {
		if len(row) >= index {
			column[i] = row[index-1]
		}
	}
	return column, nil
}

func (r *Reader) Close() error { return r.file.Close() }

type Writer struct {
	file *excelize.File
}

func (w *Writer) WriteCell(row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name for row=%d col=%d: %w", row, col, err)
	}
	return w.file.SetCellStr(w.file.GetSheetName(0), cell, value)
}

func (w *Writer) SaveTo(path string) error { return w.file.SaveAs(path) }

func (w *Writer) Close() error { return w.file.Close() }
