package ports

// RowSink is an append-only, 1-indexed cell grid the extraction output is
// written into. Row indices are caller-assigned; the sink never allocates
// its own cursor.
type RowSink interface {
	WriteCell(row, col int, value string) error
}

// WorkbookReader exposes cell data of one uploaded workbook.
type WorkbookReader interface {
	// FirstSheetColumn returns the given 1-indexed column of the first
	// sheet, one entry per row, empty string for missing cells.
	FirstSheetColumn(index int) ([]string, error)
	Close() error
}

// WorkbookWriter builds the output workbook and persists it to disk.
type WorkbookWriter interface {
	RowSink
	SaveTo(path string) error
	Close() error
}

// WorkbookFactory opens uploaded workbooks and creates output workbooks.
type WorkbookFactory interface {
	OpenReader(content []byte) (WorkbookReader, error)
	NewWriter() WorkbookWriter
}
