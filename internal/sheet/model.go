package sheet

import (
	"errors"
	"fmt"
)

var (
	ErrNilWorkbook = errors.New("workbook must not be nil")
	ErrNilSheet    = errors.New("sheet must not be nil")
)

// Sheet is the per-worksheet surface the column operations need. Rows and
// cells are sparse; indices are zero-based. Cell returns nil, nil for an
// absent cell.
type Sheet interface {
	Name() string
	RowIndices() ([]int, error)
	Columns(row int) ([]int, error)
	Cell(row, col int) (*Cell, error)
	PutCell(row, col int, c *Cell) error
	RemoveCell(row, col int) error
	ColWidth(col int) (float64, error)
	SetColWidth(col int, width float64) error
}

// Workbook owns the sheets and the formula result cache.
//
// ClearCachedResults and Recalculate bracket a structural edit: the first
// drops every cached formula result, the second evaluates all formulas of
// the workbook again.
type Workbook interface {
	SheetAt(index int) (Sheet, error)
	ClearCachedResults() error
	Recalculate() error
}

// ShiftError reports where a column shift stopped. Cells handled before the
// failure stay shifted.
type ShiftError struct {
	Sheet  string
	Row    int
	Column int
	Err    error
}

func (e *ShiftError) Error() string {
	return fmt.Sprintf("shift failed in sheet %q at row %d, column %d: %v", e.Sheet, e.Row, e.Column, e.Err)
}

func (e *ShiftError) Unwrap() error {
	return e.Err
}
