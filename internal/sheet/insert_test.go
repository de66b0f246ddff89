package sheet

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"colshift/internal/column"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectSheet(rows, width int) *memSheet {
	s := newMemSheet("Data")
	for r := 0; r < rows; r++ {
		cells := make([]*Cell, width)
		for c := range cells {
			switch c % 3 {
			case 0:
				cells[c] = StringCell(fmt.Sprintf("r%dc%d", r, c))
			case 1:
				cells[c] = NumberCell(float64(r*100 + c))
			default:
				cells[c] = FormulaCell(fmt.Sprintf("A%d+B%d", r+1, r+1))
			}
		}
		s.setRow(r, cells...)
	}
	return s
}

func snapshot(s *memSheet) map[int]map[int]Cell {
	out := make(map[int]map[int]Cell)
	for r, row := range s.rows {
		out[r] = make(map[int]Cell)
		for c, cell := range row {
			out[r][c] = *cell
		}
	}
	return out
}

func TestInsertColumnShiftsEveryRow(t *testing.T) {
	const rows, width = 4, 5

	for k := 0; k <= width; k++ {
		t.Run(fmt.Sprintf("target_%d", k), func(t *testing.T) {
			s := rectSheet(rows, width)
			before := snapshot(s)
			book := &memBook{sheets: []*memSheet{s}}

			require.NoError(t, InsertColumn(context.Background(), book, 0, k, Options{}))

			for r := 0; r < rows; r++ {
				blank, _ := s.Cell(r, k)
				require.NotNil(t, blank)
				assert.Equal(t, Blank, blank.Kind)

				for c := 0; c < width; c++ {
					got, _ := s.Cell(r, c)
					want := before[r][c]
					if c >= k {
						got, _ = s.Cell(r, c+1)
					}
					require.NotNil(t, got, "row %d col %d", r, c)
					assert.Equal(t, want.Kind, got.Kind)
					assert.Equal(t, want.Value(), got.Value())
				}
			}
			assert.Equal(t, 1, book.cleared)
			assert.Equal(t, 1, book.recalcs)
		})
	}
}

func TestInsertColumnEndToEnd(t *testing.T) {
	s := newMemSheet("Sheet1")
	s.setRow(0, StringCell("Name"), NumberCell(1), NumberCell(2))
	s.setRow(1, StringCell("Ada"), NumberCell(3), FormulaCell("B2*2"))
	s.setRow(2, StringCell("Lin"), BoolCell(true), ErrorCell("#N/A"))
	s.widths[0], s.widths[1], s.widths[2] = 20, 12, 8
	book := &memBook{sheets: []*memSheet{s}}

	require.NoError(t, InsertColumn(context.Background(), book, 0, 1, Options{}))

	row0 := []*Cell{StringCell("Name"), BlankCell(), NumberCell(1), NumberCell(2)}
	for c, want := range row0 {
		got, _ := s.Cell(0, c)
		require.NotNil(t, got)
		assert.Equal(t, want.Kind, got.Kind, "col %d", c)
		assert.Equal(t, want.Value(), got.Value(), "col %d", c)
	}

	f, _ := s.Cell(1, 3)
	assert.Equal(t, Formula, f.Kind)
	assert.Equal(t, "B2*2", f.Text, "formula text must not be rewritten")

	e, _ := s.Cell(2, 3)
	assert.Equal(t, Error, e.Kind)
	assert.Equal(t, "#N/A", e.Text)

	assert.Equal(t, 20.0, s.widths[0])
	assert.Equal(t, 12.0, s.widths[1])
	assert.Equal(t, 12.0, s.widths[2])
	assert.Equal(t, 8.0, s.widths[3])
}

func TestInsertColumnUsesWidestRow(t *testing.T) {
	s := newMemSheet("Ragged")
	s.setRow(0, StringCell("a"))
	s.setRow(1, StringCell("b"), nil, nil, NumberCell(4))
	s.setRow(5, StringCell("c"), StringCell("d"))
	book := &memBook{sheets: []*memSheet{s}}

	require.NoError(t, InsertColumn(context.Background(), book, 0, 0, Options{}))

	last, _ := s.Cell(1, 4)
	require.NotNil(t, last)
	assert.Equal(t, 4.0, last.Number)

	gap, _ := s.Cell(1, 2)
	assert.Nil(t, gap, "absent cells stay absent after the shift")

	d, _ := s.Cell(5, 2)
	require.NotNil(t, d)
	assert.Equal(t, "d", d.Text)

	_, created := s.rows[3]
	assert.False(t, created, "absent rows are skipped, not created")
}

func TestInsertColumnBeyondLastColumn(t *testing.T) {
	s := newMemSheet("Sheet1")
	s.setRow(0, StringCell("x"), StringCell("y"))
	book := &memBook{sheets: []*memSheet{s}}

	require.NoError(t, InsertColumn(context.Background(), book, 0, 5, Options{}))

	cols, _ := s.Columns(0)
	assert.Equal(t, []int{0, 1, 5}, cols)
	assert.Empty(t, s.widths)
}

func TestInsertColumnCarriesStyleAndComment(t *testing.T) {
	s := newMemSheet("Sheet1")
	note := &Comment{Author: "qa", Text: "verify"}
	styled := NumberCell(10)
	styled.Style, styled.Comment = 4, note
	s.setRow(0, StringCell("h"), styled)
	book := &memBook{sheets: []*memSheet{s}}

	require.NoError(t, InsertColumn(context.Background(), book, 0, 1, Options{}))

	moved, _ := s.Cell(0, 2)
	require.NotNil(t, moved)
	assert.Equal(t, 4, moved.Style)
	assert.Same(t, note, moved.Comment)

	fresh, _ := s.Cell(0, 1)
	assert.Equal(t, 0, fresh.Style)
	assert.Nil(t, fresh.Comment)
}

func TestInsertColumnConcurrentRows(t *testing.T) {
	sequential := rectSheet(50, 12)
	parallel := rectSheet(50, 12)

	require.NoError(t, InsertColumn(context.Background(), &memBook{sheets: []*memSheet{sequential}}, 0, 3, Options{}))
	require.NoError(t, InsertColumn(context.Background(), &memBook{sheets: []*memSheet{parallel}}, 0, 3, Options{Workers: 8}))

	assert.Equal(t, snapshot(sequential), snapshot(parallel))
}

func TestInsertColumnReadsAllRowsBeforeWriting(t *testing.T) {
	s := newMemSheet("Sheet1")
	for r := 0; r < 4; r++ {
		s.setRow(r, NumberCell(float64(r)), FormulaCell(fmt.Sprintf("A%d*2", r+1)))
	}
	// Removing B1 takes B2:B4 with it, like a shared formula master.
	s.linked = map[[2]int][][2]int{{0, 1}: {{1, 1}, {2, 1}, {3, 1}}}
	book := &memBook{sheets: []*memSheet{s}}

	require.NoError(t, InsertColumn(context.Background(), book, 0, 1, Options{}))

	for r := 0; r < 4; r++ {
		c, _ := s.Cell(r, 2)
		require.NotNil(t, c, "row %d", r)
		assert.Equal(t, Formula, c.Kind, "row %d", r)
		assert.Equal(t, fmt.Sprintf("A%d*2", r+1), c.Text, "row %d", r)

		blank, _ := s.Cell(r, 1)
		require.NotNil(t, blank, "row %d", r)
		assert.Equal(t, Blank, blank.Kind, "row %d", r)
	}
}

func TestInsertColumnNilContext(t *testing.T) {
	s := rectSheet(2, 2)
	book := &memBook{sheets: []*memSheet{s}}

	var ctx context.Context
	require.NoError(t, InsertColumn(ctx, book, 0, 0, Options{}))
	assert.Equal(t, 1, book.recalcs)
}

func TestInsertColumnErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("nil workbook", func(t *testing.T) {
		err := InsertColumn(ctx, nil, 0, 0, Options{})
		require.ErrorIs(t, err, ErrNilWorkbook)
	})

	t.Run("negative target", func(t *testing.T) {
		book := &memBook{sheets: []*memSheet{rectSheet(1, 2)}}
		err := InsertColumn(ctx, book, 0, -1, Options{})
		require.ErrorIs(t, err, column.ErrNegativeIndex)
		assert.Zero(t, book.cleared, "argument errors fail before any mutation")
	})

	t.Run("missing sheet", func(t *testing.T) {
		book := &memBook{}
		require.Error(t, InsertColumn(ctx, book, 3, 0, Options{}))
	})

	t.Run("canceled", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		book := &memBook{sheets: []*memSheet{rectSheet(3, 2)}}
		err := InsertColumn(canceled, book, 0, 0, Options{})
		require.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, book.recalcs)
	})

	t.Run("write failure reports position", func(t *testing.T) {
		s := rectSheet(3, 3)
		boom := errors.New("disk full")
		s.failPut = map[[2]int]error{{1, 2}: boom}
		book := &memBook{sheets: []*memSheet{s}}

		err := InsertColumn(ctx, book, 0, 0, Options{})
		require.ErrorIs(t, err, boom)

		var shiftErr *ShiftError
		require.ErrorAs(t, err, &shiftErr)
		assert.Equal(t, "Data", shiftErr.Sheet)
		assert.Equal(t, 1, shiftErr.Row)
		assert.Equal(t, 2, shiftErr.Column)
		assert.Zero(t, book.recalcs)
	})
}

func TestLastColumn(t *testing.T) {
	s := newMemSheet("Sheet1")
	last, err := LastColumn(s, nil)
	require.NoError(t, err)
	assert.Equal(t, -1, last)

	s.setRow(0, StringCell("a"), StringCell("b"))
	s.setRow(2, nil, nil, nil, StringCell("d"))
	rows, _ := s.RowIndices()
	last, err = LastColumn(s, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, last)
}
