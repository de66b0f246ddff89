package sheet

import (
	"context"
	"fmt"

	"colshift/internal/column"
	"colshift/internal/logger"

	"golang.org/x/sync/errgroup"
)

// Options tunes InsertColumn.
type Options struct {
	// Workers bounds how many rows are shifted concurrently. Values below 2
	// shift rows one after another. Concurrent use requires a Sheet that is
	// safe for concurrent calls on distinct rows.
	Workers int
}

// LastColumn returns the highest occupied column index over the given rows,
// or -1 when none of them holds a cell.
func LastColumn(sh Sheet, rows []int) (int, error) {
	last := -1
	for _, r := range rows {
		cols, err := sh.Columns(r)
		if err != nil {
			return -1, fmt.Errorf("failed to read columns of row %d: %w", r, err)
		}
		for _, c := range cols {
			if c > last {
				last = c
			}
		}
	}
	return last, nil
}

// InsertColumn inserts an empty column at target in the sheet at
// sheetIndex. Every cell at or right of target moves one column right,
// column widths follow, and target holds a fresh blank cell in every present
// row. Formula text is carried over unchanged; afterwards the workbook's
// formulas are recalculated once.
//
// There is no rollback: on error the sheet may be partially shifted, and a
// *ShiftError tells where. A nil ctx is treated as context.Background().
func InsertColumn(ctx context.Context, wb Workbook, sheetIndex, target int, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if wb == nil {
		return ErrNilWorkbook
	}
	if target < 0 {
		return fmt.Errorf("invalid target column: %w: %d", column.ErrNegativeIndex, target)
	}

	sh, err := wb.SheetAt(sheetIndex)
	if err != nil {
		return fmt.Errorf("failed to get sheet %d: %w", sheetIndex, err)
	}
	if sh == nil {
		return ErrNilSheet
	}

	if err := wb.ClearCachedResults(); err != nil {
		return fmt.Errorf("failed to clear cached formula results: %w", err)
	}

	rows, err := sh.RowIndices()
	if err != nil {
		return fmt.Errorf("failed to list rows of sheet %q: %w", sh.Name(), err)
	}
	last, err := LastColumn(sh, rows)
	if err != nil {
		return err
	}
	width := last + 1

	logger.Debug("Inserting column",
		"sheet", sh.Name(),
		"target_column", target,
		"rows", len(rows),
		"width", width,
		"workers", opts.Workers)

	// Read every row before writing any. Shared formulas link cells across
	// rows, and clearing a master cell drops its dependents.
	snaps := make([][]*Cell, len(rows))
	err = forEachRow(ctx, rows, opts.Workers, func(i, r int) error {
		snap, err := snapshotRow(sh, r, width, target)
		snaps[i] = snap
		return err
	})
	if err != nil {
		return err
	}
	err = forEachRow(ctx, rows, opts.Workers, func(i, r int) error {
		return shiftRow(sh, r, target, snaps[i])
	})
	if err != nil {
		return err
	}

	// Widths are sheet-level state; touch them only after every row is done.
	for col := width; col > target; col-- {
		w, err := sh.ColWidth(col - 1)
		if err != nil {
			return &ShiftError{Sheet: sh.Name(), Row: -1, Column: col - 1, Err: err}
		}
		if err := sh.SetColWidth(col, w); err != nil {
			return &ShiftError{Sheet: sh.Name(), Row: -1, Column: col, Err: err}
		}
	}

	if err := wb.Recalculate(); err != nil {
		return fmt.Errorf("failed to recalculate formulas: %w", err)
	}

	logger.Info("Inserted column", "sheet", sh.Name(), "target_column", target, "rows", len(rows))
	return nil
}

// forEachRow runs fn for every row, at most workers at a time, and stops at
// the first error.
func forEachRow(ctx context.Context, rows []int, workers int, fn func(i, row int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, r := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(i, r)
		})
	}
	return g.Wait()
}

// snapshotRow copies the cells of one row in [target, width). Absent
// positions stay nil.
func snapshotRow(sh Sheet, row, width, target int) ([]*Cell, error) {
	if width <= target {
		return nil, nil
	}
	snap := make([]*Cell, width-target)
	for col := target; col < width; col++ {
		c, err := sh.Cell(row, col)
		if err != nil {
			return nil, &ShiftError{Sheet: sh.Name(), Row: row, Column: col, Err: err}
		}
		if c == nil {
			continue
		}
		snap[col-target] = &Cell{}
		CloneInto(snap[col-target], c)
	}
	return snap, nil
}

// shiftRow writes the snapshot of one row back one column right, walking
// from the right edge, and leaves a blank cell at target.
func shiftRow(sh Sheet, row, target int, snap []*Cell) error {
	fail := func(col int, err error) error {
		return &ShiftError{Sheet: sh.Name(), Row: row, Column: col, Err: err}
	}

	for col := target + len(snap); col > target; col-- {
		if err := removeIfPresent(sh, row, col); err != nil {
			return fail(col, err)
		}
		if left := snap[col-1-target]; left != nil {
			if err := sh.PutCell(row, col, left); err != nil {
				return fail(col, err)
			}
		}
	}

	if err := removeIfPresent(sh, row, target); err != nil {
		return fail(target, err)
	}
	if err := sh.PutCell(row, target, BlankCell()); err != nil {
		return fail(target, err)
	}
	return nil
}

func removeIfPresent(sh Sheet, row, col int) error {
	c, err := sh.Cell(row, col)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	return sh.RemoveCell(row, col)
}
