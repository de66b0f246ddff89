package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"colshift/internal/column"
	"colshift/internal/sheet"

	"github.com/xuri/excelize/v2"
)

// worksheet adapts one excelize sheet to sheet.Sheet.
//
// Occupied positions are indexed when the sheet is loaded and kept current
// by PutCell and RemoveCell. excelize does not list cells that carry only a
// style, so those are probed for up to one column past the data, or to the
// stored sheet dimension when that reaches further.
type worksheet struct {
	editor   *Editor
	name     string
	occupied map[int]map[int]bool
	comments map[string]*sheet.Comment
}

func (e *Editor) loadWorksheet(name string) (*worksheet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	w := &worksheet{
		editor:   e,
		name:     name,
		occupied: make(map[int]map[int]bool),
		comments: make(map[string]*sheet.Comment),
	}

	rows, err := e.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get rows of %q: %w", name, err)
	}
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				// Formula cells without a cached result read as empty.
				ref, _ := column.CellRef(c, r)
				formula, err := e.file.GetCellFormula(name, ref)
				if err != nil {
					return nil, fmt.Errorf("failed to get formula of %s!%s: %w", name, ref, err)
				}
				if formula == "" {
					continue
				}
			}
			w.mark(r, c)
		}
	}

	comments, err := e.file.GetComments(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of %q: %w", name, err)
	}
	for _, cm := range comments {
		col, row, err := excelize.CellNameToCoordinates(cm.Cell)
		if err != nil {
			continue
		}
		w.comments[cm.Cell] = &sheet.Comment{Author: cm.Author, Text: commentText(cm)}
		w.mark(row-1, col-1)
	}

	if err := w.markStyledEdge(); err != nil {
		return nil, err
	}
	return w, nil
}

// markStyledEdge must be called with the editor lock held.
func (w *worksheet) markStyledEdge() error {
	f := w.editor.file

	lastRow, lastCol := -1, -1
	rowEnd := make(map[int]int, len(w.occupied))
	for r, cols := range w.occupied {
		end := -1
		for c := range cols {
			end = max(end, c)
		}
		rowEnd[r] = end
		lastRow, lastCol = max(lastRow, r), max(lastCol, end)
	}
	edge := lastCol + 1

	dim, err := f.GetSheetDimension(w.name)
	if err != nil {
		return fmt.Errorf("failed to get dimension of %q: %w", w.name, err)
	}
	if dim != "" {
		corner := dim[strings.LastIndex(dim, ":")+1:]
		if col, row, err := excelize.CellNameToCoordinates(corner); err == nil {
			edge, lastRow = max(edge, col-1), max(lastRow, row-1)
		}
	}

	for r := 0; r <= lastRow; r++ {
		start := 0
		if end, ok := rowEnd[r]; ok {
			start = end + 1
		}
		for c := start; c <= edge; c++ {
			ref, err := column.CellRef(c, r)
			if err != nil {
				return err
			}
			style, err := f.GetCellStyle(w.name, ref)
			if err != nil {
				return fmt.Errorf("failed to get style of %s!%s: %w", w.name, ref, err)
			}
			if style != 0 {
				w.mark(r, c)
			}
		}
	}
	return nil
}

func commentText(cm excelize.Comment) string {
	if cm.Text != "" || len(cm.Paragraph) == 0 {
		return cm.Text
	}
	var text string
	for _, run := range cm.Paragraph {
		text += run.Text
	}
	return text
}

func (w *worksheet) mark(row, col int) {
	if w.occupied[row] == nil {
		w.occupied[row] = make(map[int]bool)
	}
	w.occupied[row][col] = true
}

func (w *worksheet) Name() string {
	return w.name
}

func (w *worksheet) RowIndices() ([]int, error) {
	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()

	rows := make([]int, 0, len(w.occupied))
	for r := range w.occupied {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows, nil
}

func (w *worksheet) Columns(row int) ([]int, error) {
	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()

	cols := make([]int, 0, len(w.occupied[row]))
	for c := range w.occupied[row] {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols, nil
}

func (w *worksheet) Cell(row, col int) (*sheet.Cell, error) {
	ref, err := column.CellRef(col, row)
	if err != nil {
		return nil, err
	}

	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()
	f := w.editor.file

	style, err := f.GetCellStyle(w.name, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get style of %s: %w", ref, err)
	}
	c := &sheet.Cell{Style: style, Comment: w.comments[ref]}

	formula, err := f.GetCellFormula(w.name, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get formula of %s: %w", ref, err)
	}
	if formula != "" {
		c.Kind, c.Text = sheet.Formula, formula
		return c, nil
	}

	raw, err := f.GetCellValue(w.name, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to get value of %s: %w", ref, err)
	}
	if raw == "" {
		if style == 0 && c.Comment == nil && !w.occupied[row][col] {
			return nil, nil
		}
		c.Kind = sheet.Blank
		return c, nil
	}

	typ, err := f.GetCellType(w.name, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get type of %s: %w", ref, err)
	}
	switch typ {
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("malformed boolean in %s: %q", ref, raw)
		}
		c.Kind, c.Bool = sheet.Bool, b
	case excelize.CellTypeError:
		c.Kind, c.Text = sheet.Error, raw
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeDate, excelize.CellTypeFormula:
		c.Kind, c.Text = sheet.String, raw
	default:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			c.Kind, c.Number = sheet.Number, n
		} else {
			c.Kind, c.Text = sheet.String, raw
		}
	}
	return c, nil
}

// PutCell writes c at the given position. Error cells are stored as their
// code text: excelize has no setter for the error cell type.
func (w *worksheet) PutCell(row, col int, c *sheet.Cell) error {
	ref, err := column.CellRef(col, row)
	if err != nil {
		return err
	}

	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()
	f := w.editor.file

	switch c.Kind {
	case sheet.Bool:
		err = f.SetCellBool(w.name, ref, c.Bool)
	case sheet.Number:
		err = f.SetCellFloat(w.name, ref, c.Number, -1, 64)
	case sheet.String, sheet.Error:
		err = f.SetCellStr(w.name, ref, c.Text)
	case sheet.Formula:
		err = f.SetCellFormula(w.name, ref, c.Text)
	default:
		err = f.SetCellValue(w.name, ref, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to set %s cell %s: %w", c.Kind, ref, err)
	}

	if err := f.SetCellStyle(w.name, ref, ref, c.Style); err != nil {
		return fmt.Errorf("failed to set style of %s: %w", ref, err)
	}

	if err := w.dropComment(ref); err != nil {
		return err
	}
	if c.Comment != nil {
		err := f.AddComment(w.name, excelize.Comment{
			Cell:   ref,
			Author: c.Comment.Author,
			Text:   c.Comment.Text,
		})
		if err != nil {
			return fmt.Errorf("failed to add comment to %s: %w", ref, err)
		}
		w.comments[ref] = c.Comment
	}

	w.mark(row, col)
	return nil
}

func (w *worksheet) RemoveCell(row, col int) error {
	ref, err := column.CellRef(col, row)
	if err != nil {
		return err
	}

	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()
	f := w.editor.file

	if err := f.SetCellFormula(w.name, ref, ""); err != nil {
		return fmt.Errorf("failed to clear formula of %s: %w", ref, err)
	}
	if err := f.SetCellValue(w.name, ref, nil); err != nil {
		return fmt.Errorf("failed to clear value of %s: %w", ref, err)
	}
	if err := f.SetCellStyle(w.name, ref, ref, 0); err != nil {
		return fmt.Errorf("failed to clear style of %s: %w", ref, err)
	}
	if err := w.dropComment(ref); err != nil {
		return err
	}

	delete(w.occupied[row], col)
	return nil
}

// dropComment must be called with the editor lock held.
func (w *worksheet) dropComment(ref string) error {
	if _, ok := w.comments[ref]; !ok {
		return nil
	}
	if err := w.editor.file.DeleteComment(w.name, ref); err != nil {
		return fmt.Errorf("failed to delete comment of %s: %w", ref, err)
	}
	delete(w.comments, ref)
	return nil
}

func (w *worksheet) ColWidth(col int) (float64, error) {
	label, err := column.ToLabel(col)
	if err != nil {
		return 0, err
	}

	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()
	return w.editor.file.GetColWidth(w.name, label)
}

func (w *worksheet) SetColWidth(col int, width float64) error {
	label, err := column.ToLabel(col)
	if err != nil {
		return err
	}

	w.editor.mu.Lock()
	defer w.editor.mu.Unlock()
	return w.editor.file.SetColWidth(w.name, label, label, width)
}
