package sheet

import (
	"fmt"
	"sort"
	"sync"
)

const defaultWidth = 9.140625

// memBook is an in-memory Workbook used to exercise the operators without
// a file format underneath.
type memBook struct {
	sheets  []*memSheet
	cleared int
	recalcs int
}

func (b *memBook) SheetAt(index int) (Sheet, error) {
	if index < 0 || index >= len(b.sheets) {
		return nil, fmt.Errorf("no sheet at index %d", index)
	}
	return b.sheets[index], nil
}

func (b *memBook) ClearCachedResults() error {
	b.cleared++
	return nil
}

func (b *memBook) Recalculate() error {
	b.recalcs++
	return nil
}

type memSheet struct {
	mu      sync.Mutex
	name    string
	rows    map[int]map[int]*Cell
	widths  map[int]float64
	failPut map[[2]int]error
	// linked maps a position to cells that vanish when it is removed.
	linked map[[2]int][][2]int
}

func newMemSheet(name string) *memSheet {
	return &memSheet{
		name:   name,
		rows:   make(map[int]map[int]*Cell),
		widths: make(map[int]float64),
	}
}

// setRow replaces a row with cells at columns 0..len(cells)-1; nil entries
// stay absent.
func (s *memSheet) setRow(row int, cells ...*Cell) {
	r := make(map[int]*Cell)
	for col, c := range cells {
		if c != nil {
			r[col] = c
		}
	}
	s.rows[row] = r
}

func (s *memSheet) Name() string { return s.name }

func (s *memSheet) RowIndices() ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.rows))
	for r := range s.rows {
		out = append(out, r)
	}
	sort.Ints(out)
	return out, nil
}

func (s *memSheet) Columns(row int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.rows[row]))
	for c := range s.rows[row] {
		out = append(out, c)
	}
	sort.Ints(out)
	return out, nil
}

func (s *memSheet) Cell(row, col int) (*Cell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[row][col], nil
}

func (s *memSheet) PutCell(row, col int, c *Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failPut[[2]int{row, col}]; err != nil {
		return err
	}
	if s.rows[row] == nil {
		s.rows[row] = make(map[int]*Cell)
	}
	s.rows[row][col] = c
	return nil
}

func (s *memSheet) RemoveCell(row, col int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows[row], col)
	for _, pos := range s.linked[[2]int{row, col}] {
		delete(s.rows[pos[0]], pos[1])
	}
	return nil
}

func (s *memSheet) ColWidth(col int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.widths[col]; ok {
		return w, nil
	}
	return defaultWidth, nil
}

func (s *memSheet) SetColWidth(col int, width float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widths[col] = width
	return nil
}
