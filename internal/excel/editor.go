package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"colshift/internal/logger"
	"colshift/internal/sheet"

	"github.com/xuri/excelize/v2"
)

var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrNoFilepath    = errors.New("no filepath specified, use SaveAs instead")
)

// Editor wraps an excelize workbook and exposes it as a sheet.Workbook.
// All workbook access goes through mu, so worksheets handed out by SheetAt
// may be used from several goroutines.
type Editor struct {
	mu       sync.Mutex
	file     *excelize.File
	filepath string
	results  map[string]string
}

// OpenFile opens an existing Excel file
func OpenFile(filepath string) (*Editor, error) {
	file, err := excelize.OpenFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return &Editor{
		file:     file,
		filepath: filepath,
		results:  make(map[string]string),
	}, nil
}

// CreateNewFile creates a new Excel file in memory
func CreateNewFile() *Editor {
	return &Editor{
		file:    excelize.NewFile(),
		results: make(map[string]string),
	}
}

// GetSheetNames returns all sheet names in the workbook
func (e *Editor) GetSheetNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.GetSheetList()
}

// SheetIndex returns the position of the named sheet in the sheet list.
func (e *Editor) SheetIndex(name string) (int, error) {
	for i, n := range e.GetSheetNames() {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

// GetColumnHeaders returns the values of the first row of a sheet.
func (e *Editor) GetColumnHeaders(sheetName string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows, err := e.file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get first row: %w", err)
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0], nil
}

// SheetAt implements sheet.Workbook.
func (e *Editor) SheetAt(index int) (sheet.Sheet, error) {
	names := e.GetSheetNames()
	if index < 0 || index >= len(names) {
		return nil, fmt.Errorf("%w: index %d of %d sheets", ErrSheetNotFound, index, len(names))
	}
	w, err := e.loadWorksheet(names[index])
	if err != nil {
		return nil, err
	}
	return w, nil
}

// InsertColumn inserts an empty column at the zero-based target column of
// the sheet at sheetIndex.
func (e *Editor) InsertColumn(ctx context.Context, sheetIndex, target int, opts sheet.Options) error {
	return sheet.InsertColumn(ctx, e, sheetIndex, target, opts)
}

// Save saves the Excel file to the path it was opened from
func (e *Editor) Save() error {
	if e.filepath == "" {
		return ErrNoFilepath
	}
	return e.SaveAs(e.filepath)
}

// SaveAs writes the workbook to path, replacing any existing file. The
// workbook is flagged for full recalculation on load. Data goes to a
// temporary file next to path first, so a failed save leaves an existing
// file intact.
func (e *Editor) SaveAs(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fullCalc := true
	if err := e.file.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return fmt.Errorf("failed to set calculation properties: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".colshift-*"+filepath.Ext(path))
	if err != nil {
		logger.Error("Failed to save workbook", "path", path, "error", err)
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	// Keep the permissions of the file being replaced.
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		logger.Error("Failed to save workbook", "path", path, "error", err)
		return fmt.Errorf("failed to set permissions of temporary file: %w", err)
	}

	// excelize picks the package content type from Path.
	prevPath := e.file.Path
	e.file.Path = path
	if err := e.file.Write(tmp); err != nil {
		e.file.Path = prevPath
		tmp.Close()
		logger.Error("Failed to save workbook", "path", path, "error", err)
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		e.file.Path = prevPath
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		e.file.Path = prevPath
		logger.Error("Failed to save workbook", "path", path, "error", err)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	e.filepath = path
	logger.Info("Saved workbook", "path", path)
	return nil
}

// Close closes the Excel file
func (e *Editor) Close() error {
	return e.file.Close()
}
