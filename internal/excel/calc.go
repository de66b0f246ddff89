package excel

import (
	"fmt"

	"colshift/internal/column"
	"colshift/internal/logger"

	"github.com/xuri/excelize/v2"
)

// ClearCachedResults drops the formula results of the last Recalculate.
func (e *Editor) ClearCachedResults() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.results = make(map[string]string)
	return nil
}

// Recalculate evaluates every formula cell in the workbook with the excelize
// calculation engine. A formula the engine cannot evaluate is logged and
// left without a result; it does not fail the call.
func (e *Editor) Recalculate() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	results := make(map[string]string)
	failed := 0
	for _, name := range e.file.GetSheetList() {
		rows, err := e.file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return fmt.Errorf("failed to get rows of %q: %w", name, err)
		}
		for r, row := range rows {
			for c := range row {
				ref, _ := column.CellRef(c, r)
				formula, err := e.file.GetCellFormula(name, ref)
				if err != nil {
					return fmt.Errorf("failed to get formula of %s!%s: %w", name, ref, err)
				}
				if formula == "" {
					continue
				}

				value, err := e.file.CalcCellValue(name, ref)
				if err != nil {
					failed++
					logger.Warn("Formula evaluation failed",
						"sheet", name,
						"cell", ref,
						"formula", formula,
						"error", err)
					continue
				}
				results[resultKey(name, ref)] = value
			}
		}
	}

	e.results = results
	logger.Info("Recalculated formulas", "evaluated", len(results), "failed", failed)
	return nil
}

// Result returns what the formula in sheetName!cell evaluated to during the
// last Recalculate.
func (e *Editor) Result(sheetName, cell string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.results[resultKey(sheetName, cell)]
	return v, ok
}

func resultKey(sheetName, cell string) string {
	return sheetName + "!" + cell
}
