package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"colshift/internal/logger"
	"colshift/internal/sheet"

	"github.com/google/uuid"
)

// BatchResult summarizes a directory run.
type BatchResult struct {
	RunID     string
	Processed int
	Failed    map[string]error
}

// InsertColumnInDirectory inserts a column into the given sheet of every
// .xlsx file under inputDir and saves each result under outputDir, keeping
// the path relative to inputDir. A file that fails is recorded in
// BatchResult.Failed and the run continues with the next one.
func InsertColumnInDirectory(ctx context.Context, inputDir, outputDir string, sheetIndex, target int, opts sheet.Options) (*BatchResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	xlsxFiles, err := getXlsxFiles(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get xlsx files: %w", err)
	}

	result := &BatchResult{
		RunID:  uuid.NewString(),
		Failed: make(map[string]error),
	}
	log := logger.With("run_id", result.RunID)
	log.Info("Starting batch insert", "input_directory", inputDir, "file_count", len(xlsxFiles))

	for i, inputFile := range xlsxFiles {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rel, err := filepath.Rel(inputDir, inputFile)
		if err != nil {
			rel = filepath.Base(inputFile)
		}
		log.Info("Processing file", "file", rel, "progress", fmt.Sprintf("%d/%d", i+1, len(xlsxFiles)))

		if err := insertIntoFile(ctx, inputFile, filepath.Join(outputDir, rel), sheetIndex, target, opts); err != nil {
			log.Error("Failed to process file", "file", rel, "error", err)
			result.Failed[rel] = err
			continue
		}
		result.Processed++
	}

	log.Info("Batch insert completed", "success_count", result.Processed, "error_count", len(result.Failed))
	return result, nil
}

func insertIntoFile(ctx context.Context, inputFile, outputFile string, sheetIndex, target int, opts sheet.Options) error {
	editor, err := OpenFile(inputFile)
	if err != nil {
		return err
	}
	defer editor.Close()

	if err := editor.InsertColumn(ctx, sheetIndex, target, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return editor.SaveAs(outputFile)
}

// getXlsxFiles returns all .xlsx files in the specified directory, skipping
// the lock files spreadsheet applications leave behind.
func getXlsxFiles(dir string) ([]string, error) {
	var xlsxFiles []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.ToLower(filepath.Ext(path)) == ".xlsx" && !strings.HasPrefix(info.Name(), "~$") {
			xlsxFiles = append(xlsxFiles, path)
		}

		return nil
	})

	return xlsxFiles, err
}
