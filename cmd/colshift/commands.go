package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"colshift/internal/column"
	"colshift/internal/excel"
	"colshift/internal/logger"
	"colshift/internal/picker"
	"colshift/internal/sheet"

	"github.com/spf13/cobra"
)

type insertFlags struct {
	sheet   string
	column  string
	index   int
	output  string
	workers int
}

func (f *insertFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Sheet name or zero-based index (default from config)")
	cmd.Flags().StringVar(&f.column, "column", "", "Insertion column label, e.g. C (default from config)")
	cmd.Flags().IntVar(&f.index, "index", -1, "Zero-based insertion column index, overrides --column")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Rows shifted concurrently (default from config)")
}

// target resolves the insertion column from flags, falling back to config.
func (f *insertFlags) target() (int, error) {
	if f.index >= 0 {
		return f.index, nil
	}
	label := f.column
	if label == "" {
		label = cfg.Insert.Column
	}
	return column.ToIndex(label)
}

func (f *insertFlags) options() sheet.Options {
	if f.workers > 0 {
		return sheet.Options{Workers: f.workers}
	}
	return sheet.Options{Workers: cfg.Insert.Workers}
}

// resolveSheet accepts a sheet name or a zero-based index.
func resolveSheet(editor *excel.Editor, selector string) (int, error) {
	if selector == "" {
		return cfg.Insert.SheetIndex, nil
	}
	if idx, err := editor.SheetIndex(selector); err == nil {
		return idx, nil
	}
	if idx, err := strconv.Atoi(selector); err == nil {
		return idx, nil
	}
	return -1, fmt.Errorf("%w: %q", excel.ErrSheetNotFound, selector)
}

func newInsertCmd() *cobra.Command {
	var flags insertFlags
	cmd := &cobra.Command{
		Use:   "insert <file.xlsx>",
		Short: "Insert an empty column into one workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := flags.target()
			if err != nil {
				return err
			}
			return runInsert(cmd.Context(), args[0], flags, func(*excel.Editor, int) (int, error) {
				return target, nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: overwrite input)")
	return cmd
}

func newPickCmd() *cobra.Command {
	var flags insertFlags
	cmd := &cobra.Command{
		Use:   "pick <file.xlsx>",
		Short: "Choose the insertion column interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(cmd.Context(), args[0], flags, func(editor *excel.Editor, sheetIndex int) (int, error) {
				names := editor.GetSheetNames()
				if sheetIndex < 0 || sheetIndex >= len(names) {
					return -1, fmt.Errorf("%w: index %d", excel.ErrSheetNotFound, sheetIndex)
				}
				headers, err := editor.GetColumnHeaders(names[sheetIndex])
				if err != nil {
					return -1, err
				}
				return picker.Run(headers, picker.UIConfig{
					ColumnsPerRow: cfg.UI.ColumnsPerRow,
					RowsPerPage:   cfg.UI.RowsPerPage,
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.sheet, "sheet", "", "Sheet name or zero-based index (default from config)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Rows shifted concurrently (default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: overwrite input)")
	return cmd
}

func runInsert(ctx context.Context, path string, flags insertFlags, chooseTarget func(*excel.Editor, int) (int, error)) error {
	editor, err := excel.OpenFile(path)
	if err != nil {
		return err
	}
	defer editor.Close()

	sheetIndex, err := resolveSheet(editor, flags.sheet)
	if err != nil {
		return err
	}
	target, err := chooseTarget(editor, sheetIndex)
	if errors.Is(err, picker.ErrAborted) {
		fmt.Println("Aborted, workbook left unchanged.")
		return nil
	}
	if err != nil {
		return err
	}

	label, err := column.ToLabel(target)
	if err != nil {
		return err
	}
	logger.Info("Starting insert operation", "file", path, "sheet_index", sheetIndex, "target_column", label)

	if err := editor.InsertColumn(ctx, sheetIndex, target, flags.options()); err != nil {
		logger.Error("Insert operation failed", "file", path, "error", err)
		return err
	}

	output := flags.output
	if output == "" {
		output = path
	}
	if err := editor.SaveAs(output); err != nil {
		return err
	}

	fmt.Printf("✓ Inserted column %s\n", label)
	fmt.Printf("✓ Saved to %s\n", output)
	return nil
}

func newInsertAllCmd() *cobra.Command {
	var flags insertFlags
	cmd := &cobra.Command{
		Use:   "insert-all",
		Short: "Insert the configured column into every workbook of the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := flags.target()
			if err != nil {
				return err
			}
			sheetIndex := cfg.Insert.SheetIndex
			if flags.sheet != "" {
				if sheetIndex, err = strconv.Atoi(flags.sheet); err != nil {
					return fmt.Errorf("insert-all needs a numeric --sheet: %w", err)
				}
			}

			result, err := excel.InsertColumnInDirectory(cmd.Context(),
				cfg.Batch.InputDirectory,
				cfg.Batch.OutputDirectory,
				sheetIndex, target, flags.options())
			if err != nil {
				return err
			}

			fmt.Printf("\n========================================\n")
			fmt.Printf("✓ Success: %d files\n", result.Processed)
			for file, ferr := range result.Failed {
				fmt.Printf("❌ %s: %v\n", file, ferr)
			}
			fmt.Printf("Results saved to: %s (run %s)\n", cfg.Batch.OutputDirectory, result.RunID)
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d files failed", len(result.Failed), len(result.Failed)+result.Processed)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newLabelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label <index>...",
		Short: "Print the column label of zero-based column indices",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", arg, err)
				}
				label, err := column.ToLabel(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n, label)
			}
			return nil
		},
	}
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <label>...",
		Short: "Print the zero-based column index of column labels",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				n, err := column.ToIndex(arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", arg, n)
			}
			return nil
		},
	}
}
