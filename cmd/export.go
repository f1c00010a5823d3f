package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"spotexport/internal/repositories"
	"spotexport/internal/shared"
	"spotexport/internal/tasks"
	"spotexport/internal/ui"
)

// Export runs the full pipeline: fetch, render, archive, and write to disk.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	formatValue := cmd.String("format")
	if formatValue == "" {
		formatValue = r.config.Export.Format
	}
	format, err := tasks.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Export.OutputDir
	}
	if outputDir == "" {
		outputDir = "."
	}

	library, err := r.resolveLibrary(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("tui") {
		return r.exportTUI(ctx, library, format, outputDir)
	}

	archivePath, result, err := r.runExport(ctx, library, format, outputDir, func(u tasks.ProgressUpdate) {
		r.writePlain("[%3d%%] %s\n", u.Percent, u.Message)
	})
	if err != nil {
		return err
	}

	r.writePlainln("✓ Export complete")
	r.writePlain("Archive: %s\n", archivePath)
	r.writePlain("Playlists: %d exported (%d yours, %d followed)", result.Total(), len(result.Mine), len(result.Others))
	if result.Skipped > 0 {
		r.writePlain(", %d skipped", result.Skipped)
	}
	r.writePlain("\n")

	return nil
}

// exportTUI wraps the same run in the interactive progress view.
func (r *Runner) exportTUI(ctx context.Context, library tasks.Library, format tasks.Format, outputDir string) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/spotexport-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, func(ctx context.Context, progress tasks.ProgressFunc) (string, error) {
		path, _, err := r.runExport(ctx, library, format, outputDir, progress)
		return path, err
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return model.Err()
}

// runExport performs one export end to end and returns the archive path.
func (r *Runner) runExport(ctx context.Context, library tasks.Library, format tasks.Format, outputDir string, progress tasks.ProgressFunc) (string, *tasks.ExportResult, error) {
	exporter := tasks.NewExporter(library, r.logger)

	result, err := exporter.Export(ctx, progress)
	if err != nil {
		return "", nil, err
	}

	blob, err := tasks.BuildArchive(result, format, tasks.NewZipWriter())
	if err != nil {
		return "", nil, err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	archiveName := tasks.ArchiveFilename(time.Now())
	archivePath := filepath.Join(outputDir, archiveName)
	if err := os.WriteFile(archivePath, blob, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write archive: %w", err)
	}

	r.recordRun(archiveName, format, result)

	return archivePath, result, nil
}

// recordRun appends the run to the export history. Best effort: a missing or
// uninitialized database is logged, never fatal.
func (r *Runner) recordRun(archiveName string, format tasks.Format, result *tasks.ExportResult) {
	if _, err := os.Stat(r.config.Database.Path); err != nil {
		r.logger.Debug("no database, skipping history", "path", r.config.Database.Path)
		return
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warn("failed to open database for history", "error", err)
		return
	}
	defer db.Close()

	run := &repositories.ExportRun{
		ArchiveName: archiveName,
		Format:      string(format),
		Exported:    result.Total(),
		Skipped:     result.Skipped,
	}
	if err := repositories.NewHistoryRepository(db).Create(run); err != nil {
		r.logger.Warn("failed to record export run", "error", err)
	}
}
