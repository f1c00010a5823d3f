package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"spotexport/internal/repositories"
	"spotexport/internal/shared"
)

// History lists previous export runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.config.Database.Path); err != nil {
		return r.writePlain("No export history yet. Run `spotexport setup` and then `spotexport export`.\n")
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewHistoryRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, cmd.Bool("pretty"))
	}

	if len(runs) == 0 {
		return r.writePlain("No export runs recorded.\n")
	}

	for _, run := range runs {
		r.writePlain("%s  %-40s %-5s %d exported, %d skipped\n",
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.ArchiveName,
			run.Format,
			run.Exported,
			run.Skipped,
		)
	}

	return nil
}
