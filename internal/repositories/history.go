// package repositories provides the persistence layer for export run history.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"spotexport/internal/shared"
)

// ExportRun records one completed export: the archive written and how many
// playlists made it in versus how many were skipped.
type ExportRun struct {
	ID          string
	ArchiveName string
	Format      string
	Exported    int
	Skipped     int
	CreatedAt   time.Time
}

// HistoryRepository handles export_runs persistence.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts a new export run with a generated ID and the current time.
func (r *HistoryRepository) Create(run *ExportRun) error {
	if run.ArchiveName == "" {
		return fmt.Errorf("%w: archive name is required", shared.ErrInvalidInput)
	}

	run.ID = shared.GenerateID()
	run.CreatedAt = time.Now()

	query := `
		INSERT INTO export_runs (id, archive_name, format, exported, skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.ArchiveName,
		run.Format,
		run.Exported,
		run.Skipped,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}

	return nil
}

// Get retrieves a single export run by ID.
func (r *HistoryRepository) Get(id string) (*ExportRun, error) {
	query := `
		SELECT id, archive_name, format, exported, skipped, created_at
		FROM export_runs
		WHERE id = ?
	`

	run := &ExportRun{}
	err := r.db.QueryRow(query, id).Scan(
		&run.ID,
		&run.ArchiveName,
		&run.Format,
		&run.Exported,
		&run.Skipped,
		&run.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("export run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export run: %w", err)
	}

	return run, nil
}

// List returns export runs newest first, capped at limit (0 means all).
func (r *HistoryRepository) List(limit int) ([]*ExportRun, error) {
	query := `
		SELECT id, archive_name, format, exported, skipped, created_at
		FROM export_runs
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list export runs: %w", err)
	}
	defer rows.Close()

	var runs []*ExportRun
	for rows.Next() {
		run := &ExportRun{}
		err := rows.Scan(
			&run.ID,
			&run.ArchiveName,
			&run.Format,
			&run.Exported,
			&run.Skipped,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate export runs: %w", err)
	}

	return runs, nil
}
