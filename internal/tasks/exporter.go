package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"spotexport/internal/formatter"
	"spotexport/internal/services"
	"spotexport/internal/shared"
)

// Library is the subset of the Spotify client the export loop depends on.
// The abstraction keeps the loop testable without network access.
type Library interface {
	CurrentUser(ctx context.Context) (*services.User, error)
	AllPlaylists(ctx context.Context) ([]services.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]services.TrackItem, error)
	PlaylistDate(ctx context.Context, playlistID string) (time.Time, bool)
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// PlaylistExport is the rendered, packageable representation of one playlist.
// Immutable once built.
type PlaylistExport struct {
	FolderName  string // "<YYYY-MM-DD> - <sanitized name>"
	Title       string
	Description string
	Author      string
	Cover       []byte // nil when no cover was downloaded
	CSV         string
	M3U         string
	TrackCount  int // renderable (non-null) tracks only
}

// ExportResult is the aggregate outcome of one export run, classified by
// ownership. Order within each list matches source iteration order.
type ExportResult struct {
	Mine    []PlaylistExport
	Others  []PlaylistExport
	Skipped int // playlists dropped by per-playlist failures
}

// Total returns the number of playlists that survived the run.
func (r *ExportResult) Total() int {
	return len(r.Mine) + len(r.Others)
}

// Exporter drives the sequential per-playlist export loop.
type Exporter struct {
	library Library
	logger  *log.Logger
	now     func() time.Time
}

// NewExporter creates an Exporter over the given library.
func NewExporter(library Library, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{
		library: library,
		logger:  logger,
		now:     time.Now,
	}
}

// Export runs the full pipeline and returns the classified results.
//
// Any error raised while processing a single playlist is logged and that
// playlist is skipped; the run only fails when the user lookup or the
// playlist listing fails, or when the account has no playlists at all.
func (e *Exporter) Export(ctx context.Context, progress ProgressFunc) (*ExportResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: library not initialized", shared.ErrServiceUnavailable)
	}

	user, err := e.library.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}

	report(progress, fetchingPlaylistsUpdate())

	playlists, err := e.library.AllPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	if len(playlists) == 0 {
		return nil, shared.ErrNoPlaylists
	}

	result := &ExportResult{}
	total := len(playlists)
	unnamed := 0

	for i, playlist := range playlists {
		report(progress, exportingPlaylistUpdate(i+1, total))

		title := playlist.Name
		if strings.TrimSpace(title) == "" {
			unnamed++
			title = fmt.Sprintf("Unnamed Playlist %d", unnamed)
		}

		export, err := e.exportOne(ctx, playlist, title)
		if err != nil {
			e.logger.Warn("skipping playlist", "id", playlist.ID, "name", title, "error", err)
			result.Skipped++
			continue
		}

		if playlist.Owner.ID == user.ID {
			result.Mine = append(result.Mine, *export)
		} else {
			result.Others = append(result.Others, *export)
		}
	}

	report(progress, archivingUpdate())
	return result, nil
}

// exportOne fetches and renders a single playlist.
func (e *Exporter) exportOne(ctx context.Context, playlist services.Playlist, title string) (*PlaylistExport, error) {
	date, ok := e.library.PlaylistDate(ctx, playlist.ID)
	if !ok {
		date = e.now()
	}

	items, err := e.library.PlaylistTracks(ctx, playlist.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tracks: %w", err)
	}

	csvBody, err := formatter.TracksCSV(items)
	if err != nil {
		return nil, fmt.Errorf("failed to render track listing: %w", err)
	}

	return &PlaylistExport{
		FolderName:  formatter.FolderName(date, title),
		Title:       title,
		Description: formatter.Description(playlist.Description),
		Author:      formatter.AuthorSummary(playlist.Owner, playlist.Followers),
		Cover:       e.fetchCover(ctx, playlist),
		CSV:         csvBody,
		M3U:         formatter.TracksM3U(items, title),
		TrackCount:  formatter.RenderableCount(items),
	}, nil
}

// fetchCover downloads the playlist's preferred cover image.
//
// Best effort: an absent image list, an empty URL, or any fetch failure
// yields a nil cover without failing the playlist.
func (e *Exporter) fetchCover(ctx context.Context, playlist services.Playlist) []byte {
	if len(playlist.Images) == 0 {
		return nil
	}

	data, err := e.library.DownloadImage(ctx, playlist.Images[0].URL)
	if err != nil {
		e.logger.Debug("cover download failed", "playlist", playlist.ID, "error", err)
		return nil
	}

	return data
}
