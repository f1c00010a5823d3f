package tasks

import "fmt"

// ProgressUpdate represents a progress event during an export run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Message string // Human-readable message for display
	Percent int    // Overall completion, 0-100, monotonically non-decreasing
}

// ProgressFunc receives progress updates synchronously from the export loop.
type ProgressFunc func(ProgressUpdate)

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	ExportPlaylists
	Archive
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case ExportPlaylists:
		return "export_playlists"
	case Archive:
		return "archive"
	default:
		return ""
	}
}

// report invokes the callback when one is set.
func report(progress ProgressFunc, update ProgressUpdate) {
	if progress == nil {
		return
	}
	progress(update)
}

func fetchingPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Message: "Fetching playlists...",
		Percent: 0,
	}
}

func exportingPlaylistUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylists,
		Message: fmt.Sprintf("Exporting playlist %d of %d...", step, total),
		Percent: step * 100 / total,
	}
}

func archivingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   Archive,
		Message: "Creating ZIP file...",
		Percent: 100,
	}
}
