package tasks

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"

	"spotexport/internal/formatter"
	"spotexport/internal/shared"
)

// Format selects which track-listing variant each playlist folder receives.
type Format string

const (
	FormatM3U  Format = "m3u"  // tracks.m3u alongside tracks.csv
	FormatText Format = "txt"  // title.txt and author.txt instead of M3U
	FormatBoth Format = "both" // all of the above
)

// ParseFormat validates a format flag or config value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatM3U, FormatText, FormatBoth:
		return Format(s), nil
	case "":
		return FormatM3U, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want m3u, txt, or both)", shared.ErrInvalidFlag, s)
	}
}

// ArchiveWriter is the capability the builder assembles the deliverable
// through. Implementations own the container format.
type ArchiveWriter interface {
	AddFile(path string, data []byte) error
	Finalize() ([]byte, error)
}

// ZipWriter implements [ArchiveWriter] on top of archive/zip, buffering the
// archive in memory.
type ZipWriter struct {
	buf *bytes.Buffer
	zw  *zip.Writer
}

// NewZipWriter creates an empty in-memory ZIP archive writer.
func NewZipWriter() *ZipWriter {
	buf := &bytes.Buffer{}
	return &ZipWriter{buf: buf, zw: zip.NewWriter(buf)}
}

// AddFile writes one file entry at the given archive path.
func (w *ZipWriter) AddFile(path string, data []byte) error {
	f, err := w.zw.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write archive entry %s: %w", path, err)
	}
	return nil
}

// Finalize closes the archive and returns the complete blob.
func (w *ZipWriter) Finalize() ([]byte, error) {
	if err := w.zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return w.buf.Bytes(), nil
}

// BuildArchive lays out a completed export as one archive blob:
// "My Playlists" and "Other Playlists" at the top level, one folder per
// playlist beneath them. Pure aggregation, no network activity.
func BuildArchive(result *ExportResult, format Format, w ArchiveWriter) ([]byte, error) {
	groups := []struct {
		dir     string
		exports []PlaylistExport
	}{
		{"My Playlists", result.Mine},
		{"Other Playlists", result.Others},
	}

	for _, group := range groups {
		for _, export := range group.exports {
			if err := addPlaylist(w, group.dir, export, format); err != nil {
				return nil, err
			}
		}
	}

	return w.Finalize()
}

// addPlaylist writes one playlist folder's files.
func addPlaylist(w ArchiveWriter, dir string, export PlaylistExport, format Format) error {
	base := dir + "/" + export.FolderName

	if err := w.AddFile(base+"/description.txt", []byte(export.Description)); err != nil {
		return err
	}
	if err := w.AddFile(base+"/tracks.csv", []byte(export.CSV)); err != nil {
		return err
	}

	if format == FormatM3U || format == FormatBoth {
		if err := w.AddFile(base+"/tracks.m3u", []byte(export.M3U)); err != nil {
			return err
		}
	}

	if format == FormatText || format == FormatBoth {
		if err := w.AddFile(base+"/title.txt", []byte(export.Title)); err != nil {
			return err
		}
		if err := w.AddFile(base+"/author.txt", []byte(export.Author)); err != nil {
			return err
		}
	}

	if export.Cover != nil {
		if err := w.AddFile(base+"/cover.jpg", export.Cover); err != nil {
			return err
		}
	}

	return nil
}

// ArchiveFilename stamps the deliverable with the given date.
func ArchiveFilename(now time.Time) string {
	return fmt.Sprintf("spotify_export_%s.zip", formatter.FormatDate(now))
}
