// package formatter renders one playlist and its track items into the
// filesystem-safe names and artifact bodies packaged per playlist folder
// (CSV and M3U track listings, description text, author summary).
//
// Every function here is pure: no network, no filesystem, no shared state.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"spotexport/internal/services"
)

// reserved is the filesystem-reserved character set replaced by SanitizeFilename.
const reserved = `<>:"/\|?*`

// csvHeader is fixed; consumers of previous exports depend on the column set.
var csvHeader = []string{
	"Track Name",
	"Artists",
	"Album",
	"Release Date",
	"Duration (ms)",
	"Popularity",
	"ISRC",
	"Added At",
	"Track URL",
}

// SanitizeFilename makes a playlist name safe for use as a directory name.
//
// Blank input becomes "untitled"; every reserved character becomes an
// underscore. Total: never fails.
func SanitizeFilename(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "untitled"
	}

	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(reserved, r) {
			return '_'
		}
		return r
	}, trimmed)
}

// FormatDate renders the date's local calendar fields as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FolderName derives the archive folder name for a playlist from its
// representative date and display name.
//
// Names are sanitized independently, so two playlists can collide on the
// same folder name; collisions are not deduplicated.
func FolderName(date time.Time, name string) string {
	return fmt.Sprintf("%s - %s", FormatDate(date), SanitizeFilename(name))
}

// JoinArtists joins artist names with ", ".
func JoinArtists(artists []services.Artist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// RenderableCount counts the track items with a non-null underlying track,
// i.e. the rows that appear in rendered listings.
func RenderableCount(items []services.TrackItem) int {
	count := 0
	for _, item := range items {
		if item.Track != nil {
			count++
		}
	}
	return count
}

// TracksCSV renders the track listing as CSV.
//
// One row per item with a non-null track; rows with a null track (removed
// from the catalog) are silently omitted. Fields containing commas, quotes,
// or newlines are quoted with internal quotes doubled.
func TracksCSV(items []services.TrackItem) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range items {
		track := item.Track
		if track == nil {
			continue
		}

		record := []string{
			track.Name,
			JoinArtists(track.Artists),
			track.Album.Name,
			track.Album.ReleaseDate,
			strconv.Itoa(track.DurationMS),
			strconv.Itoa(track.Popularity),
			track.ExternalIDs.ISRC,
			item.AddedAt,
			track.ExternalURLs.Spotify,
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.String(), nil
}

// TracksM3U renders the track listing as an extended M3U body.
//
// Per renderable track: an #EXTINF line with the duration in whole seconds
// and "<artists> - <title>", followed by the track's external URL. Items
// with a null track are skipped.
func TracksM3U(items []services.TrackItem, playlistName string) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	fmt.Fprintf(&b, "#PLAYLIST:%s\n\n", playlistName)

	for _, item := range items {
		track := item.Track
		if track == nil {
			continue
		}

		title := track.Name
		if title == "" {
			title = "Unknown Track"
		}

		fmt.Fprintf(&b, "#EXTINF:%d,%s - %s\n", track.DurationMS/1000, JoinArtists(track.Artists), title)
		fmt.Fprintf(&b, "%s\n\n", track.ExternalURLs.Spotify)
	}

	return b.String()
}

// Description decodes HTML/XML character entities embedded in the raw
// playlist description (the API escapes quotes and apostrophes) into
// literal characters. Absent input renders as the empty string.
//
// Decoding is table-driven and independent of any document-rendering
// capability.
func Description(raw string) string {
	if raw == "" {
		return ""
	}
	return html.UnescapeString(raw)
}

// AuthorSummary renders the owner block written alongside each playlist.
//
// Empty string when the owner is absent. Follower data is optional and adds
// a trailing section when supplied.
func AuthorSummary(owner services.Owner, followers *services.Followers) string {
	if owner.ID == "" && owner.DisplayName == "" {
		return ""
	}

	display := owner.DisplayName
	if display == "" {
		display = owner.ID
	}

	lines := []string{
		fmt.Sprintf("Owner: %s", display),
		fmt.Sprintf("ID: %s", owner.ID),
	}

	if owner.ExternalURLs.Spotify != "" {
		lines = append(lines, fmt.Sprintf("Profile: %s", owner.ExternalURLs.Spotify))
	}

	if followers != nil {
		lines = append(lines, "", fmt.Sprintf("Playlist Followers: %d", followers.Total))
	}

	return strings.Join(lines, "\n")
}
