// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"spotexport/internal/services"
)

// MockLibrary is a configurable test double for the Spotify client, driven
// entirely by its exported fields.
type MockLibrary struct {
	User      *services.User
	UserErr   error
	Playlists []services.Playlist
	ListErr   error

	Tracks    map[string][]services.TrackItem
	TracksErr map[string]error

	Dates map[string]time.Time

	Images    map[string][]byte
	ImagesErr map[string]error

	ImageCalls []string
}

func (m *MockLibrary) CurrentUser(ctx context.Context) (*services.User, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User == nil {
		return &services.User{ID: "me"}, nil
	}
	return m.User, nil
}

func (m *MockLibrary) AllPlaylists(ctx context.Context) ([]services.Playlist, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Playlists, nil
}

func (m *MockLibrary) PlaylistTracks(ctx context.Context, playlistID string) ([]services.TrackItem, error) {
	if err := m.TracksErr[playlistID]; err != nil {
		return nil, err
	}
	return m.Tracks[playlistID], nil
}

func (m *MockLibrary) PlaylistDate(ctx context.Context, playlistID string) (time.Time, bool) {
	if d, ok := m.Dates[playlistID]; ok {
		return d, true
	}
	return time.Time{}, false
}

func (m *MockLibrary) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	m.ImageCalls = append(m.ImageCalls, url)
	if err := m.ImagesErr[url]; err != nil {
		return nil, err
	}
	return m.Images[url], nil
}

// Playlist builds a minimal playlist owned by ownerID.
func Playlist(id, name, ownerID string) services.Playlist {
	return services.Playlist{
		ID:    id,
		Name:  name,
		Owner: services.Owner{ID: ownerID, DisplayName: ownerID},
	}
}

// Tracks builds one renderable track item per name.
func Tracks(names ...string) []services.TrackItem {
	items := make([]services.TrackItem, 0, len(names))
	for _, n := range names {
		items = append(items, services.TrackItem{
			AddedAt: "2023-06-01T00:00:00Z",
			Track: &services.Track{
				Name:         n,
				Artists:      []services.Artist{{Name: "Artist"}},
				DurationMS:   200000,
				ExternalURLs: services.ExternalURLs{Spotify: "https://open.spotify.com/track/" + n},
			},
		})
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}
}
