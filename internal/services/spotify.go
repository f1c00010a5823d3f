// Spotify Web API client
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"spotexport/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// requestsPerSecond paces outgoing API calls. Pacing is politeness only:
// the client never retries and never reads service rate-limit headers.
const requestsPerSecond = 10

// Followers represents a follower count resource.
type Followers struct {
	Total int `json:"total"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ExternalURLs holds known external URLs for a resource.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Followers   Followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Owner represents the owning user embedded in a playlist resource.
type Owner struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"display_name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Artist represents a Spotify artist reference.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album represents the album fields rendered in track listings.
type Album struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// Track represents a Spotify track.
type Track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	Album        Album        `json:"album"`
	DurationMS   int          `json:"duration_ms"`
	Popularity   int          `json:"popularity"`
	ExternalIDs  externalIDs  `json:"external_ids"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// TrackItem represents one entry in a playlist's track list.
//
// Track is nil when the underlying track has been removed from the catalog;
// such rows are dropped from rendered listings.
type TrackItem struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// Playlist represents a playlist resource as returned by listing endpoints.
type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Followers   *Followers     `json:"followers,omitempty"`
	Images      []Image        `json:"images"`
	Tracks      playlistTracks `json:"tracks"`
	Public      bool           `json:"public"`
}

// SpotifyClient holds the OAuth2 configuration and session token for Spotify API interactions.
type SpotifyClient struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

// NewSpotifyClient creates a new Spotify client with the given OAuth2 credentials.
func NewSpotifyClient(credentials map[string]string) (*SpotifyClient, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-read-collaborative",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:   spotifyAuthURL,
			TokenURL:  spotifyTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	return &SpotifyClient{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL:    spotifyBaseURL,
	}, nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
//
// The URL is deterministic for a given state: authorization endpoint plus
// client_id, response_type=code, redirect_uri, scope, and state parameters.
func (s *SpotifyClient) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// OAuthConfig exposes the underlying OAuth2 config for the callback server.
func (s *SpotifyClient) OAuthConfig() *oauth2.Config {
	return s.config
}

// Authenticate establishes the session token. Expects either an "access_token" or "auth_code" in credentials.
//
// The code path performs one POST to the token endpoint with HTTP Basic
// authentication built from the client credentials. Error messages never
// include the client secret or the code.
func (s *SpotifyClient) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				return fmt.Errorf("%w: token endpoint returned status %d", shared.ErrAuthFailed, retrieveErr.Response.StatusCode)
			}
			return fmt.Errorf("%w: code exchange failed", shared.ErrAuthFailed)
		}
		s.token = token
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// SetToken installs an already-obtained token, e.g. from the callback server exchange.
func (s *SpotifyClient) SetToken(token *oauth2.Token) {
	s.token = token
}

// doRequest performs an authenticated HTTP request against the API base URL.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request cancelled: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyClient) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := s.doRequest(ctx, http.MethodGet, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AllPlaylists retrieves every playlist visible to the authenticated user, across all pages.
func (s *SpotifyClient) AllPlaylists(ctx context.Context) ([]Playlist, error) {
	return collectPages[Playlist](ctx, s, "/me/playlists?limit=50")
}

// PlaylistTracks retrieves the full track list for a playlist, across all pages.
func (s *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID string) ([]TrackItem, error) {
	return collectPages[TrackItem](ctx, s, fmt.Sprintf("/playlists/%s/tracks?limit=100", playlistID))
}

// PlaylistDate returns the added_at timestamp of the playlist's first track.
//
// The result is optional: ok is false when the playlist has no tracks, the
// timestamp does not parse, or the request fails. Callers supply their own
// fallback; failures here never propagate.
func (s *SpotifyClient) PlaylistDate(ctx context.Context, playlistID string) (time.Time, bool) {
	var p page[TrackItem]
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=1", playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, &p); err != nil {
		return time.Time{}, false
	}

	if len(p.Items) == 0 || p.Items[0].AddedAt == "" {
		return time.Time{}, false
	}

	added, err := time.Parse(time.RFC3339, p.Items[0].AddedAt)
	if err != nil {
		return time.Time{}, false
	}

	return added, true
}

// DownloadImage fetches the raw bytes of an image URL supplied by a playlist resource.
//
// The request is unauthenticated; image hosts must not receive the bearer token.
func (s *SpotifyClient) DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty image URL", shared.ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, StatusText: http.StatusText(resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return data, nil
}
