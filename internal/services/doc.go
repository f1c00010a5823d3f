// Package services implements the Spotify Web API client used by the export pipeline.
//
// # SpotifyClient
//
// [SpotifyClient] covers the three concerns the exporter needs:
//
//  1. OAuth2 authorization code flow: [SpotifyClient.AuthURL] builds the
//     authorization redirect and [SpotifyClient.Authenticate] exchanges an
//     authorization code for the opaque access token held for the session.
//  2. Paginated retrieval: listing endpoints return pages carrying an items
//     array and a server-supplied next link. collectPages follows next links
//     until the server returns null, materializing every item in order.
//  3. Best-effort lookups: [SpotifyClient.PlaylistDate] and
//     [SpotifyClient.DownloadImage] feed optional data (folder date prefix,
//     cover art) and are designed so their failures never abort an export.
//
// # Error Handling
//
// Non-2xx responses from authenticated calls surface as [*APIError] carrying
// the HTTP status; [APIError.Unwrap] returns [shared.ErrAPIRequest] so callers
// can branch with errors.Is. Authentication failures wrap
// [shared.ErrAuthFailed] and never include credential material.
//
// # API Mappings
//
// Response DTOs mirror https://developer.spotify.com/documentation/web-api/reference/
// for the subset of fields the exporter renders. [TrackItem.Track] is a
// pointer: the API returns null track objects for removed tracks, and the
// transformer drops those rows.
package services
