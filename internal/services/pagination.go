// Cursor-following pagination over Spotify listing endpoints.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"spotexport/internal/shared"
)

// APIError represents a non-success response from an API call.
type APIError struct {
	Status     int
	StatusText string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API call failed: %d %s", e.Status, e.StatusText)
}

// Unwrap allows errors.Is(err, shared.ErrAPIRequest) checks on API failures.
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// page represents one page of a paginated listing response.
type page[T any] struct {
	Items []T     `json:"items"`
	Next  *string `json:"next"`
	Total int     `json:"total"`
}

// collectPages materializes a paginated listing by following the server's
// next links starting at relativeURL, until next is null.
//
// Every item from every page appears exactly once, in server-returned order,
// with one request issued per page. Termination depends on the server
// eventually returning a null next link: there is no page-count cap, so a
// cyclic next chain would hang. Any non-success response aborts the whole
// pagination.
func collectPages[T any](ctx context.Context, c *SpotifyClient, relativeURL string) ([]T, error) {
	var items []T

	next := relativeURL
	for {
		var p page[T]
		if err := c.doRequest(ctx, http.MethodGet, next, &p); err != nil {
			return nil, err
		}

		items = append(items, p.Items...)

		if p.Next == nil || *p.Next == "" {
			break
		}
		// The server returns absolute URLs; doRequest expects a path
		// relative to the API base.
		next = strings.TrimPrefix(*p.Next, c.baseURL)
	}

	return items, nil
}
