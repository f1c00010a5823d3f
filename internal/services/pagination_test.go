package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"spotexport/internal/shared"
)

// pagedHandler serves a listing split into fixed-size pages with next links.
type pagedHandler struct {
	items    []string
	pageSize int
	requests int
	baseURL  string
	fail     map[int]bool // request ordinal (1-based) -> respond 500
}

func (h *pagedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.requests++
	if h.fail[h.requests] {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	offset := 0
	fmt.Sscanf(r.URL.Query().Get("offset"), "%d", &offset)

	end := offset + h.pageSize
	if end > len(h.items) {
		end = len(h.items)
	}

	type item struct {
		AddedAt string `json:"added_at"`
		Track   *Track `json:"track"`
	}
	items := make([]item, 0, end-offset)
	for _, name := range h.items[offset:end] {
		items = append(items, item{AddedAt: "2024-01-01T00:00:00Z", Track: &Track{Name: name}})
	}

	var next *string
	if end < len(h.items) {
		url := fmt.Sprintf("%s/playlists/pl1/tracks?limit=%d&offset=%d", h.baseURL, h.pageSize, end)
		next = &url
	}

	json.NewEncoder(w).Encode(map[string]any{
		"items": items,
		"next":  next,
		"total": len(h.items),
	})
}

func TestCollectPages(t *testing.T) {
	t.Run("Concatenates All Pages In Order", func(t *testing.T) {
		names := make([]string, 0, 230)
		for i := 0; i < 230; i++ {
			names = append(names, fmt.Sprintf("track %03d", i))
		}

		handler := &pagedHandler{items: names, pageSize: 100}
		client, server := newTestClient(t, handler)
		handler.baseURL = server.URL

		items, err := client.PlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(items) != 230 {
			t.Fatalf("expected 230 items, got %d", len(items))
		}
		for i, item := range items {
			if item.Track.Name != names[i] {
				t.Fatalf("order broken at %d: got %s", i, item.Track.Name)
			}
		}
		if handler.requests != 3 {
			t.Errorf("expected exactly 3 requests for 3 pages, got %d", handler.requests)
		}
	})

	t.Run("Single Partial Page", func(t *testing.T) {
		handler := &pagedHandler{items: []string{"only"}, pageSize: 100}
		client, server := newTestClient(t, handler)
		handler.baseURL = server.URL

		items, err := client.PlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 1 || handler.requests != 1 {
			t.Errorf("expected 1 item from 1 request, got %d items from %d requests", len(items), handler.requests)
		}
	})

	t.Run("Empty Listing", func(t *testing.T) {
		handler := &pagedHandler{items: nil, pageSize: 100}
		client, server := newTestClient(t, handler)
		handler.baseURL = server.URL

		items, err := client.PlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("Mid-Pagination Failure Aborts", func(t *testing.T) {
		names := make([]string, 150)
		for i := range names {
			names[i] = fmt.Sprintf("t%d", i)
		}
		handler := &pagedHandler{items: names, pageSize: 100, fail: map[int]bool{2: true}}
		client, server := newTestClient(t, handler)
		handler.baseURL = server.URL

		_, err := client.PlaylistTracks(context.Background(), "pl1")
		if err == nil {
			t.Fatal("expected error when a page fetch fails")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T", err)
		}
		if apiErr.Status != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", apiErr.Status)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected APIError to unwrap to ErrAPIRequest")
		}
	})

	t.Run("AllPlaylists Uses Page Size 50", func(t *testing.T) {
		var gotLimit string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotLimit = r.URL.Query().Get("limit")
			w.Write([]byte(`{"items":[{"id":"pl1","name":"One","owner":{"id":"u1"}}],"next":null}`))
		}))

		playlists, err := client.AllPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotLimit != "50" {
			t.Errorf("expected limit=50, got %s", gotLimit)
		}
		if len(playlists) != 1 || playlists[0].ID != "pl1" {
			t.Errorf("unexpected playlists %+v", playlists)
		}
	})
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Status: 404, StatusText: http.StatusText(404)}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("expected status and text in message, got %s", err.Error())
	}
}
