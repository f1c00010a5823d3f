package tasks

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"spotexport/internal/shared"
)

func readArchive(t *testing.T, blob []byte) map[string]string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatalf("archive does not parse: %v", err)
	}

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		files[f.Name] = string(data)
	}
	return files
}

func sampleResult() *ExportResult {
	return &ExportResult{
		Mine: []PlaylistExport{{
			FolderName:  "2023-06-01 - Road Trip",
			Title:       "Road Trip",
			Description: "summer songs",
			Author:      "Owner: me\nID: me",
			Cover:       []byte("jpegdata"),
			CSV:         "Track Name\nSong\n",
			M3U:         "#EXTM3U\n",
			TrackCount:  1,
		}},
		Others: []PlaylistExport{{
			FolderName:  "2022-01-15 - Borrowed",
			Title:       "Borrowed",
			Description: "",
			Author:      "Owner: friend\nID: friend",
			CSV:         "Track Name\n",
			M3U:         "#EXTM3U\n",
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "m3u", want: FormatM3U},
		{input: "txt", want: FormatText},
		{input: "both", want: FormatBoth},
		{input: "", want: FormatM3U},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tc {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidFlag", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v, want %v", tt.input, got, err, tt.want)
		}
	}
}

func TestBuildArchive(t *testing.T) {
	t.Run("M3U Layout", func(t *testing.T) {
		blob, err := BuildArchive(sampleResult(), FormatM3U, NewZipWriter())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		files := readArchive(t, blob)
		want := []string{
			"My Playlists/2023-06-01 - Road Trip/description.txt",
			"My Playlists/2023-06-01 - Road Trip/tracks.csv",
			"My Playlists/2023-06-01 - Road Trip/tracks.m3u",
			"My Playlists/2023-06-01 - Road Trip/cover.jpg",
			"Other Playlists/2022-01-15 - Borrowed/description.txt",
			"Other Playlists/2022-01-15 - Borrowed/tracks.csv",
			"Other Playlists/2022-01-15 - Borrowed/tracks.m3u",
		}
		sort.Strings(want)

		got := make([]string, 0, len(files))
		for name := range files {
			got = append(got, name)
		}
		sort.Strings(got)

		if len(got) != len(want) {
			t.Fatalf("archive has %d entries %v, want %d", len(got), got, len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
			}
		}

		if files["My Playlists/2023-06-01 - Road Trip/description.txt"] != "summer songs" {
			t.Errorf("description content mismatch")
		}
		if files["My Playlists/2023-06-01 - Road Trip/cover.jpg"] != "jpegdata" {
			t.Errorf("cover content mismatch")
		}
	})

	t.Run("Text Layout", func(t *testing.T) {
		blob, err := BuildArchive(sampleResult(), FormatText, NewZipWriter())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		files := readArchive(t, blob)
		base := "My Playlists/2023-06-01 - Road Trip/"

		if _, ok := files[base+"tracks.m3u"]; ok {
			t.Errorf("txt format must not contain tracks.m3u")
		}
		if files[base+"title.txt"] != "Road Trip" {
			t.Errorf("title.txt = %q", files[base+"title.txt"])
		}
		if files[base+"author.txt"] != "Owner: me\nID: me" {
			t.Errorf("author.txt = %q", files[base+"author.txt"])
		}
	})

	t.Run("Both Layout", func(t *testing.T) {
		blob, err := BuildArchive(sampleResult(), FormatBoth, NewZipWriter())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		files := readArchive(t, blob)
		base := "My Playlists/2023-06-01 - Road Trip/"
		for _, name := range []string{"description.txt", "tracks.csv", "tracks.m3u", "title.txt", "author.txt", "cover.jpg"} {
			if _, ok := files[base+name]; !ok {
				t.Errorf("missing %s", name)
			}
		}
	})

	t.Run("Cover Omitted When Absent", func(t *testing.T) {
		result := sampleResult()

		blob, err := BuildArchive(result, FormatM3U, NewZipWriter())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		files := readArchive(t, blob)
		if _, ok := files["Other Playlists/2022-01-15 - Borrowed/cover.jpg"]; ok {
			t.Errorf("playlist without cover must not produce cover.jpg")
		}
	})

	t.Run("Empty Result Is Valid Archive", func(t *testing.T) {
		blob, err := BuildArchive(&ExportResult{}, FormatM3U, NewZipWriter())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if files := readArchive(t, blob); len(files) != 0 {
			t.Errorf("expected empty archive, got %v", files)
		}
	})
}

func TestArchiveFilename(t *testing.T) {
	now := time.Date(2023, 6, 1, 18, 30, 0, 0, time.Local)
	if got := ArchiveFilename(now); got != "spotify_export_2023-06-01.zip" {
		t.Errorf("ArchiveFilename = %q", got)
	}
}
