package process

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/lepinkainen/orpheus/internal/fileutil"
	"github.com/lepinkainen/orpheus/internal/frontmatter"
)

const albumTemplate = `---
artist: {{.Artist}}
title: {{.Title}}
keywords: {{.Keywords}}
{{- if .SearchLink}}
search_link: {{.SearchLink}}
{{- end}}
{{- if .Links}}
links:
{{- range $name, $url := .Links}}
  {{$name}}: {{$url}}
{{- end}}
{{- end}}
---

# {{.Artist}} - {{.Title}}
{{if .SearchLink}}
[Search]({{.SearchLink}})
{{end}}
`

var noteTemplate = template.Must(template.New("album").Parse(albumTemplate))

// writeAlbumsToMarkdown writes each album to a markdown note. Failures
// are per-album; processing continues.
func writeAlbumsToMarkdown(albums []Album, directory string) {
	for i := range albums {
		if err := writeAlbumToMarkdown(albums[i], directory); err != nil {
			slog.Error("Failed to write markdown note", "artist", albums[i].Artist, "title", albums[i].Title, "error", err)
			continue
		}
	}
}

// writeAlbumToMarkdown writes a single album note. When the note exists
// and overwriting is off, the existing frontmatter decides the log
// level: identical keywords mean the note is already current.
func writeAlbumToMarkdown(album Album, directory string) error {
	path := filepath.Join(directory, noteFilename(album))

	if !overwrite && fileutil.FileExists(path) {
		if noteHasKeywords(path, album.Keywords) {
			slog.Debug("Note already current, skipping", "path", path)
		} else {
			slog.Info("Note exists with different keywords, skipping (use --overwrite)", "path", path)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := noteTemplate.Execute(file, album); err != nil {
		return fmt.Errorf("failed to render note: %w", err)
	}

	slog.Debug("Wrote note", "path", path)
	return nil
}

func noteFilename(album Album) string {
	name := strings.TrimSpace(album.Artist + " - " + album.Title)
	if name == "-" || name == "" {
		name = "untitled"
	}
	return fileutil.SanitizeFilename(name) + ".md"
}

func noteHasKeywords(path string, want string) bool {
	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	note, err := frontmatter.ParseMarkdown(content)
	if err != nil {
		return false
	}

	return note.GetString("keywords") == want
}
