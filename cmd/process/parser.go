package process

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/orpheus/internal/config"
	"github.com/lepinkainen/orpheus/internal/csvutil"
	"github.com/lepinkainen/orpheus/internal/fileutil"
	"github.com/lepinkainen/orpheus/internal/keywords"
	"github.com/lepinkainen/orpheus/internal/links"
	"github.com/lepinkainen/orpheus/internal/ratelimit"
	"github.com/lepinkainen/orpheus/internal/schema"
	"github.com/lepinkainen/orpheus/internal/tui"
)

// ProcessAlbums runs the full pipeline over the configured export file
func ProcessAlbums() error {
	// Double check overwrite flag with global config
	if overwrite != config.OverwriteFiles {
		slog.Warn("Overwrite flag mismatch, using global value",
			"local", overwrite, "global", config.OverwriteFiles)
		overwrite = config.OverwriteFiles
	}

	cfg := config.LoadProcessor()
	if maxKeywords > 0 {
		cfg.MaxKeywords = maxKeywords
	}
	if itemsPerPage > 0 {
		cfg.ItemsPerPage = itemsPerPage
	}

	table, err := csvutil.ReadTable(csvFile)
	if err != nil {
		return fmt.Errorf("failed to read export: %w", err)
	}
	slog.Info("Read collection export", "file", csvFile, "rows", len(table.Rows))

	mapping, err := resolveSchema(table, cfg)
	if err != nil {
		return err
	}

	engines, unknown, defaulted := links.ResolveEngines(searchEngines, cfg.Engines, cfg.DefaultEngine)
	for _, name := range unknown {
		slog.Warn("Unknown search engine, skipping", "engine", name)
	}

	albums, err := enrichRows(table, mapping, cfg, engines, defaulted)
	if err != nil {
		return err
	}

	if writeHTML {
		downloadCovers(albums, cfg)
	}

	csvPath := filepath.Join(reportDir, outputName+".csv")
	if err := writeAlbumsToCSV(table.Headers, albums, engines, defaulted, csvPath); err != nil {
		return fmt.Errorf("failed to write enriched CSV: %w", err)
	}
	slog.Info("Wrote enriched CSV", "path", csvPath)

	if writeHTML {
		if err := writeHTMLReport(albums, cfg.ItemsPerPage); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
	}

	if writeJSON {
		if err := writeAlbumsToJSON(albums, jsonOutput); err != nil {
			slog.Error("Error writing albums to JSON", "error", err)
			return err
		}
	}

	if writeNotes {
		writeAlbumsToMarkdown(albums, markdownDir)
	}

	if viper.GetBool("datasette.enabled") {
		if err := writeAlbumsToDatastore(albums); err != nil {
			return err
		}
	}

	slog.Info("Processed albums", "count", len(albums))
	return nil
}

// stdinIsTerminal reports whether the interactive picker can actually
// be shown. Swappable for tests.
var stdinIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// resolveSchema maps the export's headers onto the artist/title pair,
// falling back to the interactive picker when detection fails. An
// unresolved field is a soft condition: it is logged once and rows get
// an empty value for it. Piped stdin skips the picker and takes the
// soft path directly.
func resolveSchema(table *csvutil.Table, cfg config.Processor) (schema.Mapping, error) {
	mapping := schema.Resolve(table.Headers, cfg.ArtistColumns, cfg.TitleColumns, artistColumn, titleColumn)

	canPick := interactive && stdinIsTerminal()

	if mapping.ArtistColumn == "" && canPick {
		column, stop, err := pickColumn("artist", table)
		if err != nil || stop {
			return mapping, err
		}
		mapping.ArtistColumn = column
	}
	if mapping.TitleColumn == "" && canPick {
		column, stop, err := pickColumn("title", table)
		if err != nil || stop {
			return mapping, err
		}
		mapping.TitleColumn = column
	}

	if mapping.ArtistColumn == "" {
		slog.Warn("Artist column not detected, artist field will be empty", "headers", table.Headers)
	}
	if mapping.TitleColumn == "" {
		slog.Warn("Title column not detected, title field will be empty", "headers", table.Headers)
	}
	if mapping.Resolved() {
		slog.Info("Resolved export schema", "artist", mapping.ArtistColumn, "title", mapping.TitleColumn)
	}

	return mapping, nil
}

func pickColumn(field string, table *csvutil.Table) (string, bool, error) {
	choices := make([]tui.ColumnChoice, 0, len(table.Headers))
	for _, header := range table.Headers {
		choice := tui.ColumnChoice{Header: header}
		if len(table.Rows) > 0 {
			choice.Sample = table.Rows[0][header]
		}
		choices = append(choices, choice)
	}

	result, err := tui.SelectColumn(field, choices)
	if err != nil {
		return "", false, fmt.Errorf("column picker failed: %w", err)
	}

	switch result.Action {
	case tui.ActionSelected:
		slog.Info("Column picked interactively", "field", field, "column", result.Column)
		return result.Column, false, nil
	case tui.ActionStopped:
		return "", true, fmt.Errorf("processing stopped by user")
	default:
		return "", false, nil
	}
}

// enrichRows builds keywords and search links for every row on a bounded
// worker pool. Results land in an index-addressed slice so output order
// matches input order regardless of scheduling.
func enrichRows(table *csvutil.Table, mapping schema.Mapping, cfg config.Processor, engines []links.Engine, defaulted bool) ([]Album, error) {
	albums := make([]Album, len(table.Rows))

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())

	for i, row := range table.Rows {
		g.Go(func() error {
			artist := row[mapping.ArtistColumn]
			title := row[mapping.TitleColumn]

			kw := keywords.Build(artist, title, cfg.Stopwords, cfg.MaxKeywords)
			linkMap, primary := links.Generate(kw, engines, defaulted)

			albums[i] = Album{
				Row:        row,
				Artist:     artist,
				Title:      title,
				Keywords:   kw,
				Links:      linkMap,
				SearchLink: primary,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return albums, nil
}

// downloadCovers fetches cover thumbnails for the HTML report when a
// cover-URL column is configured. Failures are per-album soft errors.
func downloadCovers(albums []Album, cfg config.Processor) {
	if cfg.CoverColumn == "" {
		return
	}

	limiter := ratelimit.New("covers", 2)
	ctx := context.Background()

	for i := range albums {
		coverURL := albums[i].Row[cfg.CoverColumn]
		if coverURL == "" {
			continue
		}

		result, err := fileutil.DownloadCover(ctx, fileutil.CoverDownloadOptions{
			URL:          coverURL,
			OutputDir:    reportDir,
			Filename:     fileutil.BuildCoverFilename(albums[i].Artist, albums[i].Title),
			UpdateCovers: config.UpdateCovers,
			Limiter:      limiter,
		})
		if err != nil {
			slog.Warn("Failed to download cover", "artist", albums[i].Artist, "title", albums[i].Title, "error", err)
			continue
		}
		if result != nil {
			albums[i].CoverPath = result.RelativePath
		}
	}
}
