package config

import (
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/orpheus/internal/keywords"
	"github.com/lepinkainen/orpheus/internal/links"
	"github.com/lepinkainen/orpheus/internal/report"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing output files should be overwritten
	OverwriteFiles bool
	// UpdateCovers forces re-downloading cover thumbnails even when they exist
	UpdateCovers bool
)

// DefaultArtistColumns are the header names probed for the artist field,
// in priority order.
var DefaultArtistColumns = []string{"Artist", "artist", "Artist Name", "artist_name"}

// DefaultTitleColumns are the header names probed for the title field,
// in priority order.
var DefaultTitleColumns = []string{"Title", "title", "Album", "album", "Release Title", "release_title"}

// DefaultStopwords is the shipped stopword list for keyword generation.
var DefaultStopwords = []string{
	"the", "a", "an", "of", "and", "is", "are", "was", "were", "at", "on", "in",
	"to", "for", "with", "without", "how", "do", "does", "did", "i", "am", "be",
	"by", "from", "that", "it's", "its", "you", "we", "this", "those", "these",
	"as", "up", "out", "off", "will", "my", "your", "our", "not", "yes", "no",
	"vol", "volume", "part", "feat", "featuring", "original", "soundtrack", "ost",
	"single", "ep", "lp", "cd", "vinyl", "remaster", "remastered", "deluxe", "edition",
}

// Processor is the immutable configuration value handed to the core
// pipeline. It is built once per run so row-level parallel execution
// never reads process-wide mutable state.
type Processor struct {
	ArtistColumns []string
	TitleColumns  []string
	Stopwords     keywords.Stopwords
	MaxKeywords   int
	Engines       links.Registry
	DefaultEngine string
	ItemsPerPage  int
	CoverColumn   string
}

// InitConfig initializes the global configuration
func InitConfig() {
	viper.SetDefault("maxkeywords", keywords.DefaultMaxKeywords)
	viper.SetDefault("itemsperpage", report.DefaultPageSize)
	viper.SetDefault("defaultengine", "wikipedia")
	viper.SetDefault("OverwriteFiles", false)

	OverwriteFiles = viper.GetBool("OverwriteFiles")
	UpdateCovers = viper.GetBool("UpdateCovers")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// SetUpdateCovers sets the UpdateCovers flag
func SetUpdateCovers(update bool) {
	UpdateCovers = update
}

// LoadProcessor builds the processor configuration from viper, applying
// defaults and correcting invalid values. Corrections are soft errors:
// they are logged and replaced with defaults, never fatal.
func LoadProcessor() Processor {
	cfg := Processor{
		ArtistColumns: stringsOrDefault("artistcolumns", DefaultArtistColumns),
		TitleColumns:  stringsOrDefault("titlecolumns", DefaultTitleColumns),
		Stopwords:     keywords.NewStopwords(stringsOrDefault("stopwords", DefaultStopwords)),
		MaxKeywords:   viper.GetInt("maxkeywords"),
		Engines:       loadEngines(),
		DefaultEngine: viper.GetString("defaultengine"),
		ItemsPerPage:  viper.GetInt("itemsperpage"),
		CoverColumn:   viper.GetString("covercolumn"),
	}

	if cfg.MaxKeywords <= 0 {
		slog.Warn("Invalid maxkeywords, using default",
			"configured", cfg.MaxKeywords, "default", keywords.DefaultMaxKeywords)
		cfg.MaxKeywords = keywords.DefaultMaxKeywords
	}

	if cfg.ItemsPerPage <= 0 {
		slog.Warn("Invalid itemsperpage, using default",
			"configured", cfg.ItemsPerPage, "default", report.DefaultPageSize)
		cfg.ItemsPerPage = report.DefaultPageSize
	}

	if cfg.DefaultEngine == "" {
		cfg.DefaultEngine = "wikipedia"
	}

	return cfg
}

// loadEngines merges user-configured engines on top of the built-in
// registry. Each entry under searchengines.<name> may set url, label
// and spaceencoding.
func loadEngines() links.Registry {
	registry := links.DefaultRegistry()

	configured := viper.GetStringMap("searchengines")
	for name := range configured {
		engine := links.Engine{
			Name:          name,
			Label:         viper.GetString("searchengines." + name + ".label"),
			URLTemplate:   viper.GetString("searchengines." + name + ".url"),
			SpaceEncoding: viper.GetString("searchengines." + name + ".spaceencoding"),
		}

		if engine.URLTemplate == "" {
			slog.Warn("Configured search engine has no url template, skipping", "engine", name)
			continue
		}
		if engine.Label == "" {
			engine.Label = name
		}
		if engine.SpaceEncoding == "" {
			engine.SpaceEncoding = links.SpacePlus
		}

		registry[name] = engine
	}

	return registry
}

func stringsOrDefault(key string, fallback []string) []string {
	if values := viper.GetStringSlice(key); len(values) > 0 {
		return values
	}
	return fallback
}
