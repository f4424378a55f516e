package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BaseCommandConfig holds the output locations shared by the processing
// commands. Paths left empty are filled from viper, then from built-in
// defaults.
type BaseCommandConfig struct {
	// ReportDir receives the enriched CSV, the HTML report and its cover
	// thumbnails.
	ReportDir string
	// OutputName is the base name for report files (albums.csv,
	// albums.html, albums_page_2.html).
	OutputName string
	// MarkdownDir receives per-album notes when WriteMarkdown is set.
	MarkdownDir   string
	WriteMarkdown bool
	// JSONOutput is the JSON file path when WriteJSON is set.
	JSONOutput string
	WriteJSON  bool
	Overwrite  bool
}

// SetupOutputDirs resolves and creates the output directories for a
// processing run.
func SetupOutputDirs(cfg *BaseCommandConfig) error {
	if cfg.OutputName == "" {
		cfg.OutputName = "albums"
	}

	reportDir := cfg.ReportDir
	if reportDir == "" {
		reportDir = viper.GetString("reportoutputdir")
	}
	if reportDir == "" {
		reportDir = "report"
	}
	cfg.ReportDir = filepath.Clean(reportDir)

	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if cfg.WriteMarkdown {
		markdownDir := cfg.MarkdownDir
		if markdownDir == "" {
			markdownDir = viper.GetString("markdownoutputdir")
		}
		if markdownDir == "" {
			markdownDir = "markdown"
		}
		cfg.MarkdownDir = filepath.Clean(markdownDir)

		if err := os.MkdirAll(cfg.MarkdownDir, 0755); err != nil {
			return fmt.Errorf("failed to create markdown directory: %w", err)
		}
	}

	if cfg.WriteJSON {
		if cfg.JSONOutput == "" {
			jsonBaseDir := viper.GetString("jsonoutputdir")
			if jsonBaseDir == "" {
				jsonBaseDir = "json"
			}
			cfg.JSONOutput = filepath.Clean(filepath.Join(jsonBaseDir, cfg.OutputName+".json"))
		}

		if err := os.MkdirAll(filepath.Dir(cfg.JSONOutput), 0755); err != nil {
			return fmt.Errorf("failed to create JSON output directory: %w", err)
		}
	}

	return nil
}
