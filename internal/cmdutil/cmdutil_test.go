package cmdutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestSetupOutputDirsCreatesAllPaths(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("reportoutputdir", filepath.Join(tempDir, "report"))
	viper.Set("markdownoutputdir", filepath.Join(tempDir, "markdown"))
	viper.Set("jsonoutputdir", filepath.Join(tempDir, "json"))

	cfg := &BaseCommandConfig{
		OutputName:    "collection",
		WriteMarkdown: true,
		WriteJSON:     true,
	}

	err := SetupOutputDirs(cfg)
	require.NoError(t, err)

	require.Equal(t, filepath.Join(tempDir, "report"), cfg.ReportDir)
	require.DirExists(t, cfg.ReportDir)
	require.Equal(t, filepath.Join(tempDir, "markdown"), cfg.MarkdownDir)
	require.DirExists(t, cfg.MarkdownDir)
	require.Equal(t, filepath.Join(tempDir, "json", "collection.json"), cfg.JSONOutput)
	require.DirExists(t, filepath.Dir(cfg.JSONOutput))
}

func TestSetupOutputDirsDefaultsOutputName(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("reportoutputdir", filepath.Join(tempDir, "report"))

	cfg := &BaseCommandConfig{}

	err := SetupOutputDirs(cfg)
	require.NoError(t, err)
	require.Equal(t, "albums", cfg.OutputName)
}

func TestSetupOutputDirsUsesProvidedPaths(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("reportoutputdir", filepath.Join(tempDir, "ignored"))

	cfg := &BaseCommandConfig{
		ReportDir:  filepath.Join(tempDir, "custom"),
		OutputName: "albums",
	}

	err := SetupOutputDirs(cfg)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tempDir, "custom"), cfg.ReportDir)
	require.DirExists(t, cfg.ReportDir)
}

func TestSetupOutputDirsSkipsDisabledOutputs(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("reportoutputdir", filepath.Join(tempDir, "report"))

	cfg := &BaseCommandConfig{OutputName: "albums"}

	err := SetupOutputDirs(cfg)
	require.NoError(t, err)
	require.Empty(t, cfg.MarkdownDir)
	require.Empty(t, cfg.JSONOutput)
}
