package discogs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/orpheus/internal/testutil"
)

func TestPrepareDownloadDirCreatesTemp(t *testing.T) {
	dir, cleanup, err := prepareDownloadDir("")
	require.NoError(t, err)
	require.DirExists(t, dir)
	require.NotNil(t, cleanup)

	cleanup()
	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr), "temp dir should be removed after cleanup")
}

func TestPrepareDownloadDirCreatesCustom(t *testing.T) {
	env := testutil.NewTestEnv(t)
	customDir := env.Path("custom-downloads")

	dir, cleanup, err := prepareDownloadDir(customDir)
	require.NoError(t, err)
	require.DirExists(t, dir)
	require.Nil(t, cleanup) // No cleanup for custom dirs
	require.Equal(t, customDir, dir)
}

func TestFindDownloadedCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)

	start := time.Now().Add(-time.Minute)
	env.WriteFileString("discogs-20260830.csv", "Artist,Title\n")

	path, err := findDownloadedCSV(env.RootDir(), start)
	require.NoError(t, err)
	require.Equal(t, env.Path("discogs-20260830.csv"), path)
}

func TestFindDownloadedCSVIgnoresPartialAndStale(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.WriteFileString("discogs-20260830.csv.crdownload", "partial")
	env.WriteFileString("other.csv", "Artist,Title\n")

	stalePath := env.Path("discogs-stale.csv")
	env.WriteFileString("discogs-stale.csv", "Artist,Title\n")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stalePath, old, old))

	_, err := findDownloadedCSV(env.RootDir(), time.Now().Add(-time.Minute))
	require.Error(t, err)
}

func TestMoveDownloadedCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)

	srcPath := env.Path("discogs-20260830.csv")
	env.WriteFileString("discogs-20260830.csv", "Artist,Title\nPlaid,Spokes\n")

	targetDir := env.Path("exports")
	finalPath, err := moveDownloadedCSV(srcPath, targetDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(targetDir, "discogs_collection.csv"), finalPath)
	require.FileExists(t, finalPath)

	content, err := os.ReadFile(finalPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "Plaid,Spokes")
}

func TestAutomateDiscogsExportRequiresCredentials(t *testing.T) {
	_, err := AutomateDiscogsExport(context.Background(), AutomationOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "username and password")
}

func TestFetchWithParamsReportsAutomationResult(t *testing.T) {
	original := downloadDiscogsExport
	defer func() { downloadDiscogsExport = original }()

	var got AutomationOptions
	downloadDiscogsExport = func(ctx context.Context, opts AutomationOptions) (string, error) {
		got = opts
		return "exports/discogs_collection.csv", nil
	}

	opts := AutomationOptions{
		Username:    "collector",
		Password:    "secret",
		DownloadDir: "exports",
		Headless:    true,
		Timeout:     time.Minute,
	}
	require.NoError(t, FetchWithParams(opts))
	require.Equal(t, opts, got)
}
