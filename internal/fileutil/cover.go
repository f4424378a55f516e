package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/orpheus/internal/ratelimit"
)

// defaultThumbnailWidth bounds cover thumbnails embedded in the HTML report.
const defaultThumbnailWidth = 300

// CoverDownloadOptions holds options for downloading cover thumbnails.
type CoverDownloadOptions struct {
	// URL is the source URL of the cover image
	URL string
	// OutputDir is the report directory; covers land in its "covers" subdirectory
	OutputDir string
	// Filename is the name of the cover file (e.g., "Artist - Title.jpg")
	Filename string
	// MaxWidth bounds the thumbnail width; zero uses the default
	MaxWidth int
	// UpdateCovers forces re-downloading even if the thumbnail exists
	UpdateCovers bool
	// Limiter throttles requests against the cover host; optional
	Limiter *ratelimit.Limiter
}

// CoverDownloadResult holds the result of a cover download operation.
type CoverDownloadResult struct {
	// Downloaded indicates if a new file was fetched
	Downloaded bool
	// LocalPath is the full path to the thumbnail
	LocalPath string
	// RelativePath is the path relative to the report (e.g., "covers/x.jpg")
	RelativePath string
}

var coverClient = &http.Client{Timeout: 30 * time.Second}

// DownloadCover downloads a cover image, resizes it to thumbnail width
// and saves it under the report's covers directory. An existing
// thumbnail is reused unless UpdateCovers is set.
func DownloadCover(ctx context.Context, opts CoverDownloadOptions) (*CoverDownloadResult, error) {
	if opts.URL == "" {
		return nil, nil
	}

	coversDir := filepath.Join(opts.OutputDir, "covers")
	localPath := filepath.Join(coversDir, opts.Filename)

	result := &CoverDownloadResult{
		LocalPath:    localPath,
		RelativePath: filepath.Join("covers", opts.Filename),
	}

	if FileExists(localPath) && !opts.UpdateCovers {
		slog.Debug("Cover already exists, skipping download", "path", localPath)
		return result, nil
	}

	if opts.Limiter != nil {
		if err := opts.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := coverClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = defaultThumbnailWidth
	}
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}

	if err := imaging.Save(img, localPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to save cover: %w", err)
	}

	slog.Info("Downloaded cover", "path", localPath)
	result.Downloaded = true

	return result, nil
}

// BuildCoverFilename creates a standard thumbnail filename for an album.
func BuildCoverFilename(artist, title string) string {
	return SanitizeFilename(fmt.Sprintf("%s - %s", artist, title)) + ".jpg"
}
