package discogs

import (
	"context"
	"log/slog"
)

var downloadDiscogsExport = AutomateDiscogsExport

// FetchWithParams runs the export automation with the given options.
// This is used by the Kong-based CLI implementation.
func FetchWithParams(opts AutomationOptions) error {
	path, err := downloadDiscogsExport(context.Background(), opts)
	if err != nil {
		return err
	}

	slog.Info("Collection export ready for processing", "csv_path", path)
	return nil
}
