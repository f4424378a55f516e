package process

import (
	"log/slog"

	"github.com/lepinkainen/orpheus/internal/fileutil"
)

// writeAlbumsToJSON writes the enriched albums to a JSON file
func writeAlbumsToJSON(albums []Album, path string) error {
	written, err := fileutil.WriteJSONFile(albums, path, true)
	if err != nil {
		return err
	}
	if written {
		slog.Info("Wrote albums to JSON", "path", path, "count", len(albums))
	}
	return nil
}
