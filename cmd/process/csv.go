package process

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/lepinkainen/orpheus/internal/links"
)

// writeAlbumsToCSV writes the original columns plus the enrichment
// columns. Engine link columns appear only when engines were requested
// explicitly; the default-engine fallback contributes Search_Link alone.
func writeAlbumsToCSV(headers []string, albums []Album, engines []links.Engine, defaulted bool, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	outHeaders := append([]string{}, headers...)
	outHeaders = append(outHeaders, "Keywords")
	if !defaulted {
		for _, engine := range engines {
			outHeaders = append(outHeaders, linkColumn(engine.Name))
		}
	}
	outHeaders = append(outHeaders, "Search_Link")

	if err := writer.Write(outHeaders); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, album := range albums {
		record := make([]string, 0, len(outHeaders))
		for _, header := range headers {
			record = append(record, album.Row[header])
		}
		record = append(record, album.Keywords)
		if !defaulted {
			for _, engine := range engines {
				record = append(record, album.Links[engine.Name])
			}
		}
		record = append(record, album.SearchLink)

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// linkColumn builds the header for an engine's link column, e.g.
// "Wikipedia_Link".
func linkColumn(name string) string {
	if name == "" {
		return "_Link"
	}
	return strings.ToUpper(name[:1]) + name[1:] + "_Link"
}
