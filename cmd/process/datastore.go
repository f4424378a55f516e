package process

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/orpheus/internal/datastore"
)

const albumsSchema = `CREATE TABLE IF NOT EXISTS albums (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist TEXT,
	title TEXT,
	keywords TEXT,
	search_link TEXT,
	links TEXT,
	cover_path TEXT
)`

// Convert Album to map[string]any for database insertion
func albumToMap(album Album) map[string]any {
	linksJSON := ""
	if len(album.Links) > 0 {
		if data, err := json.Marshal(album.Links); err == nil {
			linksJSON = string(data)
		}
	}

	return map[string]any{
		"artist":      album.Artist,
		"title":       album.Title,
		"keywords":    album.Keywords,
		"search_link": album.SearchLink,
		"links":       linksJSON,
		"cover_path":  album.CoverPath,
	}
}

// writeAlbumsToDatastore pushes the enriched albums to the configured
// Datasette target, either a local SQLite file or a remote instance.
func writeAlbumsToDatastore(albums []Album) error {
	slog.Info("Writing albums to Datasette")
	mode := viper.GetString("datasette.mode")

	records := make([]map[string]any, len(albums))
	for i, album := range albums {
		records[i] = albumToMap(album)
	}

	switch mode {
	case "local":
		store := datastore.NewSQLiteStore(viper.GetString("datasette.dbfile"))
		if err := store.Connect(); err != nil {
			slog.Error("Failed to connect to SQLite database", "error", err)
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.CreateTable(albumsSchema); err != nil {
			slog.Error("Failed to create table", "error", err)
			return err
		}

		if err := store.BatchInsert("orpheus", "albums", records); err != nil {
			slog.Error("Failed to insert records", "error", err)
			return err
		}
		slog.Info("Successfully wrote albums to SQLite database", "count", len(albums))

	case "remote":
		client := datastore.NewDatasetteClient(
			viper.GetString("datasette.remote_url"),
			viper.GetString("datasette.api_token"),
		)
		if err := client.Connect(); err != nil {
			slog.Error("Failed to connect to remote Datasette", "error", err)
			return err
		}
		defer func() { _ = client.Close() }()

		if err := client.BatchInsert("orpheus", "albums", records); err != nil {
			slog.Error("Failed to insert records to remote Datasette", "error", err)
			return err
		}
		slog.Info("Successfully wrote albums to remote Datasette", "count", len(albums))

	default:
		slog.Error("Invalid Datasette mode", "mode", mode)
		return fmt.Errorf("invalid Datasette mode: %s", mode)
	}

	return nil
}
