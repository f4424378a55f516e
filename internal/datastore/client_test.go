package datastore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetteClientBatchInsert(t *testing.T) {
	var paths []string
	var tokens []string
	var rowCounts []int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		tokens = append(tokens, r.Header.Get("Authorization"))

		var payload struct {
			Rows []map[string]any `json:"rows"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		rowCounts = append(rowCounts, len(payload.Rows))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewDatasetteClient(srv.URL, "secret-token")
	require.NoError(t, client.Connect())

	records := []map[string]any{
		{"artist": "Boards of Canada", "title": "Geogaddi"},
		{"artist": "Plaid", "title": "Double Figure"},
	}
	require.NoError(t, client.BatchInsert("orpheus", "albums", records))

	require.Len(t, paths, 1)
	assert.Equal(t, "/-/insert/orpheus/albums", paths[0])
	assert.Equal(t, "Bearer secret-token", tokens[0])
	assert.Equal(t, []int{2}, rowCounts)
}

func TestDatasetteClientChunksLargeBatches(t *testing.T) {
	var rowCounts []int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Rows []map[string]any `json:"rows"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		rowCounts = append(rowCounts, len(payload.Rows))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewDatasetteClient(srv.URL, "")

	records := make([]map[string]any, insertBatchSize+7)
	for i := range records {
		records[i] = map[string]any{"artist": "x"}
	}
	require.NoError(t, client.BatchInsert("orpheus", "albums", records))

	assert.Equal(t, []int{insertBatchSize, 7}, rowCounts)
}

func TestDatasetteClientErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "permission denied"})
	}))
	defer srv.Close()

	client := NewDatasetteClient(srv.URL, "")

	err := client.BatchInsert("orpheus", "albums", []map[string]any{{"artist": "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestDatasetteClientEmptyBatchIsNoop(t *testing.T) {
	client := NewDatasetteClient("http://localhost:0", "")
	require.NoError(t, client.BatchInsert("orpheus", "albums", nil))
}
