package process

import (
	"github.com/lepinkainen/orpheus/internal/csvutil"
)

// Album is one collection row enriched with keywords and search links.
// Row keeps every original column so writers can reproduce the input
// alongside the enrichment.
type Album struct {
	Row        csvutil.Row       `json:"fields"`
	Artist     string            `json:"artist"`
	Title      string            `json:"title"`
	Keywords   string            `json:"keywords"`
	Links      map[string]string `json:"links,omitempty"`
	SearchLink string            `json:"search_link"`
	CoverPath  string            `json:"cover_path,omitempty"`
}
