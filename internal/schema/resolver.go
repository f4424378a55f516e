// Package schema maps heterogeneous collection-export headers onto the
// canonical artist/title field pair.
package schema

import "strings"

// Mapping holds the resolved column names for the canonical fields.
// An empty string means the field could not be resolved; rows then feed
// an empty value into keyword generation instead of failing the run.
type Mapping struct {
	ArtistColumn string
	TitleColumn  string
}

// Resolved reports whether both canonical fields have a backing column.
func (m Mapping) Resolved() bool {
	return m.ArtistColumn != "" && m.TitleColumn != ""
}

// Resolve picks the artist and title columns from the available headers.
// An explicit column name wins unconditionally when it is present in the
// header set. Otherwise candidates are scanned in list order, first with
// exact matching and then case-insensitively. Candidate order is the tie
// breaker, so re-runs on the same schema always pick the same column.
func Resolve(available []string, artistCandidates, titleCandidates []string, explicitArtist, explicitTitle string) Mapping {
	return Mapping{
		ArtistColumn: resolveField(available, artistCandidates, explicitArtist),
		TitleColumn:  resolveField(available, titleCandidates, explicitTitle),
	}
}

func resolveField(available, candidates []string, explicit string) string {
	if explicit != "" && contains(available, explicit) {
		return explicit
	}

	for _, candidate := range candidates {
		if contains(available, candidate) {
			return candidate
		}
	}

	// Case-insensitive fallback pass, still in candidate order.
	for _, candidate := range candidates {
		for _, header := range available {
			if strings.EqualFold(header, candidate) {
				return header
			}
		}
	}

	return ""
}

func contains(headers []string, name string) bool {
	for _, header := range headers {
		if header == name {
			return true
		}
	}
	return false
}
