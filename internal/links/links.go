// Package links generates deterministic per-engine search URLs from a
// keyword string. Link generation is pure string templating; no HTTP
// calls happen here.
package links

import (
	"net/url"
	"sort"
	"strings"
)

// queryPlaceholder is substituted with the encoded keywords in an
// engine's URL template.
const queryPlaceholder = "{query}"

// Space-encoding conventions. Which one an engine uses is configuration,
// not a hardcoded assumption.
const (
	SpacePlus    = "plus"    // spaces become "+" (query-string style)
	SpacePercent = "percent" // spaces become "%20" (path style)
)

// Engine is a named external search target.
type Engine struct {
	Name          string
	Label         string
	URLTemplate   string
	SpaceEncoding string
}

// URL builds the search URL for the given keywords. Empty keywords
// produce the engine's bare search page, which is a valid low-value
// result rather than an error.
func (e Engine) URL(keywords string) string {
	return strings.ReplaceAll(e.URLTemplate, queryPlaceholder, encodeQuery(keywords, e.SpaceEncoding))
}

func encodeQuery(keywords, spaceEncoding string) string {
	if spaceEncoding == SpacePercent {
		return url.PathEscape(keywords)
	}
	return url.QueryEscape(keywords)
}

// Registry maps engine names to their definitions.
type Registry map[string]Engine

// DefaultRegistry returns the built-in engine set.
func DefaultRegistry() Registry {
	return Registry{
		"wikipedia": {
			Name:          "wikipedia",
			Label:         "Wikipedia",
			URLTemplate:   "https://en.wikipedia.org/wiki/Special:Search?search={query}",
			SpaceEncoding: SpacePlus,
		},
		"spotify": {
			Name:          "spotify",
			Label:         "Spotify",
			URLTemplate:   "https://open.spotify.com/search/{query}",
			SpaceEncoding: SpacePercent,
		},
		"youtube": {
			Name:          "youtube",
			Label:         "YouTube",
			URLTemplate:   "https://www.youtube.com/results?search_query={query}",
			SpaceEncoding: SpacePlus,
		},
		"discogs": {
			Name:          "discogs",
			Label:         "Discogs",
			URLTemplate:   "https://www.discogs.com/search/?q={query}",
			SpaceEncoding: SpacePlus,
		},
		"allmusic": {
			Name:          "allmusic",
			Label:         "AllMusic",
			URLTemplate:   "https://www.allmusic.com/search/all/{query}",
			SpaceEncoding: SpacePercent,
		},
		"musicbrainz": {
			Name:          "musicbrainz",
			Label:         "MusicBrainz",
			URLTemplate:   "https://musicbrainz.org/search?query={query}&type=release",
			SpaceEncoding: SpacePlus,
		},
	}
}

// Names returns the registry's engine names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveEngines validates the requested engine names against the
// registry once per run. Unknown names are returned separately so the
// caller can report each of them a single time and skip that engine for
// every row. An empty request resolves to the default engine alone,
// marked so that per-row link maps stay empty.
func ResolveEngines(requested []string, registry Registry, defaultEngine string) (resolved []Engine, unknown []string, defaulted bool) {
	if len(requested) == 0 {
		if engine, ok := registry[defaultEngine]; ok {
			return []Engine{engine}, nil, true
		}
		return nil, []string{defaultEngine}, true
	}

	for _, name := range requested {
		engine, ok := registry[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		resolved = append(resolved, engine)
	}

	return resolved, unknown, false
}

// Generate produces one URL per resolved engine plus the primary URL.
// The primary link belongs to the first resolved engine in request
// order. When the engine list came from the default-engine fallback the
// links map stays empty and only the primary is set.
func Generate(keywords string, engines []Engine, defaulted bool) (map[string]string, string) {
	if len(engines) == 0 {
		return map[string]string{}, ""
	}

	primary := engines[0].URL(keywords)
	generated := make(map[string]string, len(engines))

	if defaulted {
		return generated, primary
	}

	for _, engine := range engines {
		generated[engine.Name] = engine.URL(keywords)
	}

	return generated, primary
}
