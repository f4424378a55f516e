package process

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/orpheus/internal/config"
	"github.com/lepinkainen/orpheus/internal/csvutil"
	"github.com/lepinkainen/orpheus/internal/links"
	"github.com/lepinkainen/orpheus/internal/schema"
	"github.com/lepinkainen/orpheus/internal/testutil"
)

// saveGlobals snapshots the package-level flag state and restores it
// when the test finishes.
func saveGlobals(t *testing.T) {
	t.Helper()

	origCSVFile := csvFile
	origArtist := artistColumn
	origTitle := titleColumn
	origEngines := searchEngines
	origMaxKeywords := maxKeywords
	origItemsPerPage := itemsPerPage
	origInteractive := interactive
	origReportDir := reportDir
	origOutputName := outputName
	origWriteJSON := writeJSON
	origJSONOutput := jsonOutput
	origWriteHTML := writeHTML
	origWriteNotes := writeNotes
	origMarkdownDir := markdownDir
	origOverwrite := overwrite

	t.Cleanup(func() {
		csvFile = origCSVFile
		artistColumn = origArtist
		titleColumn = origTitle
		searchEngines = origEngines
		maxKeywords = origMaxKeywords
		itemsPerPage = origItemsPerPage
		interactive = origInteractive
		reportDir = origReportDir
		outputName = origOutputName
		writeJSON = origWriteJSON
		jsonOutput = origJSONOutput
		writeHTML = origWriteHTML
		writeNotes = origWriteNotes
		markdownDir = origMarkdownDir
		overwrite = origOverwrite
	})
}

func setupProcessTest(t *testing.T) *testutil.TestEnv {
	t.Helper()

	env := testutil.NewTestEnv(t)
	testutil.SetTestConfig(t)
	saveGlobals(t)

	viper.Set("reportoutputdir", env.Path("report"))
	viper.Set("markdownoutputdir", env.Path("markdown"))
	viper.Set("jsonoutputdir", env.Path("json"))
	viper.Set("datasette.enabled", false)

	return env
}

func TestProcessWithParamsEndToEnd(t *testing.T) {
	env := setupProcessTest(t)

	env.WriteFileString("export.csv",
		"Artist,Album,Year\n"+
			"The Beatles,Abbey Road (Remastered),1969\n"+
			"Various Artists,Now That's Music,2001\n")

	err := ProcessWithParams(Params{
		Input:      env.Path("export.csv"),
		OutputName: "albums",
		Engines:    []string{"wikipedia", "spotify"},
		WriteJSON:  true,
		WriteHTML:  true,
		WriteNotes: true,
	})
	require.NoError(t, err)

	env.RequireFileExists("report/albums.csv")
	csvContent := env.ReadFileString("report/albums.csv")
	assert.Contains(t, csvContent, "Keywords")
	assert.Contains(t, csvContent, "Wikipedia_Link")
	assert.Contains(t, csvContent, "Spotify_Link")
	assert.Contains(t, csvContent, "Search_Link")
	assert.Contains(t, csvContent, "beatles abbey road")
	assert.Contains(t, csvContent, "search=beatles+abbey+road")
	// "Various Artists" contributes no artist tokens
	assert.Contains(t, csvContent, "now s music")

	env.RequireFileExists("report/albums.html")
	htmlContent := env.ReadFileString("report/albums.html")
	assert.Contains(t, htmlContent, "Page 1 of 1")
	assert.Contains(t, htmlContent, "Abbey Road (Remastered)")

	env.RequireFileExists("json/albums.json")
	env.AssertFileContains("json/albums.json", "beatles abbey road")

	env.RequireFileExists("markdown/The Beatles - Abbey Road (Remastered).md")
	env.AssertFileContains("markdown/The Beatles - Abbey Road (Remastered).md", "keywords: beatles abbey road")
}

func TestProcessWithParamsMissingFile(t *testing.T) {
	env := setupProcessTest(t)

	err := ProcessWithParams(Params{Input: env.Path("missing.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read export")
}

func TestProcessPagination(t *testing.T) {
	env := setupProcessTest(t)

	env.WriteFileString("export.csv",
		"Artist,Title\n"+
			"Kraftwerk,Autobahn\n"+
			"Kraftwerk,Radio-Activity\n"+
			"Kraftwerk,Trans-Europe Express\n"+
			"Kraftwerk,The Man-Machine\n"+
			"Kraftwerk,Computer World\n")

	err := ProcessWithParams(Params{
		Input:        env.Path("export.csv"),
		OutputName:   "albums",
		ItemsPerPage: 2,
		WriteHTML:    true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"albums.csv", "albums_page_1.html", "albums_page_2.html", "albums_page_3.html"},
		env.ListFiles("report"))
	env.RequireFileNotExists("report/albums.html")

	first := env.ReadFileString("report/albums_page_1.html")
	assert.Contains(t, first, "Page 1 of 3")
	assert.Contains(t, first, "albums_page_2.html")
	assert.NotContains(t, first, "Previous")

	last := env.ReadFileString("report/albums_page_3.html")
	assert.Contains(t, last, "Page 3 of 3")
	assert.Contains(t, last, "albums_page_2.html")
	assert.NotContains(t, last, "Next")
}

func TestProcessWritesLocalDatastore(t *testing.T) {
	env := setupProcessTest(t)

	viper.Set("datasette.enabled", true)
	viper.Set("datasette.mode", "local")
	viper.Set("datasette.dbfile", env.Path("orpheus.db"))

	env.WriteFileString("export.csv", "Artist,Title\nPlaid,Double Figure\n")

	err := ProcessWithParams(Params{
		Input:      env.Path("export.csv"),
		OutputName: "albums",
	})
	require.NoError(t, err)

	env.RequireFileExists("orpheus.db")
}

func TestEnrichRowsDefaultEngine(t *testing.T) {
	testutil.SetTestConfig(t)

	table := &csvutil.Table{
		Headers: []string{"Artist", "Title"},
		Rows: []csvutil.Row{
			{"Artist": "Pink Floyd", "Title": "The Dark Side of the Moon"},
		},
	}
	mapping := schema.Mapping{ArtistColumn: "Artist", TitleColumn: "Title"}
	cfg := config.LoadProcessor()

	engines, unknown, defaulted := links.ResolveEngines(nil, cfg.Engines, cfg.DefaultEngine)
	require.Empty(t, unknown)
	require.True(t, defaulted)

	albums, err := enrichRows(table, mapping, cfg, engines, defaulted)
	require.NoError(t, err)
	require.Len(t, albums, 1)

	assert.Equal(t, "pink floyd dark side moon", albums[0].Keywords)
	assert.Empty(t, albums[0].Links)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Special:Search?search=pink+floyd+dark+side+moon", albums[0].SearchLink)
}

func TestEnrichRowsPreservesInputOrder(t *testing.T) {
	testutil.SetTestConfig(t)

	table := &csvutil.Table{Headers: []string{"Artist", "Title"}}
	for i := 0; i < 200; i++ {
		table.Rows = append(table.Rows, csvutil.Row{
			"Artist": "Artist" + string(rune('A'+i%26)),
			"Title":  "Album" + string(rune('A'+i%26)),
		})
	}

	mapping := schema.Mapping{ArtistColumn: "Artist", TitleColumn: "Title"}
	cfg := config.LoadProcessor()
	engines, _, defaulted := links.ResolveEngines([]string{"wikipedia"}, cfg.Engines, cfg.DefaultEngine)

	albums, err := enrichRows(table, mapping, cfg, engines, defaulted)
	require.NoError(t, err)
	require.Len(t, albums, 200)

	for i, album := range albums {
		assert.Equal(t, table.Rows[i]["Artist"], album.Artist)
		assert.Equal(t, table.Rows[i]["Title"], album.Title)
	}
}

func TestEnrichRowsMissingColumnsYieldEmptyFields(t *testing.T) {
	testutil.SetTestConfig(t)

	table := &csvutil.Table{
		Headers: []string{"Something"},
		Rows:    []csvutil.Row{{"Something": "value"}},
	}
	mapping := schema.Mapping{}
	cfg := config.LoadProcessor()
	engines, _, defaulted := links.ResolveEngines([]string{"wikipedia"}, cfg.Engines, cfg.DefaultEngine)

	albums, err := enrichRows(table, mapping, cfg, engines, defaulted)
	require.NoError(t, err)
	require.Len(t, albums, 1)

	assert.Empty(t, albums[0].Keywords)
	// Empty keywords still produce a valid bare-search URL
	assert.Equal(t, "https://en.wikipedia.org/wiki/Special:Search?search=", albums[0].Links["wikipedia"])
}

func TestResolveSchemaExplicitOverride(t *testing.T) {
	testutil.SetTestConfig(t)
	saveGlobals(t)

	artistColumn = "Band"
	titleColumn = "Record"
	interactive = false

	table := &csvutil.Table{
		Headers: []string{"Band", "Record", "Artist"},
		Rows:    []csvutil.Row{{"Band": "Tool", "Record": "Lateralus", "Artist": "ignored"}},
	}

	mapping, err := resolveSchema(table, config.LoadProcessor())
	require.NoError(t, err)
	assert.Equal(t, "Band", mapping.ArtistColumn)
	assert.Equal(t, "Record", mapping.TitleColumn)
}

func TestResolveSchemaInteractivePipedStdinIsSoft(t *testing.T) {
	testutil.SetTestConfig(t)
	saveGlobals(t)

	interactive = true
	origIsTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdinIsTerminal = origIsTerminal })

	table := &csvutil.Table{
		Headers: []string{"ColA", "ColB"},
		Rows:    []csvutil.Row{{"ColA": "x", "ColB": "y"}},
	}

	// Without a terminal the picker never opens and unresolved
	// columns stay a soft condition.
	mapping, err := resolveSchema(table, config.LoadProcessor())
	require.NoError(t, err)
	assert.False(t, mapping.Resolved())
}

func TestResolveSchemaUnresolvedIsSoft(t *testing.T) {
	testutil.SetTestConfig(t)
	saveGlobals(t)

	interactive = false

	table := &csvutil.Table{
		Headers: []string{"ColA", "ColB"},
		Rows:    []csvutil.Row{{"ColA": "x", "ColB": "y"}},
	}

	mapping, err := resolveSchema(table, config.LoadProcessor())
	require.NoError(t, err)
	assert.False(t, mapping.Resolved())
}
