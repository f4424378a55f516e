package process

import (
	"github.com/lepinkainen/orpheus/internal/cmdutil"
	"github.com/lepinkainen/orpheus/internal/config"
)

// Params carries the process command's flags into the pipeline.
type Params struct {
	Input        string
	OutputName   string
	Artist       string
	Title        string
	Engines      []string
	MaxKeywords  int
	ItemsPerPage int
	WriteJSON    bool
	JSONOutput   string
	WriteHTML    bool
	WriteNotes   bool
	MarkdownDir  string
	Interactive  bool
}

// Define package-level variables for flags
var (
	csvFile       string
	artistColumn  string
	titleColumn   string
	searchEngines []string
	maxKeywords   int
	itemsPerPage  int
	interactive   bool
	// Global variables referenced by the parser
	reportDir   string
	outputName  string
	writeJSON   bool
	jsonOutput  string
	writeHTML   bool
	writeNotes  bool
	markdownDir string
	overwrite   bool
)

var processAlbumsFunc = ProcessAlbums

// ProcessWithParams allows calling the processing pipeline with specific
// parameters. This is used by the Kong-based CLI implementation.
func ProcessWithParams(params Params) error {
	csvFile = params.Input
	artistColumn = params.Artist
	titleColumn = params.Title
	searchEngines = params.Engines
	maxKeywords = params.MaxKeywords
	itemsPerPage = params.ItemsPerPage
	interactive = params.Interactive

	cmdConfig := &cmdutil.BaseCommandConfig{
		OutputName:    params.OutputName,
		WriteMarkdown: params.WriteNotes,
		MarkdownDir:   params.MarkdownDir,
		WriteJSON:     params.WriteJSON,
		JSONOutput:    params.JSONOutput,
		Overwrite:     config.OverwriteFiles,
	}

	if err := cmdutil.SetupOutputDirs(cmdConfig); err != nil {
		return err
	}

	// Update package-level global variables with processed paths for parser usage
	reportDir = cmdConfig.ReportDir
	outputName = cmdConfig.OutputName
	writeJSON = cmdConfig.WriteJSON
	jsonOutput = cmdConfig.JSONOutput
	writeHTML = params.WriteHTML
	writeNotes = cmdConfig.WriteMarkdown
	markdownDir = cmdConfig.MarkdownDir
	overwrite = cmdConfig.Overwrite

	return processAlbumsFunc()
}
