package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/orpheus/cmd/discogs"
	"github.com/lepinkainen/orpheus/cmd/process"
	"github.com/lepinkainen/orpheus/internal/config"
)

var (
	runProcess   = process.ProcessWithParams
	fetchDiscogs = discogs.FetchWithParams
)

// CLI represents the complete command structure for the orpheus application
type CLI struct {
	// Global flags
	Overwrite    bool `help:"Overwrite existing markdown notes when processing"`
	UpdateCovers bool `help:"Re-download cover thumbnails even if they already exist"`

	// Datasette flags
	Datasette   bool   `help:"Enable Datasette output" default:"true"`
	DatasetteDB string `help:"Path to SQLite database file" default:"./orpheus.db"`

	Process ProcessCmd `cmd:"" help:"Process a music collection export into an enriched report"`
	Engines EnginesCmd `cmd:"" help:"List configured search engines"`
	Fetch   FetchCmd   `cmd:"" help:"Fetch collection exports from external services"`
}

// ProcessCmd represents the process command
type ProcessCmd struct {
	Input         string   `short:"f" help:"Path to collection export CSV file"`
	Output        string   `short:"o" help:"Base name for report files" default:"albums"`
	Artist        string   `help:"Explicit artist column name (skips detection)"`
	Title         string   `help:"Explicit title column name (skips detection)"`
	Search        []string `short:"s" help:"Search engines to generate links for (repeatable)"`
	MaxKeywords   int      `help:"Maximum number of keywords per album (0 = configured value)"`
	ItemsPerPage  int      `help:"Albums per HTML report page (0 = configured value)"`
	JSON          bool     `help:"Write enriched data to JSON format"`
	JSONOutput    string   `help:"Path to JSON output file (defaults to json/<output>.json)"`
	HTML          bool     `help:"Write paginated HTML report" default:"true" negatable:""`
	Markdown      bool     `help:"Write per-album markdown notes"`
	MarkdownDir   string   `help:"Directory for markdown notes (defaults to markdown/)"`
	NoInteractive bool     `help:"Disable the interactive column picker when detection fails"`
}

// EnginesCmd represents the engines command
type EnginesCmd struct{}

// FetchCmd represents the fetch command and its subcommands
type FetchCmd struct {
	Discogs DiscogsCmd `cmd:"" help:"Download a collection export CSV from Discogs"`
}

// DiscogsCmd represents the discogs fetch command
type DiscogsCmd struct {
	Username    string `help:"Discogs username"`
	Password    string `help:"Discogs password"`
	DownloadDir string `help:"Directory for the downloaded export"`
	Headful     bool   `help:"Run the browser with a visible window"`
	Timeout     string `help:"Automation timeout (e.g. 3m)"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("orpheus"),
		kong.Description("A tool to enrich music collection exports with search keywords and links."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("reportoutputdir", "./report/")
	viper.SetDefault("markdownoutputdir", "./markdown/")
	viper.SetDefault("jsonoutputdir", "./json/")
	viper.SetDefault("OverwriteFiles", false)

	// Datasette defaults
	viper.SetDefault("datasette.enabled", true)
	viper.SetDefault("datasette.mode", "local")
	viper.SetDefault("datasette.dbfile", "./orpheus.db")

	// Discogs automation defaults
	viper.SetDefault("discogs.automation.timeout", "3m")
	viper.SetDefault("discogs.automation.download_dir", "exports")

	// Enable environment variable support
	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"discogs.automation.username": "DISCOGS_USERNAME",
		"discogs.automation.password": "DISCOGS_PASSWORD",
		"discogs.automation.headful":  "DISCOGS_HEADFUL",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	config.SetOverwriteFiles(cli.Overwrite)
	config.SetUpdateCovers(cli.UpdateCovers)

	viper.Set("datasette.enabled", cli.Datasette)
	viper.Set("datasette.dbfile", cli.DatasetteDB)
}

// Run methods for each command

func (p *ProcessCmd) Run() error {
	// Read from config if value not provided via flag
	input := p.Input
	if input == "" {
		input = viper.GetString("process.csvfile")
	}

	if input == "" {
		return fmt.Errorf("input CSV file is required (provide via --input flag or process.csvfile in config)")
	}

	return runProcess(process.Params{
		Input:        input,
		OutputName:   p.Output,
		Artist:       p.Artist,
		Title:        p.Title,
		Engines:      p.Search,
		MaxKeywords:  p.MaxKeywords,
		ItemsPerPage: p.ItemsPerPage,
		WriteJSON:    p.JSON,
		JSONOutput:   p.JSONOutput,
		WriteHTML:    p.HTML,
		WriteNotes:   p.Markdown,
		MarkdownDir:  p.MarkdownDir,
		Interactive:  !p.NoInteractive, // Invert: default is interactive
	})
}

func (e *EnginesCmd) Run() error {
	registry := config.LoadProcessor().Engines

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLABEL\tENCODING\tTEMPLATE")
	for _, name := range registry.Names() {
		engine := registry[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", engine.Name, engine.Label, engine.SpaceEncoding, engine.URLTemplate)
	}
	return w.Flush()
}

func (d *DiscogsCmd) Run() error {
	// Read from config if values not provided via flags
	username := d.Username
	if username == "" {
		username = viper.GetString("discogs.automation.username")
	}

	password := d.Password
	if password == "" {
		password = viper.GetString("discogs.automation.password")
	}

	if username == "" {
		return fmt.Errorf("discogs username is required (provide via --username flag or DISCOGS_USERNAME)")
	}
	if password == "" {
		return fmt.Errorf("discogs password is required (provide via --password flag or DISCOGS_PASSWORD)")
	}

	downloadDir := d.DownloadDir
	if downloadDir == "" {
		downloadDir = viper.GetString("discogs.automation.download_dir")
	}

	timeout := d.Timeout
	if timeout == "" {
		timeout = viper.GetString("discogs.automation.timeout")
	}
	duration, err := time.ParseDuration(timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", timeout, err)
	}

	headful := d.Headful || viper.GetBool("discogs.automation.headful")

	return fetchDiscogs(discogs.AutomationOptions{
		Username:    username,
		Password:    password,
		DownloadDir: downloadDir,
		Headless:    !headful,
		Timeout:     duration,
	})
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("ORPHEUS_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler))
}
