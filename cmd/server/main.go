package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/synonym"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "touchstone-catalog",
		Usage:   "Regional-aware food catalog search",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "config.yaml",
				EnvVars: []string{"CATALOG_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serveCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the catalog and print ranked results",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "min-score", Usage: "Drop results scoring below this"},
					&cli.IntFlag{Name: "max-results", Aliases: []string{"n"}, Usage: "Maximum number of results", Value: 10},
				},
			},
			{
				Name:   "import",
				Usage:  "Load a catalog file into the SQLite catalog database",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "catalog", Usage: "Catalog file (YAML or JSON)", Required: true},
					&cli.StringFlag{Name: "db", Usage: "SQLite database path (default: catalog_db from config)"},
				},
			},
			{
				Name:      "normalize",
				Usage:     "Show how terms are normalized for matching",
				ArgsUsage: "<term>...",
				Action:    normalizeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "policy", Aliases: []string{"p"}, Usage: "standard, aggressive or conservative", Value: "standard"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the catalog tools over MCP stdio",
				Action: mcpCommand,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	level := c.String("log-level")
	if level == "" {
		cfg, err := loadConfig(c.String("config"))
		if err != nil {
			return err
		}
		level = cfg.LogLevel
	}
	l, err := parseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

// loadCatalog picks the catalog source: the database when it holds
// entries, then the catalog file, then the bundled sample.
func loadCatalog(ctx context.Context, cfg config) ([]catalog.Entry, string, error) {
	if cfg.CatalogDB != "" {
		store, err := catalog.OpenStore(cfg.CatalogDB)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()
		entries, err := store.All(ctx)
		if err != nil {
			return nil, "", err
		}
		if len(entries) > 0 {
			return entries, cfg.CatalogDB, nil
		}
	}
	if cfg.CatalogFile != "" {
		entries, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, "", err
		}
		return entries, cfg.CatalogFile, nil
	}
	return catalog.Sample(), "bundled sample", nil
}

func loadSynonyms(cfg config) (*synonym.Table, error) {
	tbl, err := synonym.Open(cfg.SynonymsFile)
	if err != nil {
		return nil, fmt.Errorf("load synonyms: %w", err)
	}
	return tbl, nil
}
