package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v2"

	"github.com/hazyhaar/touchstone-catalog/pkg/api"
	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/normalize"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
)

func searchCommand(c *cli.Context) error {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return errors.New("search needs a query")
	}
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	tbl, err := loadSynonyms(cfg)
	if err != nil {
		return err
	}
	entries, _, err := loadCatalog(c.Context, cfg)
	if err != nil {
		return err
	}
	se, err := search.New(entries, tbl)
	if err != nil {
		return err
	}

	results := se.Search(q, search.Options{
		MinScore:   c.Float64("min-score"),
		MaxResults: c.Int("max-results"),
	})
	return printJSON(c.App.Writer, results)
}

func importCommand(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	dbPath := c.String("db")
	if dbPath == "" {
		dbPath = cfg.CatalogDB
	}
	if dbPath == "" {
		return errors.New("import needs --db or catalog_db in the config")
	}

	entries, err := catalog.LoadFile(c.String("catalog"))
	if err != nil {
		return err
	}
	store, err := catalog.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Replace(c.Context, entries); err != nil {
		return err
	}
	stored, err := store.Count(c.Context)
	if err != nil {
		return err
	}
	slog.Info("catalog imported", "entries", len(entries), "stored", stored, "db", dbPath)
	fmt.Fprintf(c.App.Writer, "imported %d entries into %s (%d stored)\n", len(entries), dbPath, stored)
	return nil
}

type normalized struct {
	Input      string   `json:"input"`
	Normalized string   `json:"normalized"`
	Variations []string `json:"variations"`
}

type normalizeOutput struct {
	Policy string       `json:"policy"`
	Terms  []normalized `json:"terms"`
	Keys   []string     `json:"keys"` // standard lookup keys, empties dropped
}

func normalizeCommand(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return errors.New("normalize needs at least one term")
	}
	policy := normalize.ParsePolicy(c.String("policy"))

	out := normalizeOutput{
		Policy: policy.String(),
		Terms:  make([]normalized, 0, len(args)),
		Keys:   normalize.Terms(args),
	}
	for _, a := range args {
		out.Terms = append(out.Terms, normalized{
			Input:      a,
			Normalized: normalize.Normalize(a, policy),
			Variations: normalize.Variations(a),
		})
	}
	return printJSON(c.App.Writer, out)
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	svc, err := newService(c.Context, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer svc.Close()

	srv := server.NewMCPServer("touchstone-catalog", version, server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, svc)
	return server.ServeStdio(srv)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
