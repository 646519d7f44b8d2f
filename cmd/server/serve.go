package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hazyhaar/touchstone-catalog/pkg/api"
	"github.com/hazyhaar/touchstone-catalog/pkg/catalog"
	"github.com/hazyhaar/touchstone-catalog/pkg/query"
	"github.com/hazyhaar/touchstone-catalog/pkg/search"
)

const shutdownTimeout = 10 * time.Second

// newService loads the synonyms and the catalog named by cfg and wires the
// engines behind an api.Service.
func newService(ctx context.Context, cfg config, logger *slog.Logger) (*api.Service, error) {
	tbl, err := loadSynonyms(cfg)
	if err != nil {
		return nil, err
	}
	entries, source, err := loadCatalog(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	se, err := search.New(entries, tbl, search.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	qe, err := query.New(se, query.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	svc, err := api.NewService(se, qe,
		api.WithLogger(logger),
		api.WithBatchWorkers(cfg.BatchWorkers),
		api.WithMaxBatch(cfg.MaxBatch),
	)
	if err != nil {
		return nil, err
	}

	st := tbl.Stats()
	logger.Info("catalog loaded", "source", source, "entries", len(entries),
		"synonym_terms", st.TotalTerms, "regional_terms", st.WithRegionInfo)
	return svc, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	logger := slog.Default()

	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	reload := func(entries []catalog.Entry, source string) {
		if err := svc.UpdateCatalog(entries); err != nil {
			logger.Error("reload failed", "source", source, "error", err)
			return
		}
		logger.Info("catalog reloaded", "source", source, "entries", len(entries))
	}

	// SIGHUP: reload the catalog from its configured source.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sighup:
				logger.Info("SIGHUP received, reloading catalog")
				entries, source, err := loadCatalog(ctx, cfg)
				if err != nil {
					logger.Error("reload failed", "error", err)
					continue
				}
				reload(entries, source)
			}
		}
	}()

	if cfg.WatchCatalog {
		go func() {
			err := catalog.Watch(ctx, cfg.CatalogFile, catalog.DefaultDebounce, func(entries []catalog.Entry) {
				reload(entries, cfg.CatalogFile)
			})
			if err != nil {
				logger.Error("catalog watcher stopped", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("touchstone-catalog listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
