package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/obedav/ancerlarins-ingest/common"
	"github.com/obedav/ancerlarins-ingest/config"
	"github.com/obedav/ancerlarins-ingest/dedup"
	"github.com/obedav/ancerlarins-ingest/fetch"
	"github.com/obedav/ancerlarins-ingest/metrics"
	"github.com/obedav/ancerlarins-ingest/policy"
	"github.com/obedav/ancerlarins-ingest/scraper"
	scrapercommon "github.com/obedav/ancerlarins-ingest/scraper/common"
	"github.com/obedav/ancerlarins-ingest/store"
)

var (
	scrapeSources  []string
	scrapeMaxPages int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a scrape across the configured marketplace sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if len(scrapeSources) > 0 {
			cfg.Sources = scrapeSources
		}
		if scrapeMaxPages > 0 {
			cfg.MaxPages = scrapeMaxPages
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return runScrape(ctx, cfg)
	},
}

func init() {
	scrapeCmd.Flags().StringSliceVar(&scrapeSources, "source", nil, "source to scrape (repeatable; default all)")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "max pages per search (overrides config)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(ctx context.Context, cfg *config.Config) error {
	runID := common.GenerateRunID()
	log.Info().Str("run_id", runID).Msg("Starting scrape run")

	backend, closeBackend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	engine := dedup.NewEngine(backend, backend)
	ingestor := store.New(backend, engine)
	gate := policy.NewGate(cfg.UserAgent)
	fetcher := fetch.New(gate, cfg.UserAgent)

	factory := scraper.NewFactory()
	if err := scrapercommon.RegisterAllScrapers(factory); err != nil {
		return fmt.Errorf("failed to register scrapers: %w", err)
	}

	sources := factory.Sources()
	if len(cfg.Sources) > 0 {
		sources = sources[:0]
		for _, s := range cfg.Sources {
			sources = append(sources, scraper.SourceType(s))
		}
	}

	go metrics.Serve(cfg.MetricsAddr)

	runner := scrapercommon.NewRunner(factory, scraper.Deps{
		Fetcher:  fetcher,
		Ingestor: ingestor,
		Delay:    cfg.Delay,
	})

	stored, err := runner.RunAll(ctx, sources, cfg.MaxPages)
	if err != nil {
		return err
	}

	log.Info().Str("run_id", runID).Int("stored", stored).Msg("Scrape run complete")
	return nil
}

func newBackend(ctx context.Context, cfg *config.Config) (store.Backend, func(), error) {
	switch cfg.Storage {
	case "postgres":
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}
