package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"mercadopublico-scraper/config"
	"mercadopublico-scraper/fetch"
	"mercadopublico-scraper/scraper/catalog"
	"mercadopublico-scraper/scraper/prices"
	"mercadopublico-scraper/storage"
	"mercadopublico-scraper/utils"
)

func main() {
	mode := flag.String("mode", modeAll, "what to run: catalog, prices or all")
	maxProducts := flag.Int("max-products", -1, "limit products priced per pass (overrides MAX_PRODUCTS)")
	schedule := flag.String("schedule", "", `cron spec with seconds, e.g. "0 0 */12 * * *"; empty runs once`)
	flag.Parse()

	cfg := config.Load()
	if *maxProducts >= 0 {
		cfg.MaxProducts = *maxProducts
	}
	logger := utils.NewLogger(cfg.LogLevel)

	logger.Info("=== Convenio Marco price scraper starting ===")
	logger.Info("Config | mode: %s | fetch: %s | concurrency: %d | rate: %v | max products: %d",
		*mode, cfg.FetchMode, cfg.MaxConcurrency, cfg.RateLimit, cfg.MaxProducts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher, closeFetcher, err := fetch.New(cfg, logger)
	if err != nil {
		logger.Error("Failed to create fetcher: %v", err)
		os.Exit(1)
	}
	defer closeFetcher()

	pgWriter, err := storage.NewPostgresWriter(ctx, cfg.DSN(), cfg.CatalogBatchSize, cfg.SummaryBatchSize)
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer pgWriter.Close()

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	p := &pipeline{
		logger:      logger,
		catalog:     catalog.New(cfg, fetcher, logger),
		prices:      prices.New(cfg, fetcher, logger),
		products:    pgWriter,
		writers:     []storage.SummaryWriter{pgWriter, csvWriter},
		report:      os.Stdout,
		maxProducts: cfg.MaxProducts,
	}
	if cfg.RefreshRegionView {
		p.refresher = pgWriter
	}

	if *schedule == "" {
		if err := p.run(ctx, *mode); err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		logger.Info("Done. CSV → %s | summaries → PostgreSQL (cm_precios_minimos)", cfg.CSVOutputPath)
		return
	}

	runScheduled := func() {
		if err := p.run(ctx, *mode); err != nil {
			logger.Error("Scheduled %s run failed: %v", *mode, err)
		}
	}

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := c.AddFunc(*schedule, runScheduled)
	if err != nil {
		logger.Error("Invalid schedule %q: %v", *schedule, err)
		os.Exit(1)
	}

	logger.Info("Scheduled %s runs: %s (running once now)", *mode, *schedule)
	// Through the wrapped job so the startup run also blocks overlapping ticks.
	go c.Entry(id).WrappedJob.Run()
	c.Start()

	<-ctx.Done()
	logger.Info("Shutting down, waiting for the running pass to finish...")
	<-c.Stop().Done()
}
