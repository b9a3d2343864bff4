package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/filings"
	storagebadger "github.com/ternarybob/quaestor/internal/storage/badger"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	ticker      = flag.String("ticker", "", "Fetch a single ticker instead of the constituents CSV")
	formType    = flag.String("form-type", "10-K", "Type of filing to fetch")
	year        = flag.Int("year", time.Now().Year(), "Year of the filing to fetch")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("filing-fetch version %s\n", common.GetVersion())
		os.Exit(0)
	}

	_ = godotenv.Load()

	var paths []string
	if *configFile != "" {
		paths = append(paths, *configFile)
	} else if _, err := os.Stat("quaestor.toml"); err == nil {
		paths = append(paths, "quaestor.toml")
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)

	storageManager, err := storagebadger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer storageManager.Close()

	service := filings.NewService(&config.Filings, storageManager.FilingStorage(), logger)

	ctx := context.Background()

	var downloaded int
	if *ticker != "" {
		downloaded, err = service.FetchTicker(ctx, *ticker, *formType, *year)
	} else {
		downloaded, err = service.FetchAll(ctx, *formType, *year)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Filing fetch failed")
	}

	logger.Info().
		Int("downloaded", downloaded).
		Str("form_type", *formType).
		Int("year", *year).
		Msg("Filing fetch complete")
}
