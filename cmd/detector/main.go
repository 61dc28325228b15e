// Command detector serves the misinformation detector UI and API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/factchecker/misinfo-detector/internal/analysis"
	"github.com/factchecker/misinfo-detector/internal/api"
	"github.com/factchecker/misinfo-detector/internal/collector"
	"github.com/factchecker/misinfo-detector/internal/config"
	"github.com/factchecker/misinfo-detector/internal/database"
	"github.com/factchecker/misinfo-detector/internal/fetch"
	"github.com/factchecker/misinfo-detector/internal/llm"
	"github.com/factchecker/misinfo-detector/internal/settings"
	"github.com/factchecker/misinfo-detector/web"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	generate := flag.Bool("generate-config", false, "write a sample configuration file and exit")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	if *generate {
		if err := config.GenerateSample(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write sample config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sample configuration written to %s\n", *configPath)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		cerr := analysis.Configuration(err)
		log.Fatal().Err(cerr.Err).Str("kind", cerr.Kind.String()).Msg("Failed to load configuration")
	}
	setupLogging(cfg.Logging)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// loadConfig reads path, or falls back to defaults plus environment when the
// default file is absent.
func loadConfig(path string) (*config.Config, error) {
	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	prefs, err := settings.NewService(store, cfg.Settings.CacheSize)
	if err != nil {
		return err
	}
	if err := prefs.Load(ctx); err != nil {
		return err
	}

	provider, err := llm.NewProvider(ctx, &cfg.LLM)
	if err != nil {
		return analysis.Configuration(err)
	}

	analyzer := analysis.NewAnalyzer(&cfg.LLM, provider, fetch.NewPageFetcher())
	handler := api.NewHandler(analyzer, collector.New(&cfg.Analysis), prefs, store, provider.Name())
	router := api.NewRouter(cfg, handler, store, web.Static())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("provider", provider.Name()).
			Str("model", cfg.LLM.Model).
			Bool("ui", cfg.Server.EnableUI).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server exited")
	return nil
}
