package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/brevity-app/brevity-go/api"
	"github.com/brevity-app/brevity-go/apperr"
	"github.com/brevity-app/brevity-go/breaker"
	"github.com/brevity-app/brevity-go/config"
	"github.com/brevity-app/brevity-go/retry"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "brevity",
	Short: "Brevity summarizer CLI",
	Long:  `Command-line client for the Brevity summarizer API.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// setup loads configuration, initializes logging and builds the API client.
func setup() (*config.AppConfig, *api.Client) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	client, err := buildClient(cfg)
	if err != nil {
		slog.Error("Failed to build API client", "error", err)
		os.Exit(1)
	}
	return cfg, client
}

func buildClient(cfg *config.AppConfig) (*api.Client, error) {
	retryCfg, err := cfg.RetryExecutorConfig()
	if err != nil {
		return nil, err
	}
	retryCfg.Hooks = buildHooks(cfg)

	breakerOpts, err := cfg.BreakerOptions()
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.APITimeout()
	if err != nil {
		return nil, err
	}

	apiKey := cfg.API.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("BREVITY_API_KEY")
	}

	return api.NewClient(cfg.API.BaseURL, apiKey,
		api.WithHTTPClient(&http.Client{Timeout: timeout}),
		api.WithLogger(slog.Default()),
		api.WithRetryConfig(retryCfg),
		api.WithBreaker(breaker.New("brevity-api", breakerOpts...)),
	), nil
}

// buildHooks wires the optional retry side effects from config. Everything
// stays off unless asked for; error reporting additionally needs the
// BREVITY_ERROR_REPORTING environment flag.
func buildHooks(cfg *config.AppConfig) retry.Hooks {
	var hooks retry.Hooks
	if cfg.Retry.ShowToast {
		hooks.Notify = func(msg string) {
			fmt.Fprintln(os.Stderr, msg)
		}
	}
	if cfg.Retry.LogErrors {
		hooks.Logger = slog.Default()
	}
	if cfg.Retry.ReportErrors && os.Getenv("BREVITY_ERROR_REPORTING") != "" {
		hooks.Report = func(err *apperr.Error) {
			slog.Error("reporting error to tracker",
				"code", err.Code,
				"status", err.StatusCode,
				"request_id", err.RequestID,
				"details", err.Details,
			)
		}
	}
	return hooks
}
