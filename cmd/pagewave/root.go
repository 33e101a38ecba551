package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pagewave/pagewave/internal/config"
	"github.com/pagewave/pagewave/pkg/batch"
	"github.com/pagewave/pagewave/pkg/cache"
	"github.com/pagewave/pagewave/pkg/logging"
	"github.com/pagewave/pagewave/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
)

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	executor *batch.Executor
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "pagewave",
	Short: "Fetch paginated JSON resources in batched request waves",
	Long: `pagewave drives configured HTTP endpoints through batched request
waves, paginating each resource until it is exhausted and streaming
every page to stdout as NDJSON.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(callCmd)
}

// initializeApp loads the configuration and builds the executor.
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "console",
		Output: os.Stderr,
	})

	execCfg := batch.DefaultConfig()
	execCfg.MaxInFlight = cfg.Fetch.MaxInFlight
	execCfg.Timeout = cfg.Fetch.Timeout
	execCfg.CacheTTL = cfg.Redis.CacheTTL

	if cfg.Auth.Header != "" && cfg.Auth.Value != "" {
		header := http.Header{}
		header.Set(cfg.Auth.Header, cfg.Auth.Value)
		execCfg.Header = header
	}

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := redisClient.Ping(cmd.Context()).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		execCfg.Cache = cache.NewManager(redisClient)
		execCfg.Budget = ratelimit.NewTracker(redisClient, logging.NewLogger("ratelimit"))
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache and budget gate enabled")
	}

	executor = batch.New(execCfg, logging.NewLogger("batch"))

	return nil
}
