// Package cli wires the shopping assistant pipeline behind a thin
// cobra command tree. The core owns no network listener; these
// commands are its interactive and scripted callers.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopchat-core/internal/adapters/driven/ai"
	"github.com/custodia-labs/shopchat-core/internal/adapters/driven/elastic"
	redisadapter "github.com/custodia-labs/shopchat-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/shopchat-core/internal/config"
	"github.com/custodia-labs/shopchat-core/internal/core/domain"
	"github.com/custodia-labs/shopchat-core/internal/core/ports/driven"
	"github.com/custodia-labs/shopchat-core/internal/core/services"
	"github.com/custodia-labs/shopchat-core/internal/retry"
	"github.com/custodia-labs/shopchat-core/internal/runtime"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shopchat",
	Short: "Conversational product search over a retail catalog",
	Long: `shopchat answers natural-language questions about a product catalog.
Retrieval combines keyword and semantic search over Elasticsearch,
and answers are generated strictly from the retrieved products.

Example usage:
  shopchat setup                       # Provision the product index
  shopchat load products.json          # Load a catalog file
  shopchat search "laptop under 2000"  # One-shot retrieval
  shopchat chat                        # Interactive conversation`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = newLogger(cfg.Logging.Level)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./shopchat.yaml)")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newSearchEngine builds the Elasticsearch adapter from configuration.
func newSearchEngine() *elastic.SearchEngine {
	engineCfg := elastic.DefaultConfig(cfg.Elasticsearch.URL)
	if cfg.Elasticsearch.Index != "" {
		engineCfg.Index = cfg.Elasticsearch.Index
	}
	engineCfg.Username = cfg.Elasticsearch.Username
	engineCfg.Password = cfg.Elasticsearch.Password
	engineCfg.APIKey = cfg.Elasticsearch.APIKey
	engineCfg.NativeFusion = cfg.Elasticsearch.NativeFusion
	return elastic.NewSearchEngine(engineCfg)
}

// newServices registers the configured AI providers. Missing or
// unhealthy optional services degrade capabilities instead of failing
// startup.
func newServices(ctx context.Context) *runtime.Services {
	svcs := runtime.NewServices(domain.NewRuntimeConfig(cfg.Method()))
	factory := ai.NewFactory()

	embedding, err := factory.CreateEmbeddingService(cfg.EmbeddingSettings())
	if err != nil {
		logger.Warn("embedding service unavailable", "error", err)
	} else if embedding != nil {
		if err := svcs.ValidateAndSetEmbedding(ctx, embedding); err != nil {
			logger.Warn("embedding service failed validation", "error", err)
		}
	}

	llm, err := factory.CreateLLMService(cfg.LLMSettings())
	if err != nil {
		logger.Warn("LLM service unavailable", "error", err)
	} else if llm != nil {
		if err := svcs.ValidateAndSetLLM(ctx, llm); err != nil {
			logger.Warn("LLM service failed validation", "error", err)
		}
	}

	return svcs
}

// newSessionStore builds the Redis session store when an address is
// configured; otherwise persistence is disabled.
func newSessionStore() driven.SessionStore {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return redisadapter.NewSessionStore(client, cfg.Redis.TTL.Std())
}

func retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay.Std(),
		MaxDelay:    cfg.Retry.MaxDelay.Std(),
	}
}

func retrieverConfig() services.RetrieverConfig {
	return services.RetrieverConfig{
		TopK:          cfg.Retrieval.TopK,
		NumCandidates: cfg.Retrieval.NumCandidates,
		RankConstant:  cfg.Retrieval.RankConstant,
		WindowSize:    cfg.Retrieval.WindowSize,
	}
}
