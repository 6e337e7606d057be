package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/events"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/recruiting"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/store"
)

// env holds what every command needs after startup.
type env struct {
	ctx    context.Context
	logger *zap.Logger
	config *Config
}

func setup() *env {
	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	lg.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return &env{ctx: context.Background(), logger: lg, config: config}
}

func redacted(config *Config) *Config {
	if config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.APIKey == "" {
		return config
	}

	copied := *config
	aiCfg := *config.AI
	gem := *config.AI.Gemini
	gem.APIKey = "***"
	aiCfg.Gemini = &gem
	copied.AI = &aiCfg
	return &copied
}

func (e *env) openStore() store.Store {
	cfg := e.config.Store
	dsn := cfg.DSN
	if strings.EqualFold(cfg.Driver, store.DriverPostgres) && cfg.DatabaseURL != "" {
		dsn = cfg.DatabaseURL
	}

	st, err := store.Open(e.ctx, cfg.Driver, dsn)
	if err != nil {
		e.logger.Fatal("opening the store", zap.String("driver", cfg.Driver), zap.Error(err))
	}

	return st
}

// newPublisher connects to redis when configured. Events are optional, so a
// connection failure only disables them. The returned func releases the
// connection.
func (e *env) newPublisher() (events.Publisher, func()) {
	noop := func() {}

	cfg := e.config.Events
	if cfg.RedisURL == "" {
		return events.Nop{}, noop
	}

	rdb, err := events.NewRedisClient(e.ctx, cfg.RedisURL)
	if err != nil {
		e.logger.Warn("application events disabled", zap.Error(err))
		return events.Nop{}, noop
	}

	publisher, err := events.NewRedisPublisher(rdb, cfg.Channel)
	if err != nil {
		_ = rdb.Close()
		e.logger.Warn("application events disabled", zap.Error(err))
		return events.Nop{}, noop
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			e.logger.Warn("closing the redis connection", zap.Error(err))
		}
	}
}

// newMatcher never fails: without a usable AI configuration the heuristic
// matcher is returned.
func (e *env) newMatcher() matching.Matcher {
	cfg := e.config.AI
	if cfg == nil || !cfg.Enabled {
		e.logger.Info("ai matching disabled, using heuristic matcher")
		return matching.Basic{}
	}

	matcher, err := newAIMatcher(e.ctx, cfg, e.logger)
	if err != nil {
		e.logger.Warn("falling back to heuristic matcher", zap.Error(err))
		return matching.Basic{}
	}

	return matcher
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, lg *zap.Logger) (*ai.Adaptive, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		cfg.Gemini = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	fallback, err := ai.ParseFallbackMode(cfg.Fallback)
	if err != nil {
		return nil, err
	}

	return ai.NewAdaptive(generator, ai.Options{
		Timeout:      cfg.Timeout,
		Fallback:     fallback,
		MaxLogLength: cfg.Gemini.MaxLogLength,
		Logger:       logger.WithCommonFields(lg, "gemini", generator.Model()),
	})
}

// newService builds the recruiting service. The returned func releases the
// event publisher and must be called before exit.
func (e *env) newService(st store.Store) (*recruiting.Service, func()) {
	publisher, closePublisher := e.newPublisher()

	svc, err := recruiting.NewService(st, e.newMatcher(), recruiting.Options{
		Publisher:   publisher,
		Logger:      e.logger,
		Concurrency: e.config.Matching.Concurrency,
	})
	if err != nil {
		closePublisher()
		e.logger.Fatal("creating the recruiting service", zap.Error(err))
	}

	return svc, closePublisher
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
