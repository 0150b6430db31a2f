package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/provebench/leanc/internal/cache"
	"github.com/provebench/leanc/internal/compiler"
	"github.com/provebench/leanc/internal/config"
	"github.com/provebench/leanc/internal/ledger"
	"github.com/provebench/leanc/internal/logging"
	"github.com/provebench/leanc/internal/service"
)

// components holds everything a command needs, wired from config.
type components struct {
	cfg     *config.Config
	cache   *cache.Cache
	ledger  *ledger.Ledger
	invoker *compiler.Invoker
	svc     *service.Service
	log     *zap.Logger
}

func (c *components) close() {
	if c.cache != nil {
		_ = c.cache.Close()
	}

	_ = c.log.Sync()
}

// newComponents wires the cache, ledger, invoker, and service from a
// loaded configuration.
func newComponents(cfg *config.Config) (*components, error) {
	logger := logging.New(cfg.Verbose)
	fs := afero.NewOsFs()

	var (
		resultCache *cache.Cache
		err         error
	)

	switch cfg.CacheBackend {
	case "bolt":
		if mkErr := fs.MkdirAll(cfg.CacheDir, 0o755); mkErr != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", mkErr)
		}

		resultCache, err = cache.NewBoltCache(cfg.CacheDir, logger)
	default:
		resultCache, err = cache.NewFileCache(fs, cfg.CacheDir, logger)
	}

	if err != nil {
		return nil, err
	}

	attempts := ledger.New(fs, cfg.AttemptsDir, logger)
	invoker := compiler.New(cfg.LeanPath, cfg.ElanPath, logger)

	svc := service.New(resultCache, attempts, invoker, service.Options{
		NoCache:        cfg.NoCache,
		CacheTTL:       time.Duration(cfg.CacheTTL) * time.Second,
		LogCacheHits:   cfg.LogCacheHits,
		DefaultTimeout: time.Duration(cfg.Timeout) * time.Second,
	}, logger)

	return &components{
		cfg:     cfg,
		cache:   resultCache,
		ledger:  attempts,
		invoker: invoker,
		svc:     svc,
		log:     logger,
	}, nil
}

// printJSON renders command output for both humans and scripts.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(data))

	return nil
}
