package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/meetmail/internal/domain/export"
	"github.com/yanqian/meetmail/internal/domain/extract"
	"github.com/yanqian/meetmail/internal/domain/mailgen"
	"github.com/yanqian/meetmail/internal/infra/config"
	"github.com/yanqian/meetmail/internal/infra/draftrepo"
	"github.com/yanqian/meetmail/internal/infra/draftstore"
	"github.com/yanqian/meetmail/internal/infra/emlstore"
	"github.com/yanqian/meetmail/internal/infra/extractor"
	"github.com/yanqian/meetmail/internal/infra/llm/chatgpt"
)

func provideMailgenConfig(cfg *config.Config) mailgen.Config {
	return mailgen.Config{
		MinNotesLen: cfg.Compose.MinNotesLen,
		SenderName:  cfg.Compose.SenderName,
		CacheTTL:    cfg.Cache.TTL,
	}
}

// provideExtractor picks the LLM-backed extractor when an API key is
// configured and the deterministic heuristic otherwise.
func provideExtractor(cfg *config.Config, logger *slog.Logger) (mailgen.Extractor, error) {
	heuristic := extract.NewHeuristic(extract.Config{
		MaxItems:     cfg.Compose.MaxItems,
		SummaryLines: cfg.Compose.SummaryLines,
	})
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, using heuristic extractor")
		return heuristic, nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("remote extractor enabled", "model", cfg.LLM.Model)
	return extractor.NewRemote(client, extractor.Config{
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxPromptTokens: cfg.LLM.MaxPromptTokens,
	}, logger), nil
}

func provideDraftRepository(cfg *config.Config, logger *slog.Logger) mailgen.DraftRepository {
	fallback := draftrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("history postgres repository enabled")
	return draftrepo.NewPostgresRepository(pool)
}

func provideDraftStore(cfg *config.Config, logger *slog.Logger) mailgen.DraftStore {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return draftstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return draftstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("valkey draft store enabled", "addr", cfg.Cache.Addr)
			return draftstore.NewValkeyStore(client, "mail")
		}
	}
	return draftstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideArchive(cfg *config.Config, logger *slog.Logger) export.Archive {
	if !cfg.Archive.Enabled {
		return nil
	}
	archive, err := emlstore.NewS3Archive(
		cfg.Archive.Endpoint,
		cfg.Archive.AccessKey,
		cfg.Archive.SecretKey,
		cfg.Archive.Bucket,
		cfg.Archive.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize eml archive, archival disabled", "error", err)
		return nil
	}
	logger.Info("eml archive enabled", "bucket", cfg.Archive.Bucket)
	return archive
}
