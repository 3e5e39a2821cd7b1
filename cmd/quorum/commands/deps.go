package commands

import (
	"context"
	"fmt"

	"github.com/wonny/quorum/internal/agents"
	"github.com/wonny/quorum/internal/notify"
	"github.com/wonny/quorum/internal/orchestrator"
	"github.com/wonny/quorum/internal/policy"
	"github.com/wonny/quorum/internal/resolver"
	"github.com/wonny/quorum/internal/risk"
	"github.com/wonny/quorum/internal/scoring"
	"github.com/wonny/quorum/internal/store"
	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/database"
	"github.com/wonny/quorum/pkg/httputil"
	"github.com/wonny/quorum/pkg/logger"
	"github.com/wonny/quorum/pkg/redis"
)

// app holds the wired application dependencies shared by all commands
type app struct {
	cfg *config.Config
	log *logger.Logger

	db   *database.DB // nil when DATABASE_URL is unset
	rdb  *redis.Client
	repo *store.Repository // nil without a database

	policies *policy.Store
	prompts  *policy.PromptStore

	registry *agents.Registry
	client   *agents.Client

	pipeline *orchestrator.Pipeline
	resolver *resolver.Resolver
	alerts   *notify.Fanout
}

// newApp wires the full dependency graph. The database is optional: without
// DATABASE_URL the pipeline runs with decision persistence and account
// tracking disabled.
// ⭐ SSOT: 의존성 조립은 여기서만
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if !rdb.Enabled() {
		log.Warn("Redis disabled, caching and persistence degrade to in-memory")
	}

	a := &app{
		cfg: cfg,
		log: log,
		rdb: rdb,
	}

	// Database is optional
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		a.repo = store.NewRepository(db.Pool)

		if err := a.repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, running without decision persistence")
	}

	// Policy and prompts
	a.policies = policy.NewStore(log, policy.NewRedisPersister(rdb))
	a.prompts = policy.NewPromptStore(rdb)

	// Agents
	a.registry = agents.NewRegistry(cfg.Agents, a.prompts)
	if err := a.registry.SeedPrompts(ctx); err != nil {
		log.WithError(err).Warn("Failed to seed default prompts")
	}
	a.client = agents.NewClient(cfg.Agents, a.registry.Providers(), log)

	// Alerts
	var channels []notify.Notifier
	if tg := notify.NewTelegram(cfg.Telegram, rdb, log); tg != nil {
		channels = append(channels, tg)
	}
	if slack := notify.NewSlack(cfg.Slack, log); slack != nil {
		channels = append(channels, slack)
	}
	a.alerts = notify.NewFanout(log, channels...)

	// Pipeline
	dispatcher := orchestrator.NewDispatcher(a.registry, a.client, cfg.Agents.OverallTimeout, log)
	adjuster := risk.NewAdjuster(cfg.Limits, log)

	var accounts orchestrator.AccountSource
	var saver orchestrator.DecisionSaver
	if a.repo != nil {
		accounts = store.NewAccountSource(a.repo, cfg.Limits.AccountBalance)
		saver = a.repo
	}

	a.pipeline = orchestrator.NewPipeline(
		dispatcher,
		a.policies,
		scoring.NewAggregator(),
		adjuster,
		accounts,
		saver,
		log,
	)

	// Ticker resolution
	search := resolver.NewNaverSearch(httputil.New(log), log)
	a.resolver = resolver.New(search, redis.NewCache(rdb, "quorum"), log)

	return a, nil
}

// Close releases held connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
}
