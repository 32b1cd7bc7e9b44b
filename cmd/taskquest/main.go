package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/alexanderramin/taskquest/internal/cli"
	"github.com/alexanderramin/taskquest/internal/config"
	"github.com/alexanderramin/taskquest/internal/db"
	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/httpapi"
	"github.com/alexanderramin/taskquest/internal/intelligence"
	"github.com/alexanderramin/taskquest/internal/leveling"
	"github.com/alexanderramin/taskquest/internal/llm"
	"github.com/alexanderramin/taskquest/internal/repository"
	"github.com/alexanderramin/taskquest/internal/service"
	"github.com/alexanderramin/taskquest/internal/sessionstore"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	rewards, err := service.DefaultRewardTable().With(cfg.Tables.Rewards, cfg.Tables.Aliases)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	mapping, err := service.DefaultTraitMapping().With(cfg.Tables.Traits)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svcMetrics := service.NewMetrics(reg)

	store := openStoreOrDegrade(ctx, cfg, logger, svcMetrics)
	if store != nil {
		defer store.Close()
	}
	sessions := openSessionsOrMemory(ctx, cfg, logger, svcMetrics)
	defer sessions.Close()

	observer := llm.MultiObserver{llm.NewMetricsObserver(reg)}
	if cfg.LLM.LogCalls {
		observer = append(observer, llm.NewLogObserver(logger))
	}
	client, err := llm.NewClient(ctx, cfg.LLM, observer)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(svcMetrics),
		service.WithObserver(service.NewLogUseCaseObserver(logger)),
	}

	var (
		progress service.ProgressStore
		metrics  service.MetricStore
		activity service.ActivityStore
	)
	if store != nil {
		progress, metrics, activity = store, store, store
	}
	tracker := service.NewProgressTracker(progress, rewards, leveling.DefaultCurve(), opts...)
	scorer := service.NewTraitScorer(metrics, mapping, opts...)

	var classifier intelligence.Classifier
	if cfg.LLM.Enabled {
		classifier = intelligence.NewClassifier(client, true)
	} else {
		classifier = intelligence.NewKeywordClassifier(mergeKeywords(cfg.Tables.Keywords))
	}

	dispatcher, err := service.NewDispatcher(service.DispatcherDeps{
		Classifier: classifier,
		Handlers:   intelligence.NewHandlers(client, service.NewReportSource(tracker, scorer)),
		Tracker:    tracker,
		Scorer:     scorer,
		Sessions:   sessions,
		Activity:   activity,
	}, opts...)
	if err != nil {
		return fmt.Errorf("creating dispatcher: %w", err)
	}

	api := httpapi.NewServer(dispatcher, cfg.DefaultUser,
		httpapi.WithLogger(logger),
		httpapi.WithGatherer(reg),
	)

	app := &cli.App{
		Dispatcher:  dispatcher,
		DefaultUser: cfg.DefaultUser,
		HTTP:        api.Router(),
		Addr:        cfg.Addr,
		Logger:      logger,
		HistoryPath: cli.DefaultHistoryPath(),
		Now:         time.Now,
	}
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.Production() {
		zc := zap.NewProductionConfig()
		if cfg.Debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		return zc.Build()
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

// openStore returns nil for StoreNone.
func openStore(ctx context.Context, cfg config.Config) (repository.RecordStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		conn, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return repository.NewSQLiteRecordStore(conn), nil
	case config.StoreMongo:
		store, err := repository.NewMongoRecordStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongo: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}

func openSessions(ctx context.Context, cfg config.Config) (sessionstore.Store, error) {
	if cfg.Sessions == config.SessionRedis {
		store, err := sessionstore.NewRedis(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return store, nil
	}
	return sessionstore.NewMemory(cfg.SessionTTL), nil
}

// openStoreOrDegrade runs without persistence when the configured store
// cannot be reached, so the router keeps answering with default stats.
func openStoreOrDegrade(ctx context.Context, cfg config.Config, logger *zap.Logger, m *service.Metrics) repository.RecordStore {
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Warn("record store unavailable; progress will not be saved",
			zap.String("store", string(cfg.Store)), zap.Error(err))
		m.StoreDegraded.WithLabelValues("connect").Inc()
		return nil
	}
	if store == nil {
		logger.Warn("running without a record store; progress will not be saved")
	}
	return store
}

// openSessionsOrMemory falls back to in-process sessions when redis is down.
func openSessionsOrMemory(ctx context.Context, cfg config.Config, logger *zap.Logger, m *service.Metrics) sessionstore.Store {
	sessions, err := openSessions(ctx, cfg)
	if err != nil {
		logger.Warn("session store unavailable; using in-memory sessions", zap.Error(err))
		m.StoreDegraded.WithLabelValues("connect_sessions").Inc()
		return sessionstore.NewMemory(cfg.SessionTTL)
	}
	return sessions
}

// mergeKeywords lays per-category overrides over the default keyword table.
func mergeKeywords(overrides map[domain.Category][]string) map[domain.Category][]string {
	kw := intelligence.DefaultKeywords()
	for c, words := range overrides {
		kw[c] = words
	}
	return kw
}
