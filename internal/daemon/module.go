package daemon

import (
	"context"
	"fmt"
	"os"

	"github.com/hirrd/hirrd/internal/access"
	"github.com/hirrd/hirrd/internal/api"
	"github.com/hirrd/hirrd/internal/bus"
	"github.com/hirrd/hirrd/internal/chat"
	"github.com/hirrd/hirrd/internal/config"
	"github.com/hirrd/hirrd/internal/feed"
	"github.com/hirrd/hirrd/internal/gate"
	"github.com/hirrd/hirrd/internal/instance"
	"github.com/hirrd/hirrd/internal/lock"
	"github.com/hirrd/hirrd/internal/logging"
	"github.com/hirrd/hirrd/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved instance configuration passed to the fx module.
type Params struct {
	InstanceName string
	SocketPath   string         // optional override for testing; empty = use default
	Config       *config.Config // optional; nil = load ~/.hirrd/config.toml and HIRRD_* env
	Debug        bool
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideLock,
			provideStore,
			provideGate,
			provideBus,
			provideFeed,
			provideTracker,
			provideChannel,
			provideChatService,
			provideApplicationService,
			provideDaemonService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	cfg := p.Config
	if cfg == nil {
		loaded, err := config.LoadOrDefault(instance.ConfigPath())
		if err != nil {
			return nil, err
		}
		if err := loaded.ApplyEnv(os.LookupEnv); err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(instance.LogPath(p.InstanceName), p.InstanceName, p.Debug)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := instance.EnsureDir(p.InstanceName); err != nil {
		return nil, err
	}
	logger.Info("acquiring instance lock", zap.String("instance", p.InstanceName))
	l, err := lock.Acquire(instance.Dir(p.InstanceName))
	if err != nil {
		return nil, err
	}
	logger.Info("instance lock acquired")
	return l, nil
}

// provideStore depends on the lock so only the owning daemon opens the db.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := instance.DBPath(p.InstanceName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideGate(cfg *config.Config, logger *zap.Logger) (*gate.Gate, error) {
	g, err := cfg.Gate()
	if err != nil {
		return nil, err
	}
	logger.Info("messaging gate configured", zap.Strings("unlocked_states", cfg.UnlockedStates))
	return g, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideFeed(lc fx.Lifecycle, cfg *config.Config, b *bus.Bus, logger *zap.Logger) feed.Feed {
	if cfg.Feed != config.FeedRedis {
		logger.Info("using in-process feed")
		return feed.NewLocal(b)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis feed %s: %w", cfg.RedisAddr, err)
			}
			logger.Info("using redis feed", zap.String("addr", cfg.RedisAddr))
			return nil
		},
		OnStop: func(_ context.Context) error {
			return rdb.Close()
		},
	})
	return feed.NewRedis(rdb, feed.RedisOptions{
		ReconnectPerSecond: cfg.ReconnectPerSecond,
		Logger:             logger,
	})
}

func provideTracker(g *gate.Gate, f feed.Feed, logger *zap.Logger) *access.Tracker {
	return access.NewTracker(g, f, logger)
}

func provideChannel(db *store.DB, g *gate.Gate, f feed.Feed, logger *zap.Logger) *chat.Channel {
	return chat.NewChannel(db, g, f, logger)
}

func provideChatService(ch *chat.Channel, logger *zap.Logger) *api.ChatService {
	return api.NewChatService(ch, logger)
}

func provideApplicationService(db *store.DB, tracker *access.Tracker, logger *zap.Logger) *api.ApplicationService {
	return api.NewApplicationService(db, tracker, logger)
}

func provideDaemonService(p Params, cfg *config.Config, g *gate.Gate, db *store.DB) *api.DaemonService {
	return api.NewDaemonService(p.InstanceName, cfg.Feed, g, db)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
