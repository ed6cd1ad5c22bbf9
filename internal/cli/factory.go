package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"

	"github.com/aretw0/aastree"
	"github.com/aretw0/aastree/internal/config"
	"github.com/aretw0/aastree/pkg/adapters/aasfile"
	"github.com/aretw0/aastree/pkg/adapters/file"
	"github.com/aretw0/aastree/pkg/adapters/memory"
	"github.com/aretw0/aastree/pkg/adapters/redis"
	"github.com/aretw0/aastree/pkg/adapters/sqlite"
	"github.com/aretw0/aastree/pkg/observability"
	"github.com/aretw0/aastree/pkg/persistence/middleware"
	"github.com/aretw0/aastree/pkg/ports"
	"github.com/aretw0/aastree/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Options carries the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
}

// Env is the wiring built from the configuration: logger, package store and
// metrics. Close releases the store.
type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    ports.PackageStore
	Registry *prometheus.Registry
	Metrics  *observability.Metrics

	// watcher is the raw store when it can report changes. Middlewares hide
	// the Watchable interface, so it is kept apart.
	watcher ports.Watchable
	closers []io.Closer
}

// Setup loads the configuration and builds the environment.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return NewEnv(cfg, opts.Debug)
}

// NewEnv builds the environment for cfg.
func NewEnv(cfg *config.Config, debug bool) (*Env, error) {
	logger, err := createLogger(cfg.LogLevel, debug)
	if err != nil {
		return nil, err
	}
	env := &Env{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	env.Metrics, err = observability.NewMetrics(env.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	raw, err := env.newStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	if w, ok := raw.(ports.Watchable); ok {
		env.watcher = w
	}

	mws, err := storeMiddlewares(cfg)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.Store = middleware.Chain(raw, mws...)
	logger.Debug("Store ready", "kind", cfg.Store.Kind, "middlewares", len(mws))
	return env, nil
}

func (env *Env) newStore(sc config.StoreConfig) (ports.PackageStore, error) {
	switch sc.Kind {
	case "memory":
		return memory.NewStore(), nil
	case "file", "":
		opts := []file.Option{file.WithLogger(env.Logger)}
		if sc.Format != "" {
			opts = append(opts, file.WithFormat(aasfile.Format(sc.Format)))
		}
		return file.New(sc.Path, opts...), nil
	case "redis":
		var opts []redis.Option
		if sc.Prefix != "" {
			opts = append(opts, redis.WithPrefix(sc.Prefix))
		}
		if sc.TTL > 0 {
			opts = append(opts, redis.WithTTL(sc.TTL))
		}
		s := redis.New(sc.RedisAddr, sc.Password, sc.RedisDB, opts...)
		env.closers = append(env.closers, s)
		return s, nil
	case "sqlite":
		s, err := sqlite.Open(sc.Path)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, s)
		return s, nil
	}
	return nil, fmt.Errorf("unknown store kind %q", sc.Kind)
}

// storeMiddlewares returns redaction outside encryption so that the sealed
// envelope never holds the redacted values.
func storeMiddlewares(cfg *config.Config) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		for _, p := range cfg.Redact {
			if _, err := regexp.Compile(p); err != nil {
				return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
			}
		}
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}
	active, fallbacks, ok, err := cfg.Encryption.Keys()
	if err != nil {
		return nil, err
	}
	if ok {
		if len(active) != 32 {
			return nil, errors.New("encryption key must be 32 bytes")
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallbacks,
		}))
	}
	return mws, nil
}

// Watcher returns the store as a change source, or nil when the configured
// store cannot report changes.
func (env *Env) Watcher() ports.Watchable {
	return env.watcher
}

// NewEditor creates an editor wired to the store, the logger and the metrics.
func (env *Env) NewEditor() *aastree.Editor {
	hooks := env.Metrics.Hooks()
	if env.Logger.Enabled(context.Background(), slog.LevelDebug) {
		hooks = observability.Combine(hooks, observability.LoggingHooks(env.Logger))
	}
	return aastree.New(
		aastree.WithLogger(env.Logger),
		aastree.WithStore(env.Store),
		aastree.WithMaxUndos(env.Config.MaxUndos),
		aastree.WithHooks(hooks),
	)
}

// NewSession wraps a fresh editor.
func (env *Env) NewSession() *session.Session {
	return session.New(env.NewEditor(), session.WithLogger(env.Logger))
}

// Close releases the store connections.
func (env *Env) Close() error {
	var errs []error
	for _, c := range env.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
