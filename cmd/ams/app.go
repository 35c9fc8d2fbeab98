package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ams-studio/ams/pkg/auth"
	"github.com/ams-studio/ams/pkg/client"
	"github.com/ams-studio/ams/pkg/config"
	"github.com/ams-studio/ams/pkg/logging"
	"github.com/ams-studio/ams/pkg/render"
	"github.com/ams-studio/ams/pkg/session"
	redisstore "github.com/ams-studio/ams/pkg/session/redis"
	sqlitestore "github.com/ams-studio/ams/pkg/session/sqlite"
)

// app is everything a command needs, built from config.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *session.Store
	client *client.Client
	guard  *auth.Guard
	auth   *auth.Service

	closers []func() error
}

func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() error {
		_ = log.Sync()
		return nil
	})

	kv, err := a.openKV(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("open session store: %w", err)
	}
	a.store = session.New(kv)

	toLogin := auth.NavigatorFunc(func() {
		log.Info("session ended, login required")
	})
	a.client = client.New(cfg.BaseURL, cfg.Timeout, a.store,
		client.WithLogger(log),
		client.WithUnauthorizedHook(toLogin.ToLogin),
	)
	a.guard = auth.NewGuard(a.store, toLogin, log)
	a.auth = auth.NewService(a.client, a.store, log)
	return a, nil
}

func (a *app) openKV(ctx context.Context) (session.KV, error) {
	switch a.cfg.Store.Driver {
	case "memory":
		return session.NewMemory(), nil
	case "redis":
		kv, closeFn, err := redisstore.Dial(ctx, a.cfg.Store.RedisAddr, a.cfg.Store.RedisDB, a.cfg.Store.RedisPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeFn)
		return kv, nil
	default:
		kv, err := sqlitestore.New(a.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, kv.Close)
		return kv, nil
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// run builds the app, checks the session when guarded, and calls fn.
func run(flags *rootFlags, guarded bool, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), flags)
		if err != nil {
			return err
		}
		defer a.close()

		if guarded {
			if err := a.guard.Require(cmd.Context()); err != nil {
				return err
			}
		}
		return fn(cmd, a, args)
	}
}
