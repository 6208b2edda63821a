package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vango-dev/consolenav/internal/config"
	"github.com/vango-dev/consolenav/internal/errors"
	"github.com/vango-dev/consolenav/pkg/console"
	"github.com/vango-dev/consolenav/pkg/middleware"
	"github.com/vango-dev/consolenav/pkg/navigator"
	"github.com/vango-dev/consolenav/pkg/router"
	"github.com/vango-dev/consolenav/pkg/server"
)

// app holds what the commands share: the effective config, a logger and
// the console route tree.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	tree   *router.Tree
}

// loadApp resolves configuration (file, then CONSOLENAV_* variables, then
// flags) and builds the route tree. Logs go to logOut.
func loadApp(flags *globalFlags, logOut io.Writer) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tree, err := console.Tree()
	if err != nil {
		return nil, errors.FromError(err, "E310")
	}

	return &app{
		cfg:    cfg,
		logger: cfg.NewLogger(logOut),
		tree:   tree,
	}, nil
}

// newNavigator builds a navigator from the navigation, log and tracing
// sections. metrics may be nil.
func (a *app) newNavigator(metrics *middleware.Metrics) (*navigator.Navigator, error) {
	mw := []navigator.Middleware{middleware.Logging(a.logger)}
	if metrics != nil {
		mw = append(mw, metrics.Middleware())
	}
	if a.cfg.Tracing.Enabled {
		mw = append(mw, middleware.OpenTelemetry(
			middleware.WithIncludeSearch(a.cfg.Tracing.IncludeSearch),
		))
	}

	nv, err := navigator.New(a.tree,
		navigator.WithMaxRedirects(a.cfg.Navigation.MaxRedirects),
		navigator.WithFallback(a.cfg.Navigation.Fallback),
		navigator.WithCacheSize(a.cfg.Navigation.CacheSize),
		navigator.WithLogger(a.logger),
		navigator.WithMiddleware(mw...),
	)
	if err != nil {
		return nil, errors.New("E302").Wrap(err)
	}
	return nv, nil
}

// newRegistry returns a registry with the navigation metrics plus the Go
// runtime and process collectors.
func (a *app) newRegistry() (*prometheus.Registry, *middleware.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(
		middleware.WithNamespace(a.cfg.Metrics.Namespace),
		middleware.WithRegistry(reg),
	)
	return reg, metrics
}

// serverConfig maps the server section onto server.Config.
func (a *app) serverConfig() *server.Config {
	sc := server.DefaultConfig()
	sc.Address = a.cfg.Server.Address
	sc.ReadTimeout = a.cfg.ReadTimeout()
	sc.WriteTimeout = a.cfg.WriteTimeout()
	sc.HeartbeatInterval = a.cfg.HeartbeatInterval()
	sc.NavigateTimeout = a.cfg.NavigateTimeout()
	sc.ShutdownTimeout = a.cfg.ShutdownTimeout()
	sc.Recover = a.cfg.Navigation.Recover
	sc.EnableMetrics = a.cfg.Metrics.Enabled
	if origins := a.cfg.Server.AllowedOrigins; len(origins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(origins...)
	}
	return sc
}
