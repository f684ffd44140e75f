package app

import (
	"context"
	"errors"

	"github.com/Andrew-Schwartz/typset-image/internal/backend"
	"github.com/Andrew-Schwartz/typset-image/internal/cachedir"
	"github.com/Andrew-Schwartz/typset-image/internal/config"
	"github.com/Andrew-Schwartz/typset-image/internal/logger"
	"github.com/Andrew-Schwartz/typset-image/internal/render"
	"github.com/Andrew-Schwartz/typset-image/internal/runner"
)

// App is the application container (immutable dependencies + lifecycle
// context). Commands build one App, use it, and Shutdown it on exit.
type App struct {
	Config *config.Config
	Runner runner.Runner
	Cache  *cachedir.Manager
	Render *render.Service

	BaseCtx context.Context
	Cancel  context.CancelFunc
}

// New wires an App from preconstructed dependencies.
func New(cfg *config.Config, r runner.Runner, cache *cachedir.Manager, svc *render.Service) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if r == nil {
		return nil, errors.New("runner is nil")
	}
	if cache == nil {
		return nil, errors.New("cache manager is nil")
	}
	if svc == nil {
		return nil, errors.New("render service is nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		Config:  cfg,
		Runner:  r,
		Cache:   cache,
		Render:  svc,
		BaseCtx: ctx,
		Cancel:  cancel,
	}, nil
}

// Build constructs the full dependency graph from configuration: runner,
// cache manager, both backends and the render service.
func Build(cfg *config.Config) (*App, error) {
	r, err := runner.NewRunnerFromConfig(cfg.Runner)
	if err != nil {
		return nil, err
	}

	cache, err := cachedir.New(cfg.Cache.Root)
	if err != nil {
		return nil, err
	}

	backends := map[string]backend.Backend{}
	for _, kind := range backend.Kinds() {
		b, err := backend.New(kind, r, cache, cfg.Tools)
		if err != nil {
			return nil, err
		}
		backends[kind] = b
	}

	svc := render.NewService(backends, cache, cfg.Render)
	return New(cfg, r, cache, svc)
}

// Shutdown cancels in-flight work and removes the Typst session directory.
// LaTeX cache directories survive the process on purpose.
func (a *App) Shutdown() {
	if a == nil {
		return
	}
	if a.Cancel != nil {
		a.Cancel()
	}
	if a.Cache != nil {
		if err := a.Cache.Cleanup(); err != nil {
			logger.WithComponent("app").Warnf("session cleanup: %v", err)
		}
	}
}
