package container

import (
	"context"

	"github.com/gin-gonic/gin"

	"peajes/adapters/excel"
	"peajes/adapters/loader"
	"peajes/adapters/render"
	"peajes/app"
	"peajes/internal"
	"peajes/internal/config"
	"peajes/internal/errors"
	"peajes/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Data access
	Loader *loader.Loader

	// Dashboard
	Board      *render.Board
	Dispatcher *app.Dispatcher
	Generator  *excel.Generator
}

// New wires the dashboard from configuration.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.ConfigInvalid("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c := &Container{
		Config: cfg,
		Logger: logger,
		Loader: loader.FromConfig(cfg.Artifacts.BaseURL, cfg.Artifacts.Dir, cfg.Artifacts.FetchTimeout, logger),
		Board:  render.NewBoard(render.NewPNGRenderer()),
	}
	c.Dispatcher = app.NewDispatcher(c.Loader, cfg.Catalog, c.Board, logger)
	c.Generator = excel.NewGenerator(logger)
	return c, nil
}

// Server builds the HTTP server. Gin's mode is taken from configuration.
func (c *Container) Server() *ui.Server {
	gin.SetMode(c.Config.Server.GinMode)
	return ui.NewServer(c.Dispatcher, c.Config.Artifacts.Dir, c.Logger)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	c.Board.Dispose()
	c.Logger.Sync()
	return nil
}
