// Package server parses server command flags and starts the engine runtime.
package server

import (
	"context"
	"flag"

	"github.com/cheeseisland/engine/internal/game/app"
	entrypoint "github.com/cheeseisland/engine/internal/platform/cmd"
)

// Config holds server command configuration.
type Config struct {
	Port int    `env:"CHEESE_ISLAND_PORT" envDefault:"8080"`
	Addr string `env:"CHEESE_ISLAND_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The engine server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The engine server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the engine API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(context.Context) error {
		if cfg.Addr != "" {
			return app.RunWithAddr(ctx, cfg.Addr)
		}
		return app.Run(ctx, cfg.Port)
	})
}
