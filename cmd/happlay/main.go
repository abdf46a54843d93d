// Package main provides the CLI entry point for happlay.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/adapters/filesink"
	"github.com/user/happlay/pkg/adapters/ggrenderer"
	"github.com/user/happlay/pkg/adapters/logger"
	"github.com/user/happlay/pkg/adapters/nullsink"
	"github.com/user/happlay/pkg/adapters/osfilesystem"
	"github.com/user/happlay/pkg/config"
	"github.com/user/happlay/pkg/player"
	"github.com/user/happlay/pkg/ports"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "happlay",
		Usage:   l10n.T("Inspect, play and verify HAP movies"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Configuration")},
			&cli.StringFlag{Name: "asset-root", Usage: l10n.T("Root directory of streaming assets"), Category: l10n.T("Configuration")},
			&cli.StringFlag{Name: "path-mode", Usage: l10n.T("How movie paths are resolved (local, streaming_assets)"), Category: l10n.T("Configuration")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T("Debug")},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
		},
		Commands: []*cli.Command{
			probeCommand(),
			frameCommand(),
			sheetCommand(),
			verifyCommand(),
			generateCommand(),
			alphaCommand(),
			benchCommand(),
		},
	}
}

// env holds the adapters shared by every command.
type env struct {
	cfg      config.Config
	log      ports.Logger
	fs       *osfilesystem.FileSystem
	renderer ports.Renderer
	sink     ports.DebugSink
	out      io.Writer
}

func setup(c *cli.Context) (*env, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if c.IsSet("asset-root") {
		cfg.AssetRoot = c.String("asset-root")
	}
	if c.IsSet("path-mode") {
		cfg.PathMode = c.String("path-mode")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}

	e := &env{
		cfg:      cfg,
		fs:       osfilesystem.NewWithAssetRoot(cfg.AssetRoot),
		renderer: ggrenderer.New(),
		out:      c.App.Writer,
	}

	if c.Bool("quiet") {
		e.log = logger.NewNoop()
	} else {
		e.log = logger.NewWriter(cfg.Level(), c.App.Writer, c.App.ErrWriter)
	}

	if cfg.Debug {
		if err := e.fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		e.sink = filesink.New(cfg.DebugDir, e.fs, e.renderer)
	} else {
		e.sink = nullsink.New()
	}
	return e, nil
}

// openPlayer opens path with the configured playback settings.
func (e *env) openPlayer(path string) (*player.Player, error) {
	return e.openPlayerMode(path, e.cfg.Mode())
}

func (e *env) openPlayerMode(path string, mode player.PathMode) (*player.Player, error) {
	opts := append(e.cfg.ToPlayerOptions(), player.WithLogger(e.log), player.WithDebugSink(e.sink))
	p := player.New(opts...)
	if err := p.Open(path, mode); err != nil {
		return nil, err
	}
	return p, nil
}

func firstArg(c *cli.Context) (string, error) {
	if c.NArg() < 1 {
		return "", errors.New(l10n.T("movie file argument is required"))
	}
	return c.Args().First(), nil
}
