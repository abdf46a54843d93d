package main

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/user/happlay/pkg/adapters/hapencoder"
	"github.com/user/happlay/pkg/rgbcycle"
	"github.com/user/happlay/pkg/stream"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "make-rgb-cycle",
		Usage: l10n.T("Write RGB-cycle test movies, one per frame rate"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output directory")},
			&cli.StringFlag{Name: "size", Usage: l10n.T("Frame size as WIDTHxHEIGHT")},
			&cli.Float64Flag{Name: "duration", Usage: l10n.T("Movie duration in seconds")},
			&cli.StringSliceFlag{Name: "fps", Usage: l10n.T("Frame rate (e.g. 25, 29.97, 30000/1001); repeatable")},
			&cli.StringFlag{Name: "format", Usage: l10n.T("HAP format (hap, hap_alpha, hap_q, hap_q_alpha, hap_alpha_only)")},
			&cli.StringFlag{Name: "compressor", Usage: l10n.T("Second-stage compressor (none, snappy)")},
			&cli.IntFlag{Name: "chunks", Usage: l10n.T("Chunks per texture (1 = no chunking)")},
			&cli.StringFlag{Name: "layout", Usage: l10n.T("Container layout (progressive, fragmented)")},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	g := &e.cfg.Generate
	if c.IsSet("size") {
		w, h, err := parseSize(c.String("size"))
		if err != nil {
			return err
		}
		g.Width, g.Height = w, h
	}
	if c.IsSet("duration") {
		g.Duration = c.Float64("duration")
	}
	if c.IsSet("fps") {
		g.Rates = c.StringSlice("fps")
	}
	if c.IsSet("format") {
		g.Format = c.String("format")
	}
	if c.IsSet("compressor") {
		g.Compressor = c.String("compressor")
	}
	if c.IsSet("chunks") {
		g.Chunks = c.Int("chunks")
	}
	if c.IsSet("layout") {
		g.Layout = c.String("layout")
	}

	encOpts, err := e.cfg.ToEncoderOptions()
	if err != nil {
		return err
	}
	rates, err := e.cfg.GenerateRates()
	if err != nil {
		return err
	}

	dir := c.String("out")
	if err := e.fs.MkdirAll(dir); err != nil {
		return err
	}
	e.log.Info("Generating %d movies (%s, %dx%d, %.2f s)", len(rates), g.Format, g.Width, g.Height, g.Duration)

	paths := make([]string, len(rates))
	eg, ctx := errgroup.WithContext(c.Context)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, rate := range rates {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := rgbcycle.Generate(hapencoder.New(), rgbcycle.Options{
				Width:    g.Width,
				Height:   g.Height,
				Rate:     rate,
				Duration: g.Duration,
				Encoder:  encOpts,
			})
			if err != nil {
				return fmt.Errorf("%s fps: %w", rate, err)
			}
			paths[i] = filepath.Join(dir, movieName(rate))
			return e.fs.WriteFile(paths[i], data)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, p := range paths {
		e.log.Info("Wrote %s", p)
	}
	return nil
}

// movieName is rgb_cycle_<num>[-<den>].mov.
func movieName(rate stream.Rational) string {
	return fmt.Sprintf("rgb_cycle_%s.mov", strings.ReplaceAll(rate.String(), "/", "-"))
}

func parseSize(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%s: %q", l10n.T("invalid size"), s)
	}
	w, err1 := strconv.Atoi(ws)
	h, err2 := strconv.Atoi(hs)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%s: %q", l10n.T("invalid size"), s)
	}
	return w, h, nil
}
