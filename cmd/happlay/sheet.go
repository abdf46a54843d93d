package main

import (
	"fmt"
	"path/filepath"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/sheet"
)

func sheetCommand() *cli.Command {
	return &cli.Command{
		Name:      "sheet",
		Usage:     l10n.T("Render a contact sheet of frames sampled across a movie"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output image path (.png, .jpg, .bmp, .tiff)")},
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: l10n.T("Number of thumbnails")},
			&cli.IntFlag{Name: "columns", Usage: l10n.T("Number of columns (min: 1)")},
			&cli.IntFlag{Name: "thumb-width", Usage: l10n.T("Thumbnail width in pixels")},
			&cli.StringFlag{Name: "font", Usage: l10n.T("TrueType font for labels")},
		},
		Action: runSheet,
	}
}

func runSheet(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	arg, err := firstArg(c)
	if err != nil {
		return err
	}
	out := c.String("output")
	format, ok := ports.ParseImageFormat(filepath.Ext(out))
	if !ok {
		return fmt.Errorf("%s: %s", l10n.T("unsupported image format"), filepath.Ext(out))
	}

	opts := e.cfg.ToSheetOptions()
	if c.IsSet("count") {
		opts.Count = c.Int("count")
	}
	if c.IsSet("columns") {
		opts.Columns = c.Int("columns")
	}
	if c.IsSet("thumb-width") {
		opts.ThumbWidth = c.Int("thumb-width")
	}
	if c.IsSet("font") {
		opts.FontPath = c.String("font")
	}

	p, err := e.openPlayer(arg)
	if err != nil {
		return err
	}
	defer p.Close()
	p.SetLoop(false)

	e.log.Info("Sampling %d frames from %s", opts.Count, p.ResolvedFilePath())
	img, err := sheet.Build(c.Context, p, e.renderer, opts)
	if err != nil {
		return err
	}

	if e.sink.Enabled() {
		if err := e.sink.SaveSheet(img); err != nil {
			e.log.Warn("Failed to save debug output: %v", err)
		}
	}
	if err := saveImage(e, out, img, format); err != nil {
		return err
	}
	e.log.Info("Sheet saved to %s", out)
	return nil
}
