package main

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/sheet"
)

func frameCommand() *cli.Command {
	return &cli.Command{
		Name:      "frame",
		Usage:     l10n.T("Decode the frame shown at a time and save it as an image"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "time", Aliases: []string{"t"}, Usage: l10n.T("Playback time in seconds")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output image path (.png, .jpg, .bmp, .tiff)")},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Scale the image to this width (0 = original)")},
		},
		Action: runFrame,
	}
}

func runFrame(c *cli.Context) error {
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

	p, err := e.openPlayer(arg)
	if err != nil {
		return err
	}
	defer p.Close()

	p.SetTime(c.Float64("time"))
	if err := p.UpdateNow(c.Context); err != nil {
		return err
	}
	if p.DecodeFailed() {
		return p.LastError()
	}

	var img image.Image
	img, err = p.Texture().ToNRGBA()
	if err != nil {
		return err
	}
	if w := c.Int("width"); w > 0 && w != p.FrameWidth() {
		h := max(1, p.FrameHeight()*w/p.FrameWidth())
		img = e.renderer.ResizeImage(img, w, h)
	}

	if err := saveImage(e, out, img, format); err != nil {
		return err
	}
	e.log.Info("Frame %d (%s) saved to %s", p.CurrentFrame(), sheet.Timecode(p.Time()), out)
	return nil
}

func saveImage(e *env, path string, img image.Image, format ports.ImageFormat) error {
	data, err := e.renderer.EncodeImage(img, format, 90)
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := e.fs.MkdirAll(dir); err != nil {
			return err
		}
	}
	return e.fs.WriteFile(path, data)
}
