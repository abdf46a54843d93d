package main

import (
	"fmt"
	"path/filepath"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/adapters/hapencoder"
	"github.com/user/happlay/pkg/alphagradient"
	"github.com/user/happlay/pkg/player"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/stream"
)

func alphaCommand() *cli.Command {
	return &cli.Command{
		Name:  "make-hap-alpha",
		Usage: l10n.T("Write the hue by alpha gradient test movie and its decoded reference image"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output directory")},
			&cli.IntFlag{Name: "size", Value: alphagradient.DefaultSize, Usage: l10n.T("Width and height of the square frame")},
			&cli.StringFlag{Name: "format", Value: "hap_alpha", Usage: l10n.T("HAP format with alpha (hap_alpha, hap_q_alpha)")},
			&cli.StringFlag{Name: "compressor", Value: "snappy", Usage: l10n.T("Second-stage compressor (none, snappy)")},
			&cli.IntFlag{Name: "chunks", Value: 1, Usage: l10n.T("Chunks per texture (1 = no chunking)")},
			&cli.Float64Flag{Name: "tolerance", Value: 0.08, Usage: l10n.T("Largest channel error accepted when checking the decoded frame")},
		},
		Action: runAlpha,
	}
}

func runAlpha(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	variant, err := stream.ParseVariantName(c.String("format"))
	if err != nil {
		return err
	}
	if variant != stream.VariantHapAlpha && variant != stream.VariantHapQAlpha {
		return fmt.Errorf("%s: %s", l10n.T("format has no colour alpha"), c.String("format"))
	}

	data, err := alphagradient.Generate(hapencoder.New(), alphagradient.Options{
		Size: c.Int("size"),
		Encoder: ports.EncoderOptions{
			Variant:    variant,
			Compressor: c.String("compressor"),
			Chunks:     c.Int("chunks"),
		},
	})
	if err != nil {
		return err
	}

	dir := c.String("out")
	if err := e.fs.MkdirAll(dir); err != nil {
		return err
	}
	movie := filepath.Join(dir, alphagradient.MovieName)
	if err := e.fs.WriteFile(movie, data); err != nil {
		return err
	}
	e.log.Info("Wrote %s", movie)

	// The reference image is the frame as the player decodes it.
	p, err := e.openPlayerMode(movie, player.LocalFileSystem)
	if err != nil {
		return err
	}
	defer p.Close()
	if err := p.UpdateNow(c.Context); err != nil {
		return err
	}
	if p.DecodeFailed() {
		return p.LastError()
	}

	n, err := alphagradient.Verify(p.Texture(), float32(c.Float64("tolerance")))
	if err != nil {
		return fmt.Errorf("%s: %w", movie, err)
	}
	e.log.Debug("Checked %d gradient texels", n)

	img, err := p.Texture().ToNRGBA()
	if err != nil {
		return err
	}
	ref := filepath.Join(dir, alphagradient.ReferenceName)
	if err := saveImage(e, ref, img, ports.FormatPNG); err != nil {
		return err
	}
	e.log.Info("Wrote %s", ref)
	return nil
}
