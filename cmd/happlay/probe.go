package main

import (
	"fmt"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/container"
	"github.com/user/happlay/pkg/summarizer"
)

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     l10n.T("Print the stream description of a movie"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "report", Aliases: []string{"r"}, Usage: l10n.T("Write a report to this file (.json for JSON, otherwise Markdown)")},
		},
		Action: runProbe,
	}
}

func runProbe(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	arg, err := firstArg(c)
	if err != nil {
		return err
	}

	path, err := e.fs.Resolve(arg, e.cfg.Mode())
	if err != nil {
		return err
	}
	f, err := e.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	desc, err := container.Parse(f)
	if err != nil {
		return err
	}
	stats, err := summarizer.AnalyzeFrames(f, desc)
	if err != nil {
		return err
	}
	summary := summarizer.NewBuilder().
		WithFile(path, desc.FileSize).
		WithStream(desc).
		WithFrames(stats).
		Build()

	fmt.Fprintln(e.out, l10n.F("%s: %s %dx%d, %d frames at %s fps (%.3f s)",
		path, desc.Variant, desc.Width, desc.Height, desc.FrameCount(), desc.FrameRate, desc.DurationSeconds()))
	if len(stats.Formats) > 0 {
		fmt.Fprintln(e.out, l10n.F("Texture formats: %s", strings.Join(stats.Formats, " + ")))
	}
	for _, name := range stats.CompressorNames() {
		fmt.Fprintln(e.out, l10n.F("Compressor %s: %d sections", name, stats.Compressors[name]))
	}
	if len(stats.Unreadable) > 0 {
		e.log.Warn("%d frames have unreadable headers", len(stats.Unreadable))
	}

	if report := c.String("report"); report != "" {
		return writeReport(e, report, summary)
	}
	return nil
}

func writeReport(e *env, path string, summary *summarizer.Summary) error {
	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	if err := summarizer.NewWriter(formatter, e.fs).Write(path, summary); err != nil {
		e.log.Error("Failed to write report: %v", err)
		return err
	}
	e.log.Info("Report saved to %s", path)
	return nil
}
