package main

import (
	"errors"
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/rgbcycle"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify-rgb",
		Usage:     l10n.T("Check that RGB-cycle movies show the right colour at every frame"),
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "window", Value: 0.5, Usage: l10n.T("Seconds scrubbed from the start of each movie")},
		},
		Action: runVerify,
	}
}

func runVerify(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	if c.NArg() == 0 {
		return errors.New(l10n.T("movie file argument is required"))
	}

	failed := 0
	for _, arg := range c.Args().Slice() {
		if err := c.Context.Err(); err != nil {
			return err
		}
		n, err := verifyFile(c, e, arg)
		if err != nil {
			failed++
			fmt.Fprintln(e.out, l10n.F("FAIL %s: %v", arg, err))
			continue
		}
		fmt.Fprintln(e.out, l10n.F("PASS %s (%d frames)", arg, n))
	}

	if failed > 0 {
		return fmt.Errorf("%s", l10n.F("%d of %d movies failed", failed, c.NArg()))
	}
	return nil
}

func verifyFile(c *cli.Context, e *env, path string) (int, error) {
	p, err := e.openPlayer(path)
	if err != nil {
		return 0, err
	}
	defer p.Close()
	return rgbcycle.Verify(c.Context, p, c.Float64("window"))
}
