package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/user/happlay/pkg/adapters/promcollector"
	"github.com/user/happlay/pkg/frameclock"
	"github.com/user/happlay/pkg/player"
	"github.com/user/happlay/pkg/summarizer"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Usage:     l10n.T("Decode every frame of a movie through the scheduler and report throughput"),
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "passes", Value: 1, Usage: l10n.T("Number of passes over the movie")},
			&cli.StringFlag{Name: "metrics-addr", Usage: l10n.T("Serve Prometheus metrics on this address while running (e.g. :9090)")},
			&cli.StringFlag{Name: "report", Aliases: []string{"r"}, Usage: l10n.T("Write a report to this file (.json for JSON, otherwise Markdown)")},
		},
		Action: runBench,
	}
}

func runBench(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	arg, err := firstArg(c)
	if err != nil {
		return err
	}

	p, err := e.openPlayer(arg)
	if err != nil {
		return err
	}
	defer p.Close()
	p.SetLoop(false)

	collector := promcollector.New()
	defer collector.Forget(p.Session())
	reg := prometheus.NewRegistry()
	reg.MustRegister(collector)

	addr := e.cfg.MetricsAddr
	if c.IsSet("metrics-addr") {
		addr = c.String("metrics-addr")
	}
	if addr != "" {
		srv, err := promcollector.Start(addr, reg)
		if err != nil {
			return err
		}
		e.log.Info("Serving metrics on http://%s/metrics", srv.Addr())
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				e.log.Warn("Failed to stop metrics server: %v", err)
			}
		}()
	}

	info, err := bench(c.Context, p, collector, max(1, c.Int("passes")))
	if err != nil {
		return err
	}

	fmt.Fprintln(e.out, l10n.F("Decoded %d frames in %d ms (%.1f fps), %d failures, %d discarded",
		info.Frames, info.Elapsed.Milliseconds(), info.FPS(), info.Failures, info.Discarded))

	if report := c.String("report"); report != "" {
		summary := summarizer.NewBuilder().
			WithFile(p.ResolvedFilePath(), p.Descriptor().FileSize).
			WithStream(p.Descriptor()).
			WithDecode(info).
			Build()
		return writeReport(e, report, summary)
	}
	return nil
}

// bench requests every frame in order, waiting for each.
func bench(ctx context.Context, p *player.Player, collector *promcollector.Collector, passes int) (summarizer.DecodeInfo, error) {
	rate := p.FrameRate()
	n := p.FrameCount()
	var info summarizer.DecodeInfo

	start := time.Now()
	for pass := 0; pass < passes; pass++ {
		for i := 0; i < n; i++ {
			t := (frameclock.FrameTime(i, rate) + frameclock.FrameTime(i+1, rate)) / 2
			p.SetTime(t)

			t0 := time.Now()
			if err := p.UpdateNow(ctx); err != nil {
				return info, err
			}
			collector.ObserveWait(time.Since(t0))
			collector.Observe(p)

			if p.DecodeFailed() {
				info.Failures++
			} else {
				info.Frames++
			}
		}
	}
	info.Elapsed = time.Since(start)
	info.Discarded = int(p.Stats().Discarded)
	return info, nil
}
