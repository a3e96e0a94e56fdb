// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

// Command simulator writes demo sales data for the Stockpulse server.
//
//	simulator generate --out app/sample_data.csv --duration 30m --interval 5m --seed 42
//	simulator append --out app/sample_data.csv --min-pause 3s --max-pause 8s
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tomtom215/stockpulse/internal/config"
	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/simulate"
	"github.com/tomtom215/stockpulse/internal/source"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Simulator failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "simulator",
		Usage: "write demo sales and stock rows to the Stockpulse source file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "console",
				EnvVars: []string{"LOG_FORMAT"},
			},
		},
		Before: func(c *cli.Context) error {
			logging.Init(logging.Config{
				Level:     c.String("log-level"),
				Format:    c.String("log-format"),
				Timestamp: true,
				Output:    c.App.ErrWriter,
			})
			return nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			appendCommand(),
		},
	}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "source file to write",
		Value:   config.DefaultSourcePath,
		EnvVars: []string{"CSV_PATH", "SOURCE_PATH"},
	}
}

func seedFlag() cli.Flag {
	return &cli.Uint64Flag{
		Name:  "seed",
		Usage: "random seed for reproducible output",
	}
}

func seedFrom(c *cli.Context) *uint64 {
	if !c.IsSet("seed") {
		return nil
	}
	v := c.Uint64("seed")
	return &v
}

func productsFrom(c *cli.Context) []string {
	var out []string
	for _, p := range strings.Split(c.String("products"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func generateCommand() *cli.Command {
	def := simulate.DefaultGenerateOptions()
	return &cli.Command{
		Name:  "generate",
		Usage: "overwrite the source file with a batch covering a time window",
		Flags: []cli.Flag{
			outFlag(),
			seedFlag(),
			&cli.DurationFlag{Name: "duration", Value: def.Duration, Usage: "window covered, ending now"},
			&cli.DurationFlag{Name: "interval", Value: def.Interval, Usage: "spacing between timestamps"},
			&cli.StringFlag{Name: "products", Value: strings.Join(def.Products, ","), Usage: "comma-separated product names"},
			&cli.IntFlag{Name: "initial-stock", Value: def.InitialStock},
		},
		Action: func(c *cli.Context) error {
			path := c.String("out")
			n, err := simulate.Generate(path, simulate.GenerateOptions{
				Duration:     c.Duration("duration"),
				Interval:     c.Duration("interval"),
				Products:     productsFrom(c),
				InitialStock: c.Int("initial-stock"),
				Seed:         seedFrom(c),
			})
			if err != nil {
				return err
			}
			logging.Info().Str("path", path).Int("rows", n).Msg("Source file generated")
			return nil
		},
	}
}

func appendCommand() *cli.Command {
	return &cli.Command{
		Name:  "append",
		Usage: "append one random sale at a time until interrupted",
		Flags: []cli.Flag{
			outFlag(),
			seedFlag(),
			&cli.StringFlag{Name: "products", Value: strings.Join(simulate.DefaultAppendProducts, ","), Usage: "comma-separated product names"},
			&cli.DurationFlag{Name: "min-pause", Value: 3 * time.Second},
			&cli.DurationFlag{Name: "max-pause", Value: 8 * time.Second},
			&cli.IntFlag{Name: "count", Usage: "stop after this many rows (0 runs forever)"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("out")
			reader := source.NewReader(source.DefaultOptions())
			a, err := simulate.NewAppender(c.Context, path, reader, simulate.AppenderOptions{
				Products: productsFrom(c),
				Seed:     seedFrom(c),
			})
			if err != nil {
				return err
			}

			logging.Info().Str("path", path).Msg("Simulator writing rows")
			err = a.Run(c.Context, simulate.RunOptions{
				MinPause: c.Duration("min-pause"),
				MaxPause: c.Duration("max-pause"),
				Count:    c.Int("count"),
			})
			if errors.Is(err, context.Canceled) {
				logging.Info().Msg("Simulator stopped")
				return nil
			}
			return err
		},
	}
}
