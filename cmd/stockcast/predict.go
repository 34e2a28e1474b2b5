package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/payload"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

type predictOptions struct {
	Input         string
	ReferenceDate string
	Persist       bool
	Archive       bool
}

func predictFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Read the batch from `FILE` instead of stdin",
		},
		&cli.StringFlag{
			Name:    "reference-date",
			Usage:   "Predict the month after `DATE` (YYYY-MM-DD) instead of today",
			EnvVars: []string{"STOCKCAST_REFERENCE_DATE"},
		},
		&cli.BoolFlag{
			Name:    "persist",
			Usage:   "Upsert the results into Postgres",
			EnvVars: []string{"STOCKCAST_PERSIST"},
		},
		&cli.BoolFlag{
			Name:    "archive",
			Usage:   "Upload the results to object storage",
			EnvVars: []string{"STOCKCAST_ARCHIVE"},
		},
	}
}

func predictCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Read {products, sales} JSON and write one prediction per product",
		Flags: predictFlags(),
		Action: func(c *cli.Context) error {
			opts := predictOptions{
				Input:         c.String("input"),
				ReferenceDate: c.String("reference-date"),
				Persist:       c.Bool("persist"),
				Archive:       c.Bool("archive"),
			}
			return runPredict(c.Context, config.Load(), in, out, opts, time.Now)
		},
	}
}

// runPredict writes the prediction array to out. now is the default reference
// date and stamps prediction_date. Any failure, panics included, is written to
// out as {"error": msg} and returned.
func runPredict(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, opts predictOptions, now func() time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
		if err != nil {
			if werr := payload.WriteError(out, err); werr != nil {
				log.Error().Err(werr).Msg("failed to write error response")
			}
		}
	}()

	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	batch, err := payload.Decode(in)
	if err != nil {
		return err
	}

	ref := now()
	if raw := strings.TrimSpace(opts.ReferenceDate); raw != "" {
		ref, err = payload.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("invalid reference date: %w", err)
		}
	}

	svc, cleanup, err := buildService(ctx, cfg, opts.Persist, opts.Archive, now)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Run(ctx, batch, ref)
	if err != nil {
		return err
	}

	log.Debug().
		Int("products", len(batch.Products)).
		Int("sales", len(batch.Sales)).
		Int("predictions", len(result.Records)).
		Msg("prediction batch complete")

	return payload.WriteResults(out, result.Records)
}
