package main

import (
	"io"
	"os"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("stockcast failed")
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	predict := predictCommand(in, out)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			EnvVars: []string{"LOG_LEVEL"},
		},
	}
	// A bare invocation predicts from stdin, so the app accepts the predict flags too.
	flags = append(flags, predictFlags()...)

	return &cli.App{
		Name:  "stockcast",
		Usage: "Forecast next-month demand and restock risk per product",
		Flags: flags,
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			level := cfg.Log.Level
			if c.IsSet("log-level") {
				level = c.String("log-level")
			}
			logger.Configure(cfg.Log.Format, level)
			return nil
		},
		Commands: []*cli.Command{
			predict,
			serveCommand(),
		},
		Action:          predict.Action,
		HideHelpCommand: true,
	}
}
