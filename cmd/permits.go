package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cascadia-civic/crarisk/internal/fetcher"
	"github.com/cascadia-civic/crarisk/internal/permits"
	"github.com/cascadia-civic/crarisk/internal/pipeline"
)

var (
	permitsOut       string
	permitsOutFormat string
)

var permitsCmd = &cobra.Command{
	Use:   "permits",
	Short: "Clean the permit export and attribute it against configured layers",
	Long:  "Standalone permit cleaner: drops rows without an identifier or coordinates, classifies seismic topics, and attributes each permit to a reporting area and hazard zones when those layers are configured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("permits"); err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimit: rate.Limit(cfg.Fetch.RateLimit),
			Timeout:   time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		p := pipeline.New(cfg, nil, f, nil)
		ps, err := p.CleanPermits(ctx)
		if err != nil {
			return eris.Wrap(err, "clean permits")
		}

		out := os.Stdout
		if permitsOut != "" {
			file, err := os.Create(permitsOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", permitsOut)
			}
			defer file.Close()
			out = file
		}

		switch permitsOutFormat {
		case "csv":
			err = permits.WriteCSV(out, ps)
		case "json":
			err = permits.WriteJSON(out, ps)
		default:
			return eris.Errorf("unsupported output format %q", permitsOutFormat)
		}
		if err != nil {
			return err
		}

		zap.L().Info("permits written",
			zap.Int("permits", len(ps)),
			zap.String("format", permitsOutFormat),
		)
		return nil
	},
}

func init() {
	permitsCmd.Flags().StringVar(&permitsOut, "out", "", "output path (default stdout)")
	permitsCmd.Flags().StringVar(&permitsOutFormat, "out-format", "csv", "output format: csv or json")
	rootCmd.AddCommand(permitsCmd)
}
