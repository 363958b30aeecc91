package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cascadia-civic/crarisk/internal/fetcher"
	"github.com/cascadia-civic/crarisk/internal/pipeline"
	"github.com/cascadia-civic/crarisk/internal/sink"
	"github.com/cascadia-civic/crarisk/internal/store"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run the full compile: load layers, aggregate, write the area table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("compile"); err != nil {
			return err
		}

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		format, err := sink.ParseFormat(cfg.Sink.Format)
		if err != nil {
			return err
		}
		writer, err := sink.New(format, sink.Options{
			Path: cfg.Sink.Path,
			DSN:  cfg.Sink.DatabaseURL,
		})
		if err != nil {
			return err
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			RateLimit: rate.Limit(cfg.Fetch.RateLimit),
			Timeout:   time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		})

		p := pipeline.New(cfg, st, f, writer)
		result, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "compile run")
		}

		zap.L().Info("compile finished",
			zap.String("run_id", result.RunID),
			zap.Int("areas", len(result.Rows)),
			zap.String("sink", cfg.Sink.Format),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
}
