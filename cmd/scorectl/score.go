package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"stockscore/internal/domain/score"
	"stockscore/internal/scoring"
	"stockscore/pkg/errors"
	"stockscore/pkg/llmjson"
	"stockscore/pkg/logger"
)

func newScoreCmd(opts *rootOptions) *cobra.Command {
	var (
		ticker   string
		noEnrich bool
	)

	cmd := &cobra.Command{
		Use:   "score [file|-]",
		Short: "Score a raw metrics payload offline",
		Long: `Score a metrics payload without calling any provider.

The payload may be bare JSON, a fenced code block or JSON embedded in prose.
With no argument or "-" the payload is read from stdin. Reasoning uses the
built-in template.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, args)
			if err != nil {
				return err
			}

			sym, err := score.SanitizeTicker(ticker)
			if err != nil {
				return err
			}

			result, err := scoreOffline(cmd, raw, sym, !noEnrich)
			if err != nil {
				return err
			}

			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return writeResult(cmd.OutOrStdout(), result, false)
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "OFFLINE", "Ticker to stamp on the result")
	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Do not derive technicals from the price series")
	return cmd
}

func readPayload(cmd *cobra.Command, args []string) (string, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return "", errors.Wrap(err, "open payload")
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "read payload")
	}
	return string(data), nil
}

func scoreOffline(cmd *cobra.Command, raw, ticker string, enrich bool) (*score.AIScoreResult, error) {
	decoded, err := llmjson.Decode[map[string]any](raw)
	if err != nil {
		return nil, err
	}
	metrics, err := scoring.Parse(decoded)
	if err != nil {
		return nil, err
	}

	engine := scoring.NewEngine(nil, nil,
		scoring.WithTechnicalEnrichment(enrich),
		scoring.WithLogger(logger.NewNop()),
	)
	return engine.Evaluate(cmd.Context(), ticker, metrics)
}
