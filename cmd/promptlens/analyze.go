package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/HerbHall/promptlens/internal/analysis"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Evaluate and reword a prompt read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			eng, err := newEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer eng.pool.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runAnalyze(ctx, cmd.OutOrStdout(), eng.analyzer, prompt, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response body instead of a summary")
	return cmd
}

// runAnalyze analyzes prompt and writes the outcome to w. With asJSON set,
// failures are also written as the API error envelope before being returned.
func runAnalyze(ctx context.Context, w io.Writer, a *analysis.Analyzer, prompt string, asJSON bool) error {
	start := time.Now()
	res, err := a.Analyze(ctx, prompt)
	if err != nil {
		if asJSON {
			body, _ := analysis.NewErrorResponse(err, time.Since(start))
			_ = writeJSON(w, body)
		}
		return err
	}

	if asJSON {
		return writeJSON(w, res.Response())
	}
	renderAnalysis(w, res)
	return nil
}

func renderAnalysis(w io.Writer, res *analysis.Analysis) {
	if res.Approximate {
		fmt.Fprintf(w, "%s %s\n", warningIcon, warning("tokenizer unavailable; token counts are approximate"))
	}

	if res.NoOp {
		fmt.Fprintf(w, "%s %s %s\n", successIcon, analysis.NoOpMessage,
			dim(fmt.Sprintf("(%d tokens)", res.TokenCount)))
		return
	}

	r := res.Result
	fmt.Fprintf(w, "%s Accuracy: %s\n", successIcon, info(fmt.Sprintf("%.1f", r.Accuracy)))
	fmt.Fprintf(w, "  %s\n", dim(fmt.Sprintf("%d tokens, %d chunk(s), mode %s",
		r.TokenCount, r.ChunkCount, res.Plan.Mode)))
	if r.DegradedChunks > 0 {
		fmt.Fprintf(w, "%s %s\n", warningIcon,
			warning(fmt.Sprintf("%d of %d chunk(s) returned unusable output", r.DegradedChunks, r.ChunkCount)))
	}

	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	if r.Reword != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Reworded prompt:")
		fmt.Fprintln(w, r.Reword)
	}
}

// readInput returns the contents of the named file, or stdin when the
// argument is absent or "-".
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}
	return string(b), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
