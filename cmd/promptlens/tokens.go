package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/HerbHall/promptlens/internal/analysis"
	"github.com/HerbHall/promptlens/internal/tokenizer"
)

func newTokensCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "Count a prompt's tokens and show how it would be chunked",
		Long: `Count a prompt's tokens and show the analysis plan without calling
the model. Exits non-zero when the prompt is over the hard limit.`,
		Args: cobra.MaximumNArgs(1),
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

			pool := tokenizer.NewPool(cfg.Analysis.Encoding, logger.Named("tokenizer"))
			defer pool.Close()

			// Planning never calls the model, so no client is needed.
			analyzer, err := analysis.New(cfg.Analysis, pool, nil, logger.Named("analysis"))
			if err != nil {
				return err
			}
			return runTokens(cmd.OutOrStdout(), analyzer, prompt, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func runTokens(w io.Writer, a *analysis.Analyzer, prompt string, asJSON bool) error {
	preview, err := a.Preview(prompt)
	if asJSON {
		if werr := writeJSON(w, preview); werr != nil {
			return werr
		}
		return err
	}
	renderPreview(w, preview)
	return err
}

func renderPreview(w io.Writer, p *analysis.Preview) {
	approx := ""
	if p.Approximate {
		approx = " " + warning("(approximate)")
	}
	fmt.Fprintf(w, "%s tokens%s\n", info(p.TokenCount), approx)

	if p.TokenCount >= p.RejectAt {
		fmt.Fprintf(w, "%s %s\n", errorIcon, fmt.Sprintf("over the limit of %d tokens", p.RejectAt))
		return
	}

	fmt.Fprintf(w, "mode: %s\n", p.Mode)
	if len(p.Chunks) > 1 {
		for _, c := range p.Chunks {
			fmt.Fprintf(w, "  chunk %d/%d  %s  %s\n", c.Index+1, c.Total,
				dim(fmt.Sprintf("tokens %d-%d", c.StartToken, c.EndToken)), c.Position)
		}
	}
	fmt.Fprintf(w, "%s\n", dim(fmt.Sprintf("limit: %d tokens", p.RejectAt)))
}
