package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/diagroute/internal/infra/logger"
)

func classifyCmd() *cobra.Command {
	var fromStdin bool
	var format string
	var explain bool
	var rulebook string

	c := &cobra.Command{
		Use:   "classify [request...]",
		Short: "Choose the diagram tool for a request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			text, err := requestText(cmd.InOrStdin(), args, fromStdin)
			if err != nil {
				return err
			}

			engine, err := loadEngine(rulebook)
			if err != nil {
				return err
			}

			start := time.Now()
			out := cmd.OutOrStdout()
			if explain {
				ex, err := engine.Explain(cmd.Context(), text)
				if err != nil {
					return err
				}
				logger.L().Info("classify.done", "tool", ex.Classification.Tool, "rule", ex.Classification.Rule, logger.Since(start))
				return printExplanation(out, ex, format)
			}

			c, err := engine.Classify(cmd.Context(), text)
			if err != nil {
				return err
			}
			logger.L().Info("classify.done", "tool", c.Tool, "rule", c.Rule, logger.Since(start))
			return printClassification(out, c, format)
		},
	}

	c.Flags().BoolVar(&fromStdin, "stdin", false, "Read the request from stdin")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&explain, "explain", false, "Include the evaluation of every rule")
	c.Flags().StringVar(&rulebook, "rulebook", "", "Rulebook file (default: workspace rulebook or embedded)")
	return c
}

func explainCmd() *cobra.Command {
	var fromStdin bool
	var plain bool
	var rulebook string

	c := &cobra.Command{
		Use:   "explain [request...]",
		Short: "Show how every rule evaluated a request",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := requestText(cmd.InOrStdin(), args, fromStdin)
			if err != nil {
				return err
			}

			engine, err := loadEngine(rulebook)
			if err != nil {
				return err
			}

			ex, err := engine.Explain(cmd.Context(), text)
			if err != nil {
				return err
			}

			md := explanationMarkdown(ex)
			if !plain {
				rendered, rerr := renderMarkdown(md)
				if rerr == nil {
					md = rendered
				} else {
					logger.L().Warn("explain.render_failed", "err", rerr)
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}

	c.Flags().BoolVar(&fromStdin, "stdin", false, "Read the request from stdin")
	c.Flags().BoolVar(&plain, "plain", false, "Print raw Markdown instead of styled output")
	c.Flags().StringVar(&rulebook, "rulebook", "", "Rulebook file (default: workspace rulebook or embedded)")
	return c
}

func requestText(stdin io.Reader, args []string, fromStdin bool) (string, error) {
	if fromStdin {
		if len(args) > 0 {
			return "", fmt.Errorf("pass the request as arguments or via --stdin, not both")
		}
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("request is required (pass it as arguments or use --stdin)")
	}
	return strings.Join(args, " "), nil
}
