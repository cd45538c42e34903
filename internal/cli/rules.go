package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/usecase/classify"
)

func rulesCmd() *cobra.Command {
	var rulebook string
	var verbose bool

	c := &cobra.Command{
		Use:   "rules",
		Short: "List the classification rules and rulebook vocabulary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := loadEngine(rulebook)
			if err != nil {
				return err
			}
			rb := engine.Rulebook()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Rules (first match wins):")
			for _, r := range classify.Rules() {
				fmt.Fprintf(out, "  %2d  %-28s %s\n", r.ID, r.Name, r.Tool)
			}

			fmt.Fprintf(out, "\nRulebook: %s\n", rb.Name)
			for _, cat := range domain.Categories() {
				words := rb.Words(cat)
				if verbose {
					fmt.Fprintf(out, "  %-20s %s\n", cat, strings.Join(words, ", "))
					continue
				}
				fmt.Fprintf(out, "  %-20s %d keyword(s)\n", cat, len(words))
			}
			fmt.Fprintf(out, "\nTopics: %d (default %q)\n", len(rb.Topics), rb.DefaultTopic)
			return nil
		},
	}

	c.Flags().StringVar(&rulebook, "rulebook", "", "Rulebook file (default: workspace rulebook or embedded)")
	c.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every keyword")
	return c
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a classification record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), domain.ClassificationSchema())
		},
	}
}
