package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/diagroute/internal/usecase"
)

func validateCmd() *cobra.Command {
	var workspace string
	var suite string
	var vars []string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a suite without classifying",
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides, err := parseVars(vars)
			if err != nil {
				return err
			}

			ws, err := loadWorkspace(workspace, "")
			if err != nil {
				return err
			}

			suitePath, err := resolveSuitePath(ws, suite)
			if err != nil {
				return err
			}

			uc := usecase.NewValidateSuite(ws.suites)
			if err := uc.Execute(cmd.Context(), suitePath, overrides); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&suite, "suite", "s", "", "Suite name or path (required)")
	c.Flags().StringArrayVar(&vars, "var", nil, "Override a suite variable (key=value, repeatable)")

	_ = c.MarkFlagRequired("suite")
	return c
}
