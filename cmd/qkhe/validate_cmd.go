package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qkhe/internal/config"
)

func newValidateCmd(g *globalOptions) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a run configuration without touching any database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRun(g, &f, cmd.Flags())
			if err != nil {
				return err
			}
			if printIssues(cmd.ErrOrStderr(), config.ValidateRun(cfg)) {
				return errInvalidRun
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %q is valid\n", cfg.Job)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}
