package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"qkhe/internal/hystem"
	"qkhe/internal/storage"
)

func newInitTemplateCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "init-template <dsn>",
		Short: "Create the HYSTEM-EXTRAN tables and control record in an empty database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := openTarget(cmd.Context(), storage.Config{Kind: kind, DSN: args[0]})
			if err != nil {
				return err
			}
			defer target.Close()

			defs := hystem.Defs()
			if err := target.Bootstrap(cmd.Context(), defs, 1); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d tables in %s\n", len(defs), args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "sqlite", "database kind: sqlite or mssql")
	return cmd
}
