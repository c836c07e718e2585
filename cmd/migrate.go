package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Provision the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.EnsureSchema(ctx); err != nil {
			return eris.Wrap(err, "ensure schema")
		}

		zap.L().Info("schema ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
