package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var snapshotCmd = &cobra.Command{
	Use:         "snapshot",
	Short:       "Copy the dataset into the store's quake_records table",
	Annotations: map[string]string{configModesKey: "query,views"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.SaveSnapshot(cmd.Context(), engine.Dataset())
		if err != nil {
			return eris.Wrap(err, "save snapshot")
		}
		zap.L().Info("snapshot saved",
			zap.String("source", engine.Dataset().Source),
			zap.Int64("records", n),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}
