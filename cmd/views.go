package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/store"
)

var viewsImportFile string

var viewsCmd = &cobra.Command{
	Use:         "views",
	Short:       "Manage saved dashboard views",
	Annotations: map[string]string{configModesKey: "views"},
}

var viewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print saved views as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		views, err := st.ListViews(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	},
}

var viewsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Seed saved views from a YAML file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Open(viewsImportFile)
		if err != nil {
			return eris.Wrap(err, "open views file")
		}
		defer f.Close() //nolint:errcheck

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		created, skipped, err := store.ImportViews(cmd.Context(), st, f)
		if err != nil {
			return eris.Wrap(err, "import views")
		}
		zap.L().Info("views import complete",
			zap.Int("created", created),
			zap.Int("skipped", skipped),
			zap.String("file", viewsImportFile),
		)
		return nil
	},
}

var viewsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteView(cmd.Context(), args[0]); err != nil {
			return err
		}
		zap.L().Info("view deleted", zap.String("id", args[0]))
		return nil
	},
}

func init() {
	viewsImportCmd.Flags().StringVar(&viewsImportFile, "file", "", "path to views YAML (required)")
	_ = viewsImportCmd.MarkFlagRequired("file")

	viewsCmd.AddCommand(viewsListCmd, viewsImportCmd, viewsDeleteCmd)
	rootCmd.AddCommand(viewsCmd)
}
