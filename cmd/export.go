package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/grid"
)

var (
	exportFilters filterFlags
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:         "export",
	Short:       "Write the filtered grid to an XLSX file",
	Annotations: map[string]string{configModesKey: "query"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		spec, err := exportFilters.spec()
		if err != nil {
			return err
		}

		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		builder, err := grid.NewBuilder(cfg.Dataset.Locale, cfg.Grid.PinnedTop)
		if err != nil {
			return err
		}
		v, err := builder.Build(engine, spec)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrap(err, "create output")
		}
		defer f.Close() //nolint:errcheck

		if err := grid.Export(v, f); err != nil {
			return err
		}
		zap.L().Info("export complete", zap.String("out", exportOut), zap.Int("rows", v.Count))
		return nil
	},
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "path of the XLSX file to write (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
