package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/quakeboard/internal/config"
)

// configModesKey names the command annotation listing the config.Validate
// modes a command needs, comma separated. Subcommands inherit the nearest
// ancestor's list.
const configModesKey = "config_modes"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "quakeboard",
	Short:        "Earthquake dashboard for Chile",
	Long:         "Loads the Chilean earthquake table, answers filter and aggregate queries, and serves the grid and map dashboard API.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := config.InitLogger(c.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		for _, mode := range configModes(cmd) {
			if err := c.Validate(mode); err != nil {
				return err
			}
		}
		cfg = c

		zap.L().Debug("config loaded",
			zap.String("command", cmd.CommandPath()),
			zap.String("dataset", c.Dataset.Path),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// configModes returns the validation modes annotated on cmd or its closest
// annotated ancestor.
func configModes(cmd *cobra.Command) []string {
	for c := cmd; c != nil; c = c.Parent() {
		raw, ok := c.Annotations[configModesKey]
		if !ok {
			continue
		}
		var modes []string
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				modes = append(modes, m)
			}
		}
		return modes
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
