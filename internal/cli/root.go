package cli

import (
	"fmt"
	"os"

	"github.com/SergeiKhy/utm-tracker/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app общее состояние команд, заполняется в PersistentPreRunE
type app struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCmd собирает дерево команд utm-tracker
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "utm-tracker",
		Short: "UTM link generator with short-link redirects and click analytics",
		Long: `utm-tracker builds UTM-tagged links for marketing campaigns, serves them
behind short slugs and attributes every redirect to a country, device and browser.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := newLogger(cfg.App)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", ".env", "path to the env config file")

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newUserCmd(a),
		newLinkCmd(a),
		newStatsCmd(a),
	)

	return root
}

// Execute точка входа для main
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
