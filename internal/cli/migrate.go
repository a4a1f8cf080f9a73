package cli

import (
	"github.com/SergeiKhy/utm-tracker/internal/repository"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(a *app) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and seed the system catalogs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.openStores(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := repository.Migrate(ctx, s.db); err != nil {
				return err
			}
			a.logger.Info("Schema applied")

			if !seed {
				return nil
			}
			created, err := service.NewCatalogService(s.catalogs, a.logger).SeedDefaults(ctx)
			if err != nil {
				return err
			}
			a.logger.Info("Catalogs seeded", zap.Int("created", created))
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "create missing system catalog entries")
	return cmd
}
