package cli

import (
	"encoding/json"
	"fmt"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/spf13/cobra"
)

// Оператор CLI видит все ссылки
var operator = models.Principal{Role: models.RoleAdmin}

func newStatsCmd(a *app) *cobra.Command {
	var (
		linkID int64
		userID int64
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print click statistics as JSON",
		Long: `Without flags prints statistics across every link. --link-id narrows it to
one link (with its recent clicks), --user-id to the links of one owner.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.openStores(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			stats := a.statsService(s)

			var result any
			if cmd.Flags().Changed("link-id") {
				ls, err := stats.LinkStats(ctx, operator, linkID)
				if err != nil {
					return err
				}
				if ls == nil {
					return fmt.Errorf("link %d not found", linkID)
				}
				result = ls
			} else {
				var filter *int64
				if cmd.Flags().Changed("user-id") {
					filter = &userID
				}
				gs, err := stats.GlobalStats(ctx, operator, filter)
				if err != nil {
					return err
				}
				if gs == nil {
					return fmt.Errorf("statistics unavailable, see logs")
				}
				result = gs
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().Int64Var(&linkID, "link-id", 0, "single link")
	cmd.Flags().Int64Var(&userID, "user-id", 0, "links of one owner")
	cmd.MarkFlagsMutuallyExclusive("link-id", "user-id")

	return cmd
}
