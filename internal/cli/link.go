package cli

import (
	"fmt"

	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/spf13/cobra"
)

func newLinkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Manage UTM links",
	}
	cmd.AddCommand(newLinkCreateCmd(a))
	return cmd
}

func newLinkCreateCmd(a *app) *cobra.Command {
	var (
		userID int64
		input  models.CreateLinkInput
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a UTM link with a short slug",
		Long: `Builds the UTM URL for the destination and stores it under a new short slug.

Example:
  utm-tracker link create --user-id=1 --url="https://example.com/landing" \
    --source=facebook --medium=video --campaign=notoriete`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.openStores(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			p := models.Principal{UserID: userID, Role: models.RoleUser}
			link, err := a.linkService(s).CreateLink(ctx, p, &input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Link %d created\n", link.ID)
			fmt.Fprintf(out, "Short URL:     %s\n", link.ShortURL)
			fmt.Fprintf(out, "Generated URL: %s\n", link.GeneratedURL)
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&userID, "user-id", 0, "owner of the link")
	f.StringVar(&input.DestinationURL, "url", "", "destination URL")
	f.StringVar(&input.UTMSource, "source", "", "utm_source")
	f.StringVar(&input.UTMMedium, "medium", "", "utm_medium")
	f.StringVar(&input.UTMCampaign, "campaign", "", "utm_campaign")
	f.StringVar(&input.UTMTerm, "term", "", "utm_term")
	f.StringVar(&input.UTMContent, "content", "", "utm_content")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
