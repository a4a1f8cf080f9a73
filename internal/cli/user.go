package cli

import (
	"fmt"

	"github.com/SergeiKhy/utm-tracker/internal/auth"
	"github.com/SergeiKhy/utm-tracker/internal/models"
	"github.com/SergeiKhy/utm-tracker/internal/service"
	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard users",
	}
	cmd.AddCommand(newUserAddCmd(a))
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var user models.User

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create or update a user and print an access token",
		Long: `Creates the user identified by --open-id (or updates name, email and role
if it already exists) and prints a signed JWT for the dashboard API.

Example:
  utm-tracker user add --open-id=google-123 --name="Alice" --role=admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := a.openStores(ctx, false)
			if err != nil {
				return err
			}
			defer s.Close()

			registered, err := service.NewUserService(s.users).Register(ctx, &user)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User %d (%s) saved with role %s\n", registered.ID, registered.OpenID, registered.Role)

			issuer, err := auth.NewIssuer(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTTTL)
			if err != nil {
				fmt.Fprintln(out, "JWT_SECRET is not set, no token issued")
				return nil
			}
			token, err := issuer.Sign(models.Principal{UserID: registered.ID, Role: registered.Role})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user.OpenID, "open-id", "", "identity provider subject")
	cmd.Flags().StringVar(&user.Name, "name", "", "display name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email address")
	cmd.Flags().StringVar(&user.Role, "role", models.RoleUser, "user or admin")
	_ = cmd.MarkFlagRequired("open-id")

	return cmd
}
