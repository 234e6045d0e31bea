package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"volunteerhub/connection"
	"volunteerhub/model"
	"volunteerhub/services"
)

func usersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and administer user accounts",
	}
	cmd.AddCommand(showUserCmd(a), setRoleCmd(a))
	return cmd
}

// withUsers opens the configured store for the duration of fn.
func withUsers(cmd *cobra.Command, a *app, fn func(*services.UserService) error) error {
	st, err := connection.OpenStore(cmd.Context(), a.cfg, a.log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()
	return fn(services.NewUserService(st, a.cfg.AdminEmails, a.log))
}

func printUser(cmd *cobra.Command, u *model.User) {
	out := cmd.OutOrStdout()
	role := string(u.Role)
	if role == "" {
		role = "(not selected)"
	}
	fmt.Fprintf(out, "Email:   %s\n", u.Email)
	fmt.Fprintf(out, "Name:    %s\n", strings.TrimSpace(u.FirstName+" "+u.LastName))
	fmt.Fprintf(out, "Role:    %s\n", role)
	fmt.Fprintf(out, "Signed up events: %d\n", len(u.SignedUpEvents))
	fmt.Fprintf(out, "Posted events:    %d\n", len(u.PostedEvents))
}

func showUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Print a user document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, a, func(users *services.UserService) error {
				u, err := users.Get(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("failed to load %s: %w", args[0], err)
				}
				printUser(cmd, u)
				return nil
			})
		},
	}
}

func setRoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <volunteer|coordinator|community>",
		Short: "Change a user's role, bypassing the one-time selection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUsers(cmd, a, func(users *services.UserService) error {
				u, err := users.SetRole(cmd.Context(), args[0], model.Role(strings.ToLower(args[1])))
				if err != nil {
					return fmt.Errorf("failed to set role: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Role updated\n\n")
				printUser(cmd, u)
				return nil
			})
		},
	}
}
