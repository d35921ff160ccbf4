package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sphere/internal/auth"
	"sphere/internal/model"
)

func newLoginCmd(o *options) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session locally",
		Example: `  portalctl login --email admin@example.com --password secret
  portalctl --profile staging login --email admin@example.com --password secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Email == "" {
				return fmt.Errorf("--email is required")
			}
			if creds.Password == "" {
				return fmt.Errorf("--password is required")
			}

			s := o.open()
			result, err := s.gateway.Login(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", result.User.Name, roleLabel(result.User))
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Password, "password", "", "account password")
	return cmd
}

func newWhoamiCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the stored session and show its user",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := o.open()
			ctx := cmd.Context()
			if !s.gateway.IsAuthenticated(ctx) {
				return ErrNotSignedIn
			}

			v, err := s.gateway.VerifyToken(ctx)
			if err != nil {
				return s.check(err)
			}
			if !v.Valid || v.User == nil {
				return ErrSessionExpired
			}

			return o.render(cmd.OutOrStdout(), v.User, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintf(tw, "Name:\t%s\n", v.User.Name)
				_, _ = fmt.Fprintf(tw, "Email:\t%s\n", v.User.Email)
				_, _ = fmt.Fprintf(tw, "Role:\t%s\n", roleLabel(v.User))
				if v.User.Department != nil {
					_, _ = fmt.Fprintf(tw, "Department:\t%s\n", v.User.Department.Name)
				}
				return tw.Flush()
			})
		},
	}
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := o.open()
			if !s.gateway.IsAuthenticated(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			s.gateway.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func roleLabel(u *model.User) string {
	if u.Role.Name != "" {
		return u.Role.Name
	}
	if u.Role.Slug != "" {
		return string(u.Role.Slug)
	}
	return "unknown role"
}
