package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datadrift/datadrift/pkg/models"
)

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in; run: datadrift login")

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if email == "" {
				var err error
				if email, err = p.Line("Email: "); err != nil {
					return err
				}
			}
			password, err := p.Password("Password: ")
			if err != nil {
				return err
			}

			m := opts.app.Session
			if err := m.Login(cmd.Context(), email, password); err != nil {
				return errors.New(m.State().Error)
			}

			u := m.User()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s (%s).\n", userLabel(u), u.Role)

			from := opts.app.Store.TakeLocation(cmd.Context())
			if from == "" {
				return nil
			}
			fmt.Fprintf(out, "Returning to %s\n", from)
			// The page may still be off limits for this role; the gate says so.
			if err := opts.open(cmd.Context(), out, from); err != nil && !errors.Is(err, ErrNotAuthorized) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email (prompted when empty)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.app.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := opts.app.Session
			if refresh {
				if err := m.Refresh(cmd.Context()); err != nil {
					return fmt.Errorf("failed to refresh session: %w", err)
				}
			}
			if !m.IsAuthenticated() {
				return ErrNotSignedIn
			}

			u := m.User()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:  %s\n", userLabel(u))
			fmt.Fprintf(out, "Email: %s\n", u.Email)
			fmt.Fprintf(out, "Role:  %s\n", u.Role)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ask the server for its current session first")
	return cmd
}

func userLabel(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
