package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/templui/securefiles/internal/model"
)

func registerCmd(env *Env) *cobra.Command {
	var creds model.Credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			creds.Password = password

			if err := env.App.AuthService.Register(cmd.Context(), creds); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. Run `securefiles login` to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "account email")
	cmd.Flags().StringVar(&creds.Username, "username", "", "display name (optional)")
	return cmd
}

func loginCmd(env *Env) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}

			creds := model.Credentials{Email: email, Password: password}
			if err := env.App.AuthService.Login(cmd.Context(), creds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func logoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.App.AuthService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(cmd.Context()); err != nil {
				return err
			}
			sess := env.App.AuthService.Session()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s on %s\n", sess.User.Email, env.App.Client.BaseURL())
			fmt.Fprintln(out, describeExpiry(sess, time.Now()))
			return nil
		},
	}
}

func describeExpiry(sess *model.Session, now time.Time) string {
	exp := sess.ExpiresAt()
	switch {
	case exp.IsZero():
		return "Access token expiry unknown"
	case exp.Before(now):
		return fmt.Sprintf("Access token expired %s, run `securefiles refresh`", humanize.RelTime(exp, now, "ago", "from now"))
	default:
		return fmt.Sprintf("Access token expires %s", humanize.RelTime(exp, now, "ago", "from now"))
	}
}

func refreshCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := env.requireSession(ctx); err != nil {
				return err
			}
			if err := env.App.AuthService.Refresh(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeExpiry(env.App.AuthService.Session(), time.Now()))
			return nil
		},
	}
}
