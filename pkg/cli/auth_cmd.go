package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lakeauth/pkg/authclient"
)

func newAuthCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd(client))
	cmd.AddCommand(newAuthWhoamiCmd(client))
	cmd.AddCommand(newAuthCapabilitiesCmd(client))
	cmd.AddCommand(newAuthForgotPasswordCmd(client))
	cmd.AddCommand(newAuthUpdatePasswordCmd(client))

	return cmd
}

func newAuthLoginCmd(client *authclient.Client) *cobra.Command {
	var (
		username string
		password string
		profile  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain a session token and save it to the active profile",
		Long: "Log in with a username/password pair or with the access key pair " +
			"carried by --access-key-id/--secret-access-key. The token is saved " +
			"to the active profile.",
		Example: `  # Log in with username and password (prompted)
  lakeauth auth login --username admin

  # Log in with an access key pair
  lakeauth --access-key-id AKIA... --secret-access-key ... auth login`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := authclient.LoginRequest{
				AccessKeyID:     client.AccessKeyID,
				SecretAccessKey: client.SecretAccessKey,
				Username:        username,
				Password:        password,
			}
			if username != "" && password == "" {
				p, err := promptPassword("Password: ")
				if err != nil {
					return err
				}
				req.Password = p
			}

			tok, err := client.Login(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := saveTokenToProfile(profile, tok.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, tok)
			}
			_, _ = fmt.Fprintf(os.Stdout, "Logged in, session valid until %s\n", formatUnix(tok.TokenExpiration))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "User ID to log in as")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&profile, "save-profile", "", "Profile to store the token in (default: active profile)")

	return cmd
}

func newAuthWhoamiCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := client.GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, u)
			}
			return printTable(os.Stdout,
				[]string{"ID", "CREATED", "EMAIL", "SOURCE"},
				[][]string{{u.ID, formatUnix(u.CreationDate), u.Email, u.Source}})
		},
	}
}

func newAuthCapabilitiesCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show which optional auth flows the server supports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caps, err := client.GetAuthCapabilities(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, caps)
			}
			return printTable(os.Stdout,
				[]string{"CAPABILITY", "SUPPORTED"},
				[][]string{
					{"invite_user", fmt.Sprintf("%t", caps.InviteUser)},
					{"forgot_password", fmt.Sprintf("%t", caps.ForgotPassword)},
				})
		},
	}
}

func newAuthForgotPasswordCmd(client *authclient.Client) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password-reset email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := client.ForgotPassword(cmd.Context(), email); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintln(os.Stdout, "If the address is known, a reset email has been sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address of the account (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthUpdatePasswordCmd(client *authclient.Client) *cobra.Command {
	var (
		resetToken  string
		newPassword string
	)

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Set a new password using a reset token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if newPassword == "" {
				p, err := promptPassword("New password: ")
				if err != nil {
					return err
				}
				newPassword = p
			}
			if err := client.UpdatePassword(cmd.Context(), resetToken, newPassword); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintln(os.Stdout, "Password updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&resetToken, "reset-token", "", "Reset token from the password-reset email (required)")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "New password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("reset-token")

	return cmd
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
