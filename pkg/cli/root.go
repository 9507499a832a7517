// Package cli implements the lakeauth command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lakeauth/pkg/authclient"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{
				"error": err.Error(),
			}
			var apiErr *authclient.APIError
			if errors.As(err, &apiErr) {
				errObj["http_status"] = apiErr.HTTPStatus
			}
			_ = PrintJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		host      string
		token     string
		accessKey string
		secretKey string
		output    string
		profile   string
	)

	client := authclient.NewClient("http://localhost:8000", "")

	rootCmd := &cobra.Command{
		Use:           "lakeauth",
		Short:         "Auth service CLI",
		Long:          "Command-line interface for managing users, groups, policies, and credentials.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Config file is optional.
			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{
					CurrentProfile: "default",
					Profiles:       map[string]Profile{},
				}
			}
			p := cfg.ActiveProfile(profile)

			// Precedence: flag > env > profile > default.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("LAKEAUTH_HOST"); v != "" {
					host = v
				} else if p.Host != "" {
					host = p.Host
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("LAKEAUTH_TOKEN"); v != "" {
					token = v
				} else if p.Token != "" {
					token = p.Token
				}
			}
			if !cmd.Flags().Changed("access-key-id") {
				if v := os.Getenv("LAKEAUTH_ACCESS_KEY_ID"); v != "" {
					accessKey = v
				} else if p.AccessKeyID != "" {
					accessKey = p.AccessKeyID
				}
			}
			if !cmd.Flags().Changed("secret-access-key") {
				if v := os.Getenv("LAKEAUTH_SECRET_ACCESS_KEY"); v != "" {
					secretKey = v
				} else if p.SecretAccessKey != "" {
					secretKey = p.SecretAccessKey
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("LAKEAUTH_OUTPUT"); v != "" {
					output = v
				} else if p.Output != "" {
					output = p.Output
				}
			}
			if err := validateOutputFormat(output); err != nil {
				return err
			}

			*client = *authclient.NewClient(host, token)
			client.AccessKeyID = accessKey
			client.SecretAccessKey = secretKey
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8000", "API host URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Session token for authentication")
	rootCmd.PersistentFlags().StringVar(&accessKey, "access-key-id", "", "Access key ID for basic auth")
	rootCmd.PersistentFlags().StringVar(&secretKey, "secret-access-key", "", "Secret access key for basic auth")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Config profile to use")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAuthCmd(client))
	rootCmd.AddCommand(newUsersCmd(client))
	rootCmd.AddCommand(newGroupsCmd(client))
	rootCmd.AddCommand(newPoliciesCmd(client))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "lakeauth version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
