package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lakeauth/pkg/authclient"
)

// listFlags binds the pagination flags shared by all list commands.
func listFlags(cmd *cobra.Command, opts *authclient.ListOptions) {
	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "Only return results starting with this prefix")
	cmd.Flags().StringVar(&opts.After, "after", "", "Return results after this value")
	cmd.Flags().IntVar(&opts.Amount, "amount", 0, "Maximum number of results to return")
}

func newUsersCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	cmd.AddCommand(newUsersListCmd(client))
	cmd.AddCommand(newUsersCreateCmd(client))
	cmd.AddCommand(newUsersGetCmd(client))
	cmd.AddCommand(newUsersDeleteCmd(client))
	cmd.AddCommand(newUsersGroupsCmd(client))
	cmd.AddCommand(newUsersPoliciesCmd(client))
	cmd.AddCommand(newUsersCredentialsCmd(client))

	return cmd
}

func printUserList(cmd *cobra.Command, list *authclient.UserList) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(os.Stdout, list)
	}
	rows := make([][]string, 0, len(list.Results))
	for _, u := range list.Results {
		rows = append(rows, []string{u.ID, formatUnix(u.CreationDate), u.Email, u.Source})
	}
	if err := printTable(os.Stdout, []string{"ID", "CREATED", "EMAIL", "SOURCE"}, rows); err != nil {
		return err
	}
	printPagination(os.Stdout, list.Pagination)
	return nil
}

func printPolicyList(cmd *cobra.Command, list *authclient.PolicyList) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(os.Stdout, list)
	}
	rows := make([][]string, 0, len(list.Results))
	for _, p := range list.Results {
		rows = append(rows, []string{p.ID, formatUnix(p.CreationDate), fmt.Sprintf("%d", len(p.Statement))})
	}
	if err := printTable(os.Stdout, []string{"ID", "CREATED", "STATEMENTS"}, rows); err != nil {
		return err
	}
	printPagination(os.Stdout, list.Pagination)
	return nil
}

func printGroupList(cmd *cobra.Command, list *authclient.GroupList) error {
	if getOutputFormat(cmd) == "json" {
		return PrintJSON(os.Stdout, list)
	}
	rows := make([][]string, 0, len(list.Results))
	for _, g := range list.Results {
		rows = append(rows, []string{g.ID, formatUnix(g.CreationDate)})
	}
	if err := printTable(os.Stdout, []string{"ID", "CREATED"}, rows); err != nil {
		return err
	}
	printPagination(os.Stdout, list.Pagination)
	return nil
}

func newUsersListCmd(client *authclient.Client) *cobra.Command {
	var opts authclient.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := client.ListUsers(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printUserList(cmd, list)
		},
	}
	listFlags(cmd, &opts)
	return cmd
}

func newUsersCreateCmd(client *authclient.Client) *cobra.Command {
	var req authclient.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.ID = args[0]
			u, err := client.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, u)
			}
			_, _ = fmt.Fprintf(os.Stdout, "User %q created\n", u.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.FriendlyName, "friendly-name", "", "Display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (key-pair only login when omitted)")

	return cmd
}

func newUsersGetCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := client.GetUser(cmd.Context(), args[0])
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

func newUsersDeleteCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "User %q deleted\n", args[0])
			return nil
		},
	}
}

func newUsersGroupsCmd(client *authclient.Client) *cobra.Command {
	var opts authclient.ListOptions

	cmd := &cobra.Command{
		Use:   "groups <id>",
		Short: "List the groups a user belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListUserGroups(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printGroupList(cmd, list)
		},
	}
	listFlags(cmd, &opts)
	return cmd
}

func newUsersPoliciesCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Manage policies attached to a user",
	}

	var (
		opts      authclient.ListOptions
		effective bool
	)
	listCmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List policies attached to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListUserPolicies(cmd.Context(), args[0], effective, opts)
			if err != nil {
				return err
			}
			return printPolicyList(cmd, list)
		},
	}
	listFlags(listCmd, &opts)
	listCmd.Flags().BoolVar(&effective, "effective", false, "Include policies inherited through groups")

	attachCmd := &cobra.Command{
		Use:   "attach <user-id> <policy-id>",
		Short: "Attach a policy to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.AttachPolicyToUser(cmd.Context(), args[1], args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q attached to user %q\n", args[1], args[0])
			return nil
		},
	}

	detachCmd := &cobra.Command{
		Use:   "detach <user-id> <policy-id>",
		Short: "Detach a policy from a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DetachPolicyFromUser(cmd.Context(), args[1], args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q detached from user %q\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, attachCmd, detachCmd)
	return cmd
}

func newUsersCredentialsCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage a user's access key pairs",
	}

	var opts authclient.ListOptions
	listCmd := &cobra.Command{
		Use:   "list <user-id>",
		Short: "List a user's access key IDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListCredentials(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, list)
			}
			rows := make([][]string, 0, len(list.Results))
			for _, c := range list.Results {
				rows = append(rows, []string{c.AccessKeyID, formatUnix(c.CreationDate)})
			}
			if err := printTable(os.Stdout, []string{"ACCESS KEY ID", "CREATED"}, rows); err != nil {
				return err
			}
			printPagination(os.Stdout, list.Pagination)
			return nil
		},
	}
	listFlags(listCmd, &opts)

	createCmd := &cobra.Command{
		Use:   "create <user-id>",
		Short: "Generate a new access key pair",
		Long:  "Generate a new access key pair for the user. The secret access key is shown once and cannot be retrieved later.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.CreateCredentials(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, c)
			}
			return printTable(os.Stdout,
				[]string{"ACCESS KEY ID", "SECRET ACCESS KEY", "CREATED"},
				[][]string{{c.AccessKeyID, c.SecretAccessKey, formatUnix(c.CreationDate)}})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <user-id> <access-key-id>",
		Short: "Show credential metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.GetCredentials(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, c)
			}
			return printTable(os.Stdout,
				[]string{"ACCESS KEY ID", "CREATED"},
				[][]string{{c.AccessKeyID, formatUnix(c.CreationDate)}})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <user-id> <access-key-id>",
		Short: "Revoke an access key pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteCredentials(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Credentials %q deleted\n", args[1])
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, getCmd, deleteCmd)
	return cmd
}
