package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lakeauth/pkg/authclient"
)

func newGroupsCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage groups",
	}

	cmd.AddCommand(newGroupsListCmd(client))
	cmd.AddCommand(newGroupsCreateCmd(client))
	cmd.AddCommand(newGroupsGetCmd(client))
	cmd.AddCommand(newGroupsDeleteCmd(client))
	cmd.AddCommand(newGroupsMembersCmd(client))
	cmd.AddCommand(newGroupsPoliciesCmd(client))

	return cmd
}

func newGroupsListCmd(client *authclient.Client) *cobra.Command {
	var opts authclient.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := client.ListGroups(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printGroupList(cmd, list)
		},
	}
	listFlags(cmd, &opts)
	return cmd
}

func newGroupsCreateCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "create <id>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := client.CreateGroup(cmd.Context(), authclient.CreateGroupRequest{ID: args[0]})
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, g)
			}
			_, _ = fmt.Fprintf(os.Stdout, "Group %q created\n", g.ID)
			return nil
		},
	}
}

func newGroupsGetCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := client.GetGroup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, g)
			}
			return printTable(os.Stdout,
				[]string{"ID", "CREATED"},
				[][]string{{g.ID, formatUnix(g.CreationDate)}})
		},
	}
}

func newGroupsDeleteCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a group and its memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteGroup(cmd.Context(), args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Group %q deleted\n", args[0])
			return nil
		},
	}
}

func newGroupsMembersCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage group membership",
	}

	var opts authclient.ListOptions
	listCmd := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List the users in a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListGroupMembers(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printUserList(cmd, list)
		},
	}
	listFlags(listCmd, &opts)

	addCmd := &cobra.Command{
		Use:   "add <group-id> <user-id>",
		Short: "Add a user to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.AddGroupMembership(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "User %q added to group %q\n", args[1], args[0])
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <group-id> <user-id>",
		Short: "Remove a user from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteGroupMembership(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "User %q removed from group %q\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, removeCmd)
	return cmd
}

func newGroupsPoliciesCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Manage policies attached to a group",
	}

	var opts authclient.ListOptions
	listCmd := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List policies attached to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.ListGroupPolicies(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			return printPolicyList(cmd, list)
		},
	}
	listFlags(listCmd, &opts)

	attachCmd := &cobra.Command{
		Use:   "attach <group-id> <policy-id>",
		Short: "Attach a policy to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.AttachPolicyToGroup(cmd.Context(), args[1], args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q attached to group %q\n", args[1], args[0])
			return nil
		},
	}

	detachCmd := &cobra.Command{
		Use:   "detach <group-id> <policy-id>",
		Short: "Detach a policy from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DetachPolicyFromGroup(cmd.Context(), args[1], args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q detached from group %q\n", args[1], args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, attachCmd, detachCmd)
	return cmd
}
