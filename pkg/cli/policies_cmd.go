package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lakeauth/pkg/authclient"
)

func newPoliciesCmd(client *authclient.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Manage policies",
	}

	cmd.AddCommand(newPoliciesListCmd(client))
	cmd.AddCommand(newPoliciesCreateCmd(client))
	cmd.AddCommand(newPoliciesGetCmd(client))
	cmd.AddCommand(newPoliciesUpdateCmd(client))
	cmd.AddCommand(newPoliciesDeleteCmd(client))

	return cmd
}

// readPolicyDocument reads a policy JSON document from a file, or stdin when
// path is "-".
func readPolicyDocument(path string) (*authclient.Policy, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read policy document: %w", err)
	}
	var p authclient.Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy document: %w", err)
	}
	return &p, nil
}

func newPoliciesListCmd(client *authclient.Client) *cobra.Command {
	var opts authclient.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := client.ListPolicies(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return printPolicyList(cmd, list)
		},
	}
	listFlags(cmd, &opts)
	return cmd
}

func newPoliciesCreateCmd(client *authclient.Client) *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a policy from a JSON document",
		Example: `  lakeauth policies create --document policy.json

  echo '{"id":"ReadAll","statement":[{"effect":"allow","resource":"*","action":["auth:Read*"]}]}' \
    | lakeauth policies create --document -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := readPolicyDocument(document)
			if err != nil {
				return err
			}
			created, err := client.CreatePolicy(cmd.Context(), *p)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, created)
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q created\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&document, "document", "", "Path to the policy JSON document, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("document")

	return cmd
}

func newPoliciesGetCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a policy with its statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := client.GetPolicy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			// Statements do not fit a table; always print the document.
			return PrintJSON(os.Stdout, p)
		},
	}
}

func newPoliciesUpdateCmd(client *authclient.Client) *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the statements of a policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPolicyDocument(document)
			if err != nil {
				return err
			}
			p.ID = args[0]
			updated, err := client.UpdatePolicy(cmd.Context(), args[0], *p)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, updated)
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q updated\n", updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&document, "document", "", "Path to the policy JSON document, or - for stdin (required)")
	_ = cmd.MarkFlagRequired("document")

	return cmd
}

func newPoliciesDeleteCmd(client *authclient.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a policy and all its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeletePolicy(cmd.Context(), args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return PrintJSON(os.Stdout, map[string]string{"status": "ok"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Policy %q deleted\n", args[0])
			return nil
		},
	}
}
