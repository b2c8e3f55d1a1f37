package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// NewTokensCommand creates the tokens command group.
func NewTokensCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tokens",
		Aliases: []string{"token"},
		Short:   "Manage access tokens",
		Long:    "Manage the API access tokens of the current user",
	}

	cmd.AddCommand(newTokensListCommand())
	cmd.AddCommand(newTokensCreateCommand())
	cmd.AddCommand(newTokensDeleteCommand())

	return cmd
}

func newTokensListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List access tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			tokens, err := client.Tokens().List(ctx)
			if err != nil {
				return fmtErr("list tokens", err)
			}

			if done, err := structuredOutput(tokens); done {
				return err
			}

			if len(tokens) == 0 {
				fmt.Println("No access tokens found")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Prefix", "Description", "Created")

			for _, token := range tokens {
				created := token.Created
				_ = table.Append(token.Prefix, token.Description, formatTime(&created))
			}

			return table.Render()
		},
	}
}

func newTokensCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an access token",
		Long: `Create a new access token.

The token value is printed once and cannot be retrieved later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			created, err := client.Tokens().Create(ctx, &loft.AccessTokenCreationOptions{
				Description: description,
			})
			if err != nil {
				return fmtErr("create token", err)
			}

			if done, err := structuredOutput(created); done {
				return err
			}

			fmt.Printf("Token: %s\n", created.Token)
			fmt.Printf("Prefix: %s\n", created.Prefix)

			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "description of the new token")

	return cmd
}

func newTokensDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete PREFIX",
		Aliases: []string{"rm"},
		Short:   "Delete an access token by its prefix",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Tokens().Delete(ctx, args[0]); err != nil {
				return fmtErr("delete token", err)
			}

			fmt.Printf("Token '%s' deleted\n", args[0])

			return nil
		},
	}
}
