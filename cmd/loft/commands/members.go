package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// NewMembersCommand creates the members command group.
func NewMembersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage application members",
		Long:  "Manage the members and ownership of an application",
	}

	cmd.AddCommand(newMembersListCommand())
	cmd.AddCommand(newMembersAddCommand())
	cmd.AddCommand(newMembersRemoveCommand())
	cmd.AddCommand(newMembersTransferCommand())

	return cmd
}

func newMembersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list APPLICATION",
		Short: "List application members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			members, err := client.Admin().GetMembers(ctx, args[0])
			if err != nil {
				return fmtErr("list members", err)
			}

			if members == nil {
				return fmt.Errorf("%w: '%s'", ErrApplicationNotFound, args[0])
			}

			if done, err := structuredOutput(members); done {
				return err
			}

			if len(members.Members) == 0 {
				fmt.Println("No members found")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("User", "Roles")

			for user, entry := range members.Members {
				roles := make([]string, 0, len(entry.Roles))
				for _, role := range entry.Roles {
					roles = append(roles, role.String())
				}

				_ = table.Append(user, strings.Join(roles, ", "))
			}

			return table.Render()
		},
	}
}

func newMembersAddCommand() *cobra.Command {
	var roleNames []string

	cmd := &cobra.Command{
		Use:   "add APPLICATION USER",
		Short: "Add a member or replace their roles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			roles := make(loft.Roles, 0, len(roleNames))

			for _, name := range roleNames {
				role, err := loft.ParseRole(name)
				if err != nil {
					return err
				}

				roles = append(roles, role)
			}

			admin := client.Admin()

			members, err := admin.GetMembers(ctx, args[0])
			if err != nil {
				return fmtErr("get members", err)
			}

			if members == nil {
				return fmt.Errorf("%w: '%s'", ErrApplicationNotFound, args[0])
			}

			if members.Members == nil {
				members.Members = map[string]loft.MemberEntry{}
			}

			members.Members[args[1]] = loft.MemberEntry{Roles: roles}

			if err := admin.SetMembers(ctx, args[0], *members); err != nil {
				return fmtErr("set members", err)
			}

			fmt.Printf("Member '%s' updated\n", args[1])

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roleNames, "role", []string{"reader"}, "role to grant, may be repeated")

	return cmd
}

func newMembersRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove APPLICATION USER",
		Aliases: []string{"rm"},
		Short:   "Remove a member",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			admin := client.Admin()

			members, err := admin.GetMembers(ctx, args[0])
			if err != nil {
				return fmtErr("get members", err)
			}

			if members == nil {
				return fmt.Errorf("%w: '%s'", ErrApplicationNotFound, args[0])
			}

			delete(members.Members, args[1])

			if err := admin.SetMembers(ctx, args[0], *members); err != nil {
				return fmtErr("set members", err)
			}

			fmt.Printf("Member '%s' removed\n", args[1])

			return nil
		},
	}
}

func newMembersTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Manage ownership transfers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start APPLICATION USER",
		Short: "Offer application ownership to another user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Admin().TransferOwnership(ctx, args[0], args[1]); err != nil {
				return fmtErr("start transfer", err)
			}

			fmt.Printf("Ownership of '%s' offered to '%s'\n", args[0], args[1])

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel APPLICATION",
		Short: "Cancel a pending ownership transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Admin().CancelTransfer(ctx, args[0]); err != nil {
				return fmtErr("cancel transfer", err)
			}

			fmt.Printf("Ownership transfer of '%s' cancelled\n", args[0])

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status APPLICATION",
		Short: "Show the pending ownership transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			state, err := client.Admin().ReadTransferState(ctx, args[0])
			if err != nil {
				return fmtErr("read transfer state", err)
			}

			if state == nil {
				return fmt.Errorf("%w for '%s'", ErrNoOwnershipTransfer, args[0])
			}

			if done, err := structuredOutput(state); done {
				return err
			}

			fmt.Printf("Ownership of '%s' is offered to '%s'\n", args[0], state.NewUser)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "accept APPLICATION",
		Short: "Accept a pending ownership transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Admin().AcceptOwnership(ctx, args[0]); err != nil {
				return fmtErr("accept transfer", err)
			}

			fmt.Printf("You are now the owner of '%s'\n", args[0])

			return nil
		},
	})

	return cmd
}
