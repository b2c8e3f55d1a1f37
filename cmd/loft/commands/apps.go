package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// NewAppsCommand creates the apps command group.
func NewAppsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"app", "applications"},
		Short:   "Manage applications",
		Long:    "List, create, and manage registry applications",
	}

	cmd.AddCommand(newAppsListCommand())
	cmd.AddCommand(newAppsGetCommand())
	cmd.AddCommand(newAppsCreateCommand())
	cmd.AddCommand(newAppsDeleteCommand())
	cmd.AddCommand(newAppsLabelCommand())

	return cmd
}

func newAppsListCommand() *cobra.Command {
	var (
		labels []string
		limit  uint
		offset uint
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Long:  "List all applications the user has access to",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			opts := loft.NewListOptions().
				WithLabels(labels...).
				WithLimit(limit).
				WithOffset(offset)

			apps, err := client.Registry().ListApplications(ctx, opts)
			if err != nil {
				return fmtErr("list applications", err)
			}

			if done, err := structuredOutput(apps); done {
				return err
			}

			if len(apps) == 0 {
				fmt.Println("No applications found")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Ready", "Created")

			for i := range apps {
				app := &apps[i]
				_ = table.Append(
					app.Metadata.Name,
					readyCondition(app),
					formatTime(&app.Metadata.CreationTimestamp),
				)
			}

			return table.Render()
		},
	}

	cmd.Flags().StringSliceVar(&labels, "label", nil, "label selector, may be repeated")
	cmd.Flags().UintVar(&limit, "limit", 0, "maximum number of results")
	cmd.Flags().UintVar(&offset, "offset", 0, "number of results to skip")

	return cmd
}

func newAppsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Get an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			app, err := client.Registry().GetApplication(ctx, args[0])
			if err != nil {
				return fmtErr("get application", err)
			}

			if app == nil {
				return fmt.Errorf("%w: '%s'", ErrApplicationNotFound, args[0])
			}

			if done, err := structuredOutput(app); done {
				return err
			}

			return printYAML(app)
		},
	}
}

func newAppsCreateCommand() *cobra.Command {
	var labels map[string]string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			app := loft.NewApplication(args[0])
			app.Metadata.Labels = labels

			if err := client.Registry().CreateApplication(ctx, app); err != nil {
				return fmtErr("create application", err)
			}

			fmt.Printf("Application '%s' created\n", args[0])

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&labels, "label", nil, "labels in key=value form, may be repeated")

	return cmd
}

func newAppsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete an application",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Registry().DeleteApplication(ctx, args[0]); err != nil {
				return fmtErr("delete application", err)
			}

			fmt.Printf("Application '%s' deleted\n", args[0])

			return nil
		},
	}
}

func newAppsLabelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "label NAME KEY=VALUE [KEY=VALUE...]",
		Short: "Add or update application labels",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			registry := client.Registry()

			app, err := registry.GetApplication(ctx, args[0])
			if err != nil {
				return fmtErr("get application", err)
			}

			if app == nil {
				return fmt.Errorf("%w: '%s'", ErrApplicationNotFound, args[0])
			}

			if app.Metadata.Labels == nil {
				app.Metadata.Labels = map[string]string{}
			}

			for _, pair := range args[1:] {
				key, value, err := splitLabel(pair)
				if err != nil {
					return err
				}

				app.Metadata.Labels[key] = value
			}

			if err := registry.UpdateApplication(ctx, app); err != nil {
				return fmtErr("update application", err)
			}

			fmt.Printf("Application '%s' labelled\n", args[0])

			return nil
		},
	}
}
