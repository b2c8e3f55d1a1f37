package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// NewDevicesCommand creates the devices command group.
func NewDevicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"device", "dev"},
		Short:   "Manage devices",
		Long:    "List, create, and manage the devices of an application",
	}

	cmd.AddCommand(newDevicesListCommand())
	cmd.AddCommand(newDevicesGetCommand())
	cmd.AddCommand(newDevicesCreateCommand())
	cmd.AddCommand(newDevicesDeleteCommand())
	cmd.AddCommand(newDevicesEnableCommand(true))
	cmd.AddCommand(newDevicesEnableCommand(false))
	cmd.AddCommand(newDevicesSetPasswordCommand())
	cmd.AddCommand(newDevicesAliasCommand())

	return cmd
}

func newDevicesListCommand() *cobra.Command {
	var (
		labels []string
		limit  uint
		offset uint
	)

	cmd := &cobra.Command{
		Use:   "list APPLICATION",
		Short: "List devices",
		Args:  cobra.ExactArgs(1),
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

			devices, err := client.Registry().ListDevices(ctx, args[0], opts)
			if err != nil {
				return fmtErr("list devices", err)
			}

			if done, err := structuredOutput(devices); done {
				return err
			}

			if len(devices) == 0 {
				fmt.Println("No devices found")

				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Name", "Enabled", "Ready", "Created")

			for i := range devices {
				device := &devices[i]
				_ = table.Append(
					device.Metadata.Name,
					strconv.FormatBool(loft.DeviceEnabled.Of(device)),
					readyCondition(device),
					formatTime(&device.Metadata.CreationTimestamp),
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

func newDevicesGetCommand() *cobra.Command {
	var withGateways bool

	cmd := &cobra.Command{
		Use:   "get APPLICATION NAME",
		Short: "Get a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if withGateways {
				device, gateways, err := client.Registry().GetDeviceAndGateways(ctx, args[0], args[1])
				if err != nil {
					return fmtErr("get device", err)
				}

				if device == nil {
					return fmt.Errorf("%w: '%s/%s'", ErrDeviceNotFound, args[0], args[1])
				}

				result := struct {
					Device   *loft.Device  `json:"device"             yaml:"device"`
					Gateways []loft.Device `json:"gateways,omitempty" yaml:"gateways,omitempty"`
				}{device, gateways}

				if done, err := structuredOutput(result); done {
					return err
				}

				return printYAML(result)
			}

			device, err := client.Registry().GetDevice(ctx, args[0], args[1])
			if err != nil {
				return fmtErr("get device", err)
			}

			if device == nil {
				return fmt.Errorf("%w: '%s/%s'", ErrDeviceNotFound, args[0], args[1])
			}

			if done, err := structuredOutput(device); done {
				return err
			}

			return printYAML(device)
		},
	}

	cmd.Flags().BoolVar(&withGateways, "gateways", false, "also resolve the devices selected as gateways")

	return cmd
}

func newDevicesCreateCommand() *cobra.Command {
	var (
		labels   map[string]string
		gateways []string
		aliases  []string
	)

	cmd := &cobra.Command{
		Use:   "create APPLICATION NAME",
		Short: "Create a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			device := loft.NewDevice(args[0], args[1])
			device.Metadata.Labels = labels

			if len(gateways) > 0 {
				err := loft.SetSection(device, loft.DeviceSpecGatewaySelector{MatchNames: gateways})
				if err != nil {
					return fmtErr("set gateway selector", err)
				}
			}

			if len(aliases) > 0 {
				if err := loft.SetSection(device, loft.DeviceSpecAliases(aliases)); err != nil {
					return fmtErr("set aliases", err)
				}
			}

			if err := client.Registry().CreateDevice(ctx, device); err != nil {
				return fmtErr("create device", err)
			}

			fmt.Printf("Device '%s/%s' created\n", args[0], args[1])

			return nil
		},
	}

	cmd.Flags().StringToStringVar(&labels, "label", nil, "labels in key=value form, may be repeated")
	cmd.Flags().StringSliceVar(&gateways, "gateway", nil, "name of a gateway device, may be repeated")
	cmd.Flags().StringSliceVar(&aliases, "alias", nil, "additional device alias, may be repeated")

	return cmd
}

func newDevicesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete APPLICATION NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a device",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Registry().DeleteDevice(ctx, args[0], args[1]); err != nil {
				return fmtErr("delete device", err)
			}

			fmt.Printf("Device '%s/%s' deleted\n", args[0], args[1])

			return nil
		},
	}
}

func newDevicesEnableCommand(enable bool) *cobra.Command {
	use, verb := "enable", "enabled"
	if !enable {
		use, verb = "disable", "disabled"
	}

	return &cobra.Command{
		Use:   use + " APPLICATION NAME",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			registry := client.Registry()

			device, err := registry.GetDevice(ctx, args[0], args[1])
			if err != nil {
				return fmtErr("get device", err)
			}

			if device == nil {
				return fmt.Errorf("%w: '%s/%s'", ErrDeviceNotFound, args[0], args[1])
			}

			err = loft.UpdateSection(device, func(core loft.DeviceSpecCore) loft.DeviceSpecCore {
				core.Disabled = !enable

				return core
			})
			if err != nil {
				return fmtErr("update device", err)
			}

			if err := registry.UpdateDevice(ctx, device); err != nil {
				return fmtErr("update device", err)
			}

			fmt.Printf("Device '%s/%s' %s\n", args[0], args[1], verb)

			return nil
		},
	}
}

func newDevicesSetPasswordCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "set-password APPLICATION NAME",
		Short: "Add a password credential to a device",
		Long: `Add a password credential to a device.

The password is read from the terminal. With --username the credential is
bound to that username, otherwise any username is accepted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			registry := client.Registry()

			device, err := registry.GetDevice(ctx, args[0], args[1])
			if err != nil {
				return fmtErr("get device", err)
			}

			if device == nil {
				return fmt.Errorf("%w: '%s/%s'", ErrDeviceNotFound, args[0], args[1])
			}

			fmt.Print("Password: ")

			raw, err := term.ReadPassword(int(syscall.Stdin))

			fmt.Println()

			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			password := loft.PlainPassword(string(raw))

			credential := loft.Credential{Password: &password}
			if username != "" {
				credential = loft.Credential{UsernamePassword: &loft.UsernamePassword{
					Username: username,
					Password: password,
				}}
			}

			if err := device.AddCredential(credential); err != nil {
				return fmtErr("update credentials", err)
			}

			if err := registry.UpdateDevice(ctx, device); err != nil {
				return fmtErr("update device", err)
			}

			fmt.Printf("Credential added to device '%s/%s'\n", args[0], args[1])

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "restrict the credential to this username")

	return cmd
}

func newDevicesAliasCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "alias APPLICATION NAME ALIAS [ALIAS...]",
		Short: "Add aliases to a device",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			registry := client.Registry()

			device, err := registry.GetDevice(ctx, args[0], args[1])
			if err != nil {
				return fmtErr("get device", err)
			}

			if device == nil {
				return fmt.Errorf("%w: '%s/%s'", ErrDeviceNotFound, args[0], args[1])
			}

			err = loft.UpdateSection(device, func(aliases loft.DeviceSpecAliases) loft.DeviceSpecAliases {
				for _, alias := range args[2:] {
					var known bool

					for _, existing := range aliases {
						if existing == alias {
							known = true

							break
						}
					}

					if !known {
						aliases = append(aliases, alias)
					}
				}

				return aliases
			})
			if err != nil {
				return fmtErr("update aliases", err)
			}

			if err := registry.UpdateDevice(ctx, device); err != nil {
				return fmtErr("update device", err)
			}

			fmt.Printf("Device '%s/%s' updated\n", args[0], args[1])

			return nil
		},
	}
}
