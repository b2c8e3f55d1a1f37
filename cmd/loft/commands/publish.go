package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand() *cobra.Command {
	var (
		payload string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "publish APPLICATION DEVICE COMMAND",
		Short: "Send a command to a device",
		Long: `Send a one-way command to a device.

The payload may be given inline with --payload or read from a file with
--file. Without either, the command is sent without a payload.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if payload != "" && file != "" {
				return ErrPayloadConflict
			}

			body := []byte(payload)

			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("failed to read payload file: %w", err)
				}

				body = data
			}

			if len(body) == 0 {
				body = nil
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if err := client.Command().PublishCommand(ctx, args[0], args[1], args[2], body); err != nil {
				return fmtErr("publish command", err)
			}

			fmt.Printf("Command '%s' sent to device '%s/%s'\n", args[2], args[0], args[1])

			return nil
		},
	}

	cmd.Flags().StringVar(&payload, "payload", "", "inline command payload")
	cmd.Flags().StringVar(&file, "file", "", "file to read the command payload from")

	return cmd
}
