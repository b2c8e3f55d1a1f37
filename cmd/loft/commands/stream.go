package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// NewStreamCommand creates the stream command.
func NewStreamCommand() *cobra.Command {
	var consumer string

	cmd := &cobra.Command{
		Use:   "stream APPLICATION",
		Short: "Stream device events",
		Long: `Stream the events of an application to stdout, one JSON document per
line, until interrupted.

With --consumer, multiple invocations share a consumer group and split the
event stream between them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			stream, err := client.Events().Stream(ctx, args[0], &loft.StreamOptions{
				Consumer: consumer,
			})
			if err != nil {
				return fmtErr("open event stream", err)
			}

			defer func() { _ = stream.Close() }()

			encoder := json.NewEncoder(os.Stdout)

			for {
				event, err := stream.Next(ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) || errors.Is(err, loft.ErrStreamClosed) {
						return nil
					}

					return fmt.Errorf("event stream failed: %w", err)
				}

				if err := encoder.Encode(event); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().StringVar(&consumer, "consumer", "", "shared consumer group name")

	return cmd
}
