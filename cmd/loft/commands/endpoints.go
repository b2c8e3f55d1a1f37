package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/loft-iot/loft-client/pkg/loft"
)

// NewEndpointsCommand creates the endpoints command.
func NewEndpointsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoints",
		Short: "Show platform endpoints",
		Long:  "Show the public endpoints and version of the targeted platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			endpoints, err := client.Discovery().Endpoints(ctx)
			if err != nil {
				return fmtErr("discover endpoints", err)
			}

			if done, err := structuredOutput(endpoints); done {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Service", "Endpoint")

			appendHTTP := func(name string, endpoint *loft.HTTPEndpoint) {
				if endpoint != nil {
					_ = table.Append(name, endpoint.URL)
				}
			}
			appendMQTT := func(name string, endpoint *loft.MQTTEndpoint) {
				if endpoint != nil {
					_ = table.Append(name, endpoint.Host+":"+strconv.Itoa(int(endpoint.Port)))
				}
			}

			appendHTTP("API", endpoints.API)
			appendHTTP("Console", endpoints.Console)

			if endpoints.SSO != "" {
				_ = table.Append("SSO", endpoints.SSO)
			}

			if endpoints.Registry != nil {
				_ = table.Append("Registry", endpoints.Registry.URL)
			}

			if endpoints.CommandURL != "" {
				_ = table.Append("Command", endpoints.CommandURL)
			}

			appendHTTP("HTTP", endpoints.HTTP)
			appendMQTT("MQTT", endpoints.MQTT)
			appendMQTT("MQTT integration", endpoints.MQTTIntegration)
			appendHTTP("MQTT over WS", endpoints.MQTTWS)
			appendHTTP("Websocket", endpoints.Websocket)

			if endpoints.CoAP != nil {
				_ = table.Append("CoAP", endpoints.CoAP.URL)
			}

			if endpoints.Kafka != nil {
				_ = table.Append("Kafka", endpoints.Kafka.BootstrapServers)
			}

			if err := table.Render(); err != nil {
				return err
			}

			if version, err := client.Discovery().Version(ctx); err == nil && version.Success {
				fmt.Printf("\nPlatform version: %s\n", version.Version)
			}

			return nil
		},
	}
}
