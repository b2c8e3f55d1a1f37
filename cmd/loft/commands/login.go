package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/loft-iot/loft-client/pkg/loft"
	"github.com/loft-iot/loft-client/pkg/loftclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint string
		username    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a platform",
		Long: `Authenticate against a platform API endpoint with an access token.

The endpoint, user id, and token are verified and then persisted to the
configuration file for later commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				fmt.Print("API endpoint: ")

				line, _ := reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(line)
			}

			if apiEndpoint == "" {
				return ErrAPIEndpointRequired
			}

			if username == "" {
				fmt.Print("User id: ")

				line, _ := reader.ReadString('\n')
				username = strings.TrimSpace(line)
			}

			if username == "" {
				return ErrUsernameRequired
			}

			fmt.Print("Access token: ")

			raw, err := term.ReadPassword(int(syscall.Stdin))

			fmt.Println()

			if err != nil {
				return fmt.Errorf("failed to read access token: %w", err)
			}

			accessToken := strings.TrimSpace(string(raw))

			ctx := context.Background()

			client, err := loftclient.New(ctx, &loft.Config{
				APIEndpoint:   apiEndpoint,
				Username:      username,
				AccessToken:   accessToken,
				SkipTLSVerify: viper.GetBool("skip-tls-verify"),
			})
			if err != nil {
				return err
			}

			details, err := client.User().WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			viper.Set("api", apiEndpoint)
			viper.Set("username", username)
			viper.Set("access-token", accessToken)

			if err := saveConfig(); err != nil {
				return err
			}

			fmt.Printf("Logged in as '%s'\n", details.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "API endpoint URL")
	cmd.Flags().StringVar(&username, "user", "", "user id")

	return cmd
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Show the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := map[string]interface{}{
				"api":      viper.GetString("api"),
				"username": viper.GetString("username"),
				"output":   viper.GetString("output"),
			}

			if viper.GetString("access-token") != "" {
				settings["access-token"] = "***"
			}

			if viper.GetString("token") != "" {
				settings["token"] = "***"
			}

			if done, err := structuredOutput(settings); done {
				return err
			}

			return printYAML(settings)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], args[1])

			return saveConfig()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unset KEY",
		Short: "Remove a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], "")

			return saveConfig()
		},
	})

	return cmd
}

// saveConfig persists the current viper settings to the active config file,
// creating the default one when none is in use yet.
func saveConfig() error {
	if file := viper.ConfigFileUsed(); file != "" {
		if err := viper.WriteConfig(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	path := home + "/.loft/config.yml"
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
