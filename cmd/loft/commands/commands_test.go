package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loft-iot/loft-client/cmd/loft/commands"
)

func TestNewAppsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewAppsCommand()
	assert.Equal(t, "apps", cmd.Use)
	assert.Equal(t, []string{"app", "applications"}, cmd.Aliases)
	assert.Equal(t, "Manage applications", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 5)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "label")
}

func TestAppsListCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewAppsCommand()
	cmd := findSubcommand(root, "list")
	assert.NotNil(t, cmd)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("label"))
	assert.NotNil(t, cmd.Flags().Lookup("limit"))
	assert.NotNil(t, cmd.Flags().Lookup("offset"))
}

func TestNewDevicesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewDevicesCommand()
	assert.Equal(t, "devices", cmd.Use)
	assert.Equal(t, []string{"device", "dev"}, cmd.Aliases)

	commandNames := make([]string, 0, len(cmd.Commands()))
	for _, subcmd := range cmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "delete")
	assert.Contains(t, commandNames, "enable")
	assert.Contains(t, commandNames, "disable")
	assert.Contains(t, commandNames, "set-password")
	assert.Contains(t, commandNames, "alias")
}

func TestDevicesCreateCommandFlags(t *testing.T) {
	t.Parallel()

	root := commands.NewDevicesCommand()
	cmd := findSubcommand(root, "create")
	assert.NotNil(t, cmd)

	assert.NotNil(t, cmd.Flags().Lookup("label"))
	assert.NotNil(t, cmd.Flags().Lookup("gateway"))
	assert.NotNil(t, cmd.Flags().Lookup("alias"))
}

func TestNewMembersCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewMembersCommand()
	assert.Equal(t, "members", cmd.Use)

	commandNames := make([]string, 0, len(cmd.Commands()))
	for _, subcmd := range cmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "add")
	assert.Contains(t, commandNames, "remove")
	assert.Contains(t, commandNames, "transfer")

	transfer := findSubcommand(cmd, "transfer")
	assert.NotNil(t, transfer)

	transferNames := make([]string, 0, len(transfer.Commands()))
	for _, subcmd := range transfer.Commands() {
		transferNames = append(transferNames, subcmd.Name())
	}

	assert.Contains(t, transferNames, "start")
	assert.Contains(t, transferNames, "cancel")
	assert.Contains(t, transferNames, "status")
	assert.Contains(t, transferNames, "accept")
}

func TestMembersAddDefaultRole(t *testing.T) {
	t.Parallel()

	root := commands.NewMembersCommand()
	cmd := findSubcommand(root, "add")
	assert.NotNil(t, cmd)

	roleFlag := cmd.Flags().Lookup("role")
	assert.NotNil(t, roleFlag)
	assert.Equal(t, "[reader]", roleFlag.DefValue)
}

func TestNewTokensCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewTokensCommand()
	assert.Equal(t, "tokens", cmd.Use)

	commandNames := make([]string, 0, len(cmd.Commands()))
	for _, subcmd := range cmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "create")
	assert.Contains(t, commandNames, "delete")
}

func TestNewPublishCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewPublishCommand()
	assert.Equal(t, "publish APPLICATION DEVICE COMMAND", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("payload"))
	assert.NotNil(t, cmd.Flags().Lookup("file"))
}

func TestPublishCommandPayloadConflict(t *testing.T) {
	t.Parallel()

	cmd := commands.NewPublishCommand()
	cmd.SetArgs([]string{"app1", "dev1", "set-state", "--payload", "{}", "--file", "payload.json"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, commands.ErrPayloadConflict)
}

func TestNewStreamCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewStreamCommand()
	assert.Equal(t, "stream APPLICATION", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("consumer"))
}

func TestNewVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewVersionCommand("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}
