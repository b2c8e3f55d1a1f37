package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/loft-iot/loft-client/pkg/loft"
	"github.com/loft-iot/loft-client/pkg/loftclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// Common static errors used throughout the commands package.
var (
	ErrApplicationNotFound     = errors.New("application not found")
	ErrDeviceNotFound          = errors.New("device not found")
	ErrApplicationNameRequired = errors.New("application name is required")
	ErrDeviceNameRequired      = errors.New("device name is required")
	ErrAPIEndpointRequired     = errors.New("API endpoint is required, use --api or 'loft login'")
	ErrUsernameRequired        = errors.New("username is required")
	ErrPayloadConflict         = errors.New("only one of --payload and --file may be given")
	ErrNoOwnershipTransfer     = errors.New("no pending ownership transfer")
	ErrInvalidLabelFormat      = errors.New("invalid label, expected key=value")
)

// createClient builds an API client from the persisted configuration and
// any flag overrides bound into viper.
func createClient(ctx context.Context) (loft.Client, error) {
	api := viper.GetString("api")
	if api == "" {
		return nil, ErrAPIEndpointRequired
	}

	config := &loft.Config{
		APIEndpoint:   api,
		Token:         viper.GetString("token"),
		AccessToken:   viper.GetString("access-token"),
		Username:      viper.GetString("username"),
		SkipTLSVerify: viper.GetBool("skip-tls-verify"),
		Debug:         viper.GetBool("verbose"),
	}

	return loftclient.New(ctx, config)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// printYAML writes v to stdout as YAML.
func printYAML(v interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer func() { _ = encoder.Close() }()

	return encoder.Encode(v)
}

// structuredOutput renders v as JSON or YAML when the configured output
// format asks for one, and reports whether it did.
func structuredOutput(v interface{}) (bool, error) {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return true, printJSON(v)
	case OutputFormatYAML:
		return true, printYAML(v)
	default:
		return false, nil
	}
}

// formatTime renders an optional timestamp for table output.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotAvailable
	}

	return t.Format(time.RFC3339)
}

// readyCondition extracts the Ready condition from a status section for
// table output, tolerating malformed or absent sections.
func readyCondition(tr loft.Translator) string {
	conditions, found, err := loft.SectionOf[loft.Conditions](tr)
	if err != nil || !found {
		return NotAvailable
	}

	for _, condition := range conditions {
		if condition.Type == loft.ConditionReady {
			return condition.Status
		}
	}

	return NotAvailable
}

// fmtErr wraps an error with a command-specific action description.
func fmtErr(action string, err error) error {
	return fmt.Errorf("failed to %s: %w", action, err)
}

// splitLabel parses a KEY=VALUE argument.
func splitLabel(pair string) (string, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("%w: '%s'", ErrInvalidLabelFormat, pair)
	}

	return key, value, nil
}
