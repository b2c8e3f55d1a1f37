package loft

import (
	"encoding/json"
	"fmt"
	"time"
)

// Device is a resource scoped to an owning application.
type Device struct {
	Metadata ScopedMetadata `json:"metadata"         yaml:"metadata"`
	Spec     SectionMap     `json:"spec,omitempty"   yaml:"spec,omitempty"`
	Status   SectionMap     `json:"status,omitempty" yaml:"status,omitempty"`
}

// NewDevice creates a minimal device object from an application name and a
// device name.
func NewDevice(application, name string) *Device {
	return &Device{
		Metadata: ScopedMetadata{
			Application:       application,
			Name:              name,
			CreationTimestamp: time.Now().UTC(),
		},
	}
}

// SpecSection implements Translator.
func (d *Device) SpecSection() SectionMap {
	if d.Spec == nil {
		d.Spec = SectionMap{}
	}

	return d.Spec
}

// StatusSection implements Translator.
func (d *Device) StatusSection() SectionMap {
	if d.Status == nil {
		d.Status = SectionMap{}
	}

	return d.Status
}

// Validate reports whether the device may connect. A malformed core section
// fails validation; a missing one passes.
func (d *Device) Validate() bool {
	core, present, err := SectionOf[DeviceSpecCore](d)

	switch {
	case !present:
		return true
	case err != nil:
		return false
	default:
		return !core.Disabled
	}
}

// AddCredential appends a credential entry to the device credentials. If no
// credentials exist yet, the section is created; an undecodable existing
// section is returned as an error.
func (d *Device) AddCredential(credential Credential) error {
	return UpdateSection(d, func(credentials DeviceSpecCredentials) DeviceSpecCredentials {
		credentials.Credentials = append(credentials.Credentials, credential)

		return credentials
	})
}

// DeviceSpecCore is the core device configuration.
type DeviceSpecCore struct {
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// DialectKey implements Dialect.
func (DeviceSpecCore) DialectKey() (Section, string) {
	return SectionSpec, "core"
}

// DeviceEnabled extracts whether a device is enabled. A missing core
// section enables the device; a malformed one disables it.
var DeviceEnabled = Attribute[DeviceSpecCore, bool]{
	Extract: func(core DeviceSpecCore, present bool, err error) bool {
		switch {
		case !present:
			return true
		case err != nil:
			return false
		default:
			return !core.Disabled
		}
	},
}

// DeviceCommands extracts the configured command endpoints, empty when the
// section is absent or malformed.
var DeviceCommands = Attribute[DeviceSpecCommands, []Command]{
	Extract: func(commands DeviceSpecCommands, present bool, err error) []Command {
		if !present || err != nil {
			return nil
		}

		return commands.Commands
	},
}

// FirstDeviceCommand extracts the first configured command endpoint, if any.
var FirstDeviceCommand = Attribute[DeviceSpecCommands, *Command]{
	Extract: func(commands DeviceSpecCommands, present bool, err error) *Command {
		if !present || err != nil || len(commands.Commands) == 0 {
			return nil
		}

		return &commands.Commands[0]
	},
}

// DeviceSpecCredentials are the configured device credentials.
type DeviceSpecCredentials struct {
	Credentials []Credential `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// DialectKey implements Dialect.
func (DeviceSpecCredentials) DialectKey() (Section, string) {
	return SectionSpec, "credentials"
}

// Credential is a single credential entry. Exactly one variant is set; the
// JSON form is keyed by the active variant ("user", "pass" or "cert").
type Credential struct {
	UsernamePassword *UsernamePassword
	Password         *Password
	Certificate      string
}

// UsernamePassword is a username/password credential. Unique marks the
// username as unique across the application.
type UsernamePassword struct {
	Username string   `json:"username"         yaml:"username"`
	Password Password `json:"password"         yaml:"password"`
	Unique   bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
}

// MarshalJSON emits the active variant under its key.
func (c Credential) MarshalJSON() ([]byte, error) {
	switch {
	case c.UsernamePassword != nil:
		return json.Marshal(map[string]*UsernamePassword{"user": c.UsernamePassword})
	case c.Password != nil:
		return json.Marshal(map[string]*Password{"pass": c.Password})
	case c.Certificate != "":
		return json.Marshal(map[string]string{"cert": c.Certificate})
	default:
		return nil, fmt.Errorf("credential entry has no variant set")
	}
}

// UnmarshalJSON selects the variant by the present key.
func (c *Credential) UnmarshalJSON(data []byte) error {
	var variants struct {
		User *UsernamePassword `json:"user"`
		Pass *Password         `json:"pass"`
		Cert *string           `json:"cert"`
	}

	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}

	*c = Credential{}

	switch {
	case variants.User != nil:
		c.UsernamePassword = variants.User
	case variants.Pass != nil:
		c.Password = variants.Pass
	case variants.Cert != nil:
		c.Certificate = *variants.Cert
	default:
		return fmt.Errorf("credential entry has no known variant")
	}

	return nil
}

// PasswordScheme names the hashing scheme of a stored password.
type PasswordScheme string

// Supported password schemes.
const (
	PasswordPlain  PasswordScheme = "plain"
	PasswordBCrypt PasswordScheme = "bcrypt"
	PasswordSHA512 PasswordScheme = "sha512"
)

// Password is a password value together with its scheme. It decodes from
// either a bare string (legacy shorthand for a plain password) or the
// tagged object form `{"plain"|"bcrypt"|"sha512": "..."}`; it always
// encodes the tagged form.
type Password struct {
	Scheme PasswordScheme
	Value  string
}

// PlainPassword is a convenience constructor for a plain password.
func PlainPassword(value string) Password {
	return Password{Scheme: PasswordPlain, Value: value}
}

// String masks the password value.
func (p Password) String() string {
	return "..."
}

// MarshalJSON implements json.Marshaler.
func (p Password) MarshalJSON() ([]byte, error) {
	scheme := p.Scheme
	if scheme == "" {
		scheme = PasswordPlain
	}

	return json.Marshal(map[PasswordScheme]string{scheme: p.Value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Password) UnmarshalJSON(data []byte) error {
	var legacy string
	if err := json.Unmarshal(data, &legacy); err == nil {
		*p = Password{Scheme: PasswordPlain, Value: legacy}

		return nil
	}

	var tagged map[PasswordScheme]string
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}

	for scheme, value := range tagged {
		switch scheme {
		case PasswordPlain, PasswordBCrypt, PasswordSHA512:
			*p = Password{Scheme: scheme, Value: value}

			return nil
		default:
			return fmt.Errorf("unknown password scheme %q", scheme)
		}
	}

	return fmt.Errorf("expected exactly one password scheme")
}

// DeviceSpecGatewaySelector names the gateway devices allowed to act on
// behalf of this device.
type DeviceSpecGatewaySelector struct {
	MatchNames []string `json:"matchNames,omitempty" yaml:"matchNames,omitempty"`
}

// DialectKey implements Dialect.
func (DeviceSpecGatewaySelector) DialectKey() (Section, string) {
	return SectionSpec, "gatewaySelector"
}

// DeviceSpecCommands configures command delivery endpoints for a device.
type DeviceSpecCommands struct {
	Commands []Command `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// DialectKey implements Dialect.
func (DeviceSpecCommands) DialectKey() (Section, string) {
	return SectionSpec, "commands"
}

// Command is a command delivery target. Only the external variant exists
// today; the JSON form is keyed by the variant name.
type Command struct {
	External *ExternalCommandEndpoint
}

// ExternalCommandEndpoint delivers commands to an external HTTP endpoint.
type ExternalCommandEndpoint struct {
	Type    string            `json:"type,omitempty"    yaml:"type,omitempty"`
	URL     string            `json:"url"               yaml:"url"`
	Method  string            `json:"method,omitempty"  yaml:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// MarshalJSON emits the active variant under its key.
func (c Command) MarshalJSON() ([]byte, error) {
	if c.External == nil {
		return nil, fmt.Errorf("command entry has no variant set")
	}

	return json.Marshal(map[string]*ExternalCommandEndpoint{"external": c.External})
}

// UnmarshalJSON selects the variant by the present key.
func (c *Command) UnmarshalJSON(data []byte) error {
	var variants struct {
		External *ExternalCommandEndpoint `json:"external"`
	}

	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}

	if variants.External == nil {
		return fmt.Errorf("command entry has no known variant")
	}

	c.External = variants.External

	return nil
}

// DeviceSpecAliases is the list of alternate names of a device. It
// serializes as a bare JSON array rather than an object.
type DeviceSpecAliases []string

// DialectKey implements Dialect.
func (DeviceSpecAliases) DialectKey() (Section, string) {
	return SectionSpec, "alias"
}
