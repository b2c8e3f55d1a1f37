package loft

import (
	"encoding/json"
	"time"
)

// Application is a top-level resource owning devices. Spec and status are
// generic section maps; typed access goes through the Translator functions.
type Application struct {
	Metadata NonScopedMetadata `json:"metadata"         yaml:"metadata"`
	Spec     SectionMap        `json:"spec,omitempty"   yaml:"spec,omitempty"`
	Status   SectionMap        `json:"status,omitempty" yaml:"status,omitempty"`
}

// NewApplication creates a minimal application object from a name.
func NewApplication(name string) *Application {
	return &Application{
		Metadata: NonScopedMetadata{
			Name:              name,
			CreationTimestamp: time.Now().UTC(),
		},
	}
}

// SpecSection implements Translator.
func (a *Application) SpecSection() SectionMap {
	if a.Spec == nil {
		a.Spec = SectionMap{}
	}

	return a.Spec
}

// StatusSection implements Translator.
func (a *Application) StatusSection() SectionMap {
	if a.Status == nil {
		a.Status = SectionMap{}
	}

	return a.Status
}

// ApplicationSpecTrustAnchors is the application's trust-anchors.
type ApplicationSpecTrustAnchors struct {
	Anchors []ApplicationSpecTrustAnchorEntry `json:"anchors,omitempty" yaml:"anchors,omitempty"`
}

// DialectKey implements Dialect.
func (ApplicationSpecTrustAnchors) DialectKey() (Section, string) {
	return SectionSpec, "trustAnchors"
}

// ApplicationSpecTrustAnchorEntry is a single trust-anchor entry. The
// certificate serializes as standard base64.
type ApplicationSpecTrustAnchorEntry struct {
	Certificate []byte `json:"certificate" yaml:"certificate"`
}

// ApplicationStatusTrustAnchors is the observed state of the trust-anchors.
type ApplicationStatusTrustAnchors struct {
	Anchors []ApplicationStatusTrustAnchorEntry `json:"anchors" yaml:"anchors"`
}

// DialectKey implements Dialect.
func (ApplicationStatusTrustAnchors) DialectKey() (Section, string) {
	return SectionStatus, "trustAnchors"
}

// ApplicationStatusTrustAnchorEntry is the evaluation result for one anchor.
// Exactly one of Valid or Invalid is set; the JSON form is keyed by the
// active variant ("valid" or "invalid").
type ApplicationStatusTrustAnchorEntry struct {
	Valid   *ValidTrustAnchor
	Invalid *InvalidTrustAnchor
}

// ValidTrustAnchor describes an accepted trust anchor.
type ValidTrustAnchor struct {
	Subject     string    `json:"subject"     yaml:"subject"`
	Certificate []byte    `json:"certificate" yaml:"certificate"`
	NotBefore   time.Time `json:"notBefore"   yaml:"notBefore"`
	NotAfter    time.Time `json:"notAfter"    yaml:"notAfter"`
}

// InvalidTrustAnchor describes a rejected trust anchor.
type InvalidTrustAnchor struct {
	Error   string `json:"error"   yaml:"error"`
	Message string `json:"message" yaml:"message"`
}

// MarshalJSON emits the active variant under its key.
func (e ApplicationStatusTrustAnchorEntry) MarshalJSON() ([]byte, error) {
	switch {
	case e.Valid != nil:
		return json.Marshal(map[string]*ValidTrustAnchor{"valid": e.Valid})
	case e.Invalid != nil:
		return json.Marshal(map[string]*InvalidTrustAnchor{"invalid": e.Invalid})
	default:
		return []byte("{}"), nil
	}
}

// UnmarshalJSON selects the variant by the present key.
func (e *ApplicationStatusTrustAnchorEntry) UnmarshalJSON(data []byte) error {
	var variants struct {
		Valid   *ValidTrustAnchor   `json:"valid"`
		Invalid *InvalidTrustAnchor `json:"invalid"`
	}

	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}

	e.Valid = variants.Valid
	e.Invalid = variants.Invalid

	return nil
}

// DownstreamSpec selects the downstream target for device-to-cloud events.
// A nil ExternalKafka means the internally managed downstream. The JSON form
// is keyed by the active variant: `{"externalKafka": {...}}` or `{}` for
// internal; unknown keys decode as internal rather than erroring.
type DownstreamSpec struct {
	ExternalKafka *ExternalKafkaSpec
}

// DialectKey implements Dialect.
func (DownstreamSpec) DialectKey() (Section, string) {
	return SectionSpec, "downstream"
}

// IsInternal reports whether the internally managed downstream is selected.
func (s DownstreamSpec) IsInternal() bool {
	return s.ExternalKafka == nil
}

// MarshalJSON emits only the active variant's key. The internal variant
// serializes as an empty object.
func (s DownstreamSpec) MarshalJSON() ([]byte, error) {
	if s.ExternalKafka != nil {
		return json.Marshal(map[string]*ExternalKafkaSpec{"externalKafka": s.ExternalKafka})
	}

	return []byte("{}"), nil
}

// UnmarshalJSON inspects the keys of the section object: a known key selects
// its variant, anything else falls back to the internal variant.
func (s *DownstreamSpec) UnmarshalJSON(data []byte) error {
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}

	if raw, ok := keyed["externalKafka"]; ok {
		var kafka ExternalKafkaSpec
		if err := json.Unmarshal(raw, &kafka); err != nil {
			return err
		}

		s.ExternalKafka = &kafka

		return nil
	}

	s.ExternalKafka = nil

	return nil
}

// ExternalKafkaSpec is the downstream specification when using externally
// provided Kafka.
type ExternalKafkaSpec struct {
	BootstrapServers string            `json:"bootstrapServers"     yaml:"bootstrapServers"`
	Topic            string            `json:"topic"                yaml:"topic"`
	Properties       map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// KafkaAppStatus is the observed Kafka state of an application.
type KafkaAppStatus struct {
	ObservedGeneration uint64     `json:"observedGeneration"   yaml:"observedGeneration"`
	Conditions         Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	// Downstream optionally redirects device-to-cloud events to an
	// alternate Kafka target. If provided, it must contain both the
	// servers and the topic.
	Downstream *KafkaDownstreamStatus `json:"downstream,omitempty" yaml:"downstream,omitempty"`
	User       *KafkaUserStatus       `json:"user,omitempty"       yaml:"user,omitempty"`
}

// DialectKey implements Dialect.
func (KafkaAppStatus) DialectKey() (Section, string) {
	return SectionStatus, "kafka"
}

// KafkaDownstreamStatus names the effective downstream Kafka target.
type KafkaDownstreamStatus struct {
	Topic            string            `json:"topic,omitempty"            yaml:"topic,omitempty"`
	BootstrapServers string            `json:"bootstrapServers,omitempty" yaml:"bootstrapServers,omitempty"`
	Properties       map[string]string `json:"properties,omitempty"       yaml:"properties,omitempty"`
}

// KafkaUserStatus carries the credentials provisioned for the application.
type KafkaUserStatus struct {
	Username  string `json:"username"  yaml:"username"`
	Password  string `json:"password"  yaml:"password"`
	Mechanism string `json:"mechanism" yaml:"mechanism"`
}

// KnativeAppSpec configures event delivery to a Knative endpoint.
type KnativeAppSpec struct {
	Disabled bool             `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Endpoint ExternalEndpoint `json:"endpoint"           yaml:"endpoint"`
}

// DialectKey implements Dialect.
func (KnativeAppSpec) DialectKey() (Section, string) {
	return SectionSpec, "knative"
}

// KnativeAppStatus is the observed Knative delivery state.
type KnativeAppStatus struct {
	ObservedGeneration uint64     `json:"observedGeneration"   yaml:"observedGeneration"`
	Conditions         Conditions `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// DialectKey implements Dialect.
func (KnativeAppStatus) DialectKey() (Section, string) {
	return SectionStatus, "knative"
}
