package loft

import (
	"encoding/json"
	"time"
)

// NonScopedMetadata identifies a top-level resource such as an application.
type NonScopedMetadata struct {
	// Name is the unique name of this resource.
	Name string `json:"name"                        yaml:"name"`
	UID  string `json:"uid,omitempty"               yaml:"uid,omitempty"`

	CreationTimestamp time.Time `json:"creationTimestamp"           yaml:"creationTimestamp"`
	// Generation increments with each change. The increment between two
	// versions may be one, or greater than one.
	Generation        uint64     `json:"generation"                  yaml:"generation"`
	ResourceVersion   string     `json:"resourceVersion,omitempty"   yaml:"resourceVersion,omitempty"`
	DeletionTimestamp *time.Time `json:"deletionTimestamp,omitempty" yaml:"deletionTimestamp,omitempty"`
	Finalizers        []string   `json:"finalizers,omitempty"        yaml:"finalizers,omitempty"`

	Labels      map[string]string `json:"labels,omitempty"      yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// ScopedMetadata identifies a resource owned by an application, such as a
// device. It is NonScopedMetadata plus the owning application reference.
type ScopedMetadata struct {
	// Application is the application this resource is scoped by.
	Application string `json:"application"                 yaml:"application"`
	// Name is the unique name of this resource within its application.
	Name string `json:"name"                        yaml:"name"`
	UID  string `json:"uid,omitempty"               yaml:"uid,omitempty"`

	CreationTimestamp time.Time  `json:"creationTimestamp"           yaml:"creationTimestamp"`
	Generation        uint64     `json:"generation"                  yaml:"generation"`
	ResourceVersion   string     `json:"resourceVersion,omitempty"   yaml:"resourceVersion,omitempty"`
	DeletionTimestamp *time.Time `json:"deletionTimestamp,omitempty" yaml:"deletionTimestamp,omitempty"`
	Finalizers        []string   `json:"finalizers,omitempty"        yaml:"finalizers,omitempty"`

	Labels      map[string]string `json:"labels,omitempty"      yaml:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

// UnmarshalJSON defaults an absent creation timestamp to the Unix epoch.
func (m *NonScopedMetadata) UnmarshalJSON(data []byte) error {
	type metadata NonScopedMetadata

	var decoded metadata
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	if decoded.CreationTimestamp.IsZero() {
		decoded.CreationTimestamp = time.Unix(0, 0).UTC()
	}

	*m = NonScopedMetadata(decoded)

	return nil
}

// UnmarshalJSON defaults an absent creation timestamp to the Unix epoch.
func (m *ScopedMetadata) UnmarshalJSON(data []byte) error {
	type metadata ScopedMetadata

	var decoded metadata
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	if decoded.CreationTimestamp.IsZero() {
		decoded.CreationTimestamp = time.Unix(0, 0).UTC()
	}

	*m = ScopedMetadata(decoded)

	return nil
}

// EnsureFinalizer adds the finalizer if it is not present. It reports true
// when the list changed and the resource must be stored.
func (m *NonScopedMetadata) EnsureFinalizer(finalizer string) bool {
	var added bool

	m.Finalizers, added = ensureFinalizer(m.Finalizers, finalizer)

	return added
}

// RemoveFinalizer removes the finalizer from the list. It reports true when
// the finalizer was present before.
func (m *NonScopedMetadata) RemoveFinalizer(finalizer string) bool {
	var found bool

	m.Finalizers, found = removeFinalizer(m.Finalizers, finalizer)

	return found
}

// EnsureFinalizer adds the finalizer if it is not present. It reports true
// when the list changed and the resource must be stored.
func (m *ScopedMetadata) EnsureFinalizer(finalizer string) bool {
	var added bool

	m.Finalizers, added = ensureFinalizer(m.Finalizers, finalizer)

	return added
}

// RemoveFinalizer removes the finalizer from the list. It reports true when
// the finalizer was present before.
func (m *ScopedMetadata) RemoveFinalizer(finalizer string) bool {
	var found bool

	m.Finalizers, found = removeFinalizer(m.Finalizers, finalizer)

	return found
}

// HasLabel reports whether the label key is present.
func (m *NonScopedMetadata) HasLabel(label string) bool {
	_, ok := m.Labels[label]

	return ok
}

// HasLabelFlag reports whether the label is present and set to "true".
func (m *NonScopedMetadata) HasLabelFlag(label string) bool {
	return isTrue(m.Labels[label])
}

// HasLabel reports whether the label key is present.
func (m *ScopedMetadata) HasLabel(label string) bool {
	_, ok := m.Labels[label]

	return ok
}

// HasLabelFlag reports whether the label is present and set to "true".
func (m *ScopedMetadata) HasLabelFlag(label string) bool {
	return isTrue(m.Labels[label])
}

func ensureFinalizer(finalizers []string, finalizer string) ([]string, bool) {
	for _, f := range finalizers {
		if f == finalizer {
			return finalizers, false
		}
	}

	return append(finalizers, finalizer), true
}

func removeFinalizer(finalizers []string, finalizer string) ([]string, bool) {
	found := false
	kept := finalizers[:0]

	for _, f := range finalizers {
		if f == finalizer {
			found = true

			continue
		}

		kept = append(kept, f)
	}

	return kept, found
}

func isTrue(value string) bool {
	return value == "true" || value == "True" || value == "TRUE"
}
