package loft

import (
	"encoding/json"
	"fmt"
)

// PublishSpec configures rule based processing of published events.
type PublishSpec struct {
	Rules []PublishRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// DialectKey implements Dialect.
func (PublishSpec) DialectKey() (Section, string) {
	return SectionSpec, "publish"
}

// PublishRule pairs a condition with the steps to run when it matches.
type PublishRule struct {
	When When   `json:"when,omitempty" yaml:"when,omitempty"`
	Then []Step `json:"then,omitempty" yaml:"then,omitempty"`
}

// When is the matching condition of a publish rule. The zero value matches
// always. The JSON form is the string "always" or an object keyed by the
// active variant ("isChannel", "not", "and", "or").
type When struct {
	IsChannel string
	Not       *When
	And       []When
	Or        []When
}

// IsAlways reports whether the condition matches unconditionally.
func (w When) IsAlways() bool {
	return w.IsChannel == "" && w.Not == nil && w.And == nil && w.Or == nil
}

// MarshalJSON implements json.Marshaler.
func (w When) MarshalJSON() ([]byte, error) {
	switch {
	case w.IsChannel != "":
		return json.Marshal(map[string]string{"isChannel": w.IsChannel})
	case w.Not != nil:
		return json.Marshal(map[string]*When{"not": w.Not})
	case w.And != nil:
		return json.Marshal(map[string][]When{"and": w.And})
	case w.Or != nil:
		return json.Marshal(map[string][]When{"or": w.Or})
	default:
		return json.Marshal("always")
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *When) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		if unit != "always" {
			return fmt.Errorf("unknown condition %q", unit)
		}

		*w = When{}

		return nil
	}

	var variants struct {
		IsChannel string `json:"isChannel"`
		Not       *When  `json:"not"`
		And       []When `json:"and"`
		Or        []When `json:"or"`
	}

	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}

	w.IsChannel = variants.IsChannel
	w.Not = variants.Not
	w.And = variants.And
	w.Or = variants.Or

	return nil
}

// Step is a single processing step of a publish rule. Exactly one field is
// active. Unit steps ("drop", "break") serialize as bare strings, the rest
// as objects keyed by the active variant.
type Step struct {
	// Drop the event.
	Drop bool
	// Break stops processing and accepts the event.
	Break bool
	// Reject the event with a reason.
	Reject string
	// SetAttribute replaces or adds an event attribute.
	SetAttribute *NameValue
	// RemoveAttribute removes an event attribute. Required attributes
	// must not be removed.
	RemoveAttribute string
	// SetExtension replaces or adds an extension.
	SetExtension *NameValue
	// RemoveExtension removes an extension.
	RemoveExtension string
}

// NameValue is a name/value pair used by attribute and extension steps.
type NameValue struct {
	Name  string `json:"name"  yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// MarshalJSON implements json.Marshaler.
func (s Step) MarshalJSON() ([]byte, error) {
	switch {
	case s.Drop:
		return json.Marshal("drop")
	case s.Break:
		return json.Marshal("break")
	case s.Reject != "":
		return json.Marshal(map[string]string{"reject": s.Reject})
	case s.SetAttribute != nil:
		return json.Marshal(map[string]*NameValue{"setAttribute": s.SetAttribute})
	case s.RemoveAttribute != "":
		return json.Marshal(map[string]string{"removeAttribute": s.RemoveAttribute})
	case s.SetExtension != nil:
		return json.Marshal(map[string]*NameValue{"setExtension": s.SetExtension})
	case s.RemoveExtension != "":
		return json.Marshal(map[string]string{"removeExtension": s.RemoveExtension})
	default:
		return json.Marshal("break")
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Step) UnmarshalJSON(data []byte) error {
	*s = Step{}

	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		switch unit {
		case "drop":
			s.Drop = true
		case "break":
			s.Break = true
		default:
			return fmt.Errorf("unknown step %q", unit)
		}

		return nil
	}

	var variants struct {
		Reject          string     `json:"reject"`
		SetAttribute    *NameValue `json:"setAttribute"`
		RemoveAttribute string     `json:"removeAttribute"`
		SetExtension    *NameValue `json:"setExtension"`
		RemoveExtension string     `json:"removeExtension"`
	}

	if err := json.Unmarshal(data, &variants); err != nil {
		return err
	}

	s.Reject = variants.Reject
	s.SetAttribute = variants.SetAttribute
	s.RemoveAttribute = variants.RemoveAttribute
	s.SetExtension = variants.SetExtension
	s.RemoveExtension = variants.RemoveExtension

	return nil
}
