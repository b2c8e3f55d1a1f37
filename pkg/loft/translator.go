package loft

import (
	"encoding/json"
	"fmt"
)

// Section identifies one of the two generic maps carried by every resource.
type Section string

const (
	// SectionSpec is the desired-state section of a resource.
	SectionSpec Section = "spec"
	// SectionStatus is the observed-state section of a resource.
	SectionStatus Section = "status"
)

// SectionMap is a string-keyed store of raw JSON values. The map as a whole
// is untyped; only individual keys carry a declared type (a Dialect).
// Multiple independent dialects coexist in the same map under distinct keys.
type SectionMap map[string]json.RawMessage

// Dialect is implemented by types that live under a well-known key inside a
// resource's spec or status map. The declaration must not depend on the
// receiver value; it is queried on the zero value.
type Dialect interface {
	DialectKey() (Section, string)
}

// Translator is implemented by resource types (Application, Device) that
// carry the two generic sections. Both accessors return a mutable map and
// must lazily initialize it, so that write operations work on fresh
// resources.
type Translator interface {
	SpecSection() SectionMap
	StatusSection() SectionMap
}

// SectionError describes a failure to decode or encode a named section.
type SectionError struct {
	Section Section
	Key     string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s/%s: %v", e.Section, e.Key, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

func sectionMapOf(tr Translator, section Section) SectionMap {
	if section == SectionStatus {
		return tr.StatusSection()
	}

	return tr.SpecSection()
}

// SectionOf looks up D's declared key in D's declared section and attempts a
// typed decode. The three outcomes are kept distinct:
//   - (zero, false, nil): the key is absent - the section was never set
//   - (zero, true, err):  the key is present but does not decode as D
//   - (value, true, nil): the key is present and decodes successfully
//
// Callers must not conflate "never configured" with "configured but
// malformed"; validation and migration logic depends on the difference.
func SectionOf[D Dialect](tr Translator) (D, bool, error) {
	var dialect D

	section, key := dialect.DialectKey()

	return rawLookup[D](sectionMapOf(tr, section), section, key)
}

// SetSection encodes value and inserts or overwrites it at D's declared key.
// Encoding failures are surfaced, never swallowed.
func SetSection[D Dialect](tr Translator, value D) error {
	section, key := value.DialectKey()

	data, err := json.Marshal(value)
	if err != nil {
		return &SectionError{Section: section, Key: key, Err: err}
	}

	sectionMapOf(tr, section)[key] = data

	return nil
}

// UpdateSection applies f to the current decoded value of D's section and
// stores the result. An absent section starts from D's zero value; a present
// but malformed section short-circuits with the decode error without
// invoking f.
func UpdateSection[D Dialect](tr Translator, f func(D) D) error {
	value, _, err := SectionOf[D](tr)
	if err != nil {
		return err
	}

	return SetSection(tr, f(value))
}

// ClearSection removes the entry at D's declared key. Clearing an absent
// section is a no-op.
func ClearSection[D Dialect](tr Translator) {
	var dialect D

	section, key := dialect.DialectKey()
	delete(sectionMapOf(tr, section), key)
}

// SpecFor performs the same three-way lookup as SectionOf, but against an
// explicit runtime key in the spec section, bypassing any Dialect
// declaration. Used for ad hoc lookups.
func SpecFor[T any](tr Translator, key string) (T, bool, error) {
	return rawLookup[T](tr.SpecSection(), SectionSpec, key)
}

// StatusFor is SpecFor against the status section.
func StatusFor[T any](tr Translator, key string) (T, bool, error) {
	return rawLookup[T](tr.StatusSection(), SectionStatus, key)
}

func rawLookup[T any](m SectionMap, section Section, key string) (T, bool, error) {
	var value T

	raw, ok := m[key]
	if !ok {
		return value, false, nil
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		var zero T

		return zero, true, &SectionError{Section: section, Key: key, Err: err}
	}

	return value, true, nil
}

// Attribute derives a single value from a dialect's lookup outcome. Extract
// is total: it receives all three outcomes (absent, malformed, decoded) and
// must supply its own default policy for the first two. The policy is local
// to the attribute, not a translator default.
type Attribute[D Dialect, O any] struct {
	Extract func(value D, present bool, err error) O
}

// Of fetches D's section from tr and feeds the outcome to Extract.
func (a Attribute[D, O]) Of(tr Translator) O {
	value, present, err := SectionOf[D](tr)

	return a.Extract(value, present, err)
}
