package loft

import (
	"encoding/json"
	"time"
)

// Condition status values. Status is string-valued rather than boolean so
// that future values can be added without breaking older readers.
const (
	ConditionTrue    = "True"
	ConditionFalse   = "False"
	ConditionUnknown = "Unknown"
)

// ConditionReady is the aggregate condition derived from all others.
const ConditionReady = "Ready"

// ReasonNonReadyConditions is set on the Ready condition when at least one
// other condition is not "True".
const ReasonNonReadyConditions = "NonReadyConditions"

// Condition is a single named, timestamped status entry.
type Condition struct {
	Type               string    `json:"type"              yaml:"type"`
	Status             string    `json:"status"            yaml:"status"`
	Reason             string    `json:"reason,omitempty"  yaml:"reason,omitempty"`
	Message            string    `json:"message,omitempty" yaml:"message,omitempty"`
	LastTransitionTime time.Time `json:"lastTransitionTime" yaml:"lastTransitionTime"`
}

// UnmarshalJSON defaults an absent status to "Unknown".
func (c *Condition) UnmarshalJSON(data []byte) error {
	type condition Condition

	decoded := condition{Status: ConditionUnknown}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	*c = Condition(decoded)

	return nil
}

// Conditions is the ordered set of conditions of a resource. It is a status
// dialect shared by all resource kinds.
type Conditions []Condition

// DialectKey implements Dialect.
func (Conditions) DialectKey() (Section, string) {
	return SectionStatus, "conditions"
}

// ConditionStatus is the update payload for a single condition. A nil
// Status maps to "Unknown".
type ConditionStatus struct {
	Status  *bool
	Reason  string
	Message string
}

func makeStatus(status *bool) string {
	switch {
	case status == nil:
		return ConditionUnknown
	case *status:
		return ConditionTrue
	default:
		return ConditionFalse
	}
}

// Bool returns a pointer suitable for ConditionStatus.Status.
func Bool(v bool) *bool {
	return &v
}

// Update sets the condition named by conditionType. The transition time is
// only bumped when the status string actually changes; reason and message
// are overwritten unconditionally. Unknown types are appended.
func (c *Conditions) Update(conditionType string, status ConditionStatus) {
	strStatus := makeStatus(status.Status)

	for i := range *c {
		condition := &(*c)[i]
		if condition.Type != conditionType {
			continue
		}

		if condition.Status != strStatus {
			condition.Status = strStatus
			condition.LastTransitionTime = time.Now().UTC()
		}

		condition.Reason = status.Reason
		condition.Message = status.Message

		return
	}

	*c = append(*c, Condition{
		Type:               conditionType,
		Status:             strStatus,
		Reason:             status.Reason,
		Message:            status.Message,
		LastTransitionTime: time.Now().UTC(),
	})
}

// AggregateReady recomputes the Ready condition from all other conditions:
// Ready is "True" exactly when every other condition's status is "True".
// The Ready condition itself is excluded from its own input.
func (c *Conditions) AggregateReady() {
	ready := true

	for _, condition := range *c {
		if condition.Type == ConditionReady {
			continue
		}

		if condition.Status != ConditionTrue {
			ready = false

			break
		}
	}

	if ready {
		c.Update(ConditionReady, ConditionStatus{Status: Bool(true)})
	} else {
		c.Update(ConditionReady, ConditionStatus{
			Status: Bool(false),
			Reason: ReasonNonReadyConditions,
		})
	}
}

// ClearReady removes the named condition and re-aggregates the Ready
// condition. Used when a sub-reconciler reports that its watched condition
// no longer applies.
func (c *Conditions) ClearReady(conditionType string) {
	kept := (*c)[:0]

	for _, condition := range *c {
		if condition.Type == conditionType {
			continue
		}

		kept = append(kept, condition)
	}

	*c = kept
	c.AggregateReady()
}
