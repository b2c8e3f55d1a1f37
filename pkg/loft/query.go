package loft

import (
	"net/url"
	"strconv"
	"strings"
)

// ListOptions narrow down list operations on the registry.
type ListOptions struct {
	// Labels are label selector expressions, for example "zone=eu1" or
	// "floor". All expressions must match.
	Labels []string
	// Limit caps the number of returned entries, zero means no limit.
	Limit uint
	// Offset skips the given number of entries.
	Offset uint
}

// NewListOptions creates empty list options.
func NewListOptions() *ListOptions {
	return &ListOptions{}
}

// WithLabels appends label selector expressions.
func (o *ListOptions) WithLabels(labels ...string) *ListOptions {
	o.Labels = append(o.Labels, labels...)

	return o
}

// WithLimit sets the result limit.
func (o *ListOptions) WithLimit(limit uint) *ListOptions {
	o.Limit = limit

	return o
}

// WithOffset sets the result offset.
func (o *ListOptions) WithOffset(offset uint) *ListOptions {
	o.Offset = offset

	return o
}

// ToValues converts the options to URL query parameters.
func (o *ListOptions) ToValues() url.Values {
	values := url.Values{}

	if o == nil {
		return values
	}

	if len(o.Labels) > 0 {
		values.Set("labels", strings.Join(o.Labels, ","))
	}

	if o.Limit > 0 {
		values.Set("limit", strconv.FormatUint(uint64(o.Limit), 10))
	}

	if o.Offset > 0 {
		values.Set("offset", strconv.FormatUint(uint64(o.Offset), 10))
	}

	return values
}
