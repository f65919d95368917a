// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// AxisBindings maps symbolic axis names (e.g. "batch") to concrete dimensions.
//
// It is used to "freeze" dynamic axes of a model's inputs before partitioning, since
// accelerators that compile graphs ahead of time only accept static shapes.
type AxisBindings map[string]int

// ParseAxisBindings parses a comma-separated list of "name=value" pairs, e.g. "batch=1,seq=128".
// An empty string returns empty bindings.
func ParseAxisBindings(text string) (AxisBindings, error) {
	bindings := make(AxisBindings)
	text = strings.TrimSpace(text)
	if text == "" {
		return bindings, nil
	}
	for _, part := range strings.Split(text, ",") {
		name, valueStr, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found || name == "" {
			return nil, errors.Errorf("invalid axis binding %q, expected \"name=value\"", part)
		}
		value, err := strconv.Atoi(valueStr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value for axis %q", name)
		}
		if value < 0 {
			return nil, errors.Errorf("axis %q bound to negative dimension %d", name, value)
		}
		if err := bindings.Merge(AxisBindings{name: value}); err != nil {
			return nil, err
		}
	}
	return bindings, nil
}

// Key returns a canonical string representation: "name1=val1,name2=val2" with names sorted.
// Returns an empty string for empty or nil bindings.
func (ab AxisBindings) Key() string {
	if len(ab) == 0 {
		return ""
	}
	names := make([]string, 0, len(ab))
	for name := range ab {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, ab[name])
	}
	return strings.Join(parts, ",")
}

// Merge combines bindings from other into ab.
// Returns an error if there are conflicting values for the same axis name.
func (ab AxisBindings) Merge(other AxisBindings) error {
	for name, val := range other {
		if existing, ok := ab[name]; ok && existing != val {
			return errors.Errorf("conflicting values for axis %q: %d vs %d", name, existing, val)
		}
		ab[name] = val
	}
	return nil
}

// Resolve replaces named dynamic axes with their bound values.
// Named axes without a binding remain dynamic, static axes are unchanged.
func (s Shape) Resolve(bindings AxisBindings) Shape {
	result := s.Clone()
	if !s.HasNamedAxes() || len(bindings) == 0 {
		return result
	}
	for axis, name := range s.AxisNames {
		if name == "" {
			continue
		}
		if val, ok := bindings[name]; ok {
			result.Dimensions[axis] = val
			result.AxisNames[axis] = ""
		}
	}
	if !result.HasNamedAxes() {
		result.AxisNames = nil
	}
	return result
}
