// Package metrics accumulates named benchmark measurements for a run.
//
// The Map is a leaf aggregate owned by the console driver: only the event
// dispatcher mutates it, so it carries no locking. Iteration order is
// ascending by name, which keeps formatter output stable across runs.
package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// Metric is one named measurement.
//
// Noise indicates the uncertainty of the value and doubles as the
// acceptable regression range when comparing runs: positive noise means the
// value should shrink, negative noise means it should grow.
type Metric struct {
	Value float64
	Noise float64
}

// Map is an ordered map from metric name to Metric.
type Map struct {
	values map[string]Metric
}

// NewMap returns an empty metric map.
func NewMap() *Map {
	return &Map{values: make(map[string]Metric)}
}

// Insert records a named value (+/- noise), replacing any previous entry.
func (m *Map) Insert(name string, value, noise float64) {
	m.values[name] = Metric{Value: value, Noise: noise}
}

// Get returns the metric for name and whether it exists.
func (m *Map) Get(name string) (Metric, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Len returns the number of recorded metrics.
func (m *Map) Len() int {
	return len(m.values)
}

// Names returns the metric names in ascending order.
func (m *Map) Names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders "name: value (+/- noise)" entries joined by ", ", in name
// order.
func (m *Map) String() string {
	parts := make([]string, 0, len(m.values))
	for _, name := range m.Names() {
		v := m.values[name]
		parts = append(parts, fmt.Sprintf("%s: %v (+/- %v)", name, v.Value, v.Noise))
	}
	return strings.Join(parts, ", ")
}
