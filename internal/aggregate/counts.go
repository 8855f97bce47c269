// Package aggregate folds classified permits into the count, sum and
// time-bucketed tables the dashboards consume. Tables are recomputed on every
// request and never persisted.
package aggregate

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Counts is a string-keyed tally. It marshals as a JSON object whose keys are
// in display order: count descending (ties keep first-seen order), or key
// ascending for keyed tallies such as years.
type Counts struct {
	keys   []string
	values map[string]int
	byKey  bool
}

// NewCounts returns a tally ordered by count.
func NewCounts() *Counts {
	return &Counts{values: make(map[string]int)}
}

// NewKeyedCounts returns a tally ordered by key.
func NewKeyedCounts() *Counts {
	return &Counts{values: make(map[string]int), byKey: true}
}

// Add adds n to key.
func (c *Counts) Add(key string, n int) {
	if _, seen := c.values[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.values[key] += n
}

// Inc adds one to key.
func (c *Counts) Inc(key string) { c.Add(key, 1) }

// Get returns the tally for key.
func (c *Counts) Get(key string) int { return c.values[key] }

// Len returns the number of distinct keys.
func (c *Counts) Len() int { return len(c.keys) }

// Keys returns keys in display order.
func (c *Counts) Keys() []string {
	keys := append([]string(nil), c.keys...)
	if c.byKey {
		sort.Strings(keys)
		return keys
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return c.values[keys[i]] > c.values[keys[j]]
	})
	return keys
}

// Map returns a copy of the tally.
func (c *Counts) Map() map[string]int {
	out := make(map[string]int, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (c *Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.values[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Timeline is a chronologically sorted series.
type Timeline struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// NewTimeline renders a keyed tally as a timeline.
func NewTimeline(c *Counts) Timeline {
	t := Timeline{Labels: []string{}, Values: []int{}}
	for _, k := range c.Keys() {
		t.Labels = append(t.Labels, k)
		t.Values = append(t.Values, c.Get(k))
	}
	return t
}
