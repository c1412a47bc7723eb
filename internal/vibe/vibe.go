// Package vibe holds the fixed table of theme keys a locator may carry.
// The table is constructed once at process start and never mutated; the
// core treats the key itself as opaque and only validates membership.
package vibe

import "sort"

type Table struct {
	entries map[string]string
}

// NewTable builds the default vibe table.
func NewTable() *Table {
	return &Table{entries: map[string]string{
		"aether":   "Aether",
		"midnight": "Midnight",
		"sunrise":  "Sunrise",
		"forest":   "Forest",
		"synth":    "Synthwave",
		"paper":    "Paper",
	}}
}

// Valid reports whether key names a known vibe. The empty key is valid and
// means "no vibe".
func (t *Table) Valid(key string) bool {
	if key == "" {
		return true
	}
	_, ok := t.entries[key]
	return ok
}

// Keys returns the known vibe keys in sorted order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Title returns the display name for a key, or the key itself when unknown.
func (t *Table) Title(key string) string {
	if title, ok := t.entries[key]; ok {
		return title
	}
	return key
}
