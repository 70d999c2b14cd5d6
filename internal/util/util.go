package util

import (
	"sort"
	"strings"
)

// MakeTextList gives a nice list of things based on their display name,
// joined with commas and the given conjunction as applicable.
func MakeTextList(items []string, conj string) string {
	if len(items) < 1 {
		return ""
	}

	output := ""

	if len(items) == 1 {
		output += items[0]
	} else if len(items) == 2 {
		output += items[0] + " " + conj + " " + items[1]
	} else {
		// if its more than two, use an oxford comma
		items[len(items)-1] = conj + " " + items[len(items)-1]
		output += strings.Join(items, ", ")
	}

	return output
}

// OrderedKeys returns the keys of m, sorted ascending.
func OrderedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
