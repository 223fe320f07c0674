package models

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Wildcard selects every entity in the store.
const Wildcard = "*"

// tag is a component name with its hash precomputed so queries can reject
// most non-matching tags without a string compare.
type tag struct {
	name string
	hash uint64
}

func newTag(name string) tag {
	return tag{name: name, hash: xxhash.Sum64String(name)}
}

func (t tag) equal(o tag) bool {
	return t.hash == o.hash && t.name == o.name
}

// ParseSelector splits a comma separated component list. The result keeps
// declaration order and drops repeated names. Names are taken verbatim:
// no trimming, empty names between commas are kept.
func ParseSelector(selector string) []string {
	if selector == "" {
		return nil
	}
	parts := strings.Split(selector, ",")
	names := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		names = append(names, p)
	}
	return names
}
