// internal/resolver/flatten.go
//
// Flattening of a parsed YAML tree into dotted/bracket-indexed keys.
//
// A mapping contributes parent.key per entry, a sequence parent[i] per
// element, and scalars terminate the recursion keeping their native
// type, so booleans and numbers survive into the response JSON.  The
// rule applies identically at any depth and for mixed map/sequence
// shapes.
package resolver

import "fmt"

// Flatten walks node and inserts every scalar leaf into out under its
// constructed key.  prefix is "" at the root; a bare scalar at the root
// has no key and is dropped.
func Flatten(prefix string, node any, out map[string]any) {
	switch v := node.(type) {
	case map[string]any:
		for k, child := range v {
			Flatten(joinKey(prefix, k), child, out)
		}
	case map[any]any:
		// yaml.v3 falls back to interface keys for non-string keys;
		// stringify them with their literal text.
		for k, child := range v {
			Flatten(joinKey(prefix, fmt.Sprintf("%v", k)), child, out)
		}
	case []any:
		for i, child := range v {
			Flatten(fmt.Sprintf("%s[%d]", prefix, i), child, out)
		}
	default:
		if prefix == "" {
			return
		}
		out[prefix] = v
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
