// internal/template/template.go
//
// Placeholder substitution for configuration text.
//
// Context
// -------
// Configuration files and text-classified raw files may carry
// `{{ NAME }}` placeholders that are filled from the environment's
// variable map before the content is parsed or served.  The compiled
// pattern is owned by the Engine instance, not package state, so tests
// can run engines with different patterns side by side.
//
// Substitution is a single left-to-right pass: a value that itself
// contains placeholder syntax is never re-scanned, and an unknown
// placeholder is left byte-for-byte in place.
package template

import "regexp"

// DefaultPattern matches an identifier token between double braces with
// optional surrounding whitespace.  The identifier is capture group 1.
const DefaultPattern = `\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`

// Engine substitutes placeholders from a variable map.
type Engine struct {
	re *regexp.Regexp
}

// New returns an Engine using DefaultPattern.
func New() *Engine {
	return NewWithPattern(regexp.MustCompile(DefaultPattern))
}

// NewWithPattern returns an Engine using re, which must expose the
// variable name as capture group 1.
func NewWithPattern(re *regexp.Regexp) *Engine {
	return &Engine{re: re}
}

// Apply replaces every placeholder in text whose name is present in vars.
// Placeholders with no matching key are returned unchanged.
func (e *Engine) Apply(text string, vars map[string]string) string {
	return e.re.ReplaceAllStringFunc(text, func(match string) string {
		name := e.re.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return match
	})
}
