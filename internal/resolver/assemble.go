// internal/resolver/assemble.go
//
// The Config Assembler.
//
// Context
// -------
// Assemble drives one configuration lookup end to end: generate the
// candidate filename list, read each candidate from the git backend at
// the label's refs, run the template pass against the environment's
// variable map, parse the YAML, and flatten into the accumulating
// result.  Candidates that do not exist are skipped silently; a parse
// or decode failure on a found file fails the whole request — partial
// results are never served.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/martinmares/simple-config-server/internal/gitrepo"
	"github.com/martinmares/simple-config-server/internal/metrics"
	"github.com/martinmares/simple-config-server/internal/template"
)

// Assembler merges candidate configuration files into one property map.
type Assembler struct {
	engine *template.Engine
}

// New returns an Assembler substituting placeholders through engine.
func New(engine *template.Engine) *Assembler {
	return &Assembler{engine: engine}
}

// Assemble returns the merged, flattened property map for application
// and profiles at label, plus whether any candidate file was found.
func (a *Assembler) Assemble(
	ctx context.Context,
	backend gitrepo.Backend,
	gc gitrepo.GitConfig,
	application string,
	profiles []string,
	label string,
	vars map[string]string,
) (map[string]any, bool, error) {
	start := time.Now()
	defer func() {
		metrics.AssembleDuration.Observe(time.Since(start).Seconds())
	}()

	refs := gitrepo.CandidateRefs(gc, label)
	result := make(map[string]any)
	foundAny := false

	for _, candidate := range Candidates(application, profiles) {
		data, err := backend.ReadFile(ctx, gc, refs, candidate)
		if errors.Is(err, gitrepo.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		foundAny = true

		if !utf8.Valid(data) {
			return nil, false, fmt.Errorf("decode %s: invalid UTF-8", candidate)
		}
		templated := a.engine.Apply(string(data), vars)

		var doc any
		if err := yaml.Unmarshal([]byte(templated), &doc); err != nil {
			return nil, false, fmt.Errorf("parse %s: %w", candidate, err)
		}
		Flatten("", doc, result)
	}

	return result, foundAny, nil
}
