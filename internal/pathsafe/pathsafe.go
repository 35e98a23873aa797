// internal/pathsafe/pathsafe.go
//
// Validation of caller-supplied repository-relative paths.
//
// Raw file routes accept an arbitrary trailing path from the URL.  Before
// that path is joined with an environment's subpath and handed to the git
// backend it must be proven unable to escape the repository root.  Clean
// walks the raw path segment by segment: normal names are kept, "."
// segments are dropped, and a ".." segment or an absolute path fails the
// whole request.
package pathsafe

import (
	"fmt"
	"strings"
)

// BadRequestError reports a rejected path.  Reason is a stable, short
// description safe to return to the client.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("bad request: %s", e.Reason)
}

// Clean validates raw and returns its normalized, forward-slash form.
// The result is always relative and free of "." and ".." segments, so
// joining it under any prefix stays inside that prefix.
func Clean(raw string) (string, error) {
	s := strings.ReplaceAll(raw, "\\", "/")
	if strings.HasPrefix(s, "/") {
		return "", &BadRequestError{Reason: "absolute or root-relative paths are not allowed"}
	}

	var kept []string
	for _, seg := range strings.Split(s, "/") {
		switch seg {
		case "", ".":
			// collapsed separators and current-dir markers carry no meaning
		case "..":
			return "", &BadRequestError{Reason: "parent '..' segments are not allowed"}
		default:
			kept = append(kept, seg)
		}
	}
	return strings.Join(kept, "/"), nil
}
