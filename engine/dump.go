package engine

import (
	"fmt"
	"strings"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/token"
)

// Dump produces a human-readable snapshot of every criterion and domain,
// framed with "+---" separators per §4.6.
func (s *System) Dump() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder

	b.WriteString("+--- criteria ---\n")
	for _, c := range s.criteria {
		literal := ""
		if c.Kind != token.NUMERICAL {
			if s2, err := c.ItoA(c.State); err == nil {
				literal = s2
			}
		}
		fmt.Fprintf(&b, "| %-20s %10d %s\n", c.Name(), c.State, literal)
	}

	b.WriteString("+--- domains ---\n")
	for _, d := range s.domains {
		current := ""
		if d.Current != nil {
			current = d.Current.Current
		}
		fmt.Fprintf(&b, "| %-20s %s\n", d.Name, current)
	}
	b.WriteString("+---\n")

	return b.String()
}

// Snapshot returns the system's criteria and domains as they stand right
// now, for callers that need the model itself rather than Dump's
// formatted text (e.g. factexport). The slices are the system's own
// backing arrays, never resized after New, so the copy-free return is
// safe for read-only use by the caller.
func (s *System) Snapshot() ([]*ast.Criterion, []*ast.Domain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria, s.domains
}
