// Package sanitizer resolves the unresolved string references a parsed
// criteria/settings model carries — rule leaf criterion names, act plugin
// names, amend tokens — into object pointers, and performs the five checks
// §4.3 requires before a system may be considered constructed: criterion
// initialization, literal uniqueness, global alias uniqueness, domain
// uniqueness, and reference/type checking.
//
// It depends only on ast and token, never on engine, so that engine's
// runtime plugin bindings cannot leak backward into static model
// resolution: an ast.Plugin here is nothing but a resolved name.
package sanitizer

import (
	"fmt"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/token"
)

// ErrorKind classifies a sanitizer failure. The root package maps these to
// its own Kind when wrapping, keeping this package free of a dependency on
// it.
type ErrorKind int

const (
	BadArgument ErrorKind = iota
	WrongKind
)

func (k ErrorKind) String() string {
	if k == WrongKind {
		return "WrongKind"
	}
	return "BadArgument"
}

// Error is returned for every sanitizer failure.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func badArg(format string, args ...any) error {
	return &Error{Kind: BadArgument, Msg: fmt.Sprintf(format, args...)}
}

func wrongKind(format string, args ...any) error {
	return &Error{Kind: WrongKind, Msg: fmt.Sprintf(format, args...)}
}

// LoadFunc lets the host override a criterion's parsed default during
// initialization, the Go-idiomatic replacement for the C on_load
// cookie callback: ok=false leaves the parsed default untouched.
type LoadFunc func(canonicalName string) (state int32, ok bool)

// Sanitize runs the five §4.3 checks in order and resolves every reference
// in domains against criteria and pluginNames. On any failure it returns
// immediately; the caller (Create) is responsible for discarding the
// partially-resolved model.
func Sanitize(criteria []*ast.Criterion, domains []*ast.Domain, pluginNames map[string]bool, load LoadFunc) error {
	if err := initCriteria(criteria, load); err != nil {
		return err
	}
	if err := checkLiteralUniqueness(criteria); err != nil {
		return err
	}
	aliases, err := checkAliasUniqueness(criteria)
	if err != nil {
		return err
	}
	if err := checkDomainUniqueness(domains); err != nil {
		return err
	}
	if err := resolveDomains(domains, aliases, pluginNames); err != nil {
		return err
	}
	return nil
}

// initCriteria converts each criterion's parsed textual default (if any)
// to its integer state, then lets load override it.
func initCriteria(criteria []*ast.Criterion, load LoadFunc) error {
	for _, c := range criteria {
		if c.HasInit {
			v, err := c.AtoI(c.InitText)
			if err != nil {
				return badArg("criterion %s: invalid default %q: %v", c.Name(), c.InitText, err)
			}
			c.Init = v
		}
		c.State = c.Init

		if load != nil {
			if v, ok := load(c.Name()); ok {
				c.State = v
			}
		}
	}
	return nil
}

// checkLiteralUniqueness rejects duplicate range literals within a single
// Exclusive/Inclusive criterion.
func checkLiteralUniqueness(criteria []*ast.Criterion) error {
	for _, c := range criteria {
		if c.Kind == token.NUMERICAL {
			continue
		}
		seen := make(map[string]bool, len(c.Literals))
		for _, lit := range c.Literals {
			if seen[lit] {
				return badArg("criterion %s: duplicate literal %q", c.Name(), lit)
			}
			seen[lit] = true
		}
	}
	return nil
}

// checkAliasUniqueness flattens every criterion's aliases into one global
// namespace and rejects collisions, returning the resulting name→criterion
// index for later reference resolution.
func checkAliasUniqueness(criteria []*ast.Criterion) (map[string]*ast.Criterion, error) {
	aliases := make(map[string]*ast.Criterion)
	for _, c := range criteria {
		for _, name := range c.Names {
			if existing, ok := aliases[name]; ok {
				return nil, badArg("alias %q is used by both %s and %s", name, existing.Name(), c.Name())
			}
			aliases[name] = c
		}
	}
	return aliases, nil
}

func checkDomainUniqueness(domains []*ast.Domain) error {
	seen := make(map[string]bool, len(domains))
	for _, d := range domains {
		if seen[d.Name] {
			return badArg("domain %q is declared more than once", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// resolveDomains resolves every rule leaf, act and amend template found
// under domains.
func resolveDomains(domains []*ast.Domain, aliases map[string]*ast.Criterion, pluginNames map[string]bool) error {
	for _, dom := range domains {
		for _, cfg := range dom.Configs {
			if err := resolveTemplate(cfg.Name, aliases); err != nil {
				return err
			}
			if cfg.Rule != nil {
				if err := resolveRule(cfg.Rule, aliases); err != nil {
					return err
				}
			}
			for _, act := range cfg.Acts {
				if !pluginNames[act.PluginRef] {
					return badArg("act references unregistered plugin %q", act.PluginRef)
				}
				act.Plugin = &ast.Plugin{Name: act.PluginRef}
				if err := resolveTemplate(act.Params, aliases); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// resolveRule resolves a rule tree in place: branch nodes recurse, leaves
// resolve their criterion reference, check predicate/kind compatibility,
// and convert their textual operand.
func resolveRule(r *ast.Rule, aliases map[string]*ast.Criterion) error {
	if r.Kind == ast.RuleBranch {
		for _, b := range r.Branches {
			if err := resolveRule(b, aliases); err != nil {
				return err
			}
		}
		return nil
	}

	c, ok := aliases[r.CriterionRef]
	if !ok {
		return badArg("rule references unknown criterion %q", r.CriterionRef)
	}
	if !r.Predicate.CompatibleWith(c.Kind) {
		return wrongKind("predicate %s is not valid for %s criterion %s", r.Predicate, c.Kind, c.Name())
	}
	r.Criterion = c

	switch r.Predicate {
	case token.IN, token.NOTIN:
		// Interval was already parsed syntactically; nothing further to
		// resolve, but the kind must actually be Numerical (checked
		// above by CompatibleWith).
	default:
		v, err := c.AtoI(r.StateRef)
		if err != nil {
			return badArg("rule %s %s %s: %v", c.Name(), r.Predicate, r.StateRef, err)
		}
		r.StateValue = v
	}
	return nil
}

// resolveTemplate classifies every amend token as either a criterion
// reference (if it names a criterion) or raw text, per §4.3 step 5.
func resolveTemplate(tmpl ast.Template, aliases map[string]*ast.Criterion) error {
	for i := range tmpl {
		a := &tmpl[i]
		if c, ok := aliases[a.Raw]; ok {
			a.Kind = ast.AmendCriterion
			a.CriterionRef = a.Raw
			a.Criterion = c
		}
	}
	return nil
}
