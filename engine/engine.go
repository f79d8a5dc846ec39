// Package engine implements the evaluation engine of §4.5: rule matching,
// amend interpolation, apply, criterion mutation with listener fan-out,
// and the query operations of §4.6's public surface. A single mutex
// serializes every operation, per §5 — there is no finer-grained locking
// and no suspension point while it is held.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/token"
)

// maxAmendBytes bounds an interpolated amend buffer; overflow truncates
// silently, per §4.5.
const maxAmendBytes = 512

// ErrorKind classifies an engine failure. The root package maps these to
// its own Kind when wrapping.
type ErrorKind int

const (
	BadArgument ErrorKind = iota
	WrongKind
	NotImplemented
)

func (k ErrorKind) String() string {
	switch k {
	case WrongKind:
		return "WrongKind"
	case NotImplemented:
		return "NotImplemented"
	default:
		return "BadArgument"
	}
}

// Error is returned for every engine failure.
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

func notImplemented(format string, args ...any) error {
	return &Error{Kind: NotImplemented, Msg: fmt.Sprintf(format, args...)}
}

// PluginFunc is a plugin's host callback, invoked with its interpolated
// parameter string whenever one of its acts fires.
type PluginFunc func(params string)

// SaveFunc lets the host persist a criterion's state whenever it changes,
// the Go-idiomatic replacement for the C on_save cookie callback.
type SaveFunc func(canonicalName string, state int32)

// Token is an opaque handle returned by Subscribe, used only to Unsubscribe
// later. Backed by a random UUID rather than an intrusive list node, per
// §9's guidance against pointer-linked listener state.
type Token uuid.UUID

type pluginBinding struct {
	callback   PluginFunc
	lastParams string
	hasLast    bool
}

type listenerEntry struct {
	token    Token
	callback func(state int32, literal string, hasLiteral bool)
}

// System is the runtime container described by §3's top-level System type:
// the criteria, domains and plugin table, guarded by a single mutex.
type System struct {
	mu sync.Mutex

	criteria []*ast.Criterion
	byAlias  map[string]*ast.Criterion
	domains  []*ast.Domain

	plugins map[string]*pluginBinding

	// listeners is keyed by criterion and stored newest-first, so fan-out
	// order matches subscribe's prepend-ordering guarantee (§5).
	listeners map[*ast.Criterion][]listenerEntry

	save   SaveFunc
	logger *logrus.Logger
}

// New builds a System from an already-sanitized model. criteria and
// domains must have been resolved by the sanitizer package before this is
// called; New performs no further validation of them.
func New(criteria []*ast.Criterion, domains []*ast.Domain, plugins map[string]PluginFunc, save SaveFunc, logger *logrus.Logger) *System {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	byAlias := make(map[string]*ast.Criterion)
	for _, c := range criteria {
		for _, name := range c.Names {
			byAlias[name] = c
		}
	}

	bindings := make(map[string]*pluginBinding, len(plugins))
	for name, fn := range plugins {
		bindings[name] = &pluginBinding{callback: fn}
	}

	return &System{
		criteria:  criteria,
		byAlias:   byAlias,
		domains:   domains,
		plugins:   bindings,
		listeners: make(map[*ast.Criterion][]listenerEntry),
		save:      save,
		logger:    logger,
	}
}

func (s *System) criterionByName(name string) (*ast.Criterion, error) {
	c, ok := s.byAlias[name]
	if !ok {
		return nil, badArg("unknown criterion %q", name)
	}
	return c, nil
}

// ruleMatch evaluates a rule tree per §4.5 / §3's predicate table. A nil
// rule (no guard declared) always matches. Empty ALL and, deliberately,
// empty ANY both evaluate true — the vacuous-ANY convention is preserved
// exactly as specified, not "fixed".
func ruleMatch(r *ast.Rule) bool {
	if r == nil {
		return true
	}
	if r.Kind == ast.RuleBranch {
		if r.Combinator == token.ANY {
			if len(r.Branches) == 0 {
				return true
			}
			for _, b := range r.Branches {
				if ruleMatch(b) {
					return true
				}
			}
			return false
		}
		// ALL: vacuously true for an empty branch list.
		for _, b := range r.Branches {
			if !ruleMatch(b) {
				return false
			}
		}
		return true
	}

	c := r.Criterion
	switch r.Predicate {
	case token.IS:
		return c.State == r.StateValue
	case token.ISNOT:
		return c.State != r.StateValue
	case token.INCLUDES:
		return c.State&r.StateValue != 0
	case token.EXCLUDES:
		return c.State&r.StateValue == 0
	case token.IN:
		return r.Interval.Contains(c.State)
	case token.NOTIN:
		return !r.Interval.Contains(c.State)
	default:
		return false
	}
}

// interpolate renders a Template per §4.5: raw tokens copy verbatim,
// criterion tokens print the decimal state for Numerical or else itoa. No
// separator is inserted between tokens; the result is truncated silently
// at maxAmendBytes.
func interpolate(tmpl ast.Template) string {
	var b strings.Builder
	for _, a := range tmpl {
		if a.Kind == ast.AmendRaw {
			b.WriteString(a.Raw)
			continue
		}
		if a.Criterion.Kind == token.NUMERICAL {
			b.WriteString(strconv.FormatInt(int64(a.Criterion.State), 10))
			continue
		}
		if s, err := a.Criterion.ItoA(a.Criterion.State); err == nil {
			b.WriteString(s)
		}
	}
	out := b.String()
	if len(out) > maxAmendBytes {
		out = out[:maxAmendBytes]
	}
	return out
}
