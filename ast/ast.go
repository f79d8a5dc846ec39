// Package ast defines the data model produced by the criteria and settings
// parsers and refined in place by the sanitizer: criteria, intervals,
// amends, rules, acts, configs and domains. It plays the role the
// teacher's ast package plays for T-SQL statements, except these nodes
// carry no Token/TokenLiteral machinery — the grammar here has no need for
// position-preserving re-printing, only for semantic evaluation.
//
// References that start out as bare strings (a rule leaf's criterion name,
// an act's plugin name, an amend's possible criterion name) are resolved
// to object pointers by the sanitizer package; until then the rule and act
// *Ref fields hold the raw text, every amend is AmendRaw with its text in
// Raw, and the resolved pointer fields are nil.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openvela/go-pfw/token"
)

// maxInclusiveBits is the number of bit positions (0..30) an Inclusive
// criterion's state can address, per §3's 31-literal cap.
const maxInclusiveBits = 31

// noneLiteral is the sentinel textual form of an Inclusive state with no
// bits set.
const noneLiteral = "<none>"

// Interval is a closed range [Left, Right] used by NumericalCriterion
// ranges and by In/NotIn rule leaves.
type Interval struct {
	Left  int32
	Right int32
}

// Contains reports whether v lies within the interval, inclusive.
func (iv Interval) Contains(v int32) bool {
	return v >= iv.Left && v <= iv.Right
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d]", iv.Left, iv.Right)
}

// Criterion is a named condition variable, per §3.
type Criterion struct {
	Kind token.CriterionKind

	// Names holds every alias; Names[0] is the canonical name.
	Names []string

	// Literals holds the range literals for Exclusive/Inclusive criteria,
	// in declaration order (Exclusive index / Inclusive bit position).
	Literals []string

	// Intervals holds the union of legal intervals for Numerical criteria.
	Intervals []Interval

	// InitText is the textual default parsed after '=', or "" if none was
	// given. HasInit distinguishes "no default" from a default of "".
	InitText string
	HasInit  bool

	// Init is the resolved default state, computed by the sanitizer.
	Init int32

	// State is the criterion's current value.
	State int32
}

// Name returns the criterion's canonical (first) alias.
func (c *Criterion) Name() string {
	if len(c.Names) == 0 {
		return ""
	}
	return c.Names[0]
}

// HasAlias reports whether name is one of the criterion's aliases.
func (c *Criterion) HasAlias(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// AtoI converts a textual literal/interval/bitmask spec to the criterion's
// integer state representation, per §4.4.
func (c *Criterion) AtoI(text string) (int32, error) {
	switch c.Kind {
	case token.NUMERICAL:
		v, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return 0, fmt.Errorf("%q is not a valid integer for %s", text, c.Name())
		}
		return int32(v), nil

	case token.EXCLUSIVE:
		for i, lit := range c.Literals {
			if lit == text {
				return int32(i), nil
			}
		}
		return 0, fmt.Errorf("%q is not a literal of %s", text, c.Name())

	case token.INCLUSIVE:
		if text == noneLiteral {
			return 0, nil
		}
		var state int32
		for _, tok := range strings.Split(text, "|") {
			i := indexOfLiteral(c.Literals, tok)
			if i < 0 {
				return 0, fmt.Errorf("%q is not a literal of %s", tok, c.Name())
			}
			state |= 1 << uint(i)
		}
		return state, nil

	default:
		return 0, fmt.Errorf("criterion %s has an unrecognized kind", c.Name())
	}
}

// ItoA converts an integer state back to its textual form, per §4.4.
func (c *Criterion) ItoA(state int32) (string, error) {
	switch c.Kind {
	case token.NUMERICAL:
		return strconv.FormatInt(int64(state), 10), nil

	case token.EXCLUSIVE:
		if state < 0 || int(state) >= len(c.Literals) {
			return "", fmt.Errorf("state %d is out of range for %s", state, c.Name())
		}
		return c.Literals[state], nil

	case token.INCLUSIVE:
		if state == 0 {
			return noneLiteral, nil
		}
		var known int32
		for i := range c.Literals {
			if i >= maxInclusiveBits {
				break
			}
			known |= 1 << uint(i)
		}
		if state&^known != 0 {
			return "", fmt.Errorf("state %d has bits with no literal in %s", state, c.Name())
		}

		var parts []string
		for i, lit := range c.Literals {
			if i >= maxInclusiveBits {
				break
			}
			if state&(1<<uint(i)) != 0 {
				parts = append(parts, lit)
			}
		}
		return strings.Join(parts, "|"), nil

	default:
		return "", fmt.Errorf("criterion %s has an unrecognized kind", c.Name())
	}
}

// Valid reports whether state is a legal value for the criterion: within
// some declared interval for Numerical, or round-trippable through ItoA
// for Exclusive/Inclusive.
func (c *Criterion) Valid(state int32) bool {
	if c.Kind == token.NUMERICAL {
		for _, iv := range c.Intervals {
			if iv.Contains(state) {
				return true
			}
		}
		return false
	}
	_, err := c.ItoA(state)
	return err == nil
}

func indexOfLiteral(literals []string, name string) int {
	for i, lit := range literals {
		if lit == name {
			return i
		}
	}
	return -1
}

// AmendKind discriminates an Amend's two forms. A typed discriminant plus
// plain fields (rather than the source's tagged union over raw pointers)
// keeps Amend a value type with no invalid states to guard against.
type AmendKind int

const (
	AmendRaw AmendKind = iota
	AmendCriterion
)

// Amend is one token of a '%'-delimited template: either raw text or a
// reference to a criterion whose current literal gets interpolated in.
type Amend struct {
	Kind AmendKind

	// Raw holds the literal text when Kind == AmendRaw.
	Raw string

	// CriterionRef holds the unresolved criterion name when Kind ==
	// AmendCriterion; Criterion holds the resolved pointer once the
	// sanitizer has run.
	CriterionRef string
	Criterion    *Criterion
}

// Template is an ordered list of Amends, the unit used for both config
// name templates and act parameter templates.
type Template []Amend

// String renders an amend template back to its '%'-joined source form,
// useful for diagnostics.
func (t Template) String() string {
	var b strings.Builder
	for i, a := range t {
		if i > 0 {
			b.WriteByte('%')
		}
		if a.Kind == AmendCriterion {
			b.WriteString(a.CriterionRef)
		} else {
			b.WriteString(a.Raw)
		}
	}
	return b.String()
}

// RuleKind discriminates a Rule's two forms.
type RuleKind int

const (
	RuleBranch RuleKind = iota
	RuleLeaf
)

// Rule is a node in the boolean tree described by §3. A branch node
// carries a Combinator and Branches; a leaf node carries a criterion
// reference, a Predicate and a state operand.
type Rule struct {
	Kind RuleKind

	// Branch fields.
	Combinator token.Combinator
	Branches   []*Rule

	// Leaf fields.
	CriterionRef string
	Criterion    *Criterion
	Predicate    token.Predicate

	// StateRef is the unresolved textual operand for Is/IsNot/Includes/
	// Excludes; StateValue is its resolved integer/bitmask form.
	StateRef   string
	StateValue int32

	// IntervalRef is the raw textual interval spec for In/NotIn before
	// resolution (kept only for diagnostics); Interval is the parsed
	// operand.
	IntervalRef string
	Interval    Interval
}

func (r *Rule) String() string {
	if r == nil {
		return "<empty>"
	}
	if r.Kind == RuleBranch {
		parts := make([]string, len(r.Branches))
		for i, b := range r.Branches {
			parts[i] = b.String()
		}
		return fmt.Sprintf("%s(%s)", r.Combinator, strings.Join(parts, ", "))
	}
	switch r.Predicate {
	case token.IN, token.NOTIN:
		return fmt.Sprintf("%s %s %s", r.CriterionRef, r.Predicate, r.Interval)
	default:
		return fmt.Sprintf("%s %s %s", r.CriterionRef, r.Predicate, r.StateRef)
	}
}

// Plugin identifies a registered act target. The callback itself is host
// state, not AST data, and lives in the engine's plugin table; Plugin here
// is purely the resolved identity an Act points at.
type Plugin struct {
	Name string
}

// Act is a plugin reference plus its parameter template, per §3.
type Act struct {
	PluginRef string
	Plugin    *Plugin
	Params    Template
}

// Config is a single candidate state of a Domain: a name template, a
// guard rule (nil means "always matches"), and the acts fired on entry.
type Config struct {
	Name Template
	Rule *Rule
	Acts []*Act

	// Current holds the last interpolated name string, or "" before the
	// config has ever been selected.
	Current string
}

// Domain is a state machine: a named ordered list of configs and the
// config selected by the most recent Apply (nil before the first Apply).
type Domain struct {
	Name    string
	Configs []*Config
	Current *Config
}
