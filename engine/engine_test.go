package engine

import (
	"strings"
	"testing"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/token"
)

func newTestSystem(t *testing.T) (*System, *ast.Criterion) {
	t.Helper()
	mode := &ast.Criterion{Kind: token.EXCLUSIVE, Names: []string{"Mode"}, Literals: []string{"Normal", "Loud"}, Init: 0, State: 0}

	var fired []string
	plugins := map[string]PluginFunc{
		"Router": func(params string) { fired = append(fired, params) },
	}

	rule := &ast.Rule{Kind: ast.RuleLeaf, CriterionRef: "Mode", Criterion: mode, Predicate: token.IS, StateValue: 1}
	cfg := &ast.Config{
		Name: ast.Template{{Kind: ast.AmendRaw, Raw: "loud-route"}},
		Rule: rule,
		Acts: []*ast.Act{{PluginRef: "Router", Plugin: &ast.Plugin{Name: "Router"}, Params: ast.Template{{Kind: ast.AmendRaw, Raw: "speaker"}}}},
	}
	defCfg := &ast.Config{
		Name: ast.Template{{Kind: ast.AmendRaw, Raw: "default-route"}},
		Acts: []*ast.Act{{PluginRef: "Router", Plugin: &ast.Plugin{Name: "Router"}, Params: ast.Template{{Kind: ast.AmendRaw, Raw: "headset"}}}},
	}
	dom := &ast.Domain{Name: "Audio", Configs: []*ast.Config{cfg, defCfg}}

	sys := New([]*ast.Criterion{mode}, []*ast.Domain{dom}, plugins, nil, nil)
	return sys, mode
}

func TestApplySelectsFirstMatchingConfig(t *testing.T) {
	sys, mode := newTestSystem(t)
	mode.State = 1 // Loud

	sys.Apply()

	dom := sys.domains[0]
	if dom.Current == nil || dom.Current.Current != "loud-route" {
		t.Fatalf("Current = %+v", dom.Current)
	}
	if len(dom.Current.Acts[0].Params) == 0 {
		t.Fatalf("expected acts")
	}
}

func TestApplyFallsThroughToDefaultConfig(t *testing.T) {
	sys, _ := newTestSystem(t)
	sys.Apply()

	dom := sys.domains[0]
	if dom.Current == nil || dom.Current.Current != "default-route" {
		t.Fatalf("Current = %+v", dom.Current)
	}
}

func TestApplyFiresActsExactlyOncePerTransition(t *testing.T) {
	sys, mode := newTestSystem(t)
	var calls int
	sys.plugins["Router"].callback = func(params string) { calls++ }

	mode.State = 1
	sys.Apply()
	sys.Apply()
	sys.Apply()

	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no repeated firing while unchanged)", calls)
	}

	mode.State = 0
	sys.Apply()
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 after transitioning to the default config", calls)
	}
}

func TestRuleMatchVacuousAllAndAny(t *testing.T) {
	all := &ast.Rule{Kind: ast.RuleBranch, Combinator: token.ALL}
	if !ruleMatch(all) {
		t.Fatalf("empty ALL should be vacuously true")
	}
	any := &ast.Rule{Kind: ast.RuleBranch, Combinator: token.ANY}
	if !ruleMatch(any) {
		t.Fatalf("empty ANY should be vacuously true (preserved convention)")
	}
	if !ruleMatch(nil) {
		t.Fatalf("nil rule should always match")
	}
}

func TestSetIntRejectsInvalidValue(t *testing.T) {
	sys, _ := newTestSystem(t)
	if err := sys.SetInt("Mode", 5); err == nil {
		t.Fatalf("expected error for out-of-range Exclusive state")
	}
	if err := sys.SetInt("Mode", 1); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	v, err := sys.GetInt("Mode")
	if err != nil || v != 1 {
		t.Fatalf("GetInt = %d, %v", v, err)
	}
}

func TestSetIntNoImplicitApply(t *testing.T) {
	sys, _ := newTestSystem(t)
	if err := sys.SetInt("Mode", 1); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	dom := sys.domains[0]
	if dom.Current != nil {
		t.Fatalf("expected no implicit apply, but domain.Current = %+v", dom.Current)
	}
}

func TestSubscribeFiresNewestFirst(t *testing.T) {
	sys, mode := newTestSystem(t)

	var order []string
	_, err := sys.Subscribe("Mode", func(state int32, literal string, hasLiteral bool) { order = append(order, "first") })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	_, err = sys.Subscribe("Mode", func(state int32, literal string, hasLiteral bool) { order = append(order, "second") })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := sys.SetInt("Mode", 1); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	_ = mode

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("order = %v, want [second first] (newest-first fan-out)", order)
	}
}

func TestUnsubscribeIsSilentOnUnknownToken(t *testing.T) {
	sys, _ := newTestSystem(t)
	sys.Unsubscribe(Token{})
}

func TestIncludeExcludeAndContain(t *testing.T) {
	flags := &ast.Criterion{Kind: token.INCLUSIVE, Names: []string{"Flags"}, Literals: []string{"A", "B", "C"}}
	sys := New([]*ast.Criterion{flags}, nil, nil, nil, nil)

	if err := sys.Include("Flags", "A|B"); err != nil {
		t.Fatalf("Include: %v", err)
	}
	contains, err := sys.Contain("Flags", "A")
	if err != nil || !contains {
		t.Fatalf("Contain(A) = %v, %v", contains, err)
	}
	if err := sys.Exclude("Flags", "A"); err != nil {
		t.Fatalf("Exclude: %v", err)
	}
	contains, err = sys.Contain("Flags", "A")
	if err != nil || contains {
		t.Fatalf("Contain(A) after Exclude = %v, %v", contains, err)
	}
}

func TestIncreaseDecreaseRejectOutOfRange(t *testing.T) {
	vol := &ast.Criterion{Kind: token.NUMERICAL, Names: []string{"Vol"}, Intervals: []ast.Interval{{Left: 0, Right: 1}}}
	sys := New([]*ast.Criterion{vol}, nil, nil, nil, nil)

	if err := sys.Increase("Vol"); err != nil {
		t.Fatalf("Increase: %v", err)
	}
	if err := sys.Increase("Vol"); err == nil {
		t.Fatalf("expected error stepping past the declared interval")
	}
	if err := sys.Decrease("Vol"); err != nil {
		t.Fatalf("Decrease: %v", err)
	}
}

func TestGetRangeRejectsMultipleIntervals(t *testing.T) {
	vol := &ast.Criterion{Kind: token.NUMERICAL, Names: []string{"Vol"}, Intervals: []ast.Interval{{Left: 0, Right: 1}, {Left: 5, Right: 6}}}
	sys := New([]*ast.Criterion{vol}, nil, nil, nil, nil)

	if _, _, err := sys.GetRange("Vol"); err == nil {
		t.Fatalf("expected NotImplemented for a criterion with more than one interval")
	} else if e, ok := err.(*Error); !ok || e.Kind != NotImplemented {
		t.Fatalf("expected NotImplemented, got %T: %v", err, err)
	}
}

func TestResetRestoresInit(t *testing.T) {
	sys, mode := newTestSystem(t)
	mode.Init = 0
	if err := sys.SetInt("Mode", 1); err != nil {
		t.Fatalf("SetInt: %v", err)
	}
	if err := sys.Reset("Mode"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if mode.State != 0 {
		t.Fatalf("State = %d, want 0 after Reset", mode.State)
	}
}

func TestDumpIncludesCriteriaAndDomains(t *testing.T) {
	sys, mode := newTestSystem(t)
	mode.State = 1
	sys.Apply()

	out := sys.Dump()
	for _, want := range []string{"+--- criteria ---", "Mode", "Loud", "+--- domains ---", "Audio", "loud-route"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Dump output missing %q:\n%s", want, out)
		}
	}
}
