package parser

import (
	"testing"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/token"
)

func TestParseSettingsSingleDomainConfigRuleAct(t *testing.T) {
	ctx := mustContext(t, ""+
		"domain: Audio\n"+
		"\tconf: loud-route\n"+
		"\t\tMode Is Loud\n"+
		"\t\tRouter = speaker\n"+
		"\tconf: default-route\n"+
		"\t\tRouter = headset\n")

	domains, err := ParseSettings(ctx)
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if len(domains) != 1 {
		t.Fatalf("got %d domains, want 1", len(domains))
	}

	dom := domains[0]
	if dom.Name != "Audio" {
		t.Fatalf("Name = %q", dom.Name)
	}
	if len(dom.Configs) != 2 {
		t.Fatalf("got %d configs, want 2", len(dom.Configs))
	}

	first := dom.Configs[0]
	if first.Name.String() != "loud-route" {
		t.Fatalf("Name = %q", first.Name.String())
	}
	if first.Rule == nil || first.Rule.Kind != ast.RuleLeaf {
		t.Fatalf("Rule = %v", first.Rule)
	}
	if first.Rule.CriterionRef != "Mode" || first.Rule.Predicate != token.IS || first.Rule.StateRef != "Loud" {
		t.Fatalf("Rule = %+v", first.Rule)
	}
	if len(first.Acts) != 1 || first.Acts[0].PluginRef != "Router" {
		t.Fatalf("Acts = %+v", first.Acts)
	}

	second := dom.Configs[1]
	if second.Rule != nil {
		t.Fatalf("expected no rule on default config, got %+v", second.Rule)
	}
}

func TestParseSettingsBranchRule(t *testing.T) {
	ctx := mustContext(t, ""+
		"domain: Audio\n"+
		"\tconf: loud-and-quiet\n"+
		"\t\tALL\n"+
		"\t\t\tMode Is Loud\n"+
		"\t\t\tVol In [0,11]\n"+
		"\t\tRouter = speaker\n")

	domains, err := ParseSettings(ctx)
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}

	rule := domains[0].Configs[0].Rule
	if rule.Kind != ast.RuleBranch || rule.Combinator != token.ALL {
		t.Fatalf("Rule = %+v", rule)
	}
	if len(rule.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(rule.Branches))
	}
	if rule.Branches[1].Predicate != token.IN || rule.Branches[1].Interval.Right != 11 {
		t.Fatalf("second branch = %+v", rule.Branches[1])
	}
}

func TestParseSettingsMultipleDomains(t *testing.T) {
	ctx := mustContext(t, ""+
		"domain: Audio\n"+
		"\tconf: a\n"+
		"\t\tRouter = x\n"+
		"domain: Network\n"+
		"\tconf: b\n"+
		"\t\tRouter = y\n")

	domains, err := ParseSettings(ctx)
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if len(domains) != 2 || domains[1].Name != "Network" {
		t.Fatalf("domains = %+v", domains)
	}
}

func TestParseSettingsMissingConfKeywordIsFatal(t *testing.T) {
	ctx := mustContext(t, "domain: Audio\n\troute: a\n\t\tRouter = x\n")
	if _, err := ParseSettings(ctx); err == nil {
		t.Fatalf("expected error for missing 'conf:' keyword")
	}
}

func TestParseSettingsUnknownPredicateIsFatal(t *testing.T) {
	ctx := mustContext(t, "domain: Audio\n\tconf: a\n\t\tMode Equals Loud\n\t\tRouter = x\n")
	if _, err := ParseSettings(ctx); err == nil {
		t.Fatalf("expected error for unknown predicate")
	}
}

func TestParseSettingsActMissingEqualsIsFatal(t *testing.T) {
	ctx := mustContext(t, "domain: Audio\n\tconf: a\n\t\tRouter speaker\n")
	if _, err := ParseSettings(ctx); err == nil {
		t.Fatalf("expected error for act missing '='")
	}
}
