package parser

import (
	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/lexctx"
	"github.com/openvela/go-pfw/token"
)

// ParseSettings reads every domain declaration from ctx until EOF, per the
// grammar in §4.2/§6.
func ParseSettings(ctx *lexctx.Context) ([]*ast.Domain, error) {
	var domains []*ast.Domain
	for {
		d, err := parseDomain(ctx)
		if err == errEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// parseDomain parses "domain: <name>" followed by its configs. Only EOF
// stops the scan here — indentation irregularities below a domain header
// surface as errors from the nested parses, not from a depth check on the
// header line itself, mirroring the C parser's own leniency on this point.
func parseDomain(ctx *lexctx.Context) (*ast.Domain, error) {
	if ctx.Depth() == lexctx.EOF {
		return nil, errEOF
	}

	word, ok := ctx.TakeWord()
	if !ok || word != "domain:" {
		return nil, parseErr(ctx, "expected 'domain:', got %q", word)
	}
	name, ok := ctx.TakeWord()
	if !ok {
		return nil, parseErr(ctx, "domain has no name")
	}
	if _, err := ctx.TakeLine(); err != nil {
		return nil, err
	}

	dom := &ast.Domain{Name: name}
	for {
		cfg, err := parseConfig(ctx)
		if err == errEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		dom.Configs = append(dom.Configs, cfg)
	}
	return dom, nil
}

// configDepth, ruleRootDepth and actDepth are the fixed indentation levels
// of a config header, of its rule tree's root and of its act lines, per the
// two-level nesting domain/conf fixes in place below the domain header.
const (
	configDepth   = 1
	ruleRootDepth = 2
	actDepth      = 2
)

func parseConfig(ctx *lexctx.Context) (*ast.Config, error) {
	if ctx.Depth() != configDepth {
		return nil, errEOF
	}

	word, ok := ctx.TakeWord()
	if !ok || word != "conf:" {
		return nil, parseErr(ctx, "expected 'conf:', got %q", word)
	}
	name, err := parseTemplate(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &ast.Config{Name: name}

	// A config's rule tree is optional (a nil Rule always matches); since
	// acts sit at the very same depth as the rule root, one line of
	// lookahead is needed to tell "no rule, go straight to acts" apart
	// from "here is the rule". An act line's second word is always '=',
	// which is never ALL/ANY nor a valid predicate keyword.
	if looksLikeRuleLine(ctx, ruleRootDepth) {
		rule, err := parseRule(ctx, ruleRootDepth)
		if err != nil {
			return nil, err
		}
		cfg.Rule = rule
	}

	for {
		act, err := parseAct(ctx)
		if err == errEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cfg.Acts = append(cfg.Acts, act)
	}
	return cfg, nil
}

// looksLikeRuleLine reports whether the current line at depth opens a rule
// tree: either a branch keyword, or a criterion reference followed by a
// recognized predicate keyword.
func looksLikeRuleLine(ctx *lexctx.Context, depth int) bool {
	if ctx.Depth() != depth {
		return false
	}
	words := ctx.PeekWords()
	if len(words) == 0 {
		return false
	}
	if words[0] == "ALL" || words[0] == "ANY" {
		return true
	}
	return len(words) >= 2 && token.LookupPredicate(words[1]) != token.NOPRED
}

// parseRule parses one rule-tree node expected at exactly depth. A branch
// keyword (ALL/ANY) recurses for children at depth+1 until one no longer
// matches; any other depth mismatch — whether true EOF or a shallower
// sibling line closing this block — is reported as errEOF to the caller,
// never as a parse failure.
func parseRule(ctx *lexctx.Context, depth int) (*ast.Rule, error) {
	if ctx.Depth() != depth {
		return nil, errEOF
	}

	word, ok := ctx.TakeWord()
	if !ok {
		return nil, parseErr(ctx, "rule line has no content")
	}

	switch word {
	case "ALL", "ANY":
		comb := token.ALL
		if word == "ANY" {
			comb = token.ANY
		}
		if _, err := ctx.TakeLine(); err != nil {
			return nil, err
		}

		branch := &ast.Rule{Kind: ast.RuleBranch, Combinator: comb}
		for {
			child, err := parseRule(ctx, depth+1)
			if err == errEOF {
				break
			}
			if err != nil {
				return nil, err
			}
			branch.Branches = append(branch.Branches, child)
		}
		return branch, nil

	default:
		criterionRef := word
		predWord, ok := ctx.TakeWord()
		if !ok {
			return nil, parseErr(ctx, "rule %q has no predicate", criterionRef)
		}
		pred := token.LookupPredicate(predWord)
		if pred == token.NOPRED {
			return nil, parseErr(ctx, "rule %q uses unknown predicate %q", criterionRef, predWord)
		}

		operand, ok := ctx.TakeWord()
		if !ok {
			return nil, parseErr(ctx, "rule %q %s has no operand", criterionRef, pred)
		}

		leaf := &ast.Rule{Kind: ast.RuleLeaf, CriterionRef: criterionRef, Predicate: pred}
		if pred == token.IN || pred == token.NOTIN {
			iv, err := parseInterval(ctx, operand)
			if err != nil {
				return nil, err
			}
			leaf.IntervalRef = operand
			leaf.Interval = iv
		} else {
			leaf.StateRef = operand
		}

		if _, err := ctx.TakeLine(); err != nil {
			return nil, err
		}
		return leaf, nil
	}
}

// parseAct parses one "<plugin> = <template>" line. Acts always sit at the
// fixed depth directly under a config header, as siblings of the rule
// tree's root — not at whatever depth the rule tree happened to nest to.
func parseAct(ctx *lexctx.Context) (*ast.Act, error) {
	if ctx.Depth() != actDepth {
		return nil, errEOF
	}

	pluginRef, ok := ctx.TakeWord()
	if !ok {
		return nil, parseErr(ctx, "act line has no plugin name")
	}
	eq, ok := ctx.TakeWord()
	if !ok || eq != "=" {
		return nil, parseErr(ctx, "act for plugin %q is missing '='", pluginRef)
	}

	params, err := parseTemplate(ctx)
	if err != nil {
		return nil, err
	}
	return &ast.Act{PluginRef: pluginRef, Params: params}, nil
}
