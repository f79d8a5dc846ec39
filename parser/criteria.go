package parser

import (
	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/lexctx"
	"github.com/openvela/go-pfw/token"
)

// maxInclusiveLiterals is the Inclusive criterion's bitmask width: literal
// index 31 would need bit 31 of the int32 state, the sign bit, so §3 caps
// the count at 31.
const maxInclusiveLiterals = 31

// ParseCriteria reads every criterion declaration from ctx until EOF, per
// the grammar in §4.2.
func ParseCriteria(ctx *lexctx.Context) ([]*ast.Criterion, error) {
	var criteria []*ast.Criterion
	for {
		c, err := parseCriterion(ctx)
		if err == errEOF {
			break
		}
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// parseCriterion parses one "<Kind> name+ : range+ [= default]" line.
func parseCriterion(ctx *lexctx.Context) (*ast.Criterion, error) {
	if ctx.Depth() == lexctx.EOF {
		return nil, errEOF
	}

	word, ok := ctx.TakeWord()
	if !ok {
		return nil, parseErr(ctx, "criterion declaration has no type")
	}
	kind := token.LookupCriterionKind(word)
	if kind == token.ILLEGAL {
		return nil, parseErr(ctx, "unknown criterion type %q", word)
	}

	crit := &ast.Criterion{Kind: kind}

	for {
		word, ok := ctx.TakeWord()
		if !ok {
			return nil, parseErr(ctx, "criterion %q has no ':' before its ranges", crit.Name())
		}
		if word == ":" {
			break
		}
		crit.Names = append(crit.Names, word)
	}
	if len(crit.Names) == 0 {
		return nil, parseErr(ctx, "criterion has no name before ':'")
	}

	nb := 0
	for {
		word, ok := ctx.TakeWord()
		if !ok {
			if nb == 0 {
				return nil, parseErr(ctx, "criterion %q has no ranges after ':'", crit.Name())
			}
			break
		}

		if word == "=" {
			def, ok := ctx.TakeWord()
			if !ok {
				return nil, parseErr(ctx, "criterion %q has '=' with no default", crit.Name())
			}
			crit.InitText = def
			crit.HasInit = true
			break
		}

		switch kind {
		case token.NUMERICAL:
			iv, err := parseInterval(ctx, word)
			if err != nil {
				return nil, err
			}
			crit.Intervals = append(crit.Intervals, iv)
		case token.INCLUSIVE:
			if len(crit.Literals) >= maxInclusiveLiterals {
				return nil, parseErr(ctx, "inclusive criterion %q has more than %d literals",
					crit.Name(), maxInclusiveLiterals)
			}
			crit.Literals = append(crit.Literals, word)
		default:
			crit.Literals = append(crit.Literals, word)
		}
		nb++
	}

	if _, err := ctx.TakeLine(); err != nil {
		return nil, err
	}
	return crit, nil
}
