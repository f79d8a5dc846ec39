// Package parser builds the unresolved criteria and settings models
// described by §4.2, out of the indent-aware word/line stream lexctx
// exposes. It is purely syntactic: every criterion, plugin and enum-literal
// reference is left as a bare string for the sanitizer package to resolve.
//
// The recursive-descent structure mirrors the teacher's parser package —
// one method per grammar production, accumulating position via the
// context rather than a token buffer — but every production returns
// (node, error) directly and stops at the first violation, since §4.2
// requires any syntactic violation to abort construction immediately
// rather than accumulate and continue the way the teacher's T-SQL parser
// does for recovery.
package parser

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/lexctx"
)

// ParseError reports a syntactic violation in a criteria or settings file.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// errEOF is an internal sentinel meaning "no more items at this depth",
// returned whenever a per-item parse function finds the context already
// past the depth it expects — whether because the file truly ended or
// because a shallower sibling line closed the enclosing block. It never
// escapes this package.
var errEOF = errors.New("parser: no more items")

func parseErr(ctx *lexctx.Context, format string, args ...any) error {
	return &ParseError{Path: ctx.Path(), Line: ctx.Line(), Msg: fmt.Sprintf(format, args...)}
}

// parseInterval parses an interval spec per §3: "[a,b]", "[a,]", "[,b]",
// or a bare integer (left == right == that integer), tried in that order.
func parseInterval(ctx *lexctx.Context, word string) (ast.Interval, error) {
	if strings.HasPrefix(word, "[") && strings.HasSuffix(word, "]") && len(word) >= 2 {
		inner := word[1 : len(word)-1]
		if comma := strings.IndexByte(inner, ','); comma >= 0 {
			leftText := strings.TrimSpace(inner[:comma])
			rightText := strings.TrimSpace(inner[comma+1:])

			left := int64(math.MinInt32)
			right := int64(math.MaxInt32)
			var err error

			if leftText != "" {
				left, err = strconv.ParseInt(leftText, 0, 32)
				if err != nil {
					return ast.Interval{}, parseErr(ctx, "bad interval %q: %v", word, err)
				}
			}
			if rightText != "" {
				right, err = strconv.ParseInt(rightText, 0, 32)
				if err != nil {
					return ast.Interval{}, parseErr(ctx, "bad interval %q: %v", word, err)
				}
			}

			return ast.Interval{Left: int32(left), Right: int32(right)}, nil
		}
	}

	v, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		return ast.Interval{}, parseErr(ctx, "bad interval %q: %v", word, err)
	}
	return ast.Interval{Left: int32(v), Right: int32(v)}, nil
}

// parseTemplate reads the remainder of the current line and splits it on
// '%' into a Template of raw amends; the sanitizer later reclassifies any
// token that names a criterion.
func parseTemplate(ctx *lexctx.Context) (ast.Template, error) {
	rest, err := ctx.TakeLine()
	if err != nil {
		return nil, err
	}

	parts := strings.Split(rest, "%")
	tmpl := make(ast.Template, 0, len(parts))
	for _, part := range parts {
		tmpl = append(tmpl, ast.Amend{Kind: ast.AmendRaw, Raw: part})
	}
	return tmpl, nil
}
