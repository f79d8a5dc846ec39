// Package lexctx implements the indentation-aware line/word reader shared by
// the criteria and settings parsers. It plays the role the teacher's lexer
// package plays for T-SQL, except the unit of lexing here is the logical
// line and the whitespace-delimited word, not a token stream: the grammar
// this reads is indentation-sensitive rather than punctuation-delimited.
package lexctx

import (
	"fmt"
	"os"
	"strings"
)

// EOF is the sentinel depth reported once every non-empty line has been
// consumed.
const EOF = -1

// IndentError reports an inconsistent or malformed indentation prefix.
type IndentError struct {
	Path string
	Line int
	Text string
}

func (e *IndentError) Error() string {
	return fmt.Sprintf("%s:%d: inconsistent indentation: %q", e.Path, e.Line, e.Text)
}

// Context reads a text file as a stream of indent-aware logical lines and
// whitespace-separated words, as described by §4.1.
type Context struct {
	path   string
	lines  []string // non-empty lines only, in file order
	lineNo []int    // 1-based source line number for each entry in lines

	pos    int    // index into lines of the line currently being consumed
	cursor string // unconsumed remainder of lines[pos]
	depth  int
	indent byte // 0 (unset), ' ' or '\t'
}

// New reads path and primes the context at its first logical line.
func New(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ctx := &Context{path: path, pos: -1}
	for i, raw := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ctx.lines = append(ctx.lines, raw)
		ctx.lineNo = append(ctx.lineNo, i+1)
	}

	if err := ctx.advance(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Depth returns the indentation depth of the current logical line, or EOF
// once the file is exhausted.
func (c *Context) Depth() int {
	return c.depth
}

// Line returns the 1-based source line number of the current logical
// line, or -1 at EOF. Used only for diagnostics.
func (c *Context) Line() int {
	if c.depth == EOF || c.pos < 0 || c.pos >= len(c.lineNo) {
		return -1
	}
	return c.lineNo[c.pos]
}

// Path returns the file path the context was opened from.
func (c *Context) Path() string {
	return c.path
}

// TakeWord returns the next whitespace-delimited token on the current line.
// It returns ok=false when the line is exhausted.
func (c *Context) TakeWord() (word string, ok bool) {
	if c.depth == EOF {
		return "", false
	}

	c.cursor = strings.TrimLeft(c.cursor, " \t")
	if c.cursor == "" {
		return "", false
	}

	i := strings.IndexAny(c.cursor, " \t")
	if i < 0 {
		word, c.cursor = c.cursor, ""
	} else {
		word, c.cursor = c.cursor[:i], c.cursor[i+1:]
	}
	return word, true
}

// PeekWords returns the whitespace-delimited words remaining on the current
// line without consuming them. Used by the parser to decide, with one line
// of lookahead, whether a config's contents open with a rule tree or go
// straight to its acts.
func (c *Context) PeekWords() []string {
	if c.depth == EOF {
		return nil
	}
	return strings.Fields(c.cursor)
}

// TakeLine returns the unconsumed remainder of the current line, then
// advances to the next non-empty line (recomputing Depth).
func (c *Context) TakeLine() (string, error) {
	if c.depth == EOF {
		return "", nil
	}

	rest := strings.TrimLeft(c.cursor, " \t")
	if err := c.advance(); err != nil {
		return "", err
	}
	return rest, nil
}

// advance moves to the next non-empty line, recomputing depth and the
// indent-consistency check, or sets Depth to EOF when none remains.
func (c *Context) advance() error {
	c.pos++
	if c.pos >= len(c.lines) {
		c.depth = EOF
		c.cursor = ""
		return nil
	}

	line := c.lines[c.pos]
	depth, body, err := c.splitIndent(line)
	if err != nil {
		return err
	}

	c.depth = depth
	c.cursor = body
	return nil
}

// splitIndent computes the indentation depth of line and returns the text
// following the indent prefix, per §4.1's tabs-xor-4-spaces rule.
func (c *Context) splitIndent(line string) (depth int, body string, err error) {
	var tabs, spaces int
	i := 0
	for i < len(line) && (line[i] == '\t' || line[i] == ' ') {
		if line[i] == '\t' {
			tabs++
		} else {
			spaces++
		}
		i++
	}

	switch {
	case tabs > 0 && spaces > 0:
		return 0, "", c.indentErr(line)
	case tabs > 0:
		if c.indent == ' ' {
			return 0, "", c.indentErr(line)
		}
		c.indent = '\t'
		return tabs, line[i:], nil
	case spaces > 0:
		if spaces%4 != 0 || c.indent == '\t' {
			return 0, "", c.indentErr(line)
		}
		c.indent = ' '
		return spaces / 4, line[i:], nil
	default:
		return 0, line[i:], nil
	}
}

func (c *Context) indentErr(line string) error {
	return &IndentError{Path: c.path, Line: c.lineNo[c.pos], Text: line}
}
