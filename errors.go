package pfw

import (
	goerrors "github.com/go-errors/errors"

	"github.com/openvela/go-pfw/engine"
	"github.com/openvela/go-pfw/lexctx"
	"github.com/openvela/go-pfw/parser"
	"github.com/openvela/go-pfw/sanitizer"
)

// Kind classifies every error go-pfw returns, per §7. Callers that need to
// branch on failure category (rather than match a message string) should
// call AsKind.
type Kind int

const (
	// KindNone marks a nil/no-error value; AsKind returns it for errors
	// that did not originate from this package.
	KindNone Kind = iota
	KindBadArgument
	KindWrongKind
	KindNotImplemented
	KindParseError
	KindResourceError
)

func (k Kind) String() string {
	switch k {
	case KindBadArgument:
		return "BadArgument"
	case KindWrongKind:
		return "WrongKind"
	case KindNotImplemented:
		return "NotImplemented"
	case KindParseError:
		return "ParseError"
	case KindResourceError:
		return "ResourceError"
	default:
		return "None"
	}
}

// kindError is the concrete error type every public operation returns on
// failure. It wraps the underlying cause with github.com/go-errors/errors
// so a stack trace survives up to Create's caller, the way an embedder
// debugging a rejected system needs.
type kindError struct {
	kind Kind
	op   string
	name string
	err  error
}

func newErr(kind Kind, op, name string, cause error) error {
	wrapped := cause
	if wrapped == nil {
		wrapped = goerrors.Errorf("%s", kind)
	} else if _, ok := wrapped.(*goerrors.Error); !ok {
		wrapped = goerrors.Wrap(cause, 1)
	}
	return &kindError{kind: kind, op: op, name: name, err: wrapped}
}

func (e *kindError) Error() string {
	if e.name != "" {
		return e.op + " " + e.name + ": " + e.kind.String() + ": " + e.err.Error()
	}
	return e.op + ": " + e.kind.String() + ": " + e.err.Error()
}

func (e *kindError) Unwrap() error { return e.err }

// AsKind extracts the Kind from an error returned by this package, or
// KindNone if err is nil or came from elsewhere.
func AsKind(err error) Kind {
	if err == nil {
		return KindNone
	}
	if ke, ok := err.(*kindError); ok {
		return ke.kind
	}
	if _, ok := err.(*ParseError); ok {
		return KindParseError
	}
	return KindNone
}

// ParseError reports a syntactic violation in a criteria or settings file,
// including indentation errors surfaced by lexctx.IndentError.
type ParseError struct {
	Path string
	Line int
	Msg  string
	err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return e.Path + ": " + e.Msg
}

func (e *ParseError) Unwrap() error { return e.err }

// wrapParseErr normalizes a parser or lexctx failure into a *ParseError,
// preserving path/line when the underlying error carries it.
func wrapParseErr(path string, err error) error {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *parser.ParseError:
		return &ParseError{Path: e.Path, Line: e.Line, Msg: e.Msg, err: err}
	case *lexctx.IndentError:
		return &ParseError{Path: e.Path, Line: e.Line, Msg: e.Error(), err: err}
	default:
		return &ParseError{Path: path, Msg: err.Error(), err: err}
	}
}

// wrapSanitizerErr maps a sanitizer.Error to a Kind-carrying error.
func wrapSanitizerErr(err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*sanitizer.Error); ok {
		kind := KindBadArgument
		if se.Kind == sanitizer.WrongKind {
			kind = KindWrongKind
		}
		return newErr(kind, "Create", "", err)
	}
	return newErr(KindBadArgument, "Create", "", err)
}

// wrapEngineErr maps an engine.Error to a Kind-carrying error, naming the
// operation and criterion/domain involved.
func wrapEngineErr(op, name string, err error) error {
	if err == nil {
		return nil
	}
	if ee, ok := err.(*engine.Error); ok {
		kind := KindBadArgument
		switch ee.Kind {
		case engine.WrongKind:
			kind = KindWrongKind
		case engine.NotImplemented:
			kind = KindNotImplemented
		}
		return newErr(kind, op, name, err)
	}
	return newErr(KindBadArgument, op, name, err)
}
