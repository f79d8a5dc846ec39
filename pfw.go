// Package pfw implements the Parameter Framework: a declarative rule
// engine that maps externally observed conditions ("criteria") to
// named configurations of downstream components ("domains"), driving
// plugin callbacks when the active configuration changes.
//
// A System is built once from a criteria file and a settings file, wired
// against a caller-supplied set of plugin callbacks, and from then on
// exposes a small, mutex-serialized surface for reading and mutating
// criterion state and triggering re-evaluation. See Create.
package pfw

import (
	"github.com/google/mangle/factstore"
	"github.com/sirupsen/logrus"

	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/engine"
	"github.com/openvela/go-pfw/factexport"
	"github.com/openvela/go-pfw/lexctx"
	"github.com/openvela/go-pfw/parser"
	"github.com/openvela/go-pfw/sanitizer"
)

// PluginDef registers one act target: Name is what Act lines reference in
// the settings file, Func is invoked with the interpolated parameter
// string whenever one of its acts fires.
type PluginDef struct {
	Name string
	Func engine.PluginFunc
}

// LoadFunc lets the host override a criterion's parsed default during
// construction — the Go-idiomatic replacement for the C on_load cookie
// callback, with the cookie itself replaced by a closure's captured
// state.
type LoadFunc func(canonicalName string) (state int32, ok bool)

// SaveFunc lets the host persist a criterion's state on every change.
type SaveFunc func(canonicalName string, state int32)

// ReleaseFunc is invoked once by Destroy, the Go-idiomatic replacement
// for the C on_release(cookie) callback: the cookie itself is whatever
// state the caller's closure already captured, the same substitution
// already made for LoadFunc and SaveFunc.
type ReleaseFunc func()

// System is a constructed, ready-to-use parameter framework instance.
type System struct {
	eng     *engine.System
	release ReleaseFunc
}

// Option configures optional behavior of Create.
type Option func(*options)

type options struct {
	logger  *logrus.Logger
	load    LoadFunc
	save    SaveFunc
	release ReleaseFunc
}

// WithLogger overrides the logrus.Logger used for structured diagnostics;
// the default is logrus's standard logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithLoadHook installs a LoadFunc consulted for every criterion while
// Create computes initial state.
func WithLoadHook(load LoadFunc) Option {
	return func(o *options) { o.load = load }
}

// WithSaveHook installs a SaveFunc invoked after every criterion mutation.
func WithSaveHook(save SaveFunc) Option {
	return func(o *options) { o.save = save }
}

// WithReleaseHook installs a ReleaseFunc invoked once by Destroy — the
// caller's chance to release whatever resource it handed to Create.
func WithReleaseHook(release ReleaseFunc) Option {
	return func(o *options) { o.release = release }
}

// Create parses criteriaPath and settingsPath, sanitizes and resolves the
// resulting model against plugins, and returns a ready System. On any
// failure nothing is retained; there is no partially-constructed System to
// clean up.
func Create(criteriaPath, settingsPath string, plugins []PluginDef, opts ...Option) (*System, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}

	criteria, err := parseCriteriaFile(criteriaPath)
	if err != nil {
		return nil, err
	}

	domains, err := parseSettingsFile(settingsPath)
	if err != nil {
		return nil, err
	}

	pluginNames := make(map[string]bool, len(plugins))
	pluginFuncs := make(map[string]engine.PluginFunc, len(plugins))
	for _, p := range plugins {
		if p.Name == "" {
			return nil, newErr(KindBadArgument, "Create", "", nil)
		}
		if pluginNames[p.Name] {
			return nil, newErr(KindBadArgument, "Create", p.Name, nil)
		}
		pluginNames[p.Name] = true
		pluginFuncs[p.Name] = p.Func
	}

	var load sanitizer.LoadFunc
	if o.load != nil {
		load = sanitizer.LoadFunc(o.load)
	}

	if err := sanitizer.Sanitize(criteria, domains, pluginNames, load); err != nil {
		return nil, wrapSanitizerErr(err)
	}

	var save engine.SaveFunc
	if o.save != nil {
		save = engine.SaveFunc(o.save)
	}

	eng := engine.New(criteria, domains, pluginFuncs, save, o.logger)
	return &System{eng: eng, release: o.release}, nil
}

// Destroy invokes the release hook installed via WithReleaseHook, if any —
// the caller's opportunity to release whatever resource it handed to
// Create. A System holds no resource of its own that needs explicit
// release, so Destroy frees nothing else. It is idempotent and safe to
// call on nil; a second call does not re-invoke the hook.
func (s *System) Destroy() {
	if s == nil || s.release == nil {
		return
	}
	release := s.release
	s.release = nil
	release()
}

// Apply runs the evaluation engine's apply algorithm (§4.5). It is a
// no-op on a nil System.
func (s *System) Apply() {
	if s == nil {
		return
	}
	s.eng.Apply()
}

func (s *System) SetInt(name string, v int32) error {
	return wrapEngineErr("SetInt", name, s.eng.SetInt(name, v))
}

func (s *System) SetString(name, v string) error {
	return wrapEngineErr("SetString", name, s.eng.SetString(name, v))
}

func (s *System) Include(name, v string) error {
	return wrapEngineErr("Include", name, s.eng.Include(name, v))
}

func (s *System) Exclude(name, v string) error {
	return wrapEngineErr("Exclude", name, s.eng.Exclude(name, v))
}

func (s *System) Increase(name string) error {
	return wrapEngineErr("Increase", name, s.eng.Increase(name))
}

func (s *System) Decrease(name string) error {
	return wrapEngineErr("Decrease", name, s.eng.Decrease(name))
}

func (s *System) Reset(name string) error {
	return wrapEngineErr("Reset", name, s.eng.Reset(name))
}

func (s *System) GetInt(name string) (int32, error) {
	v, err := s.eng.GetInt(name)
	return v, wrapEngineErr("GetInt", name, err)
}

func (s *System) GetString(name string) (string, error) {
	v, err := s.eng.GetString(name)
	return v, wrapEngineErr("GetString", name, err)
}

func (s *System) GetRange(name string) (min, max int32, err error) {
	min, max, err = s.eng.GetRange(name)
	return min, max, wrapEngineErr("GetRange", name, err)
}

func (s *System) Contain(name, v string) (bool, error) {
	ok, err := s.eng.Contain(name, v)
	return ok, wrapEngineErr("Contain", name, err)
}

// Token is an opaque handle returned by Subscribe.
type Token = engine.Token

// Subscribe attaches cb to a criterion's state changes. literal is the
// itoa form of the new state, or "" with hasLiteral=false when conversion
// is not meaningful (Numerical criteria).
func (s *System) Subscribe(name string, cb func(state int32, literal string, hasLiteral bool)) (Token, error) {
	tok, err := s.eng.Subscribe(name, cb)
	return tok, wrapEngineErr("Subscribe", name, err)
}

// Unsubscribe detaches a listener; silent on an unknown token.
func (s *System) Unsubscribe(tok Token) {
	s.eng.Unsubscribe(tok)
}

// Dump produces a human-readable snapshot of every criterion and domain.
func (s *System) Dump() string {
	return s.eng.Dump()
}

// ExportFacts snapshots the system's current criteria and domain state as
// a Mangle fact store, for handing off to an external rule engine or
// analysis tool. See package factexport for the exact predicate shapes.
func (s *System) ExportFacts() (factstore.FactStore, error) {
	criteria, domains := s.eng.Snapshot()
	return factexport.Snapshot(criteria, domains)
}

func parseCriteriaFile(path string) ([]*ast.Criterion, error) {
	ctx, err := lexctx.New(path)
	if err != nil {
		return nil, newErr(KindResourceError, "Create", path, err)
	}
	criteria, err := parser.ParseCriteria(ctx)
	if err != nil {
		return nil, wrapParseErr(path, err)
	}
	return criteria, nil
}

func parseSettingsFile(path string) ([]*ast.Domain, error) {
	ctx, err := lexctx.New(path)
	if err != nil {
		return nil, newErr(KindResourceError, "Create", path, err)
	}
	domains, err := parser.ParseSettings(ctx)
	if err != nil {
		return nil, wrapParseErr(path, err)
	}
	return domains, nil
}
