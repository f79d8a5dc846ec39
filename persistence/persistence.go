// Package persistence provides a reference implementation of the §4.6
// load/save hook contract, backed by a flat YAML document on disk. It is
// not part of the core framework — §4.6 deliberately leaves the
// persistence medium undefined — but gives embedders a ready-made
// adapter instead of a bare-stdlib file format of our own invention.
package persistence

import (
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store is a criterion-state snapshot keyed by canonical criterion name,
// persisted to a single YAML file.
type Store struct {
	path  string
	onErr func(error)

	mu     sync.Mutex
	states map[string]int32
}

// Option configures an optional behavior of Open.
type Option func(*Store)

// WithErrorHandler registers a callback for Save's best-effort I/O and
// marshal failures, since Save itself cannot return an error without
// breaking the pfw.SaveFunc signature it's bound to.
func WithErrorHandler(onErr func(error)) Option {
	return func(s *Store) { s.onErr = onErr }
}

// Open loads path if it exists, or starts with an empty snapshot if it
// does not. The file is not created until the first Save.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, states: make(map[string]int32)}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &s.states); err != nil {
		return nil, err
	}
	return s, nil
}

// Load satisfies pfw.LoadFunc: it returns the persisted state for name, if
// any was recorded.
func (s *Store) Load(name string) (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.states[name]
	return v, ok
}

// Save satisfies pfw.SaveFunc: it records the new state in memory and
// rewrites the backing file. Write failures cannot propagate back through
// the SaveFunc signature, so they are reported via the handler passed to
// WithErrorHandler instead of being swallowed outright.
func (s *Store) Save(name string, state int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[name] = state

	data, err := yaml.Marshal(s.states)
	if err != nil {
		s.reportErr(err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.reportErr(err)
	}
}

func (s *Store) reportErr(err error) {
	if s.onErr != nil {
		s.onErr(err)
	}
}
