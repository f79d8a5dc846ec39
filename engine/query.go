package engine

import (
	"github.com/google/uuid"

	"github.com/openvela/go-pfw/token"
)

// GetInt returns a criterion's current integer state.
func (s *System) GetInt(name string) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return 0, err
	}
	return c.State, nil
}

// GetString renders a criterion's current state via itoa; Numerical
// criteria are rejected, matching §4.6's public-surface policy (itoa
// itself can render a Numerical state, but getstring does not expose it).
func (s *System) GetString(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return "", err
	}
	if c.Kind == token.NUMERICAL {
		return "", wrongKind("criterion %s is Numerical; use GetInt", c.Name())
	}
	s2, err := c.ItoA(c.State)
	if err != nil {
		return "", badArg("criterion %s: %v", c.Name(), err)
	}
	return s2, nil
}

// GetRange returns a Numerical criterion's sole legal interval. It fails
// with NotImplemented when the criterion declares any number of intervals
// other than exactly one, per §4.6.
func (s *System) GetRange(name string) (min, max int32, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return 0, 0, err
	}
	if c.Kind != token.NUMERICAL {
		return 0, 0, wrongKind("criterion %s is not Numerical", c.Name())
	}
	if len(c.Intervals) != 1 {
		return 0, 0, notImplemented("criterion %s does not declare exactly one interval", c.Name())
	}
	iv := c.Intervals[0]
	return iv.Left, iv.Right, nil
}

// Contain reports whether an Inclusive criterion's state overlaps the
// bitmask of v's literals.
func (s *System) Contain(name, v string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return false, err
	}
	if c.Kind != token.INCLUSIVE {
		return false, wrongKind("criterion %s is not Inclusive", c.Name())
	}
	mask, err := c.AtoI(v)
	if err != nil {
		return false, badArg("criterion %s: %v", c.Name(), err)
	}
	return c.State&mask != 0, nil
}

// Subscribe attaches a listener to a criterion's state changes and returns
// an opaque token for later Unsubscribe. New listeners are prepended, so
// fan-out within a single setState call happens newest-first, per §5.
func (s *System) Subscribe(name string, cb func(state int32, literal string, hasLiteral bool)) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return Token{}, err
	}

	tok := Token(uuid.New())
	entry := listenerEntry{token: tok, callback: cb}
	s.listeners[c] = append([]listenerEntry{entry}, s.listeners[c]...)
	return tok, nil
}

// Unsubscribe detaches a listener. It is silent (a no-op) if tok is
// unknown, mirroring §4.6's "silent on null token" contract.
func (s *System) Unsubscribe(tok Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c, entries := range s.listeners {
		for i, e := range entries {
			if e.token == tok {
				s.listeners[c] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}
