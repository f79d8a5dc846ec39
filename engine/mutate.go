package engine

import (
	"github.com/openvela/go-pfw/ast"
	"github.com/openvela/go-pfw/token"
)

// SetInt sets a criterion's state directly, rejecting values that fail its
// validity check.
func (s *System) SetInt(name string, v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return err
	}
	if !c.Valid(v) {
		return badArg("%d is not a legal value for criterion %s", v, c.Name())
	}
	s.setState(c, v)
	return nil
}

// SetString converts v via the criterion's atoi, then sets it.
func (s *System) SetString(name, v string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return err
	}
	state, err := c.AtoI(v)
	if err != nil {
		return badArg("criterion %s: %v", c.Name(), err)
	}
	s.setState(c, state)
	return nil
}

// Include ORs the bitmask of v's literals into an Inclusive criterion's
// state.
func (s *System) Include(name, v string) error {
	return s.alterInclusive(name, v, func(state, mask int32) int32 { return state | mask })
}

// Exclude AND-NOTs the bitmask of v's literals out of an Inclusive
// criterion's state.
func (s *System) Exclude(name, v string) error {
	return s.alterInclusive(name, v, func(state, mask int32) int32 { return state &^ mask })
}

func (s *System) alterInclusive(name, v string, combine func(state, mask int32) int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return err
	}
	if c.Kind != token.INCLUSIVE {
		return wrongKind("criterion %s is not Inclusive", c.Name())
	}
	mask, err := c.AtoI(v)
	if err != nil {
		return badArg("criterion %s: %v", c.Name(), err)
	}
	s.setState(c, combine(c.State, mask))
	return nil
}

// Increase adds 1 to a Numerical criterion's state, rejecting the change
// if it would leave every declared interval.
func (s *System) Increase(name string) error {
	return s.step(name, 1)
}

// Decrease subtracts 1 from a Numerical criterion's state, rejecting the
// change if it would leave every declared interval.
func (s *System) Decrease(name string) error {
	return s.step(name, -1)
}

func (s *System) step(name string, delta int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return err
	}
	if c.Kind != token.NUMERICAL {
		return wrongKind("criterion %s is not Numerical", c.Name())
	}
	next := c.State + delta
	if !c.Valid(next) {
		return badArg("stepping criterion %s to %d leaves its legal intervals", c.Name(), next)
	}
	s.setState(c, next)
	return nil
}

// Reset restores a criterion to its parsed/loaded initial state.
func (s *System) Reset(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.criterionByName(name)
	if err != nil {
		return err
	}
	s.setState(c, c.Init)
	return nil
}

// setState assigns the new value, fires every listener registered on c in
// newest-first order, and invokes the save hook — all while s.mu is held,
// per §5's no-suspension-point, no-reentrancy rule. Callers must already
// hold the lock. No implicit apply happens here: the caller must call
// Apply separately to propagate the change to domains.
func (s *System) setState(c *ast.Criterion, v int32) {
	c.State = v

	literal, err := c.ItoA(v)
	hasLiteral := err == nil && c.Kind != token.NUMERICAL

	for _, l := range s.listeners[c] {
		l.callback(v, literal, hasLiteral)
	}

	if s.save != nil {
		s.save(c.Name(), v)
	}
}
