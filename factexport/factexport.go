// Package factexport snapshots a running system's criteria and domain
// state as Mangle facts, per SPEC_FULL.md's domain-stack provision for
// handing a point-in-time snapshot to an external rule engine or
// analysis tool. It is pure export: nothing here feeds derived facts
// back into the framework, and it takes no lock of its own, so callers
// that need a consistent snapshot should capture it from within a
// listener or otherwise serialize it against concurrent mutation.
package factexport

import (
	"fmt"

	mangle "github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"

	"github.com/openvela/go-pfw/ast"
)

// Predicate symbols used for every exported fact. Kept unexported and
// fixed, rather than configurable, since the point of the export is a
// stable shape an external .mg program can Decl against.
const (
	predCriterion    = "criterion"
	predLiteral      = "criterion_literal"
	predDomain       = "domain"
	predDomainConfig = "domain_config"
)

// Snapshot builds an in-memory Mangle fact store holding:
//
//	criterion(Name, Kind, State).
//	criterion_literal(Name, Index, Literal).
//	domain(DomainName, ActiveConfigName).
//	domain_config(DomainName, ConfigName).
//
// Name/Kind/ActiveConfigName/ConfigName are Mangle name constants (the
// "/foo" form); State is a Mangle number. A domain with no Apply yet has
// ActiveConfigName "/<none>".
func Snapshot(criteria []*ast.Criterion, domains []*ast.Domain) (factstore.FactStore, error) {
	store := factstore.NewSimpleInMemoryStore()

	for _, c := range criteria {
		name, err := mangle.Name("/" + c.Name())
		if err != nil {
			return nil, fmt.Errorf("factexport: criterion name %q: %w", c.Name(), err)
		}
		kind, err := mangle.Name("/" + c.Kind.String())
		if err != nil {
			return nil, fmt.Errorf("factexport: criterion kind %s: %w", c.Kind, err)
		}
		store.Add(mangle.NewAtom(predCriterion, name, kind, mangle.Number(int64(c.State))))

		for i, lit := range c.Literals {
			litName, err := mangle.Name("/" + lit)
			if err != nil {
				return nil, fmt.Errorf("factexport: literal %q of %s: %w", lit, c.Name(), err)
			}
			store.Add(mangle.NewAtom(predLiteral, name, mangle.Number(int64(i)), litName))
		}
	}

	for _, d := range domains {
		domName, err := mangle.Name("/" + d.Name)
		if err != nil {
			return nil, fmt.Errorf("factexport: domain name %q: %w", d.Name, err)
		}

		activeText := "<none>"
		if d.Current != nil {
			activeText = d.Current.Current
		}
		active, err := mangle.Name("/" + activeText)
		if err != nil {
			return nil, fmt.Errorf("factexport: active config %q of %s: %w", activeText, d.Name, err)
		}
		store.Add(mangle.NewAtom(predDomain, domName, active))

		for _, cfg := range d.Configs {
			if cfg.Current == "" {
				continue
			}
			cfgName, err := mangle.Name("/" + cfg.Current)
			if err != nil {
				return nil, fmt.Errorf("factexport: config name %q of %s: %w", cfg.Current, d.Name, err)
			}
			store.Add(mangle.NewAtom(predDomainConfig, domName, cfgName))
		}
	}

	return store, nil
}
