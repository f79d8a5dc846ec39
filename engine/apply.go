package engine

import "github.com/openvela/go-pfw/ast"

// Apply runs the §4.5 apply algorithm: for each domain in declaration
// order, find the first config whose rule matches, update domain.Current,
// and — if the selection changed or the interpolated name changed — fire
// every one of that config's acts exactly once.
func (s *System) Apply() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dom := range s.domains {
		for _, cfg := range dom.Configs {
			if !ruleMatch(cfg.Rule) {
				continue
			}

			need := dom.Current != cfg
			if need {
				dom.Current = cfg
			}

			name := interpolate(cfg.Name)
			if need || cfg.Current == "" || cfg.Current != name {
				cfg.Current = name
				for _, act := range cfg.Acts {
					s.fireAct(act)
				}
			}
			break
		}
	}
}

// fireAct interpolates an act's parameters, invokes its plugin callback,
// and records the delivered parameter string for later inspection.
func (s *System) fireAct(act *ast.Act) {
	binding, ok := s.plugins[act.Plugin.Name]
	if !ok {
		s.logger.WithField("plugin", act.Plugin.Name).Warn("act references plugin with no registered callback")
		return
	}

	params := interpolate(act.Params)
	binding.lastParams = params
	binding.hasLast = true
	if binding.callback != nil {
		binding.callback(params)
	}
}
