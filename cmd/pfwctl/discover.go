package main

import (
	"github.com/openvela/go-pfw/lexctx"
	"github.com/openvela/go-pfw/parser"
)

// settingsFilePluginNames does its own throwaway parse of the settings
// file to collect every plugin name referenced by an act, so the REPL can
// offer a placeholder binding for each one before constructing the real
// System. Errors are swallowed here: Create will surface them properly
// once it parses the same file for real.
func settingsFilePluginNames(path string) []string {
	ctx, err := lexctx.New(path)
	if err != nil {
		return nil
	}
	domains, err := parser.ParseSettings(ctx)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, dom := range domains {
		for _, cfg := range dom.Configs {
			for _, act := range cfg.Acts {
				if !seen[act.PluginRef] {
					seen[act.PluginRef] = true
					names = append(names, act.PluginRef)
				}
			}
		}
	}
	return names
}
