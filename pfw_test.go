package pfw

import (
	"testing"
)

func TestCreateApplyAndMutateEndToEnd(t *testing.T) {
	var delivered []string
	plugins := []PluginDef{
		{Name: "Router", Func: func(params string) { delivered = append(delivered, params) }},
	}

	sys, err := Create("internal/testdata/audio.criteria", "internal/testdata/audio.settings", plugins)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sys.Apply()
	if len(delivered) != 1 || delivered[0] != "headset" {
		t.Fatalf("delivered = %v, want [headset] (default config on first apply)", delivered)
	}

	if err := sys.SetString("Mode", "Loud"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	sys.Apply()
	if len(delivered) != 2 || delivered[1] != "speaker" {
		t.Fatalf("delivered = %v, want second entry speaker", delivered)
	}

	v, err := sys.GetString("Mode")
	if err != nil || v != "Loud" {
		t.Fatalf("GetString(Mode) = %q, %v", v, err)
	}

	min, max, err := sys.GetRange("Vol")
	if err != nil || min != 0 || max != 11 {
		t.Fatalf("GetRange(Vol) = %d,%d,%v", min, max, err)
	}

	if err := sys.Include("Flags", "Muted|Boosted"); err != nil {
		t.Fatalf("Include: %v", err)
	}
	contains, err := sys.Contain("Flags", "Muted")
	if err != nil || !contains {
		t.Fatalf("Contain(Muted) = %v, %v", contains, err)
	}

	dump := sys.Dump()
	if dump == "" {
		t.Fatalf("Dump returned empty string")
	}

	if _, err := sys.ExportFacts(); err != nil {
		t.Fatalf("ExportFacts: %v", err)
	}
}

func TestCreateRejectsDuplicatePluginNames(t *testing.T) {
	plugins := []PluginDef{
		{Name: "Router", Func: func(string) {}},
		{Name: "Router", Func: func(string) {}},
	}
	if _, err := Create("internal/testdata/audio.criteria", "internal/testdata/audio.settings", plugins); err == nil {
		t.Fatalf("expected error for duplicate plugin name")
	} else if AsKind(err) != KindBadArgument {
		t.Fatalf("AsKind = %v, want BadArgument", AsKind(err))
	}
}

func TestCreateRejectsMissingCriteriaFile(t *testing.T) {
	if _, err := Create("internal/testdata/does-not-exist.criteria", "internal/testdata/audio.settings", nil); err == nil {
		t.Fatalf("expected error for missing criteria file")
	} else if AsKind(err) != KindResourceError {
		t.Fatalf("AsKind = %v, want ResourceError", AsKind(err))
	}
}

func TestApplyNoOpOnNilSystem(t *testing.T) {
	var sys *System
	sys.Apply()
}

func TestDestroyInvokesReleaseHookOnce(t *testing.T) {
	calls := 0
	plugins := []PluginDef{{Name: "Router", Func: func(string) {}}}
	sys, err := Create("internal/testdata/audio.criteria", "internal/testdata/audio.settings", plugins,
		WithReleaseHook(func() { calls++ }))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sys.Destroy()
	sys.Destroy()
	if calls != 1 {
		t.Fatalf("release hook called %d times, want 1", calls)
	}
}

func TestCreateRejectsMalformedCriteriaFile(t *testing.T) {
	if _, err := Create("internal/testdata/malformed.criteria", "internal/testdata/audio.settings", nil); err == nil {
		t.Fatalf("expected error for malformed criteria file")
	} else if AsKind(err) != KindParseError {
		t.Fatalf("AsKind = %v, want ParseError", AsKind(err))
	}
}
