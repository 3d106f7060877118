package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/draftworks/plan2model/internal/monitoring"
	"github.com/draftworks/plan2model/internal/plan"
)

func init() {
	monitoring.SetLogger(nil)
}

// restoreConvertFlags snapshots the flag-bound package state so tests
// can mutate it freely.
func restoreConvertFlags(t *testing.T) {
	t.Helper()
	prevTuning, prevPresets, prevPreset := tuningPath, presetsPath, presetName
	prevStep := elevationStep
	t.Cleanup(func() {
		tuningPath, presetsPath, presetName = prevTuning, prevPresets, prevPreset
		elevationStep = prevStep
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootRegistersSubcommands(t *testing.T) {
	want := map[string]bool{"convert": false, "watch": false, "review": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConvertFlagDefaults(t *testing.T) {
	cases := []struct {
		name string
		def  string
	}{
		{"out", "model.json"},
		{"tuning", ""},
		{"presets", ""},
		{"preset", ""},
		{"db", ""},
		{"plots", ""},
		{"report", ""},
		{"elevation-step", "3000"},
		{"workers", "0"},
	}
	for _, c := range cases {
		f := convertCmd.Flags().Lookup(c.name)
		if f == nil {
			t.Fatalf("flag %q not registered", c.name)
		}
		if f.DefValue != c.def {
			t.Errorf("flag %q default = %q, want %q", c.name, f.DefValue, c.def)
		}
	}

	for _, name := range []string{"config", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag %q not registered", name)
		}
	}
}

func TestLoadConfigDefaultsWhenUnset(t *testing.T) {
	restoreConvertFlags(t)
	tuningPath, presetsPath, presetName = "", "", ""

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.GetSnapTolerance(); got != plan.DefaultSnapTolerance {
		t.Errorf("snap tolerance = %v, want default %v", got, plan.DefaultSnapTolerance)
	}
}

func TestLoadConfigTuningAndPresetOverlay(t *testing.T) {
	restoreConvertFlags(t)
	dir := t.TempDir()

	tuning := filepath.Join(dir, "site.json")
	writeFile(t, tuning, `{"snap_tolerance": 25}`)
	presets := filepath.Join(dir, "presets.yaml")
	writeFile(t, presets, "presets:\n  office:\n    angle_tolerance_deg: 2\n")

	tuningPath = tuning
	presetsPath = presets
	presetName = "office"

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.GetSnapTolerance(); got != 25 {
		t.Errorf("snap tolerance = %v, want tuning value 25", got)
	}
	if got := cfg.GetAngleTolerance(); got != 2 {
		t.Errorf("angle tolerance = %v, want preset value 2", got)
	}
}

func TestLoadConfigPresetRequiresPresetsFile(t *testing.T) {
	restoreConvertFlags(t)
	tuningPath, presetsPath = "", ""
	presetName = "office"

	if _, err := loadConfig(); err == nil {
		t.Error("--preset without --presets should be an error")
	}
}

func TestLoadFloorsElevations(t *testing.T) {
	restoreConvertFlags(t)
	dir := t.TempDir()

	ground := filepath.Join(dir, "ground.json")
	writeFile(t, ground, `{"primitives": [{"layer": "A-GRID", "points": [{"x": 0, "y": 0}, {"x": 1000, "y": 0}]}]}`)
	first := filepath.Join(dir, "first.json")
	writeFile(t, first, `{"primitives": []}`)
	roof := filepath.Join(dir, "roof.json")
	writeFile(t, roof, `{"floor": "top", "elevation": 7200, "primitives": []}`)

	elevationStep = 3000
	floors, err := loadFloors([]string{ground, first, roof})
	if err != nil {
		t.Fatal(err)
	}
	if len(floors) != 3 {
		t.Fatalf("floors = %d, want 3", len(floors))
	}

	// Names fall back to the file basename, elevations to the positional
	// step; an explicit elevation wins.
	if floors[0].Name != "ground" || floors[0].Elevation != 0 {
		t.Errorf("floor 0 = %q at %v, want ground at 0", floors[0].Name, floors[0].Elevation)
	}
	if floors[1].Name != "first" || floors[1].Elevation != 3000 {
		t.Errorf("floor 1 = %q at %v, want first at 3000", floors[1].Name, floors[1].Elevation)
	}
	if floors[2].Name != "top" || floors[2].Elevation != 7200 {
		t.Errorf("floor 2 = %q at %v, want top at 7200", floors[2].Name, floors[2].Elevation)
	}
}

func TestLoadFloorsMissingFile(t *testing.T) {
	restoreConvertFlags(t)
	missing := filepath.Join(t.TempDir(), "missing.json")
	_, err := loadFloors([]string{missing})
	if err == nil {
		t.Fatal("missing floor file should be an error")
	}
	if !strings.Contains(err.Error(), "missing.json") {
		t.Errorf("error should name the failing path, got %q", err)
	}
}
