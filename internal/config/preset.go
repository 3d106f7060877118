package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Preset is one named drawing-convention bundle: layer patterns and
// tolerance overrides for a CAD office standard. Presets live in YAML
// because they are hand-edited and shared between projects; per-run
// tuning stays JSON.
type Preset struct {
	Description string `yaml:"description,omitempty"`

	SnapTolerance    *float64 `yaml:"snap_tolerance,omitempty"`
	AngleTolerance   *float64 `yaml:"angle_tolerance_deg,omitempty"`
	MinLineLength    *float64 `yaml:"min_line_length,omitempty"`
	SpacingTolerance *float64 `yaml:"spacing_tolerance,omitempty"`

	WallThickness *float64 `yaml:"default_wall_thickness,omitempty"`
	ColumnSize    *float64 `yaml:"default_column_size,omitempty"`
	SlabThickness *float64 `yaml:"slab_thickness,omitempty"`

	GridLayers  []string `yaml:"grid_layers,omitempty"`
	GridExclude []string `yaml:"grid_exclude,omitempty"`
	WallLayers  []string `yaml:"wall_layers,omitempty"`
	WallExclude []string `yaml:"wall_exclude,omitempty"`
}

// PresetFile is the on-disk shape: a map of preset name to preset.
type PresetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// LoadPresets reads a preset YAML file.
func LoadPresets(path string) (*PresetFile, error) {
	cleanPath := filepath.Clean(path)
	switch filepath.Ext(cleanPath) {
	case ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("preset file must have .yaml or .yml extension, got %q", filepath.Ext(cleanPath))
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var pf PresetFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse preset YAML: %w", err)
	}
	if len(pf.Presets) == 0 {
		return nil, fmt.Errorf("preset file %s defines no presets", cleanPath)
	}
	return &pf, nil
}

// Names lists the defined preset names, sorted.
func (pf *PresetFile) Names() []string {
	names := make([]string, 0, len(pf.Presets))
	for name := range pf.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overlays the named preset onto a tuning config. Fields the
// preset sets win over the tuning file; fields it leaves unset pass
// through. The input config is not modified.
func (pf *PresetFile) Apply(name string, cfg *TuningConfig) (*TuningConfig, error) {
	preset, ok := pf.Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (have: %v)", name, pf.Names())
	}

	merged := *cfg
	overlayFloat(&merged.SnapTolerance, preset.SnapTolerance)
	overlayFloat(&merged.AngleTolerance, preset.AngleTolerance)
	overlayFloat(&merged.MinLineLength, preset.MinLineLength)
	overlayFloat(&merged.SpacingTolerance, preset.SpacingTolerance)
	overlayFloat(&merged.WallThickness, preset.WallThickness)
	overlayFloat(&merged.ColumnSize, preset.ColumnSize)
	overlayFloat(&merged.SlabThickness, preset.SlabThickness)
	if len(preset.GridLayers) > 0 {
		merged.GridLayers = preset.GridLayers
	}
	if len(preset.GridExclude) > 0 {
		merged.GridExclude = preset.GridExclude
	}
	if len(preset.WallLayers) > 0 {
		merged.WallLayers = preset.WallLayers
	}
	if len(preset.WallExclude) > 0 {
		merged.WallExclude = preset.WallExclude
	}

	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("preset %q produces invalid configuration: %w", name, err)
	}
	return &merged, nil
}

func overlayFloat(dst **float64, src *float64) {
	if src != nil {
		*dst = src
	}
}
