package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/draftworks/plan2model/internal/config"
	"github.com/draftworks/plan2model/internal/monitoring"
	"github.com/draftworks/plan2model/internal/plan"
	"github.com/draftworks/plan2model/internal/plan/export"
	"github.com/draftworks/plan2model/internal/plan/pipeline"
	"github.com/draftworks/plan2model/internal/plan/plot"
	"github.com/draftworks/plan2model/internal/plan/report"
	"github.com/draftworks/plan2model/internal/plan/source"
	"github.com/draftworks/plan2model/internal/plan/storage/sqlite"
)

var (
	outPath       string
	tuningPath    string
	presetsPath   string
	presetName    string
	dbPath        string
	plotDir       string
	reportPath    string
	elevationStep float64
	workers       int
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <floor.json> [floor.json...]",
	Short: "Convert floor line-work exports into a provisional model",
	Long: `Convert runs the full reconstruction pipeline over one or more
per-floor primitive exports and writes the provisional model document.

Floors are processed in argument order; a file that does not state its
own elevation gets a positional one (index times --elevation-step).

Example:
  plan2model convert ground.json first.json --out model.json
  plan2model convert *.json --tuning site.json --preset aia --plots plots/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&outPath, "out", "model.json", "output model document path")
	convertCmd.Flags().StringVar(&tuningPath, "tuning", "", "tuning JSON file (partial, overrides defaults)")
	convertCmd.Flags().StringVar(&presetsPath, "presets", "", "preset YAML file")
	convertCmd.Flags().StringVar(&presetName, "preset", "", "preset name to apply (requires --presets)")
	convertCmd.Flags().StringVar(&dbPath, "db", "", "sqlite run store path (optional)")
	convertCmd.Flags().StringVar(&plotDir, "plots", "", "directory for per-floor PNG plan plots (optional)")
	convertCmd.Flags().StringVar(&reportPath, "report", "", "HTML diagnostics report path (optional)")
	convertCmd.Flags().Float64Var(&elevationStep, "elevation-step", 3000, "elevation per floor index when files omit it")
	convertCmd.Flags().IntVar(&workers, "workers", 0, "concurrent floor limit (0 = GOMAXPROCS)")
}

// loadConfig resolves tuning file plus optional preset overlay.
func loadConfig() (*config.TuningConfig, error) {
	cfg := config.EmptyTuningConfig()
	if tuningPath != "" {
		loaded, err := config.LoadTuningConfig(tuningPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if presetName != "" {
		if presetsPath == "" {
			return nil, fmt.Errorf("--preset requires --presets")
		}
		pf, err := config.LoadPresets(presetsPath)
		if err != nil {
			return nil, err
		}
		cfg, err = pf.Apply(presetName, cfg)
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadFloors reads every floor export in argument order.
func loadFloors(paths []string) ([]pipeline.FloorInput, error) {
	floors := make([]pipeline.FloorInput, 0, len(paths))
	for i, path := range paths {
		f, err := source.Read(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		elevation := f.Elevation
		if elevation == 0 {
			elevation = float64(i) * elevationStep
		}
		floors = append(floors, pipeline.FloorInput{
			Name:       f.Floor,
			Elevation:  elevation,
			Primitives: f.Primitives,
		})
		monitoring.Debugf("loaded %s: floor %s, %d primitives", path, f.Floor, len(f.Primitives))
	}
	return floors, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := pipeline.New(cfg.Params(), cfg.Mapping())
	if err != nil {
		return err
	}
	rt.Workers = workers
	if rt.Workers == 0 {
		rt.Workers = cfg.GetWorkers()
	}

	floors, err := loadFloors(args)
	if err != nil {
		return err
	}

	m, err := rt.Run(context.Background(), floors)
	if err != nil {
		return err
	}

	return writeOutputs(m)
}

// writeOutputs persists the model document plus the optional review
// artefacts (plots, report, run store).
func writeOutputs(m *plan.Model) error {
	now := time.Now()
	if err := export.Write(outPath, m, now); err != nil {
		return err
	}
	doc := export.Build(m, now)
	fmt.Fprintf(os.Stdout, "wrote %s: %d grid lines, %d walls, %d columns, %d slabs (%d need review, %d rejections)\n",
		outPath, doc.Summary.GridLines, doc.Summary.Walls, doc.Summary.Columns,
		doc.Summary.Slabs, doc.Summary.NeedsReview, doc.Summary.Rejections)

	if plotDir != "" {
		n, err := plot.WriteFloorPlans(m, plotDir)
		if err != nil {
			return fmt.Errorf("plotting failed: %w", err)
		}
		monitoring.Logf("wrote %d floor plots to %s", n, plotDir)
	}

	if reportPath != "" {
		if err := report.Write(reportPath, m); err != nil {
			return fmt.Errorf("report failed: %w", err)
		}
		monitoring.Logf("wrote diagnostics report to %s", reportPath)
	}

	if dbPath != "" {
		store, err := sqlite.Open(dbPath)
		if err != nil {
			return fmt.Errorf("run store failed: %w", err)
		}
		defer store.Close()
		runID, err := store.SaveModel(m)
		if err != nil {
			return fmt.Errorf("run store failed: %w", err)
		}
		monitoring.Logf("saved run %d to %s", runID, dbPath)
	}

	return nil
}
