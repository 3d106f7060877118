package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/draftworks/plan2model/internal/monitoring"
	"github.com/draftworks/plan2model/internal/plan/pipeline"
)

var watchDebounce time.Duration

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory of floor exports and reconvert on change",
	Long: `Watch monitors a directory for .json floor exports and reruns the
full conversion whenever one is created or modified. All .json files
in the directory form the floor set, sorted by filename, so drawing
codecs can drop floors in one at a time.

Writes are debounced: a burst of file events triggers one conversion.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&outPath, "out", "model.json", "output model document path")
	watchCmd.Flags().StringVar(&tuningPath, "tuning", "", "tuning JSON file (partial, overrides defaults)")
	watchCmd.Flags().StringVar(&presetsPath, "presets", "", "preset YAML file")
	watchCmd.Flags().StringVar(&presetName, "preset", "", "preset name to apply (requires --presets)")
	watchCmd.Flags().Float64Var(&elevationStep, "elevation-step", 3000, "elevation per floor index when files omit it")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "settle time after the last file event")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rt, err := pipeline.New(cfg.Params(), cfg.Mapping())
	if err != nil {
		return err
	}
	rt.Workers = cfg.GetWorkers()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initial conversion if floors already exist.
	if err := convertDir(ctx, rt, dir); err != nil {
		monitoring.Logf("initial conversion failed: %v", err)
	}

	monitoring.Logf("watching %s", dir)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			monitoring.Debugf("event: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case <-timerC:
			timer = nil
			timerC = nil
			if err := convertDir(ctx, rt, dir); err != nil {
				monitoring.Logf("conversion failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			monitoring.Logf("watch error: %v", err)
		}
	}
}

// convertDir runs one conversion over every .json file in dir.
func convertDir(ctx context.Context, rt *pipeline.Runtime, dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		monitoring.Logf("no floor exports in %s yet", dir)
		return nil
	}
	sort.Strings(paths)

	floors, err := loadFloors(paths)
	if err != nil {
		return err
	}
	m, err := rt.Run(ctx, floors)
	if err != nil {
		return err
	}
	return writeOutputs(m)
}
