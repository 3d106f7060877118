package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/draftworks/plan2model/internal/plan/storage/sqlite"
)

var reviewDBPath string

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <run-id>",
	Short: "List elements a stored run flagged for manual review",
	Long: `Review reads a run from the sqlite store written by convert --db and
prints the flagged elements, lowest confidence first, with the reason
each one was scored down.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewDBPath, "db", "plan2model.db", "sqlite run store path")
}

func runReview(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("run id must be an integer, got %q", args[0])
	}

	store, err := sqlite.Open(reviewDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Summary(runID)
	if err != nil {
		return err
	}
	fmt.Printf("run %d (%s): %d floors, %d elements, %d flagged, %d rejections\n",
		summary.RunID, summary.CreatedAt.Format("2006-01-02 15:04:05"),
		summary.FloorCount, summary.Elements, summary.NeedsReview, summary.Rejections)

	elements, err := store.ElementsNeedingReview(runID)
	if err != nil {
		return err
	}
	if len(elements) == 0 {
		fmt.Println("nothing flagged for review")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CONF\tFLOOR\tKIND\tLABEL\tREASON")
	for _, e := range elements {
		fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\n", e.Confidence, e.Floor, e.Kind, e.Label, e.Reason)
	}
	return w.Flush()
}
