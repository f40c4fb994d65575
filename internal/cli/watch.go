package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/gapfill/internal/pipeline"
	"github.com/ppiankov/gapfill/internal/worker"
)

var watchOutputDir string

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Regenerate exercises whenever a dialogue file changes",
	Long: `Watch monitors a directory and regenerates the exercise for every
dialogue file that is created or written. Rapid saves are collapsed into
one run. Stop with Ctrl-C.

Example:
  gapfill watch ./dialogues
  gapfill watch ./dialogues --output-dir ./exercises --difficulty C1`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addExerciseFlags(watchCmd.Flags())
	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "./gapfill-exercises", "output directory for exercises")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if err := os.MkdirAll(watchOutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	handler := func(ctx context.Context, path string) {
		result, err := a.pipeline.GenerateFile(ctx, path)
		if err != nil {
			a.logger.Warn("generate failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			return
		}

		base := filepath.Join(watchOutputDir, sanitizeFilename(path))
		outputs := pipeline.Outputs{
			JSON:     base + ".exercise.json",
			Markdown: base + ".md",
		}
		if err := a.renderer.RenderOutputs(result, outputs, nil); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
			return
		}

		meta := result.Exercise.Metadata
		fmt.Fprintf(os.Stderr, "✓ %s → %s (%d blanks, %s)\n", path, outputs.JSON, meta.TotalBlanks, meta.ValidationStatus)
	}

	w, err := worker.NewWatcher(dir, isWatchedDialogue, handler, a.logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", dir)

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\nStopped watching %s\n", dir)
	return nil
}

// isWatchedDialogue skips generated outputs in case they land in the watched directory
func isWatchedDialogue(path string) bool {
	name := filepath.Base(path)
	return worker.IsDialogueFile(path) && !strings.Contains(name, ".exercise.")
}
