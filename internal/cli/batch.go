package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/gapfill/internal/extract"
	"github.com/ppiankov/gapfill/internal/pipeline"
	"github.com/ppiankov/gapfill/internal/worker"
)

var (
	outputDir    string
	batchTimeout time.Duration
	batchMD      bool
	batchHTML    bool
	batchYAML    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|list-file|dialogue>...",
	Short: "Generate exercises for many dialogues in parallel",
	Long: `Batch processes many tagged dialogues concurrently:
- A directory contributes every .json/.yaml/.yml file directly inside it
- A list file names one dialogue path per line (# starts a comment)
- Dialogues are processed in parallel with a configurable worker count
- Each dialogue gets its own exercise files in the output directory

Example:
  gapfill batch ./dialogues
  gapfill batch dialogues.txt --workers 8 --output-dir ./exercises --md
  gapfill batch ./unit1 ./unit2 --difficulty B1 --html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addExerciseFlags(batchCmd.Flags())

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./gapfill-exercises", "output directory for exercises")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchMD, "md", false, "also write Markdown worksheets")
	batchCmd.Flags().BoolVar(&batchHTML, "html", false, "also write HTML worksheets")
	batchCmd.Flags().BoolVar(&batchYAML, "yaml", false, "also write YAML exercises")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	workers := a.cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Gapfill Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Inputs:       %s\n", strings.Join(args, ", "))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Level:        %s (density %.2f)\n", a.cfg.Exercise.Difficulty, a.cfg.Exercise.Density)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if a.cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", a.cfg.LLM.Provider, a.cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	paths, err := worker.ExpandInputs(ctx, args)
	if err != nil {
		return fmt.Errorf("read inputs: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Found %d dialogues\n", len(paths))
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(a.pipeline, workers)
	processor.OnProgress(func(done, total int, _ *worker.FileResult) {
		fmt.Fprintf(os.Stderr, "\r  Generating... %d/%d", done, total)
		if done == total {
			fmt.Fprintf(os.Stderr, "\n\n")
		}
	})
	results := processor.ProcessFiles(ctx, paths)

	successCount := 0
	failureCount := 0
	names := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		slug := uniqueSlug(names, sanitizeFilename(result.Path))
		if err := a.renderer.RenderOutputs(result.Result, batchOutputs(slug), nil); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}

		successCount++
		meta := result.Result.Exercise.Metadata
		fmt.Fprintf(os.Stderr, "✓ %s (%d blanks, %s)\n", result.Path, meta.TotalBlanks, meta.ValidationStatus)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d dialogues\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	if a.cache != nil {
		stats := a.cache.Stats()
		fmt.Fprintf(os.Stderr, "  Cache:     %d hits, %d misses (%.0f%%)\n", stats.Hits(), stats.Misses, stats.HitRate()*100)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d dialogues failed", failureCount)
	}
	return nil
}

func batchOutputs(slug string) pipeline.Outputs {
	base := filepath.Join(outputDir, slug)
	out := pipeline.Outputs{JSON: base + ".exercise.json"}
	if batchYAML {
		out.YAML = base + ".exercise.yaml"
	}
	if batchMD {
		out.Markdown = base + ".md"
	}
	if batchHTML {
		out.HTML = base + ".html"
	}
	return out
}

// uniqueSlug appends -2, -3, ... when two inputs share a file name
func uniqueSlug(seen map[string]int, slug string) string {
	seen[slug]++
	if n := seen[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}

// sanitizeFilename turns an input path into a safe output base name
func sanitizeFilename(s string) string {
	if extract.IsURL(s) {
		if u, err := url.Parse(s); err == nil {
			s = u.Host + u.Path
		}
	}
	s = filepath.Base(s)
	s = strings.TrimSuffix(s, filepath.Ext(s))

	// Replace problematic characters
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	if s == "" || s == "." {
		s = "dialogue"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
