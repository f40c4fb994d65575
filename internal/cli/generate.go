package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/gapfill/internal/pipeline"
)

var (
	outJSON    string
	outYAML    string
	outMD      string
	outHTML    string
	preview    bool
	genTimeout time.Duration
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <dialogue.json|url>",
	Short: "Generate a gap-fill exercise from one tagged dialogue",
	Long: `Generate reads a tagged dialogue and:
- Extracts candidate words, phrasal verbs, idioms and collocations
- Scores each candidate for teaching value at the target CEFR level
- Selects well-spaced blanks across verbs, idioms and locked chunks
- Lists acceptable alternative answers with a confidence label
- Explains the most useful phrases in a deep-dive section

The dialogue may be a local .json/.yaml file or an http(s) URL serving one.
Without an output flag the JSON exercise is written to stdout.

Example:
  gapfill generate dialogue.json
  gapfill generate dialogue.json --json exercise.json --md exercise.md
  gapfill generate dialogue.yaml --difficulty C1 --density 0.4 --preview
  gapfill generate dialogue.json --md exercise.md --llm openai`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addExerciseFlags(generateCmd.Flags())

	// Output flags
	generateCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (- for stdout)")
	generateCmd.Flags().StringVar(&outYAML, "yaml", "", "output YAML path")
	generateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown worksheet path")
	generateCmd.Flags().StringVar(&outHTML, "html", "", "output HTML worksheet path")
	generateCmd.Flags().BoolVar(&preview, "preview", false, "render the worksheet in the terminal")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 2*time.Minute, "overall timeout (includes LLM review)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), genTimeout)
	defer cancel()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	a.logger.Debug("generating exercise",
		zap.String("input", path),
		zap.Float64("density", a.cfg.Exercise.Density),
		zap.String("difficulty", string(a.cfg.Exercise.Difficulty)),
		zap.Bool("cache", a.cfg.Cache.Enabled))

	result, err := a.pipeline.GenerateFile(ctx, path)
	if err != nil {
		return fmt.Errorf("generate failed: %w", err)
	}

	out := pipeline.Outputs{
		JSON:     outJSON,
		YAML:     outYAML,
		Markdown: outMD,
		HTML:     outHTML,
		Preview:  preview || a.cfg.Output.Preview,
	}
	if out.JSON == "" && out.YAML == "" && out.Markdown == "" && out.HTML == "" && !out.Preview {
		out.JSON = "-"
	}

	if err := a.renderer.RenderOutputs(result, out, os.Stderr); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}
