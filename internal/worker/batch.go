package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/gapfill/internal/extract"
	"github.com/ppiankov/gapfill/internal/pipeline"
)

// Generator turns one dialogue file into an exercise
type Generator interface {
	GenerateFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// FileJob represents one dialogue file to generate
type FileJob struct {
	Index     int
	Path      string
	Generator Generator
}

// Execute executes the generation job
func (j *FileJob) Execute(ctx context.Context) Result {
	result, err := j.Generator.GenerateFile(ctx, j.Path)
	return &FileResult{
		Index:  j.Index,
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// FileResult represents the result of a generation job
type FileResult struct {
	Index  int
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple dialogue files concurrently
type BatchProcessor struct {
	generator   Generator
	concurrency int
	progress    func(done, total int, r *FileResult)
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(generator Generator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		generator:   generator,
		concurrency: concurrency,
	}
}

// OnProgress registers a callback run as each file finishes
func (b *BatchProcessor) OnProgress(fn func(done, total int, r *FileResult)) {
	b.progress = fn
}

// ProcessFiles generates every file concurrently. Results follow the input
// order; files that never ran because ctx ended carry the context error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &FileJob{
			Index:     i,
			Path:      path,
			Generator: b.generator,
		}
	}

	opts := []PoolOption{
		// A panic in one dialogue fails that file only
		WithRecover(func(job Job, err *PanicError) Result {
			fj := job.(*FileJob)
			return &FileResult{Index: fj.Index, Path: fj.Path, Error: err}
		}),
	}
	if b.progress != nil {
		opts = append(opts, WithProgress(func(done int, r Result) {
			b.progress(done, len(paths), r.(*FileResult))
		}))
	}

	fileResults := make([]*FileResult, len(paths))
	for _, result := range NewPool(b.concurrency, opts...).Run(ctx, jobs) {
		fr := result.(*FileResult)
		fileResults[fr.Index] = fr
	}

	for i, fr := range fileResults {
		if fr != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		fileResults[i] = &FileResult{Index: i, Path: paths[i], Error: err}
	}

	return fileResults
}

// ProcessInputs expands directories and list files, then processes them
func (b *BatchProcessor) ProcessInputs(ctx context.Context, inputs []string) ([]*FileResult, error) {
	paths, err := ExpandInputs(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return b.ProcessFiles(ctx, paths), nil
}

// IsDialogueFile reports whether the path has a dialogue extension
func IsDialogueFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ListDialogueFiles returns the dialogue files directly inside dir, sorted
func ListDialogueFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !IsDialogueFile(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// ReadPathsFromFile reads dialogue paths from a list file (one per line).
// Relative paths resolve against the list file's directory; URLs pass through.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) && !extract.IsURL(line) {
			line = filepath.Join(base, line)
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ExpandInputs resolves each argument to dialogue files: a directory yields
// its dialogue files, a dialogue file itself, and any other file is read as
// a path list. Arguments are expanded concurrently; the combined result keeps
// argument order and drops duplicates.
func ExpandInputs(ctx context.Context, inputs []string) ([]string, error) {
	expanded := make([][]string, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			paths, err := expandInput(input)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			expanded[i] = paths
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var paths []string
	seen := make(map[string]bool)
	for _, group := range expanded {
		for _, path := range group {
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}

	return paths, nil
}

func expandInput(input string) ([]string, error) {
	if extract.IsURL(input) {
		return []string{input}, nil
	}
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	switch {
	case info.IsDir():
		return ListDialogueFiles(input)
	case IsDialogueFile(input):
		return []string{input}, nil
	default:
		return ReadPathsFromFile(input)
	}
}
