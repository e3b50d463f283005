package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcheck/internal/logging"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check multiple queries from a file in parallel",
	Long: `Batch checks many queries concurrently:
- Read queries from input file (one per line, # starts a comment)
- Run the full workflow for each query with a shared worker pool
- Write one JSON result per query plus a summary

Example:
  factcheck batch claims.txt
  factcheck batch claims.txt --concurrency 4 --output-dir ./results
  factcheck batch claims.txt --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./factcheck-results", "output directory for results")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write batch metrics in Prometheus text format")
}

// batchSummary is written next to the per-query results
type batchSummary struct {
	Total    int            `json:"total"`
	Success  int            `json:"success"`
	Failures int            `json:"failures"`
	Routes   map[string]int `json:"routes"`
	Files    []string       `json:"files"`
	Duration string         `json:"duration"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  factcheck Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  Model:        %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eng, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	processor := worker.NewBatchProcessor(worker.CheckerFunc(func(ctx context.Context, query string) *model.Result {
		return eng.pipeline.Run(ctx, query)
	}), concurrency)

	start := time.Now()
	fmt.Fprintf(os.Stderr, "⚙️  Checking queries with %d workers...\n", concurrency)
	fmt.Fprintf(os.Stderr, "\n")

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	summary := batchSummary{Total: len(results), Routes: make(map[string]int)}
	used := make(map[string]int)

	for _, r := range results {
		if err := r.GetError(); err != nil {
			summary.Failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Query, err)
			if r.Result == nil {
				continue
			}
		} else {
			summary.Success++
		}

		if r.Result.Route != nil {
			summary.Routes[string(r.Result.Route.Decision)]++
		}

		name := uniqueName(slugify(r.Query), used)
		path := filepath.Join(outputDir, name+".json")
		if err := writeJSON(path, r.Result); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", r.Query, err)
			continue
		}
		summary.Files = append(summary.Files, path)

		if !r.Result.Failed {
			fmt.Fprintf(os.Stderr, "✓ %s (%s, confidence %.0f%%)\n", r.Query, routeName(r.Result), r.Result.Confidence*100)
		}
	}
	summary.Duration = time.Since(start).Round(time.Millisecond).String()

	if err := writeJSON(filepath.Join(outputDir, "summary.json"), summary); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", summary.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", summary.Success)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", summary.Failures)
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", summary.Duration)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if metricsFile != "" {
		if err := eng.WriteMetrics(metricsFile); err != nil {
			return err
		}
	}
	return nil
}

// uniqueName suffixes repeated slugs with -2, -3, ...
func uniqueName(slug string, used map[string]int) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}

func routeName(r *model.Result) string {
	if r.Route == nil {
		return "unknown"
	}
	return string(r.Route.Decision)
}
