package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcheck/internal/logging"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/pipeline"
)

var (
	jsonOut      string
	stream       bool
	runID        string
	metricsFile  string
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <query>",
	Short: "Verify a historical claim",
	Long: `Check routes the query, retrieves evidence, judges every claim against
the most credible sources and prints a cited answer.

Example:
  factcheck check "Did the Berlin Wall fall in 1989?"
  factcheck check "Is it true that Napoleon was short?" --json result.json
  factcheck check "When did World War II end?" --stream --run-id ww2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&jsonOut, "json", "", "write the result as JSON to this path (- for stdout)")
	checkCmd.Flags().BoolVar(&stream, "stream", false, "print stage progress while running")
	checkCmd.Flags().StringVar(&runID, "run-id", "", "run id; reuse it to resume or replay a checkpointed run")
	checkCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 5*time.Minute, "timeout for the whole run")
}

func runCheck(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	eng, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Checking: %s\n", query)
	}

	var opts []pipeline.RunOption
	if runID != "" {
		opts = append(opts, pipeline.WithRunID(runID))
	}

	var res *model.Result
	if stream {
		for e := range eng.pipeline.Stream(ctx, query, opts...) {
			renderEvent(os.Stderr, e)
			if e.Type == model.EventRunCompleted {
				res = e.Result
			}
		}
	} else {
		res = eng.pipeline.Run(ctx, query, opts...)
	}
	if res == nil {
		return fmt.Errorf("run produced no result")
	}

	switch jsonOut {
	case "":
		renderText(os.Stdout, res)
	case "-":
		if err := printJSON(res); err != nil {
			return err
		}
	default:
		if err := writeJSON(jsonOut, res); err != nil {
			return err
		}
		renderText(os.Stdout, res)
		fmt.Fprintf(os.Stderr, "✓ JSON result: %s\n", jsonOut)
	}

	if metricsFile != "" {
		if err := eng.WriteMetrics(metricsFile); err != nil {
			return err
		}
	}

	if res.Failed {
		return fmt.Errorf("run %s failed: %s", res.RunID, res.Error)
	}
	return nil
}
