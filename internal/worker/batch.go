package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// Checker runs one fact-check workflow
type Checker interface {
	Run(ctx context.Context, query string) *model.Result
}

// CheckerFunc adapts a function to the Checker interface
type CheckerFunc func(ctx context.Context, query string) *model.Result

// Run calls f
func (f CheckerFunc) Run(ctx context.Context, query string) *model.Result {
	return f(ctx, query)
}

// CheckJob represents a single query in a batch
type CheckJob struct {
	Index   int
	Query   string
	Checker Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	return &CheckResult{
		Index:  j.Index,
		Query:  j.Query,
		Result: j.Checker.Run(ctx, j.Query),
	}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Index  int
	Query  string
	Result *model.Result
}

// GetError returns the run failure, if any
func (r *CheckResult) GetError() error {
	if r.Result == nil {
		return fmt.Errorf("no result for %q", r.Query)
	}
	if r.Result.Failed {
		return fmt.Errorf("run %s failed: %s", r.Result.RunID, r.Result.Error)
	}
	return nil
}

// BatchProcessor runs many queries concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessQueries checks every query and returns results in input order
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*CheckResult {
	if len(queries) == 0 {
		return []*CheckResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, q := range queries {
		if !pool.Submit(&CheckJob{Index: i, Query: q, Checker: b.checker}) {
			break
		}
	}

	ordered := make([]*CheckResult, len(queries))
	for _, r := range pool.Wait() {
		cr := r.(*CheckResult)
		ordered[cr.Index] = cr
	}

	// Queries never dispatched because ctx ended still get an entry
	for i, cr := range ordered {
		if cr == nil {
			ordered[i] = &CheckResult{Index: i, Query: queries[i]}
		}
	}

	return ordered
}

// ProcessFile reads queries from a file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line, skipping blank lines,
// comments and duplicates
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
