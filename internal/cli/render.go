package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/factcheck/internal/model"
)

// renderText prints a result for humans
func renderText(w io.Writer, res *model.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.FinalAnswer)
	fmt.Fprintln(w)

	if res.Route != nil {
		fmt.Fprintf(w, "  Route:       %s (%s)\n", res.Route.Decision, res.Route.Trigger)
	}
	if res.Route == nil || res.Route.Decision == model.DecisionFactCheck {
		fmt.Fprintf(w, "  Confidence:  %.0f%%\n", res.Confidence*100)
		if res.EvidenceBundle != nil {
			fmt.Fprintf(w, "  Verdict:     %s\n", res.EvidenceBundle.OverallVerdict)
		}
	}
	if res.Failed {
		fmt.Fprintf(w, "  Error:       %s\n", res.Error)
	}

	if len(res.Citations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "  Sources:")
		for _, c := range res.Citations {
			fmt.Fprintf(w, "    [%s] %s\n         %s\n", c.EvidenceID, c.Title, c.URL)
		}
	}

	if res.ClarifyRequest != nil && len(res.ClarifyRequest.Fields) > 0 {
		fmt.Fprintln(w)
		for _, f := range res.ClarifyRequest.Fields {
			fmt.Fprintf(w, "  • %s", f.Question)
			if f.Hint != "" {
				fmt.Fprintf(w, " (%s)", f.Hint)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Run ID:      %s\n", res.RunID)
}

// renderEvent prints one streamed progress event to stderr
func renderEvent(w io.Writer, e model.Event) {
	switch e.Type {
	case model.EventStageStarted:
		fmt.Fprintf(w, "⚙️  %s...\n", e.Stage)
	case model.EventStageEnded:
		keys := "no output"
		if len(e.OutputKeys) > 0 {
			keys = strings.Join(e.OutputKeys, ", ")
		}
		fmt.Fprintf(w, "✓ %s (%dms): %s\n", e.Stage, e.Duration.Milliseconds(), keys)
	case model.EventRunCompleted:
		fmt.Fprintf(w, "✓ completed in %dms\n", e.TotalDuration.Milliseconds())
	}
}

// printJSON writes v as indented JSON to stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path, creating parent directories
func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// slugify turns a query into a short file name
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if b.Len() >= 60 {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "query"
	}
	return out
}
