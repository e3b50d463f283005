package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/route"
)

// routeCmd represents the route command
var routeCmd = &cobra.Command{
	Use:   "route <query>",
	Short: "Show the routing decision for a query",
	Long: `Route runs only the deterministic router and prints its decision, the
signals behind it and, for clarify decisions, the clarification request.
No network calls are made.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		query := strings.Join(args, " ")
		decision := route.NewRouter(cfg.Router).Route(query)

		out := struct {
			Route   *model.RouteDecision  `json:"route"`
			Clarify *model.ClarifyRequest `json:"clarify_request,omitempty"`
		}{Route: decision}
		if decision.Decision == model.DecisionClarify {
			out.Clarify = route.ClarifyRequest(query, decision)
		}
		return printJSON(out)
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}
