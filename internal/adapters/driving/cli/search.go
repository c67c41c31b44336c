package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/issuescope/issuescope/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed issues",
	Long: `Performs hybrid search over the synced issues: an exact full-text pass
first, widened with edit-distance matches when exact results are sparse.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if err := setupServices(false); err != nil {
		return err
	}
	defer closeServices()

	if searchService == nil {
		return errors.New("search service not configured")
	}

	results, err := searchService.Search(context.Background(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		issue := &results[i].Issue

		match := "exact"
		if results[i].Match == domain.MatchApproximate {
			match = fmt.Sprintf("fuzzy, distance %d", results[i].Distance)
		}

		cmd.Printf("  [%d] #%d %s (%s)\n", i+1, issue.Number, issue.Title, match)
		cmd.Printf("      %s | %s | score %d\n", issue.State, issue.Type, issue.RankScore())
		if issue.Summary != nil && issue.Summary.Ja.Short != "" {
			cmd.Printf("      %s\n", issue.Summary.Ja.Short)
		}
		cmd.Println()
	}

	return nil
}
