package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectern-labs/lectern/internal/core/domain"
)

var (
	searchCourse string
	searchLesson int
	searchLimit  int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed course content",
	Long: `Performs semantic search across the indexed course chunks without
going through the model backend. Useful for inspecting what the chat
loop would retrieve.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCourse, "course", "c", "", "restrict to one course (partial names resolved)")
	searchCmd.Flags().IntVarP(&searchLesson, "lesson", "l", 0, "restrict to one lesson number")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := ensureRetrieval(ctx); err != nil {
		return err
	}

	filter := domain.SearchFilter{}
	if searchCourse != "" {
		title, err := retrievalService.ResolveCourseTitle(ctx, searchCourse)
		if err != nil {
			return fmt.Errorf("resolving course: %w", err)
		}
		if title == "" {
			return fmt.Errorf("no course found matching %q", searchCourse)
		}
		filter.CourseTitle = title
	}
	if searchLesson > 0 {
		lesson := searchLesson
		filter.LessonNumber = &lesson
	}

	results, err := retrievalService.Search(ctx, args[0], filter, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Chunk.SourceLabel(), results[i].Score)
		cmd.Printf("      %s\n", results[i].Chunk.Content)
		cmd.Println()
	}
	return nil
}
