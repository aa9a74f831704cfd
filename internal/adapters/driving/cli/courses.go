package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List indexed courses",
	RunE:  runCoursesList,
}

var coursesOutlineCmd = &cobra.Command{
	Use:   "outline [course]",
	Short: "Show the lesson list for a course",
	Long: `Shows the lessons, instructor and link for one course.
Partial course names are resolved against the indexed titles.`,
	Args: cobra.ExactArgs(1),
	RunE: runCoursesOutline,
}

func init() {
	coursesCmd.AddCommand(coursesOutlineCmd)
	rootCmd.AddCommand(coursesCmd)
}

func runCoursesList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := ensureRetrieval(ctx); err != nil {
		return err
	}

	analytics, err := retrievalService.Analytics(ctx)
	if err != nil {
		return fmt.Errorf("reading catalogue: %w", err)
	}

	if analytics.TotalCourses == 0 {
		cmd.Println("No courses indexed. Run 'lectern ingest' first.")
		return nil
	}

	cmd.Printf("%d courses indexed:\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		cmd.Printf("  - %s\n", title)
	}
	return nil
}

func runCoursesOutline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := ensureRetrieval(ctx); err != nil {
		return err
	}

	title, err := retrievalService.ResolveCourseTitle(ctx, args[0])
	if err != nil {
		return fmt.Errorf("resolving course: %w", err)
	}
	if title == "" {
		return fmt.Errorf("no course found matching %q", args[0])
	}

	course, err := retrievalService.Outline(ctx, title)
	if err != nil {
		return fmt.Errorf("reading outline: %w", err)
	}

	cmd.Println(course.Title)
	if course.Instructor != "" {
		cmd.Printf("Instructor: %s\n", course.Instructor)
	}
	if course.Link != "" {
		cmd.Printf("Link: %s\n", course.Link)
	}
	cmd.Println()
	for _, lesson := range course.Lessons {
		cmd.Printf("  Lesson %d: %s\n", lesson.Number, lesson.Title)
	}
	return nil
}
