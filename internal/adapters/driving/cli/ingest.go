package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestClear bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index course documents",
	Long: `Indexes a course document or a folder of course documents.

Each document is chunked, embedded and stored in the local catalogue.
Folders are processed file by file; already-indexed course titles are
skipped unless --clear is set, which wipes the catalogue first.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear existing courses before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	if err := ensureRetrieval(ctx); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if info.IsDir() {
		courses, chunks, err := ingestService.IngestFolder(ctx, path, ingestClear)
		if err != nil {
			return fmt.Errorf("ingesting folder: %w", err)
		}
		cmd.Printf("Indexed %d courses (%d chunks)\n", courses, chunks)
		return nil
	}

	course, chunks, err := ingestService.IngestFile(ctx, path)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}
	cmd.Printf("Indexed %q (%d chunks)\n", course.Title, chunks)
	return nil
}
