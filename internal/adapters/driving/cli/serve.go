package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lectern-labs/lectern/internal/adapters/driving/api"
	"github.com/lectern-labs/lectern/internal/core/services"
)

var (
	serveAddr  string
	serveDocs  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serves the query and course endpoints over HTTP.

  POST /api/query    answer a question, optionally within a session
  GET  /api/courses  course count and titles

With --docs the folder is ingested at startup, and --watch re-ingests
documents as they change.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringVar(&serveDocs, "docs", "", "course documents folder to ingest at startup")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "re-ingest documents when they change (requires --docs)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureChat(ctx); err != nil {
		return err
	}

	if serveDocs != "" {
		courses, chunks, err := ingestService.IngestFolder(ctx, serveDocs, false)
		if err != nil {
			return err
		}
		cmd.Printf("Loaded %d courses (%d chunks) from %s\n", courses, chunks, serveDocs)
	}

	server, err := api.NewServer(chatService, retrievalService)
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)

	if serveWatch && serveDocs != "" {
		watcher := services.NewDocsWatcher(ingestPipeline, serveDocs)
		group.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	cmd.Printf("Listening on %s\n", serveAddr)
	group.Go(func() error {
		return server.Run(ctx, serveAddr)
	})

	return filterShutdownErr(group.Wait())
}

// filterShutdownErr drops context.Canceled so that stopping the server
// with SIGINT exits zero. The docs watcher returns ctx.Err() when the
// signal context is cancelled; that is a clean shutdown, not a failure.
func filterShutdownErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
