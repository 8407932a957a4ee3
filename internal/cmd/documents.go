package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/documents"
	"github.com/felixgeelhaar/studydash/internal/ux"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Browse your uploaded study documents",
	Long: `Browse the documents you uploaded and the study material generated from them.

Uploading happens in the web dashboard.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show <document-id>",
	Short: "Show a document with its summary and key concepts",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsWatchCmd = &cobra.Command{
	Use:   "watch <document-id>",
	Short: "Wait until a document has finished processing",
	Long: `Poll a document every documents.poll_interval until processing
completes or fails, printing each status change.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentsWatch,
}

var documentsReprocessCmd = &cobra.Command{
	Use:   "reprocess <document-id>",
	Short: "Run processing again for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsReprocess,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <document-id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}

	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	list, err := a.client.ListDocuments(ctxOf(cmd), page, limit)
	if err != nil {
		return err
	}
	return a.print(documentListView{List: list})
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}
	doc, err := a.client.GetDocument(ctxOf(cmd), args[0])
	if err != nil {
		return err
	}
	return a.print(documentView{Document: doc})
}

func runDocumentsWatch(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}
	doc, err := a.watch(cmd, args[0])
	if err != nil {
		return err
	}
	return a.print(documentView{Document: doc})
}

func runDocumentsReprocess(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}

	doc, err := a.client.ReprocessDocument(ctxOf(cmd), args[0])
	if err != nil {
		return err
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if doc, err = a.watch(cmd, args[0]); err != nil {
			return err
		}
	}
	return a.print(documentView{Document: doc})
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	a, err := protected(cmd)
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !ux.Confirm(a.in, a.out, fmt.Sprintf("Delete document %s and its quizzes?", args[0]), false) {
			return a.print(messageView{Message: "Cancelled"})
		}
	}

	if err := a.client.DeleteDocument(ctxOf(cmd), args[0]); err != nil {
		return err
	}
	return a.print(messageView{Message: fmt.Sprintf("Deleted document %s", args[0])})
}

// watch follows processing, echoing status changes in text mode
func (a *app) watch(cmd *cobra.Command, documentID string) (*api.Document, error) {
	w := documents.NewWatcher(a.client,
		documents.WithInterval(a.cfg.Documents.PollInterval),
		documents.WithLogger(a.logger))

	p := ux.NewPalette(a.noColor)
	return w.Watch(ctxOf(cmd), documentID, func(doc *api.Document) {
		if a.format != "text" {
			return
		}
		fmt.Fprintf(a.out, "%s %s\n", p.Muted.Render(time.Now().Format("15:04:05")), statusLabel(p, doc.ProcessingStatus))
	})
}

func init() {
	documentsListCmd.Flags().Int("page", 1, "page number")
	documentsListCmd.Flags().Int("limit", 10, "documents per page")

	documentsReprocessCmd.Flags().Bool("watch", false, "wait for processing to finish")

	documentsDeleteCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	documentsCmd.AddCommand(documentsListCmd)
	documentsCmd.AddCommand(documentsShowCmd)
	documentsCmd.AddCommand(documentsWatchCmd)
	documentsCmd.AddCommand(documentsReprocessCmd)
	documentsCmd.AddCommand(documentsDeleteCmd)
	rootCmd.AddCommand(documentsCmd)
}
