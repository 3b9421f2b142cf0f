package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:     "document",
	Aliases: []string{"doc", "documents"},
	Short:   "Manage uploaded documents",
	Long:    `Upload, list, inspect, move, or delete documents.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload documents",
	Long: `Upload one or more files. With --wait the command polls until each
document is processed (every 5s, at most 60 times by default).

Examples:
  ragchat document upload notes.pdf
  ragchat document upload --store calculus --wait ch1.pdf ch2.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentMoveCmd = &cobra.Command{
	Use:   "move [doc-id] [store]",
	Short: "Move a document into another store",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentMove,
}

// Flags for document commands.
var (
	uploadDepartment string
	uploadStore      string
	uploadWait       bool
	listStore        string
	listStatus       string
)

func init() {
	documentUploadCmd.Flags().StringVar(&uploadDepartment, "department", "", "Department tag")
	documentUploadCmd.Flags().StringVar(&uploadStore, "store", "", "Store to place the documents in")
	documentUploadCmd.Flags().BoolVarP(&uploadWait, "wait", "w", false, "Wait until processing finishes")
	documentListCmd.Flags().StringVar(&listStore, "store", "", "Only documents of this store")
	documentListCmd.Flags().StringVar(&listStatus, "status", "", "Only documents with this status")
	addJSONFlag(documentListCmd, documentGetCmd)

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentMoveCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}
	ctx := cmd.Context()

	var store *domain.RagStore
	if uploadStore != "" {
		if storeService == nil {
			return errNotConfigured("store")
		}
		var err error
		if store, err = storeService.Find(ctx, uploadStore); err != nil {
			return err
		}
	}

	for _, path := range args {
		doc, err := uploadFile(cmd, path)
		if err != nil {
			return err
		}
		cmd.Printf("Uploaded %s as %s\n", doc.Name, doc.ID)

		if uploadWait {
			last := domain.DocumentStatus("")
			doc, err = documentService.WaitForProcessing(ctx, doc.ID,
				func(progress int, status domain.DocumentStatus, _ string) {
					if status != last {
						cmd.Printf("  %-10s %3d%%\n", status, progress)
						last = status
					}
				})
			if err != nil {
				return err
			}
			if doc.Status == domain.StatusError {
				return fmt.Errorf("processing %s failed: %s", doc.Name, doc.StatusMessage)
			}
		}

		if store != nil && doc.RagStoreID != store.ID {
			if _, err := documentService.Move(ctx, doc.ID, store.ID); err != nil {
				return fmt.Errorf("moving %s into %s: %w", doc.Name, store.Label(), err)
			}
			cmd.Printf("  moved into %s\n", store.Label())
		}
	}
	return nil
}

func uploadFile(cmd *cobra.Command, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return documentService.Upload(cmd.Context(), domain.NewFileUpload(f, uploadDepartment), nil)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}
	ctx := cmd.Context()

	filter := domain.DocumentFilter{Status: domain.DocumentStatus(listStatus)}
	if listStore != "" {
		if storeService == nil {
			return errNotConfigured("store")
		}
		store, err := storeService.Find(ctx, listStore)
		if err != nil {
			return err
		}
		filter.StoreID = store.ID
	}

	docs, err := documentService.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found")
		return nil
	}

	rows := make([][]string, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		rows = append(rows, []string{
			d.ID.String(), d.Name, d.Status.String(), fmt.Sprintf("%d%%", d.Progress()), humanBytes(d.Size), humanTime(d.UpdatedAt),
		})
	}
	if err := printTable(cmd, []string{"ID", "NAME", "STATUS", "PROGRESS", "SIZE", "UPDATED"}, rows); err != nil {
		return err
	}

	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}

	doc, err := documentService.Get(cmd.Context(), domain.ID(args[0]))
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}
	if jsonOutput {
		return printJSON(cmd, doc)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:       %s\n", doc.Name)
	cmd.Printf("  Status:     %s (%d%%)\n", doc.Status, doc.Progress())
	if doc.StatusMessage != "" {
		cmd.Printf("  Message:    %s\n", doc.StatusMessage)
	}
	cmd.Printf("  Size:       %s\n", humanBytes(doc.Size))
	if doc.Department != "" {
		cmd.Printf("  Department: %s\n", doc.Department)
	}
	if !doc.RagStoreID.IsZero() {
		cmd.Printf("  Store:      %s\n", doc.RagStoreID)
	}
	cmd.Printf("  Created:    %s\n", humanTime(doc.CreatedAt))
	cmd.Printf("  Updated:    %s\n", humanTime(doc.UpdatedAt))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}
	if err := documentService.Delete(cmd.Context(), domain.ID(args[0])); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	cmd.Printf("Deleted document %s\n", args[0])
	return nil
}

func runDocumentMove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errNotConfigured("document")
	}
	if storeService == nil {
		return errNotConfigured("store")
	}
	ctx := cmd.Context()

	store, err := storeService.Find(ctx, args[1])
	if err != nil {
		return err
	}
	if _, err := documentService.Move(ctx, domain.ID(args[0]), store.ID); err != nil {
		return fmt.Errorf("failed to move document: %w", err)
	}
	cmd.Printf("Moved document %s into %s\n", args[0], store.Label())
	return nil
}
