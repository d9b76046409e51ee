package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/services"
)

func (a *app) ingestCmd() *cobra.Command {
	var (
		createOnly bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest [store] [files...]",
		Short: "Add documents to a store",
		Long: `Loads PDF, text and zip files, splits them into overlapping chunks and
embeds them into the named store. The store is created when missing.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}

			store := args[0]
			if createOnly && comps.Stores.Exists(store) {
				return models.NewValidationError(fmt.Sprintf("a store named '%s' already exists", store))
			}

			files := make([]services.UploadedFile, 0, len(args)-1)
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				files = append(files, services.UploadedFile{Name: filepath.Base(path), Data: data})
			}

			summary, err := comps.Ingestion.Ingest(cmd.Context(), services.IngestRequest{
				StoreName: store,
				Files:     files,
				Progress: func(p services.Progress) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r%s", p.Message)
				},
			})
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if asJSON {
				if err := printJSON(cmd, summary); err != nil {
					return err
				}
			} else {
				printSummary(cmd, summary)
			}
			return summary.Err()
		},
	}

	cmd.Flags().BoolVar(&createOnly, "create-only", false, "fail when the store already exists")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the summary as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *services.IngestSummary) {
	cmd.Println(summary.Message)
	cmd.Printf("Store: %s (%d chunks total)\n", summary.Store, summary.TotalChunks)
	for _, f := range summary.Files {
		cmd.Printf("  + %s\n", f)
	}
	for _, sk := range summary.Skipped {
		cmd.Printf("  - %s: %s\n", sk.Name, sk.Reason)
	}
}
