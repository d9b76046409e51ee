package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/services"
)

func (a *app) retrieveCmd() *cobra.Command {
	var (
		k      int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve [store] [question]",
		Short: "Show the chunks a question would retrieve",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}

			store, question := args[0], args[1]
			if err := services.ValidateStoreName(store); err != nil {
				return err
			}
			if !comps.Stores.Exists(store) {
				return models.NewNotFoundError("store " + store)
			}

			hits, err := comps.Retrieval.Search(cmd.Context(), comps.Stores.Path(store), question, k)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, hits)
			}
			if len(hits) == 0 {
				cmd.Println("No results found.")
				return nil
			}
			for i, hit := range hits {
				cmd.Printf("[%d] %s (%.3f)\n", i+1, hit.Source, hit.Score)
				cmd.Printf("    %s\n\n", strings.ReplaceAll(hit.Text, "\n", " "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", services.DefaultRetrievalK, "number of chunks to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}
