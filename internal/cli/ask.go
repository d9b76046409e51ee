package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"rag-chatbot/internal/llm"
	"rag-chatbot/internal/models"
)

// APIKeyEnv is read when --api-key is not given
const APIKeyEnv = "RAG_API_KEY"

func (a *app) askCmd() *cobra.Command {
	var (
		provider    string
		apiKey      string
		store       string
		system      string
		temperature float64
		maxTokens   int
	)

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt to an LLM provider",
		Long: `Sends one prompt to DeepSeek, Gemini or ChatGPT. With --store the prompt
is answered from the chunks retrieved from that store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := a.components()
			if err != nil {
				return err
			}

			if apiKey == "" {
				apiKey = os.Getenv(APIKeyEnv)
			}

			req := models.QueryRequest{
				ModelName:     provider,
				APIKey:        apiKey,
				Prompt:        args[0],
				SystemMessage: system,
				UseRAG:        store != "",
				DBPath:        store,
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &maxTokens
			}

			resp := comps.Chat.Query(cmd.Context(), comps.Sessions.Get(""), req)
			if !resp.Success {
				return errors.New(resp.ErrorMessage)
			}
			cmd.Println(resp.Response)
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", llm.ProviderDeepSeek.String(), "DeepSeek, Gemini or ChatGPT")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "provider API key (default $"+APIKeyEnv+")")
	cmd.Flags().StringVarP(&store, "store", "s", "", "answer from this store's documents")
	cmd.Flags().StringVar(&system, "system", "", "system message")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "sampling temperature (0-2)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 1000, "maximum reply tokens")
	return cmd
}
