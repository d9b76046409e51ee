// Package cli implements ragctl, a command line front end over the same
// services the HTTP server exposes.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rag-chatbot/config"
	"rag-chatbot/internal/server"
)

// BuildFunc wires the service graph for one command invocation
type BuildFunc func(ctx context.Context) (*server.Components, error)

type app struct {
	build BuildFunc
	comps *server.Components
}

// NewRootCommand returns the ragctl command tree
func NewRootCommand(build BuildFunc) *cobra.Command {
	a := &app{build: build}

	root := &cobra.Command{
		Use:   "ragctl",
		Short: "Manage document stores and query LLM providers",
		Long: `ragctl ingests documents into local vector stores, inspects and deletes
stores, runs similarity searches and sends prompts to DeepSeek, Gemini or ChatGPT
with optional retrieved context.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			comps, err := a.build(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			a.comps = comps
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.comps != nil {
				a.comps.Close()
				a.comps = nil
			}
		},
	}

	root.AddCommand(
		a.ingestCmd(),
		a.storesCmd(),
		a.retrieveCmd(),
		a.askCmd(),
		a.presetsCmd(),
	)
	return root
}

// Execute runs ragctl against the environment configuration
func Execute(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// keep stdout for command output
	logger := server.NewLogger(cfg.Logging)
	logger.SetOutput(os.Stderr)

	root := NewRootCommand(func(ctx context.Context) (*server.Components, error) {
		return server.Build(ctx, cfg, logger)
	})
	root.SetOut(os.Stdout)
	return root.ExecuteContext(ctx)
}

func (a *app) components() (*server.Components, error) {
	if a.comps == nil {
		return nil, errors.New("services not initialized")
	}
	return a.comps, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
