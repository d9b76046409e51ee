// Package main RAG Chatbot API Server
//
//	@title			RAG Chatbot API
//	@version		1.0
//	@description	Multi-provider chat backend with document ingestion and retrieval augmented prompts
//	@termsOfService	http://swagger.io/terms/
//
//	@contact.name	API Support
//	@contact.url	http://www.swagger.io/support
//	@contact.email	support@swagger.io
//
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host		localhost:8000
//	@BasePath	/
//
//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rag-chatbot/config"
	_ "rag-chatbot/docs" // This imports the docs package to initialize swagger
	"rag-chatbot/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := server.NewLogger(cfg.Logging)
	logger.Info("Starting RAG chatbot server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := server.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize services: %v", err)
	}
	defer components.Close()

	if err := server.New(components).Run(ctx); err != nil {
		logger.Errorf("Server error: %v", err)
		components.Close()
		os.Exit(1)
	}
}
