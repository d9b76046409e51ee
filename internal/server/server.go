package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"

	"rag-chatbot/internal/handlers"
	"rag-chatbot/internal/routes"
)

// Server is the HTTP front of the chatbot backend
type Server struct {
	components *Components
	logger     *logrus.Logger
	httpServer *http.Server
}

// New builds the router around already wired components
func New(c *Components) *Server {
	h := &routes.Handlers{
		Basic:   handlers.NewBasicHandler(c.Providers, c.Logger),
		Chat:    handlers.NewChatHandler(c.Chat, c.Sessions, c.Logger),
		Presets: handlers.NewPresetHandler(c.Presets, c.Logger),
		Session: handlers.NewSessionHandler(c.Sessions, c.Stores, c.Presets, c.Logger),
		Stores:  handlers.NewStoreHandler(c.Stores, c.Retrieval, c.Logger),
		Ingest:  handlers.NewIngestHandler(c.Ingestion, c.Stores, c.Config.Server.MaxUploadMB, c.Logger),
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Add Swagger endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	router.Use(recoveryMiddleware(c.Logger), loggingMiddleware(c.Logger))

	return &Server{
		components: c,
		logger:     c.Logger,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", c.Config.Server.Port),
			Handler:           corsMiddleware(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the full middleware chain
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	go s.components.Sessions.Run(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.components.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}
