package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"rag-chatbot/internal/handlers"
)

// Handlers groups every HTTP handler the router exposes
type Handlers struct {
	Basic   *handlers.BasicHandler
	Chat    *handlers.ChatHandler
	Presets *handlers.PresetHandler
	Session *handlers.SessionHandler
	Stores  *handlers.StoreHandler
	Ingest  *handlers.IngestHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *mux.Router, h *Handlers) {
	r.HandleFunc("/", h.Basic.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Basic.Health).Methods(http.MethodGet)

	r.HandleFunc("/query_llm", h.Chat.QueryLLM).Methods(http.MethodPost)
	r.HandleFunc("/presets", h.Presets.List).Methods(http.MethodGet)

	r.HandleFunc("/session", h.Session.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/session", h.Session.UpdateSession).Methods(http.MethodPut)
	r.HandleFunc("/session/history", h.Session.ClearHistory).Methods(http.MethodDelete)

	r.HandleFunc("/stores", h.Stores.ListStores).Methods(http.MethodGet)
	r.HandleFunc("/stores/{name}", h.Stores.GetStore).Methods(http.MethodGet)
	r.HandleFunc("/stores/{name}", h.Stores.DeleteStore).Methods(http.MethodDelete)
	r.HandleFunc("/stores/{name}/search", h.Stores.SearchStore).Methods(http.MethodPost)
	r.HandleFunc("/stores/{name}/documents", h.Ingest.UploadDocuments).Methods(http.MethodPost)
}
