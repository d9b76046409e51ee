package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rag-chatbot/config"
	"rag-chatbot/internal/llm"
	"rag-chatbot/internal/models"
)

// SafetyInstruction is appended to every system message
const SafetyInstruction = "If the question is unclear, nonsensical, or unrelated to the topic, respond politely with an apology or request clarification. If RAG context is empty, explain that you couldn’t find relevant info instead of repeating old answers."

// DuplicateMessage answers a repeated submission inside the duplicate window
const DuplicateMessage = "⚠️ Duplicate request ignored."

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// Retriever fetches RAG context for a question
type Retriever interface {
	Retrieve(ctx context.Context, question, storePath string, k int) (string, error)
}

// StoreResolver maps a store name or path from a request to a store directory
type StoreResolver interface {
	Resolve(pathOrName string) (string, error)
}

// ChatService validates a query, optionally adds RAG context, and dispatches it to a provider
type ChatService struct {
	factory   llm.Factory
	retriever Retriever
	stores    StoreResolver
	sessions  *SessionManager
	timeout   time.Duration
	k         int
	logger    *logrus.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	factory llm.Factory,
	retriever Retriever,
	stores StoreResolver,
	sessions *SessionManager,
	cfg config.LLMConfig,
	k int,
	logger *logrus.Logger,
) *ChatService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if k <= 0 {
		k = DefaultRetrievalK
	}
	return &ChatService{
		factory:   factory,
		retriever: retriever,
		stores:    stores,
		sessions:  sessions,
		timeout:   timeout,
		k:         k,
		logger:    logger,
	}
}

// Query answers one chat request. Every classified failure comes back as
// Success=false with a user-facing message; nothing here returns an error.
func (s *ChatService) Query(ctx context.Context, session *Session, req models.QueryRequest) models.QueryResponse {
	if err := validateQuery(req); err != nil {
		return models.FailedQuery(err)
	}
	req.Prompt = strings.TrimSpace(req.Prompt)

	provider, err := llm.ParseProvider(req.ModelName)
	if err != nil {
		s.logger.Warnf("Rejected query for unknown model %q", req.ModelName)
		return models.FailedQuery(err)
	}

	if s.sessions != nil && s.sessions.IsDuplicate(ctx, session, req) {
		s.logger.Infof("Ignoring duplicate query in session %s", session.ID)
		return models.FailedQuery(models.NewValidationError(DuplicateMessage))
	}

	// a failed attempt must not block an immediate retry
	fail := func(err error) models.QueryResponse {
		if s.sessions != nil {
			s.sessions.Forget(ctx, session, req)
		}
		return models.FailedQuery(err)
	}

	if session != nil && session.SwitchRAG(req.UseRAG) {
		s.logger.Infof("RAG mode changed in session %s, starting a new conversation", session.ID)
	}

	system := req.SystemMessage
	if strings.TrimSpace(system) == "" && session != nil {
		system = session.SystemMessage()
	}
	if strings.TrimSpace(system) == "" {
		system = config.DefaultSystemMessage
	}
	system = system + "\n\n" + SafetyInstruction

	prompt := req.Prompt
	if req.UseRAG {
		prompt, err = s.withContext(ctx, session, req)
		if err != nil {
			return fail(err)
		}
	}

	history := req.ChatHistory
	if history == nil && session != nil {
		history = session.History()
	}

	params := llm.Params{Temperature: defaultTemperature, MaxTokens: defaultMaxTokens}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}

	adapter, err := s.factory.New(provider, req.APIKey)
	if err != nil {
		return fail(llm.ClassifyError(provider, err))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	reply, err := adapter.Generate(callCtx, llm.GenerateRequest{
		System:  system,
		History: history,
		Prompt:  prompt,
		Params:  params,
	})
	latency := time.Since(start)

	if err != nil {
		classified := llm.ClassifyError(provider, err)
		s.logger.WithFields(logrus.Fields{
			"provider": provider.String(),
			"kind":     classified.Kind,
			"latency":  latency.String(),
		}).Warnf("LLM call failed: %v", err)
		return fail(classified)
	}

	if strings.TrimSpace(reply) == "" {
		return fail(llm.EmptyResponseError(provider))
	}

	s.logger.WithFields(logrus.Fields{
		"provider": provider.String(),
		"rag":      req.UseRAG,
		"latency":  latency.String(),
	}).Info("LLM call succeeded")

	if session != nil {
		session.AppendExchange(req.Prompt, reply)
	}

	return models.QueryResponse{Response: reply, Success: true}
}

// withContext rewrites the prompt around retrieved context. The request's store
// wins over the session's selection; without either the prompt is kept.
func (s *ChatService) withContext(ctx context.Context, session *Session, req models.QueryRequest) (string, error) {
	store := strings.TrimSpace(req.DBPath)
	if store == "" && session != nil {
		store = session.SelectedStore()
	}
	if store == "" {
		s.logger.Warn("RAG requested without a store, using the plain prompt")
		return req.Prompt, nil
	}

	storePath, err := s.stores.Resolve(store)
	if err != nil {
		return "", models.NewRagRetrievalError(err)
	}
	if session != nil && req.DBPath != "" {
		session.SelectStore(store)
	}

	retrieved, err := s.retriever.Retrieve(ctx, req.Prompt, storePath, s.k)
	if err != nil {
		if models.KindOf(err) == models.KindRagRetrieval {
			return "", err
		}
		return "", models.NewRagRetrievalError(err)
	}

	return BuildRAGPrompt(retrieved, req.Prompt), nil
}

// BuildRAGPrompt splices retrieved context in front of the question
func BuildRAGPrompt(retrieved, question string) string {
	return "Use the following context to answer:\n\n" + retrieved + "\n\nQuestion: " + question
}

func validateQuery(req models.QueryRequest) error {
	if strings.TrimSpace(req.APIKey) == "" {
		return models.NewValidationError("❌ API key is required.")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return models.NewValidationError("❌ Prompt cannot be empty.")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return models.NewValidationError("❌ Temperature must be between 0 and 2.")
	}
	if req.MaxTokens != nil && *req.MaxTokens <= 0 {
		return models.NewValidationError("❌ Max tokens must be positive.")
	}
	return nil
}
