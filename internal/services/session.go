package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

// maxSessionHistory caps the remembered turns per session
const maxSessionHistory = 100

// Session is the per-client conversation state
type Session struct {
	ID string

	mu            sync.Mutex
	history       []models.ChatMessage
	selectedStore string
	systemMessage string
	ragKnown      bool
	lastRAG       bool
	lastSeen      time.Time
}

// History returns a copy of the remembered conversation
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// AppendExchange records one user prompt and the assistant's reply
func (s *Session) AppendExchange(prompt, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		models.ChatMessage{Role: models.RoleUser, Content: prompt},
		models.ChatMessage{Role: models.RoleAssistant, Content: reply},
	)
	if extra := len(s.history) - maxSessionHistory; extra > 0 {
		s.history = append([]models.ChatMessage(nil), s.history[extra:]...)
	}
}

// Clear forgets the conversation
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// SwitchRAG records the RAG mode of a new query. Switching modes starts a new
// conversation; it returns true when the history was dropped.
func (s *Session) SwitchRAG(useRAG bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switched := s.ragKnown && s.lastRAG != useRAG
	s.ragKnown = true
	s.lastRAG = useRAG
	if switched {
		s.history = nil
	}
	return switched
}

// SelectedStore is the store used for RAG when a query names none
func (s *Session) SelectedStore() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedStore
}

func (s *Session) SelectStore(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedStore = name
}

// SystemMessage is the saved system message used when a query carries none
func (s *Session) SystemMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.systemMessage
}

func (s *Session) SaveSystemMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systemMessage = msg
}

// Info snapshots the session for the API
func (s *Session) Info() models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionInfo{
		ID:            s.ID,
		SelectedStore: s.selectedStore,
		SystemMessage: s.systemMessage,
		UseRAG:        s.lastRAG,
		HistoryLength: len(s.history),
	}
}

// SessionManager keeps sessions in memory and drops idle ones
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	window   time.Duration
	guard    repositories.GuardRepository
	logger   *logrus.Logger
	now      func() time.Time
}

// NewSessionManager creates a session manager. window is the duplicate submission window.
func NewSessionManager(idle, window time.Duration, guard repositories.GuardRepository, logger *logrus.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		idle:     idle,
		window:   window,
		guard:    guard,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the session for id, creating it when unknown. An empty id gets a fresh one.
func (m *SessionManager) Get(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	session, ok := m.sessions[id]
	if !ok || (m.idle > 0 && now.Sub(session.lastSeen) > m.idle) {
		session = &Session{ID: id}
		m.sessions[id] = session
	}
	session.lastSeen = now
	return session
}

// Sweep removes sessions idle for longer than the idle timeout and returns how many were removed
func (m *SessionManager) Sweep() int {
	if m.idle <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, session := range m.sessions {
		if now.Sub(session.lastSeen) > m.idle {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions until ctx is done
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debugf("Removed %d idle sessions", n)
			}
		}
	}
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// IsDuplicate reports whether the same query was already submitted in this session
// within the duplicate window. Guard failures are logged and never block a query.
func (m *SessionManager) IsDuplicate(ctx context.Context, session *Session, req models.QueryRequest) bool {
	if m.guard == nil || m.window <= 0 || session == nil {
		return false
	}

	seen, err := m.guard.Seen(ctx, session.ID+":"+Fingerprint(req), m.window)
	if err != nil {
		m.logger.Warnf("Duplicate guard unavailable: %v", err)
		return false
	}
	return seen
}

// Forget drops a recorded submission so a failed query can be retried at once
func (m *SessionManager) Forget(ctx context.Context, session *Session, req models.QueryRequest) {
	if m.guard == nil || m.window <= 0 || session == nil {
		return
	}
	if err := m.guard.Forget(ctx, session.ID+":"+Fingerprint(req)); err != nil {
		m.logger.Warnf("Duplicate guard unavailable: %v", err)
	}
}

// Fingerprint identifies a submission by prompt, RAG flag and model
func Fingerprint(req models.QueryRequest) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(req.Prompt)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(req.UseRAG)))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(req.ModelName))))
	return hex.EncodeToString(h.Sum(nil))
}
