package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rag-chatbot/internal/models"
	"rag-chatbot/internal/repositories"
)

func TestSessionManager_GetCreatesAndReuses(t *testing.T) {
	m := NewSessionManager(time.Hour, 3*time.Second, nil, testLogger())

	a := m.Get("abc")
	b := m.Get("abc")
	assert.Same(t, a, b)

	fresh := m.Get("")
	assert.NotEmpty(t, fresh.ID)
	assert.NotEqual(t, "abc", fresh.ID)
	assert.Equal(t, 2, m.Len())
}

func TestSessionManager_IdleExpiry(t *testing.T) {
	now := time.Now()
	m := NewSessionManager(time.Minute, 0, nil, testLogger())
	m.now = func() time.Time { return now }

	s := m.Get("abc")
	s.AppendExchange("q", "a")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Get("abc").History())
}

func TestSession_HistoryCapped(t *testing.T) {
	s := &Session{ID: "s"}
	for i := 0; i < maxSessionHistory; i++ {
		s.AppendExchange(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	history := s.History()
	assert.Len(t, history, maxSessionHistory)
	assert.Equal(t, fmt.Sprintf("a%d", maxSessionHistory-1), history[len(history)-1].Content)

	s.Clear()
	assert.Empty(t, s.History())
}

func TestSession_Selections(t *testing.T) {
	s := &Session{ID: "s"}
	s.SelectStore("docs")
	s.SaveSystemMessage("You are a coding assistant.")
	s.AppendExchange("q", "a")

	assert.Equal(t, "docs", s.SelectedStore())
	assert.Equal(t, "You are a coding assistant.", s.SystemMessage())
	assert.Equal(t, models.SessionInfo{
		ID:            "s",
		SelectedStore: "docs",
		SystemMessage: "You are a coding assistant.",
		HistoryLength: 2,
	}, s.Info())
}

func TestSession_SwitchRAG(t *testing.T) {
	s := &Session{ID: "s"}
	s.AppendExchange("q", "a")

	assert.False(t, s.SwitchRAG(false), "first query only records the mode")
	assert.Len(t, s.History(), 2)

	assert.False(t, s.SwitchRAG(false))
	assert.Len(t, s.History(), 2)

	assert.True(t, s.SwitchRAG(true))
	assert.Empty(t, s.History())
	assert.True(t, s.Info().UseRAG)

	s.AppendExchange("q", "a")
	assert.True(t, s.SwitchRAG(false))
	assert.Empty(t, s.History())
}

func TestSessionManager_Forget(t *testing.T) {
	m := NewSessionManager(time.Hour, 3*time.Second, repositories.NewMemoryGuardRepository(), testLogger())
	s := m.Get("abc")
	req := models.QueryRequest{Prompt: "x", ModelName: "DeepSeek"}
	ctx := context.Background()

	assert.False(t, m.IsDuplicate(ctx, s, req))
	assert.True(t, m.IsDuplicate(ctx, s, req))

	m.Forget(ctx, s, req)
	assert.False(t, m.IsDuplicate(ctx, s, req))
}

func TestFingerprint(t *testing.T) {
	base := models.QueryRequest{Prompt: "hi", ModelName: "DeepSeek"}

	same := base
	same.ModelName = "deepseek"
	same.APIKey = "different key"
	assert.Equal(t, Fingerprint(base), Fingerprint(same))

	rag := base
	rag.UseRAG = true
	assert.NotEqual(t, Fingerprint(base), Fingerprint(rag))

	other := base
	other.Prompt = "hello"
	assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
}

type failingGuard struct{}

func (failingGuard) Seen(ctx context.Context, key string, window time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func (failingGuard) Forget(ctx context.Context, key string) error {
	return errors.New("redis down")
}

func TestSessionManager_GuardFailureDoesNotBlock(t *testing.T) {
	m := NewSessionManager(time.Hour, 3*time.Second, failingGuard{}, testLogger())
	s := m.Get("abc")

	assert.False(t, m.IsDuplicate(context.Background(), s, models.QueryRequest{Prompt: "x"}))
	assert.False(t, m.IsDuplicate(context.Background(), s, models.QueryRequest{Prompt: "x"}))
	m.Forget(context.Background(), s, models.QueryRequest{Prompt: "x"})
}
