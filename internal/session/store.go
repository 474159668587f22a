package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID           string
	CreatedAt    time.Time
	Documents    *Documents
	Conversation *interview.Conversation
}

// Store keeps the sessions of the running process in memory.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	orchestrator *interview.Orchestrator
	logger       *zap.Logger
}

func NewStore(orchestrator *interview.Orchestrator, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{
		sessions:     make(map[string]*Session),
		orchestrator: orchestrator,
		logger:       log,
	}
}

// New builds a session that is not registered in any store. The interactive
// CLI runs on a single one.
func New(id string, orchestrator *interview.Orchestrator, log *zap.Logger) *Session {
	log = logger.WithFields(log, logger.StringFields(logger.StringField{Key: logger.FieldSession, Value: id})...)
	docs := NewDocuments()

	return &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		Documents:    docs,
		Conversation: interview.NewConversation(orchestrator, docs, log),
	}
}

func (s *Store) Create() *Session {
	session := New(uuid.NewString(), s.orchestrator, s.logger)

	s.mu.Lock()
	s.sessions[session.ID] = session
	total := len(s.sessions)
	s.mu.Unlock()

	s.logger.Info("session created", zap.String(logger.FieldSession, session.ID), zap.Int("sessions", total))
	return session
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)

	s.logger.Info("session deleted", zap.String(logger.FieldSession, id))
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
