package store

import (
	"context"
	"sync"
	"time"

	"loanlens-backend/internal/common/errors"
	"loanlens-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is a map-backed SessionStore for tests and local runs
// without Redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *MemoryStore) Create(ctx context.Context, sess *models.Session) (string, error) {
	id := uuid.NewString()
	sess.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = cloneSession(sess)
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	return cloneSession(sess), nil
}

func (s *MemoryStore) ApplyPatch(ctx context.Context, id string, patch Patch) (*models.Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}

	patch.Apply(sess, time.Now().UTC())
	return cloneSession(sess), nil
}

func (s *MemoryStore) AppendMessage(ctx context.Context, id string, msg models.Message) error {
	_, err := s.ApplyPatch(ctx, id, Patch{Append: []models.Message{msg}})
	return err
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func cloneSession(s *models.Session) *models.Session {
	out := *s
	if s.KYC != nil {
		kyc := *s.KYC
		out.KYC = &kyc
	}
	if s.Offer != nil {
		offer := *s.Offer
		out.Offer = &offer
	}
	out.Messages = append([]models.Message(nil), s.Messages...)
	return &out
}
