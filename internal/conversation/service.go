package conversation

import (
	"context"
	"time"

	"loanlens-backend/internal/common/logger"
	"loanlens-backend/internal/common/metrics"
	"loanlens-backend/internal/common/observability"
	"loanlens-backend/internal/models"
	"loanlens-backend/internal/store"
)

// TurnResult is the outcome of one conversation turn.
type TurnResult struct {
	SessionID string
	Reply     models.Message
	Stage     models.Stage
}

// Service orchestrates conversation turns: it loads the session, runs the
// engine and persists the resulting patch in one write.
type Service struct {
	store  store.SessionStore
	engine *Engine
	obs    *observability.Observability
	logger logger.Logger
}

func NewService(s store.SessionStore, engine *Engine, obs *observability.Observability, log logger.Logger) *Service {
	return &Service{store: s, engine: engine, obs: obs, logger: log}
}

// StartSession creates a session and seeds the transcript with the welcome
// message.
func (s *Service) StartSession(ctx context.Context) (string, models.Message, error) {
	now := time.Now().UTC()
	sess := models.NewSession(now)
	welcome := models.NewAssistantMessage(ReplyWelcome, now)
	sess.Messages = append(sess.Messages, welcome)

	id, err := s.store.Create(ctx, sess)
	if err != nil {
		return "", models.Message{}, err
	}

	metrics.SessionsStarted.Inc()
	s.logger.Info("session started", map[string]interface{}{"session_id": id})
	return id, welcome, nil
}

// GetSession returns the full session document.
func (s *Service) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.store.Get(ctx, id)
}

// SendMessage runs one text turn. An empty session id starts a fresh
// session first, so a bare chat message is enough to begin a conversation.
func (s *Service) SendMessage(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	if sessionID == "" {
		id, _, err := s.StartSession(ctx)
		if err != nil {
			return nil, err
		}
		sessionID = id
	}
	return s.runTurn(ctx, sessionID, TextEvent{Content: message})
}

// SubmitKYC records a validated document upload as a conversation event.
func (s *Service) SubmitKYC(ctx context.Context, sessionID, pan, aadhaar string) (*TurnResult, error) {
	return s.runTurn(ctx, sessionID, KYCUploadedEvent{PAN: pan, Aadhaar: aadhaar})
}

func (s *Service) runTurn(ctx context.Context, sessionID string, event Event) (*TurnResult, error) {
	started := time.Now()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patch, reply := s.engine.Advance(sess, event, now)

	updated, err := s.store.ApplyPatch(ctx, sessionID, patch)
	if err != nil {
		return nil, err
	}

	metrics.ChatTurnsProcessed.WithLabelValues(string(sess.Stage)).Inc()
	if updated.Stage != sess.Stage {
		metrics.StageTransitions.WithLabelValues(string(sess.Stage), string(updated.Stage)).Inc()
	}
	if s.obs != nil {
		s.obs.RecordTurn(ctx, string(sess.Stage))
		s.obs.RecordTurnDuration(ctx, time.Since(started), string(sess.Stage))
	}

	return &TurnResult{SessionID: sessionID, Reply: reply, Stage: updated.Stage}, nil
}

// GenerateSanctionLetter renders the letter for a session's offer and marks
// the application complete. It works from any stage so a letter can be
// re-fetched after the conversation ends.
func (s *Service) GenerateSanctionLetter(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	letter := RenderOfferLetter(sess.CustomerName, sess.Offer, now)

	stage := models.StageComplete
	if _, err := s.store.ApplyPatch(ctx, sessionID, store.Patch{
		Stage:       &stage,
		OfferLetter: &letter,
	}); err != nil {
		return "", err
	}

	status := "none"
	if sess.Offer != nil {
		status = sess.Offer.Status
	}
	metrics.OfferLettersGenerated.WithLabelValues(status).Inc()
	s.logger.Info("sanction letter generated", map[string]interface{}{
		"session_id": sessionID,
		"status":     status,
	})
	return letter, nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
