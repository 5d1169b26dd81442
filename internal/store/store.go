// Package store persists conversation sessions as single flat documents.
package store

import (
	"context"
	"time"

	"loanlens-backend/internal/common/errors"
	"loanlens-backend/internal/models"

	"github.com/google/uuid"
)

// Patch describes one conversation turn's worth of changes: field values to
// set plus messages to append. A store applies the whole patch as a single
// write so a turn's user message, field updates and reply land together.
type Patch struct {
	Stage           *models.Stage
	CustomerName    *string
	RequestedAmount *int64
	MonthlyIncome   *int64
	KYC             *models.KYC
	Offer           *models.Offer
	OfferLetter     *string
	Append          []models.Message
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Stage == nil &&
		p.CustomerName == nil &&
		p.RequestedAmount == nil &&
		p.MonthlyIncome == nil &&
		p.KYC == nil &&
		p.Offer == nil &&
		p.OfferLetter == nil &&
		len(p.Append) == 0
}

// Apply mutates s in place with the patch contents.
func (p Patch) Apply(s *models.Session, now time.Time) {
	if p.Stage != nil {
		s.Stage = *p.Stage
	}
	if p.CustomerName != nil {
		s.CustomerName = *p.CustomerName
	}
	if p.RequestedAmount != nil {
		s.RequestedAmount = *p.RequestedAmount
	}
	if p.MonthlyIncome != nil {
		s.MonthlyIncome = *p.MonthlyIncome
	}
	if p.KYC != nil {
		kyc := *p.KYC
		s.KYC = &kyc
	}
	if p.Offer != nil {
		offer := *p.Offer
		s.Offer = &offer
	}
	if p.OfferLetter != nil {
		if s.Offer == nil {
			s.Offer = &models.Offer{}
		}
		s.Offer.Letter = *p.OfferLetter
	}
	s.Messages = append(s.Messages, p.Append...)
	s.UpdatedAt = now
}

// SessionStore is the persistence port consumed by the conversation service.
// Session ids are opaque strings from the caller's point of view.
type SessionStore interface {
	Create(ctx context.Context, s *models.Session) (string, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	ApplyPatch(ctx context.Context, id string, patch Patch) (*models.Session, error)
	AppendMessage(ctx context.Context, id string, msg models.Message) error
	Ping(ctx context.Context) error
}

// validateID rejects malformed session id tokens before any store lookup.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewInvalidSessionIDError(id)
	}
	return nil
}
