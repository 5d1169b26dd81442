package conversation

import (
	"fmt"
	"math"
	"strings"
	"time"

	"loanlens-backend/internal/common/config"
	"loanlens-backend/internal/common/logger"
	"loanlens-backend/internal/models"
	"loanlens-backend/internal/store"
)

// Assistant replies, verbatim per stage.
const (
	ReplyWelcome         = "Hi! I'm your loan assistant. What's your full name and the loan amount you're looking for?"
	ReplyKYCRequest      = "Great. To proceed, please upload your KYC: PAN and Aadhaar. You can upload images (JPG/PNG) or PDF."
	ReplyIntroRetry      = "Got it. Please share your full name and the loan amount you need (e.g., 500000)."
	ReplyAwaitingKYC     = "Awaiting KYC documents. Upload PAN and Aadhaar to continue."
	ReplyKYCVerified     = "KYC verified successfully. What's your monthly income?"
	ReplyAskIncome       = "Please share your monthly income (e.g., 30000)."
	ReplyRejected        = "Based on your income, we can't approve the requested amount at this time."
	ReplyLetterGenerated = "Sanction letter generated. You can download it now."
	ReplySayYes          = "Say 'yes' to generate your sanction letter."
	ReplyComplete        = "Your application is complete. How else can I help today?"
)

// consentWords trigger letter generation at the sanction stage. Matching is
// substring based on the lowercased message.
var consentWords = []string{"yes", "ok", "proceed", "generate", "sure"}

// Event is an external input that advances a conversation.
type Event interface {
	isEvent()
}

// TextEvent is a chat message typed by the customer.
type TextEvent struct {
	Content string
}

// KYCUploadedEvent records that both identity documents passed validation.
type KYCUploadedEvent struct {
	PAN     string
	Aadhaar string
}

func (TextEvent) isEvent()        {}
func (KYCUploadedEvent) isEvent() {}

// Engine is the pure stage machine. Advance never touches storage; it turns
// a session plus one event into a patch for the caller to persist.
type Engine struct {
	cfg    config.UnderwritingConfig
	logger logger.Logger
}

func NewEngine(cfg config.UnderwritingConfig, log logger.Logger) *Engine {
	return &Engine{cfg: cfg, logger: log}
}

// Advance computes the next state for one conversation turn. The returned
// patch already contains the user message (for text events) and the
// assistant reply, so persisting it writes the whole turn at once.
func (e *Engine) Advance(sess *models.Session, event Event, now time.Time) (store.Patch, models.Message) {
	var patch store.Patch

	if txt, ok := event.(TextEvent); ok {
		patch.Append = append(patch.Append, models.NewUserMessage(txt.Content, now))
	}

	var reply models.Message
	switch sess.Stage {
	case models.StageIntro:
		reply = e.advanceIntro(sess, event, &patch, now)
	case models.StageVerification:
		reply = e.advanceVerification(sess, event, &patch, now)
	case models.StageUnderwriting:
		reply = e.advanceUnderwriting(sess, event, &patch, now)
	case models.StageSanction:
		reply = e.advanceSanction(sess, event, &patch, now)
	default:
		reply = models.NewAssistantMessage(ReplyComplete, now)
	}

	patch.Append = append(patch.Append, reply)

	e.logger.Info("conversation turn advanced", map[string]interface{}{
		"session_id": sess.ID,
		"from_stage": string(sess.Stage),
		"to_stage":   string(nextStage(sess.Stage, patch)),
	})
	return patch, reply
}

func nextStage(current models.Stage, patch store.Patch) models.Stage {
	if patch.Stage != nil {
		return *patch.Stage
	}
	return current
}

// advanceIntro reads a name and a requested amount out of free text. Either
// fact moves the session forward; neither re-asks the opening question.
func (e *Engine) advanceIntro(sess *models.Session, event Event, patch *store.Patch, now time.Time) models.Message {
	txt, ok := event.(TextEvent)
	if !ok {
		return models.NewAssistantMessage(ReplyWelcome, now)
	}

	facts := ParseIntro(txt.Content)
	if !facts.Found() {
		return models.NewAssistantMessage(ReplyIntroRetry, now)
	}
	if facts.HasName {
		patch.CustomerName = &facts.Name
	}
	if facts.HasAmount {
		patch.RequestedAmount = &facts.Amount
	}

	stage := models.StageVerification
	patch.Stage = &stage
	return models.NewAssistantMessage(ReplyKYCRequest, now)
}

// advanceVerification waits for the document upload; text only gets a
// reminder. A verified upload asks for income and moves to underwriting.
func (e *Engine) advanceVerification(sess *models.Session, event Event, patch *store.Patch, now time.Time) models.Message {
	upload, ok := event.(KYCUploadedEvent)
	if !ok {
		return models.NewAssistantMessage(ReplyAwaitingKYC, now)
	}

	patch.KYC = &models.KYC{PAN: upload.PAN, Aadhaar: upload.Aadhaar, Verified: true}
	stage := models.StageUnderwriting
	patch.Stage = &stage
	return models.NewAssistantMessage(ReplyKYCVerified, now)
}

// advanceUnderwriting reads the monthly income and runs the eligibility
// rules. Approved or rejected, the session moves on to sanction.
func (e *Engine) advanceUnderwriting(sess *models.Session, event Event, patch *store.Patch, now time.Time) models.Message {
	txt, isText := event.(TextEvent)
	if !isText {
		return models.NewAssistantMessage(ReplyAskIncome, now)
	}
	income, ok := ParseAmount(txt.Content)
	if !ok {
		return models.NewAssistantMessage(ReplyAskIncome, now)
	}

	patch.MonthlyIncome = &income
	offer := e.underwrite(income, sess.RequestedAmount)
	patch.Offer = offer
	stage := models.StageSanction
	patch.Stage = &stage

	e.logger.Info("offer computed", map[string]interface{}{
		"session_id": sess.ID,
		"status":     offer.Status,
		"approved":   offer.Approved,
	})

	if !offer.IsApproved() {
		return models.NewAssistantMessage(ReplyRejected, now)
	}
	approvedReply := fmt.Sprintf(
		"You're eligible. Approved amount: ₹%s. Shall I generate your sanction letter?",
		groupDigits(offer.Approved))
	return models.NewAssistantMessage(approvedReply, now)
}

// advanceSanction waits for consent, then renders the letter and completes
// the application.
func (e *Engine) advanceSanction(sess *models.Session, event Event, patch *store.Patch, now time.Time) models.Message {
	txt, isText := event.(TextEvent)
	if !isText || !hasConsent(txt.Content) {
		return models.NewAssistantMessage(ReplySayYes, now)
	}

	letter := RenderOfferLetter(sess.CustomerName, sess.Offer, now)
	patch.OfferLetter = &letter
	stage := models.StageComplete
	patch.Stage = &stage
	return models.NewAssistantMessage(ReplyLetterGenerated, now)
}

func hasConsent(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range consentWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// underwrite applies the eligibility rules to a monthly income and the
// amount the customer asked for.
func (e *Engine) underwrite(income, requested int64) *models.Offer {
	maxAmount := income * e.cfg.IncomeMultiple
	if maxAmount > e.cfg.MaxLoanAmount {
		maxAmount = e.cfg.MaxLoanAmount
	}

	if requested == 0 {
		requested = maxAmount
	}
	approved := requested
	if approved > maxAmount {
		approved = maxAmount
	}

	// Only status is gated on income; the terms are computed either way so a
	// rejected offer still carries the figures it was judged on.
	status := models.OfferRejected
	if income >= e.cfg.MinMonthlyIncome && approved > 0 {
		status = models.OfferApproved
	}

	rate, tenure := e.cfg.StandardRate, e.cfg.StandardTenure
	if approved >= e.cfg.PrimeThreshold {
		rate, tenure = e.cfg.PrimeRate, e.cfg.PrimeTenure
	}

	fee := int64(math.Floor(float64(approved) * e.cfg.FeePercent))
	if fee < e.cfg.MinProcessingFee {
		fee = e.cfg.MinProcessingFee
	}

	return &models.Offer{
		Requested:     requested,
		Approved:      approved,
		Rate:          rate,
		TenureMonths:  tenure,
		ProcessingFee: fee,
		Status:        status,
	}
}
