package models

import "time"

// Stage is the discrete phase of a loan conversation. Transitions only ever
// move forward through the declared order.
type Stage string

const (
	StageIntro        Stage = "intro"
	StageVerification Stage = "verification"
	StageUnderwriting Stage = "underwriting"
	StageSanction     Stage = "sanction"
	StageComplete     Stage = "complete"
)

var stageOrder = map[Stage]int{
	StageIntro:        0,
	StageVerification: 1,
	StageUnderwriting: 2,
	StageSanction:     3,
	StageComplete:     4,
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Ordinal returns the position of s in the stage sequence, or -1 for an
// unknown stage.
func (s Stage) Ordinal() int {
	if ord, ok := stageOrder[s]; ok {
		return ord
	}
	return -1
}

// Before reports whether s comes strictly earlier than other in the sequence.
func (s Stage) Before(other Stage) bool {
	return s.Ordinal() < other.Ordinal()
}

// Message roles in a session transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session's chat transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserMessage builds a user-authored transcript entry.
func NewUserMessage(content string, at time.Time) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: at}
}

// NewAssistantMessage builds an assistant-authored transcript entry.
func NewAssistantMessage(content string, at time.Time) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: at}
}

// KYC records the identity documents submitted during verification. The
// documents themselves are opaque filenames; verified means the upload
// validation passed, nothing more.
type KYC struct {
	PAN      string `json:"pan"`
	Aadhaar  string `json:"aadhaar"`
	Verified bool   `json:"verified"`
}

// Offer status values.
const (
	OfferApproved = "approved"
	OfferRejected = "rejected"
)

// Offer holds the computed loan terms for a session.
type Offer struct {
	Requested     int64   `json:"requested"`
	Approved      int64   `json:"approved"`
	Rate          float64 `json:"rate"`
	TenureMonths  int     `json:"tenure_months"`
	ProcessingFee int64   `json:"processing_fee"`
	Status        string  `json:"status"`
	Letter        string  `json:"letter,omitempty"`
}

// IsApproved reports whether the offer was approved by underwriting.
func (o *Offer) IsApproved() bool {
	return o != nil && o.Status == OfferApproved
}

// Session is the root document for a single customer conversation. It is
// created empty at stage intro and mutated only through engine patches.
type Session struct {
	ID              string    `json:"id"`
	Stage           Stage     `json:"stage"`
	CustomerName    string    `json:"customer_name,omitempty"`
	RequestedAmount int64     `json:"requested_amount,omitempty"`
	MonthlyIncome   int64     `json:"monthly_income,omitempty"`
	KYC             *KYC      `json:"kyc,omitempty"`
	Offer           *Offer    `json:"offer,omitempty"`
	Messages        []Message `json:"messages"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSession returns an empty session at stage intro.
func NewSession(now time.Time) *Session {
	return &Session{
		Stage:     StageIntro,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
