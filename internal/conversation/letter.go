package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"loanlens-backend/internal/models"
)

// NoOfferLetter is returned when a letter is requested before underwriting
// has produced an offer.
const NoOfferLetter = "No offer available."

// RenderOfferLetter produces the sanction letter text for an offer. The
// output is deterministic for a given name, offer and date. Rejected offers
// render too, with the figures underwriting computed for them.
func RenderOfferLetter(name string, offer *models.Offer, now time.Time) string {
	if offer == nil {
		return NoOfferLetter
	}

	var b strings.Builder
	b.WriteString("LoanLens AI – Sanction Letter\n\n")
	fmt.Fprintf(&b, "Date: %s\n", now.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "To, %s\n\n", name)
	b.WriteString("We are pleased to sanction a personal loan with the following terms:\n")
	fmt.Fprintf(&b, "Approved Amount: ₹%s\n", groupDigits(offer.Approved))
	fmt.Fprintf(&b, "Interest Rate: %.1f%% p.a.\n", offer.Rate)
	fmt.Fprintf(&b, "Tenure: %d months\n", offer.TenureMonths)
	fmt.Fprintf(&b, "Processing Fee: ₹%s\n\n", groupDigits(offer.ProcessingFee))
	b.WriteString("This is a system-generated letter and does not require a signature.\n")
	return b.String()
}

// groupDigits renders n with thousands separators, e.g. 500000 -> "500,000".
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
