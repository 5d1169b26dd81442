// Package uploads validates KYC document uploads before they count as
// verification evidence.
package uploads

import (
	"loanlens-backend/internal/common/config"
	"loanlens-backend/internal/common/errors"
	"loanlens-backend/internal/common/metrics"
)

// Document is one uploaded file as received from the multipart form.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
}

// Validator checks uploaded documents against the configured content types
// and minimum size.
type Validator struct {
	allowed map[string]struct{}
	minSize int64
}

func NewValidator(cfg config.UploadConfig) *Validator {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[t] = struct{}{}
	}
	return &Validator{allowed: allowed, minSize: cfg.MinSizeBytes}
}

// Validate checks documents in order and reports the first offender, so the
// customer fixes one problem at a time.
func (v *Validator) Validate(docs ...Document) error {
	for _, doc := range docs {
		if _, ok := v.allowed[doc.ContentType]; !ok {
			metrics.UploadValidationFailures.WithLabelValues("invalid_type").Inc()
			return errors.NewInvalidUploadTypeError(doc.Filename)
		}
		if doc.Size < v.minSize {
			metrics.UploadValidationFailures.WithLabelValues("too_small").Inc()
			return errors.NewUploadTooSmallError(doc.Filename)
		}
	}
	return nil
}
