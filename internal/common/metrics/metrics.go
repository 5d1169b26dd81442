package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatTurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_total",
			Help: "Total number of conversation turns processed, by stage at receipt",
		},
		[]string{"stage"},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_stage_transitions_total",
			Help: "Total number of stage transitions",
		},
		[]string{"from", "to"},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversation_sessions_started_total",
			Help: "Total number of sessions created",
		},
	)

	OfferLettersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanction_letters_generated_total",
			Help: "Total number of sanction letters rendered, by offer status",
		},
		[]string{"status"},
	)

	UploadValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kyc_upload_rejections_total",
			Help: "Total number of rejected KYC uploads, by reason",
		},
		[]string{"reason"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"route", "method", "status"},
	)
)
