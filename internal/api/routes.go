package api

import (
	"encoding/json"
	"io"
	"net/http"

	"loanlens-backend/internal/common/errors"
	"loanlens-backend/internal/middleware"
	"loanlens-backend/internal/models"
	"loanlens-backend/internal/uploads"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxUploadBytes caps the whole multipart body held in memory per request.
const maxUploadBytes = 16 << 20

// ChatInput is the chat send payload. A missing session id starts a new
// session.
type ChatInput struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the chat send reply envelope.
type ChatResponse struct {
	SessionID string         `json:"session_id"`
	Reply     models.Message `json:"reply"`
	Stage     models.Stage   `json:"stage"`
}

// NewRouter assembles the full route tree with shared middleware.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(middleware.RequestMetrics)

	r.Get("/", h.Root)
	r.Get("/test", h.DatabaseStatus)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/session/start", h.StartSession)
		r.Get("/session/{session_id}", h.GetSession)
		r.Post("/chat/send", h.SendChat)
		r.Post("/verification/upload", h.UploadKYC)
		r.Post("/sanction/generate/{session_id}", h.GenerateLetter)
	})

	return r
}

// Root is a liveness probe.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{
		"message": "LoanLens AI Backend running",
	})
}

// DatabaseStatus reports store connectivity.
func (h *Handler) DatabaseStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"database": "connected",
	})
}

// StartSession creates a session and returns the welcome message.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	id, welcome, err := h.svc.StartSession(r.Context())
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"message":    welcome,
	})
}

// GetSession returns the full session document.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.GetSession(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, sess)
}

// SendChat runs one text turn of the conversation.
func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.Error(w, errors.NewInvalidRequestError("unreadable body"))
		return
	}
	if err := validateChatInput(body); err != nil {
		h.Error(w, err)
		return
	}

	var input ChatInput
	if err := json.Unmarshal(body, &input); err != nil {
		h.Error(w, errors.NewInvalidRequestError(err.Error()))
		return
	}

	result, err := h.svc.SendMessage(r.Context(), input.SessionID, input.Message)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, ChatResponse{
		SessionID: result.SessionID,
		Reply:     result.Reply,
		Stage:     result.Stage,
	})
}

// UploadKYC accepts the PAN and Aadhaar documents as a multipart form.
func (h *Handler) UploadKYC(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.Error(w, errors.NewInvalidRequestError("expected multipart form with pan and aadhaar files"))
		return
	}

	sessionID := r.FormValue("session_id")
	if sessionID == "" {
		h.Error(w, errors.NewInvalidRequestError("session_id is required"))
		return
	}

	pan, err := formDocument(r, "pan")
	if err != nil {
		h.Error(w, err)
		return
	}
	aadhaar, err := formDocument(r, "aadhaar")
	if err != nil {
		h.Error(w, err)
		return
	}

	if err := h.validator.Validate(pan, aadhaar); err != nil {
		h.Error(w, err)
		return
	}

	result, err := h.svc.SubmitKYC(r.Context(), sessionID, pan.Filename, aadhaar.Filename)
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": result.Reply,
	})
}

func formDocument(r *http.Request, field string) (uploads.Document, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return uploads.Document{}, errors.NewInvalidRequestError(field + " file is required")
	}
	defer file.Close()

	return uploads.Document{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, nil
}

// GenerateLetter renders the sanction letter for a session.
func (h *Handler) GenerateLetter(w http.ResponseWriter, r *http.Request) {
	letter, err := h.svc.GenerateSanctionLetter(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		h.Error(w, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"letter": letter})
}
