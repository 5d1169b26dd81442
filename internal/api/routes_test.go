package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"loanlens-backend/internal/common/config"
	"loanlens-backend/internal/common/logger"
	"loanlens-backend/internal/conversation"
	"loanlens-backend/internal/models"
	"loanlens-backend/internal/store"
	"loanlens-backend/internal/uploads"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// TEST HELPERS
// ==========================

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	log := logger.NewTestLogger(t)
	engine := conversation.NewEngine(config.UnderwritingConfig{
		MinMonthlyIncome: 25000,
		IncomeMultiple:   20,
		MaxLoanAmount:    500000,
		PrimeThreshold:   300000,
		PrimeRate:        14.0,
		StandardRate:     16.0,
		PrimeTenure:      48,
		StandardTenure:   36,
		MinProcessingFee: 1999,
		FeePercent:       0.01,
	}, log)
	svc := conversation.NewService(store.NewMemoryStore(), engine, nil, log)
	validator := uploads.NewValidator(config.UploadConfig{
		AllowedTypes: []string{"image/jpeg", "image/png", "application/pdf"},
		MinSizeBytes: 10240,
	})
	return NewRouter(NewHandler(svc, validator, log), nil)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func startSession(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/session/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	id, ok := body["session_id"].(string)
	require.True(t, ok)
	return id
}

func addFilePart(t *testing.T, w *multipart.Writer, field, filename, contentType string, size int) {
	t.Helper()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	require.NoError(t, err)
}

func uploadKYC(t *testing.T, router http.Handler, sessionID, panType string, panSize int) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("session_id", sessionID))
	addFilePart(t, w, "pan", "pan.pdf", panType, panSize)
	addFilePart(t, w, "aadhaar", "aadhaar.png", "image/png", 20480)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/verification/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %s", rec.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

// ==========================
// PROBE ENDPOINT TESTS
// ==========================

func TestRootEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "LoanLens AI Backend running", body["message"])
}

func TestDatabaseStatusEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ==========================
// SESSION ENDPOINT TESTS
// ==========================

func TestStartSessionEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/session/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["session_id"])
	msg, ok := body["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.RoleAssistant, msg["role"])
	assert.Equal(t, conversation.ReplyWelcome, msg["content"])
}

func TestGetSessionEndpoint(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/session/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, string(models.StageIntro), body["stage"])
}

func TestGetSessionNotFound(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/session/11111111-2222-3333-4444-555555555555", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, rec))
}

func TestGetSessionMalformedID(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/session/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_SESSION_ID", errorCode(t, rec))
}

// ==========================
// CHAT ENDPOINT TESTS
// ==========================

func TestSendChat(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/chat/send", ChatInput{
		SessionID: id,
		Message:   "I need 500000, my name is Ravi Kumar",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id, resp.SessionID)
	assert.Equal(t, models.StageVerification, resp.Stage)
	assert.Equal(t, conversation.ReplyKYCRequest, resp.Reply.Content)
}

func TestSendChatWithoutSessionStartsOne(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/chat/send", ChatInput{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.StageIntro, resp.Stage)
}

func TestSendChatRejectsInvalidPayload(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"session_id": "abc"}`},
		{"empty message", `{"message": ""}`},
		{"wrong type", `{"message": 42}`},
		{"unknown field", `{"message": "hi", "extra": true}`},
		{"not json", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat/send", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
		})
	}
}

// ==========================
// UPLOAD ENDPOINT TESTS
// ==========================

func TestUploadKYC(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/chat/send", ChatInput{SessionID: id, Message: "500000"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = uploadKYC(t, router, id, "application/pdf", 20480)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["ok"])
	msg, ok := body["message"].(map[string]any)
	require.True(t, ok, "message should be a full message object")
	assert.Equal(t, models.RoleAssistant, msg["role"])
	assert.Equal(t, conversation.ReplyKYCVerified, msg["content"])
	assert.NotEmpty(t, msg["timestamp"])

	sessionRec := doJSON(t, router, http.MethodGet, "/api/session/"+id, nil)
	sessionBody := decodeBody(t, sessionRec)
	assert.Equal(t, string(models.StageUnderwriting), sessionBody["stage"])
}

func TestUploadKYCRejectsBadType(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := uploadKYC(t, router, id, "text/plain", 20480)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_UPLOAD_TYPE", errorCode(t, rec))
}

func TestUploadKYCRejectsSmallFile(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := uploadKYC(t, router, id, "application/pdf", 100)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UPLOAD_TOO_SMALL", errorCode(t, rec))
}

func TestUploadKYCRequiresSessionID(t *testing.T) {
	router := setupRouter(t)

	rec := uploadKYC(t, router, "", "application/pdf", 20480)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
}

// ==========================
// SANCTION ENDPOINT TESTS
// ==========================

func TestGenerateLetterEndpoint(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/chat/send", ChatInput{
		SessionID: id,
		Message:   "I need 500000, my name is Ravi Kumar",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = uploadKYC(t, router, id, "application/pdf", 20480)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/chat/send", ChatInput{SessionID: id, Message: "30000"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/sanction/generate/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	letter, ok := body["letter"].(string)
	require.True(t, ok)
	assert.Contains(t, letter, "To, Ravi Kumar")
	assert.Contains(t, letter, "Approved Amount: ₹500,000")
}

func TestGenerateLetterWithoutOffer(t *testing.T) {
	router := setupRouter(t)
	id := startSession(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/sanction/generate/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, conversation.NoOfferLetter, body["letter"])
}

// ==========================
// CORS TESTS
// ==========================

func TestCORSPreflight(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/send", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
