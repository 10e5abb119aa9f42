package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kapu/wellness-companion-go/internal/command"
	"github.com/kapu/wellness-companion-go/internal/constants"
	"github.com/kapu/wellness-companion-go/internal/domain"
	"github.com/kapu/wellness-companion-go/internal/service/ai"
	"github.com/kapu/wellness-companion-go/internal/session"
	"github.com/kapu/wellness-companion-go/internal/wizard"
	apperrors "github.com/kapu/wellness-companion-go/pkg/errors"
)

type Dependencies struct {
	Responder *ai.Responder
	Sessions  *session.Store
	Commands  *command.Registry
	Logger    *zap.Logger
}

type Server struct {
	responder *ai.Responder
	sessions  *session.Store
	commands  *command.Registry
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// NewServer wires the routes and middlewares into one handler.
func NewServer(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		responder: deps.Responder,
		sessions:  deps.Sessions,
		commands:  deps.Commands,
		logger:    logger,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: constants.WebSocketConfig.HandshakeTimeout,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/respond", s.handleRespond)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /respond", s.handleRespond)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/advance", s.handleAdvance)
	mux.HandleFunc("GET /api/sessions/{id}/response/ws", s.handleResponseSocket)

	return chainMiddlewares(mux, withRequestID, withLogging(logger), withCORS)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type modelsResponse struct {
	Backend string `json:"backend"`
	Model   string `json:"model,omitempty"`
	Offline bool   `json:"offline"`
}

type analyzeRequest struct {
	Content   string `json:"content"`
	Emotion   string `json:"emotion"`
	Intensity int    `json:"intensity,omitempty"`
}

type analyzeResponse struct {
	Analysis string              `json:"analysis"`
	Failure  domain.FailureClass `json:"failure,omitempty"`
	Source   string              `json:"source"`
}

type respondRequest struct {
	Content            string `json:"content"`
	Emotion            string `json:"emotion"`
	Intensity          int    `json:"intensity"`
	Type               string `json:"type"`
	AdvisorPerspective string `json:"advisorPerspective,omitempty"`
	Recipient          string `json:"recipient,omitempty"`
	Scenario           string `json:"scenario,omitempty"`
	Addendum           string `json:"addendum,omitempty"`
}

type respondResponse struct {
	Response string              `json:"response"`
	Failure  domain.FailureClass `json:"failure,omitempty"`
	Source   string              `json:"source"`
}

type chatRequest struct {
	Message      string   `json:"message"`
	Model        string   `json:"model,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty"`
}

type chatResponse struct {
	Response string              `json:"response"`
	Model    string              `json:"model,omitempty"`
	Failure  domain.FailureClass `json:"failure,omitempty"`
	Source   string              `json:"source"`
}

type sessionResponse struct {
	ID        string                  `json:"id"`
	Step      wizard.Step             `json:"step"`
	Title     string                  `json:"title"`
	Params    wizard.Params           `json:"params"`
	Journal   int                     `json:"journal_entries"`
	CreatedAt time.Time               `json:"created_at"`
	Profile   *domain.ProfileOverview `json:"profile,omitempty"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modelsResponse{
		Backend: s.responder.Backend(),
		Model:   s.responder.Model(),
		Offline: s.responder.Offline(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	intensity := domain.Intensity(req.Intensity)
	if req.Intensity == 0 {
		intensity = domain.Intensity(constants.AnalysisDefaults.Intensity)
	}
	rr := domain.ResponseRequest{
		Emotion:   req.Emotion,
		Intensity: intensity,
		Content:   req.Content,
		Type:      domain.ResponseSummary,
	}
	if err := rr.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	res := s.responder.Respond(r.Context(), rr)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis: res.Text,
		Failure:  res.Failure,
		Source:   res.Source,
	})
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	// The advisor endpoint predates the other response types.
	rt := domain.ResponseAdvice
	if req.Type != "" {
		rt = domain.ParseResponseType(req.Type)
	}
	recipient := req.Recipient
	if known := domain.Recipient(req.Recipient); known.IsValid() {
		recipient = known.Label()
	}

	rr := domain.ResponseRequest{
		Emotion:   req.Emotion,
		Intensity: domain.Intensity(req.Intensity),
		Content:   req.Content,
		Type:      rt,
		Recipient: recipient,
		Scenario:  req.Scenario,
		Advisor:   domain.AdvisorPerspective(req.AdvisorPerspective),
		Addendum:  req.Addendum,
	}
	if err := rr.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	res := s.responder.Respond(r.Context(), rr)
	writeJSON(w, http.StatusOK, respondResponse{
		Response: res.Text,
		Failure:  res.Failure,
		Source:   res.Source,
	})
}

// handleChat relays one free-form message. The requested model is only
// logged; the configured backend model always answers.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	cr := ai.ChatRequest{
		Message:     req.Message,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
	}
	if err := cr.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Model != "" && req.Model != s.responder.Model() {
		s.logger.Debug("Ignoring requested chat model", zap.String("requested", req.Model))
	}

	res := s.responder.Chat(r.Context(), cr)
	writeJSON(w, http.StatusOK, chatResponse{
		Response: res.Text,
		Model:    s.responder.Model(),
		Failure:  res.Failure,
		Source:   res.Source,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	// An empty body is a valid advance for steps that take no input.
	params := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}

	step := sess.Flow.Current()
	if err := s.commands.Execute(r.Context(), sess, string(step), params); err != nil {
		s.logger.Debug("Advance rejected",
			zap.String("session_id", sess.ID),
			zap.String("step", string(step)),
			zap.Error(err),
		)
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func toSessionResponse(sess *session.Session) sessionResponse {
	step := sess.Flow.Current()
	out := sessionResponse{
		ID:        sess.ID,
		Step:      step,
		Params:    sess.Flow.Params(),
		Journal:   len(sess.Flow.History()),
		CreatedAt: sess.CreatedAt,
	}
	if cfg, ok := wizard.ConfigFor(step); ok {
		out.Title = cfg.Title
	}
	if step == wizard.StepProfile {
		overview := wizard.BuildProfileOverview(sess.Flow.History())
		out.Profile = &overview
	}
	return out
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

// statusFor maps wizard and command errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		validation *apperrors.ValidationError
		notFound   *apperrors.NotFoundError
		missing    *wizard.MissingParamError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.Is(err, wizard.ErrGuardNotSatisfied),
		errors.Is(err, wizard.ErrTransitionNotAllowed),
		errors.Is(err, wizard.ErrNotMounted),
		errors.Is(err, wizard.ErrRequestInFlight),
		errors.Is(err, wizard.ErrFlowClosed),
		errors.Is(err, command.ErrUnknownCommand):
		return http.StatusConflict
	case errors.Is(err, domain.ErrIntensityRange),
		errors.Is(err, domain.ErrEmptyContent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Error(err))
		internalError(w)
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
