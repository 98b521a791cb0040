package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/asmitanand/mentorly/internal/chat"
	"github.com/asmitanand/mentorly/internal/i18n"
	"github.com/asmitanand/mentorly/internal/llm"
	"github.com/asmitanand/mentorly/internal/mentor"
	"github.com/asmitanand/mentorly/internal/model"
	"github.com/asmitanand/mentorly/internal/quiz"
	"github.com/asmitanand/mentorly/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	registry *mentor.Registry
	chat     *chat.Service
	quiz     *quiz.Generator
	store    *store.Store
	provider llm.Provider
	config   model.ServerConfig
}

// New creates a new Handler.
func New(reg *mentor.Registry, provider llm.Provider, st *store.Store, cfg model.ServerConfig) *Handler {
	return &Handler{
		registry: reg,
		chat:     chat.NewService(provider),
		quiz:     quiz.NewGenerator(provider, cfg.QuizQuestions),
		store:    st,
		provider: provider,
		config:   cfg,
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/quiz/generate", h.handleQuizGenerate)
	r.Post("/api/quiz/results", h.handleQuizResult)
	r.Post("/api/calls", h.handleCallLog)
	r.Get("/api/mentors", h.handleMentors)
	r.Get("/api/mentors/{id}", h.handleMentorByID)
	r.Get("/api/analytics", h.handleAnalytics)
	r.Get("/api/profile", h.handleGetProfile)
	r.Put("/api/profile", h.handlePutProfile)
	r.Get("/healthz", h.handleHealth)
}

type chatRequest struct {
	Messages      []model.Message `json:"messages"`
	MentorID      string          `json:"mentorId"`
	MentorName    string          `json:"mentorName"`
	MentorSubject string          `json:"mentorSubject"`
	LearnerName   string          `json:"learnerName,omitempty"`
	LearnerClass  string          `json:"learnerClass,omitempty"`
	LearnerGoal   string          `json:"learnerGoal,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "invalid JSON body"})
		return
	}
	if len(req.Messages) == 0 {
		h.writeError(w, r, http.StatusBadRequest, "error.empty_message", nil)
		return
	}
	for _, m := range req.Messages {
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "unknown message role"})
			return
		}
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != model.RoleUser || strings.TrimSpace(last.Content) == "" {
		h.writeError(w, r, http.StatusBadRequest, "error.empty_message", nil)
		return
	}

	m, err := h.resolveMentor(req)
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "error.mentor_not_found",
			map[string]any{"Query": req.MentorID + req.MentorSubject})
		return
	}

	ctx := r.Context()
	if h.config.ChatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.ChatTimeout)
		defer cancel()
	}

	var profile *model.LearnerProfile
	if req.LearnerName != "" || req.LearnerClass != "" || req.LearnerGoal != "" {
		profile = &model.LearnerProfile{Name: req.LearnerName, Class: req.LearnerClass, Goal: req.LearnerGoal}
	}

	reply, err := h.chat.Reply(ctx, m, req.Messages, profile)
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

// resolveMentor prefers the explicit mentor ID, then falls back to subject
// lookup, then to the raw name/subject fields from the request so the
// endpoint stays usable with mentors outside the catalog.
func (h *Handler) resolveMentor(req chatRequest) (model.Mentor, error) {
	if req.MentorID != "" {
		if m, err := h.registry.ByID(req.MentorID); err == nil {
			return m, nil
		} else if req.MentorName == "" {
			return model.Mentor{}, err
		}
	}
	if req.MentorName != "" && req.MentorSubject != "" {
		return model.Mentor{ID: req.MentorID, Name: req.MentorName, Subject: req.MentorSubject}, nil
	}
	if req.MentorSubject != "" {
		return h.registry.BySubject(req.MentorSubject)
	}
	return model.Mentor{}, mentor.ErrNotFound
}

type quizGenerateResponse struct {
	Questions []model.QuizQuestion `json:"questions"`
}

func (h *Handler) handleQuizGenerate(w http.ResponseWriter, r *http.Request) {
	var cfg model.QuizConfiguration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(cfg.Class) == "" ||
		strings.TrimSpace(cfg.Subject) == "" ||
		strings.TrimSpace(cfg.Chapter) == "" {
		h.writeError(w, r, http.StatusBadRequest, "error.quiz_config", nil)
		return
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = model.DifficultyModerate
	}
	if !model.ValidDifficulty(cfg.Difficulty) {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "unknown difficulty"})
		return
	}

	ctx := r.Context()
	if h.config.QuizTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.QuizTimeout)
		defer cancel()
	}

	questions, err := h.quiz.Generate(ctx, cfg)
	if err != nil {
		h.writeProviderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizGenerateResponse{Questions: questions})
}

func (h *Handler) handleQuizResult(w http.ResponseWriter, r *http.Request) {
	var result model.QuizResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "invalid JSON body"})
		return
	}
	if result.Total <= 0 || result.Correct < 0 || result.Correct > result.Total {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "score out of range"})
		return
	}
	id, err := h.store.RecordQuizResult(result)
	if err != nil {
		h.internalError(w, r, "record quiz result", err)
		return
	}
	result.ID = id
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleCallLog(w http.ResponseWriter, r *http.Request) {
	var log model.CallLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "invalid JSON body"})
		return
	}
	if log.Duration < 0 {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "negative duration"})
		return
	}
	id, err := h.store.RecordCall(log)
	if err != nil {
		h.internalError(w, r, "record call", err)
		return
	}
	log.ID = id
	writeJSON(w, http.StatusCreated, log)
}

func (h *Handler) handleMentors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.All())
}

func (h *Handler) handleMentorByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.registry.ByID(id)
	if err != nil {
		h.writeError(w, r, http.StatusNotFound, "error.mentor_not_found", map[string]any{"Query": id})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.store.Analytics()
	if err != nil {
		h.internalError(w, r, "analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProfile()
	if err != nil {
		h.internalError(w, r, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var p model.LearnerProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "error.validation", map[string]any{"Reason": "invalid JSON body"})
		return
	}
	if err := h.store.SetProfile(p); err != nil {
		h.internalError(w, r, "set profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"model":  h.provider.ModelID(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msgID string, data map[string]any) {
	var msg string
	if data != nil {
		msg = i18n.Td(r.Context(), msgID, data)
	} else {
		msg = i18n.T(r.Context(), msgID)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeProviderError maps model-call failures onto the wire: timeouts and
// upstream failures are 502s with a localized message; the underlying cause
// is logged, never leaked to the client.
func (h *Handler) writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("model call failed", "error", err)

	var rateLimit *llm.ErrRateLimit
	var malformed *quiz.ErrMalformedPayload
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		h.writeError(w, r, http.StatusBadGateway, "error.timeout", nil)
	case errors.As(err, &rateLimit):
		h.writeError(w, r, http.StatusBadGateway, "error.rate_limited", nil)
	case errors.As(err, &malformed):
		h.writeError(w, r, http.StatusBadGateway, "error.malformed_quiz", nil)
	default:
		h.writeError(w, r, http.StatusBadGateway, "error.remote_failure", nil)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "error", err)
	h.writeError(w, r, http.StatusInternalServerError, "error.internal", nil)
}
