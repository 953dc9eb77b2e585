package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/searchbot/internal/auth"
	"github.com/tjfontaine/searchbot/internal/domain"
	"github.com/tjfontaine/searchbot/internal/pipeline"
	"github.com/tjfontaine/searchbot/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const maxBodyBytes = 1 << 20

// Asker answers a question.
type Asker interface {
	Ask(ctx context.Context, source storage.Source, input string) (string, error)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Input string `json:"input"`
}

// ChatResponse is the success body of POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

type ExchangeListResponse struct {
	Exchanges []*storage.Exchange `json:"exchanges"`
}

// Handlers serves the chat page and API.
type Handlers struct {
	bot    Asker
	store  storage.ExchangeStore
	logger *slog.Logger
	title  string
}

// NewHandlers creates the handlers. store may be nil, in which case
// /exchanges reports that storage is not configured.
func NewHandlers(bot Asker, store storage.ExchangeStore, logger *slog.Logger) *Handlers {
	return &Handlers{
		bot:    bot,
		store:  store,
		logger: logger,
		title:  "Search Bot",
	}
}

// Register mounts the routes on r. The API routes require a key when
// authenticator is non-nil; the page and health check are always public.
func (h *Handlers) Register(r chi.Router, authenticator *auth.Authenticator) {
	r.Get("/", h.handleIndex)
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authenticator))
		r.Post("/chat", h.handleChat)
		r.Get("/exchanges", h.handleListExchanges)
	})
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, map[string]any{
		"Title":  h.title,
		"Stages": []string{pipeline.StageSearch, pipeline.StageTimestamp},
	}); err != nil {
		AddError(r.Context(), err)
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusBadRequest, domain.ErrEmptyInput.Message)
		return
	}
	if req.Input == "" {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyInput.Message)
		return
	}

	out, err := h.bot.Ask(r.Context(), storage.SourceHTTP, req.Input)
	if err != nil {
		h.writeAskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: out})
}

func (h *Handlers) writeAskError(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)

	var stageErr *pipeline.StageError
	if errors.As(err, &stageErr) {
		AddLogField(r.Context(), "stage", stageErr.Stage)
	}

	if apiErr, ok := domain.AsAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = err.Error()
		}
		writeError(w, clientStatus(apiErr), msg)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	writeError(w, http.StatusInternalServerError, err.Error())
}

// clientStatus is the status a /chat caller sees for apiErr. Errors raised by
// a model or search backend (Source set) are the server's problem, so their
// 4xx statuses become 502; rate limits keep 429 so callers can back off.
func clientStatus(apiErr *domain.APIError) int {
	status := apiErr.HTTPStatusCode()
	if apiErr.Source == "" || status < 400 || status >= 500 {
		return status
	}
	if status == http.StatusTooManyRequests {
		return status
	}
	return http.StatusBadGateway
}

func (h *Handlers) handleListExchanges(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "exchange storage not configured")
		return
	}

	limit := 50
	offset := 0

	if q := r.URL.Query().Get("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	if q := r.URL.Query().Get("offset"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v >= 0 {
			offset = v
		}
	}

	exchanges, err := h.store.ListExchanges(r.Context(), limit, offset)
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusInternalServerError, "failed to list exchanges")
		return
	}
	if exchanges == nil {
		exchanges = []*storage.Exchange{}
	}

	writeJSON(w, http.StatusOK, ExchangeListResponse{Exchanges: exchanges})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: strings.TrimSpace(msg)})
}
