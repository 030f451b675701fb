package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/InQaaaaGit/go_redirect.git/internal/config"
	"github.com/InQaaaaGit/go_redirect.git/internal/middleware"
	"github.com/InQaaaaGit/go_redirect.git/internal/redirect"
	"go.uber.org/zap"
)

const (
	contentTypePlain = "text/plain; charset=utf-8"
	contentTypeHTML  = "text/html; charset=utf-8"

	missingDestMessage  = "Missing dest parameter"
	invalidDestMessage  = "Invalid dest URL"
	domainDeniedMessage = "Destination domain not allowed"
	serverErrorMessage  = middleware.ServerErrorMessage

	destParam = "dest"
	ridParam  = "rid"
)

// Исходы обработки перехода
const (
	OutcomeMissingDest  = "missing_dest"
	OutcomeInvalidDest  = "invalid_dest"
	OutcomeDomainDenied = "domain_denied"
	OutcomeRedirected   = "redirected"
	OutcomeServerError  = "server_error"
)

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting</title></head>
<body><p>Redirecting to <a href="{{.}}">{{.}}</a></p></body>
</html>
`))

// Notifier уведомляет трекер о переходе
type Notifier interface {
	NotifyWithin(ctx context.Context, timeout time.Duration, baseURL, rid, dest string)
}

// OutcomeRecorder учитывает исходы обработки
type OutcomeRecorder interface {
	ObserveOutcome(outcome string)
}

// SettingsLoader возвращает актуальные настройки перехода
type SettingsLoader func() (*config.RedirectSettings, error)

type Handler struct {
	notifier Notifier
	settings SettingsLoader
	recorder OutcomeRecorder
	logger   *zap.Logger
}

// NewHandler создает обработчик. recorder может быть nil.
func NewHandler(notifier Notifier, settings SettingsLoader, recorder OutcomeRecorder, logger *zap.Logger) *Handler {
	return &Handler{
		notifier: notifier,
		settings: settings,
		recorder: recorder,
		logger:   logger,
	}
}

// HandleRedirect проверяет dest, уведомляет трекер и перенаправляет на адрес назначения.
// Метод запроса не проверяется, параметры берутся из query.
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rawDest := query.Get(destParam)
	rid := query.Get(ridParam)

	if rawDest == "" {
		h.respondText(w, http.StatusBadRequest, missingDestMessage, OutcomeMissingDest)
		return
	}

	dest, err := redirect.Normalize(rawDest)
	if err != nil {
		h.logger.Debug("Rejected destination", zap.String("dest", rawDest), zap.Error(err))
		h.respondText(w, http.StatusBadRequest, invalidDestMessage, OutcomeInvalidDest)
		return
	}

	settings, err := h.settings()
	if err != nil {
		h.logger.Error("Error loading redirect settings", zap.Error(err))
		h.respondText(w, http.StatusInternalServerError, serverErrorMessage, OutcomeServerError)
		return
	}

	allowlist := redirect.ParseAllowlist(settings.AllowedDomains)
	if !allowlist.Allows(dest) {
		h.logger.Info("Destination domain not allowed", zap.String("dest", dest))
		h.respondText(w, http.StatusForbidden, domainDeniedMessage, OutcomeDomainDenied)
		return
	}

	h.notifier.NotifyWithin(r.Context(), settings.TrackerTimeout, settings.TrackerURL, rid, dest)

	var page bytes.Buffer
	if err := redirectPage.Execute(&page, dest); err != nil {
		h.logger.Error("Error rendering redirect page", zap.Error(err))
		h.respondText(w, http.StatusInternalServerError, serverErrorMessage, OutcomeServerError)
		return
	}

	h.observe(OutcomeRedirected)
	w.Header().Set("Location", dest)
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusFound)
	if _, err := w.Write(page.Bytes()); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}

// respondText отправляет текстовый ответ без завершающего перевода строки
func (h *Handler) respondText(w http.ResponseWriter, status int, message, outcome string) {
	h.observe(outcome)
	w.Header().Set("Content-Type", contentTypePlain)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(message)); err != nil {
		h.logger.Error("Error writing response", zap.Error(err))
	}
}

func (h *Handler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveOutcome(outcome)
	}
}
