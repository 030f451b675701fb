package redirect

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTrackerTimeout ограничивает время ожидания ответа трекера
const DefaultTrackerTimeout = 700 * time.Millisecond

// Результаты уведомления трекера
const (
	TrackerSkipped     = "skipped"
	TrackerOK          = "ok"
	TrackerStatusError = "status_error"
	TrackerError       = "error"
	TrackerTimeout     = "timeout"
)

const drainLimit = 4 << 10

// TrackerRecorder учитывает результаты уведомлений
type TrackerRecorder interface {
	ObserveTracker(result string)
}

// Tracker отправляет best-effort уведомления о переходах во внешний трекер.
// Ошибки трекера никогда не возвращаются вызывающему коду.
type Tracker struct {
	client   *http.Client
	timeout  time.Duration
	logger   *zap.Logger
	recorder TrackerRecorder
}

// NewTracker создает Tracker. Нулевой timeout заменяется на DefaultTrackerTimeout,
// nil client на http.DefaultClient.
func NewTracker(client *http.Client, timeout time.Duration, logger *zap.Logger, recorder TrackerRecorder) *Tracker {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTrackerTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		client:   client,
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
	}
}

// TrackURL строит адрес уведомления: base + action=track, rid и dest.
func TrackURL(baseURL, rid, dest string) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return baseURL + sep + "action=track&rid=" + url.QueryEscape(rid) + "&dest=" + url.QueryEscape(dest)
}

// Notify уведомляет трекер о переходе. Пустой baseURL отключает уведомление.
// Вызов блокируется не дольше заданного таймаута.
func (t *Tracker) Notify(ctx context.Context, baseURL, rid, dest string) {
	t.NotifyWithin(ctx, t.timeout, baseURL, rid, dest)
}

// NotifyWithin работает как Notify, но с явным таймаутом.
// timeout не может превышать таймаут трекера: неположительное или большее
// значение заменяется им.
func (t *Tracker) NotifyWithin(ctx context.Context, timeout time.Duration, baseURL, rid, dest string) {
	if baseURL == "" {
		t.observe(TrackerSkipped)
		return
	}
	if timeout <= 0 || timeout > t.timeout {
		timeout = t.timeout
	}
	t.observe(t.notify(ctx, timeout, baseURL, rid, dest))
}

func (t *Tracker) notify(ctx context.Context, timeout time.Duration, baseURL, rid, dest string) string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := TrackURL(baseURL, rid, dest)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		t.logger.Warn("Error creating tracker request", zap.String("tracker_url", baseURL), zap.Error(err))
		return TrackerError
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			t.logger.Debug("Tracker request timed out", zap.Duration("timeout", timeout))
			return TrackerTimeout
		}
		t.logger.Debug("Tracker request failed", zap.Error(err))
		return TrackerError
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))
		if err := resp.Body.Close(); err != nil {
			t.logger.Debug("Error closing tracker response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.logger.Debug("Tracker returned non-2xx status", zap.Int("status", resp.StatusCode))
		return TrackerStatusError
	}
	return TrackerOK
}

func (t *Tracker) observe(result string) {
	if t.recorder != nil {
		t.recorder.ObserveTracker(result)
	}
}
