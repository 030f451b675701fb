package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/InQaaaaGit/go_redirect.git/internal/config"
	"github.com/InQaaaaGit/go_redirect.git/internal/redirect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockNotifier запоминает параметры последнего уведомления
type mockNotifier struct {
	calls   int
	baseURL string
	rid     string
	dest    string
	timeout time.Duration
}

func (m *mockNotifier) NotifyWithin(_ context.Context, timeout time.Duration, baseURL, rid, dest string) {
	m.calls++
	m.timeout = timeout
	m.baseURL = baseURL
	m.rid = rid
	m.dest = dest
}

// mockRecorder запоминает последний исход
type mockRecorder struct {
	outcome string
}

func (m *mockRecorder) ObserveOutcome(outcome string) {
	m.outcome = outcome
}

func staticSettings(s config.RedirectSettings) SettingsLoader {
	return func() (*config.RedirectSettings, error) {
		return &s, nil
	}
}

func TestHandleRedirect(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		method          string
		settings        config.RedirectSettings
		expectedStatus  int
		expectedBody    string
		expectedType    string
		expectedLoc     string
		expectedOutcome string
		expectNotify    bool
	}{
		{
			name:            "Missing dest",
			query:           "rid=abc",
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Missing dest parameter",
			expectedType:    contentTypePlain,
			expectedOutcome: OutcomeMissingDest,
		},
		{
			name:            "Empty dest",
			query:           "dest=",
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Missing dest parameter",
			expectedType:    contentTypePlain,
			expectedOutcome: OutcomeMissingDest,
		},
		{
			name:            "javascript dest",
			query:           "dest=" + url.QueryEscape("javascript:alert(1)"),
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Invalid dest URL",
			expectedType:    contentTypePlain,
			expectedOutcome: OutcomeInvalidDest,
		},
		{
			name:            "ftp dest",
			query:           "dest=" + url.QueryEscape("ftp://x"),
			expectedStatus:  http.StatusBadRequest,
			expectedBody:    "Invalid dest URL",
			expectedType:    contentTypePlain,
			expectedOutcome: OutcomeInvalidDest,
		},
		{
			name:            "Domain not in allowlist",
			query:           "dest=" + url.QueryEscape("https://evilbehance.net/"),
			settings:        config.RedirectSettings{AllowedDomains: []string{"behance.net"}},
			expectedStatus:  http.StatusForbidden,
			expectedBody:    "Destination domain not allowed",
			expectedType:    contentTypePlain,
			expectedOutcome: OutcomeDomainDenied,
		},
		{
			name:            "Subdomain in allowlist",
			query:           "dest=" + url.QueryEscape("sub.behance.net/gallery") + "&rid=r1",
			settings:        config.RedirectSettings{AllowedDomains: []string{"behance.net"}, TrackerURL: "http://tracker/t"},
			expectedStatus:  http.StatusFound,
			expectedType:    contentTypeHTML,
			expectedLoc:     "https://sub.behance.net/gallery",
			expectedOutcome: OutcomeRedirected,
			expectNotify:    true,
		},
		{
			name:            "No configuration",
			query:           "dest=example.com&rid=abc123",
			expectedStatus:  http.StatusFound,
			expectedType:    contentTypeHTML,
			expectedLoc:     "https://example.com/",
			expectedOutcome: OutcomeRedirected,
			expectNotify:    true,
		},
		{
			name:            "Encoded space in destination query",
			query:           "dest=" + url.QueryEscape("https://example.com/?q=a%20b"),
			expectedStatus:  http.StatusFound,
			expectedType:    contentTypeHTML,
			expectedLoc:     "https://example.com/?q=a%20b",
			expectedOutcome: OutcomeRedirected,
			expectNotify:    true,
		},
		{
			name:            "POST is handled like GET",
			method:          http.MethodPost,
			query:           "dest=example.com",
			expectedStatus:  http.StatusFound,
			expectedType:    contentTypeHTML,
			expectedLoc:     "https://example.com/",
			expectedOutcome: OutcomeRedirected,
			expectNotify:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			recorder := &mockRecorder{}
			h := NewHandler(notifier, staticSettings(tt.settings), recorder, zap.NewNop())

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/?"+tt.query, nil)
			w := httptest.NewRecorder()

			h.HandleRedirect(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.expectedOutcome, recorder.outcome)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectedLoc != "" {
				assert.Equal(t, tt.expectedLoc, w.Header().Get("Location"))
				assert.Contains(t, w.Body.String(), `href="`+tt.expectedLoc+`"`)
			} else {
				assert.Empty(t, w.Header().Get("Location"))
			}

			if !tt.expectNotify {
				assert.Zero(t, notifier.calls)
				return
			}
			require.Equal(t, 1, notifier.calls)
			assert.Equal(t, tt.settings.TrackerURL, notifier.baseURL)
			assert.Equal(t, tt.expectedLoc, notifier.dest)
			assert.Equal(t, req.URL.Query().Get("rid"), notifier.rid)
		})
	}
}

func TestHandleRedirectSettingsError(t *testing.T) {
	notifier := &mockNotifier{}
	recorder := &mockRecorder{}
	failing := func() (*config.RedirectSettings, error) {
		return nil, errors.New("bad TRACKER_TIMEOUT")
	}
	h := NewHandler(notifier, failing, recorder, zap.NewNop())

	w := httptest.NewRecorder()
	h.HandleRedirect(w, httptest.NewRequest(http.MethodGet, "/?dest=example.com", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", w.Body.String())
	assert.Equal(t, contentTypePlain, w.Header().Get("Content-Type"))
	assert.Equal(t, OutcomeServerError, recorder.outcome)
	assert.Zero(t, notifier.calls)
}

func TestHandleRedirectWithTracker(t *testing.T) {
	t.Run("Tracker receives notification", func(t *testing.T) {
		var hits atomic.Int32
		var query atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			query.Store(r.URL.RawQuery)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		tracker := redirect.NewTracker(srv.Client(), redirect.DefaultTrackerTimeout, zap.NewNop(), nil)
		h := NewHandler(tracker, staticSettings(config.RedirectSettings{TrackerURL: srv.URL + "/t?src=mail"}), nil, zap.NewNop())

		w := httptest.NewRecorder()
		h.HandleRedirect(w, httptest.NewRequest(http.MethodGet, "/?dest=example.com&rid=abc123", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, "src=mail&action=track&rid=abc123&dest=https%3A%2F%2Fexample.com%2F", query.Load())
	})

	t.Run("Slow tracker does not block redirect", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer srv.Close()

		tracker := redirect.NewTracker(srv.Client(), redirect.DefaultTrackerTimeout, zap.NewNop(), nil)
		settings := config.RedirectSettings{TrackerURL: srv.URL, TrackerTimeout: redirect.DefaultTrackerTimeout}
		h := NewHandler(tracker, staticSettings(settings), nil, zap.NewNop())

		start := time.Now()
		w := httptest.NewRecorder()
		h.HandleRedirect(w, httptest.NewRequest(http.MethodGet, "/?dest=example.com", nil))
		elapsed := time.Since(start)

		assert.Less(t, elapsed, 2*time.Second)
		assert.GreaterOrEqual(t, elapsed, 600*time.Millisecond)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/", w.Header().Get("Location"))
	})

	t.Run("Failing tracker does not change response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		tracker := redirect.NewTracker(srv.Client(), redirect.DefaultTrackerTimeout, zap.NewNop(), nil)
		h := NewHandler(tracker, staticSettings(config.RedirectSettings{TrackerURL: srv.URL}), nil, zap.NewNop())

		w := httptest.NewRecorder()
		h.HandleRedirect(w, httptest.NewRequest(http.MethodGet, "/?dest=example.com", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/", w.Header().Get("Location"))
	})
}

func TestHandlePing(t *testing.T) {
	h := NewHandler(&mockNotifier{}, staticSettings(config.RedirectSettings{}), nil, zap.NewNop())

	w := httptest.NewRecorder()
	h.HandlePing(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	h.HandlePing(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
