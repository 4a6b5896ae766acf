// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/stakedcall/log"
)

// mockLogger records what is logged at info level.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(...any) log.Logger                   { return m }
func (m *mockLogger) Enabled(context.Context, slog.Level) bool { return true }
func (m *mockLogger) Trace(string, ...any)                     {}
func (m *mockLogger) Debug(string, ...any)                     {}
func (m *mockLogger) Warn(string, ...any)                      {}
func (m *mockLogger) Error(string, ...any)                     {}
func (m *mockLogger) Crit(string, ...any)                      {}
func (m *mockLogger) Info(_ string, ctx ...any)                { m.loggedData = append(m.loggedData, ctx...) }

func TestRequestLogger(t *testing.T) {
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	failing := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) }
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{"enabled", ok, true, 0, true},
		{"disabled", ok, false, 0, false},
		{"disabled, 5xx", failing, false, 0, true},
		{"disabled, slow", slow, false, 5 * time.Millisecond, true},
		{"disabled, fast", ok, false, time.Second, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.threshold)(tt.handler)
			req := httptest.NewRequest(http.MethodPost, "/logs/event", strings.NewReader(`{"range":null}`))
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "/logs/event")
			assert.Contains(t, logger.loggedData, http.MethodPost)
			if tt.enabled {
				assert.Contains(t, logger.loggedData, `{"range":null}`)
			}
		})
	}
}
