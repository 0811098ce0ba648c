package log

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		status    int64
		size      int64
		wantLevel zapcore.Level
	}{
		{
			name:      "implicit ok",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("hello")) },
			status:    200,
			size:      5,
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "client error",
			handler:   func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			status:    404,
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "server error",
			handler:   func(w http.ResponseWriter, r *http.Request) { http.Error(w, "boom", http.StatusInternalServerError) },
			status:    500,
			size:      5,
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name:      "no write",
			handler:   func(w http.ResponseWriter, r *http.Request) {},
			status:    200,
			wantLevel: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			h := HTTPMiddleware(zap.New(core).Sugar())(tt.handler)

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs", nil))

			if logs.Len() != 1 {
				t.Fatalf("logged %d lines, want 1", logs.Len())
			}
			entry := logs.All()[0]
			if entry.Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", entry.Level, tt.wantLevel)
			}
			fields := entry.ContextMap()
			if fields["status"] != tt.status {
				t.Errorf("status = %v, want %d", fields["status"], tt.status)
			}
			if fields["size"] != tt.size {
				t.Errorf("size = %v, want %d", fields["size"], tt.size)
			}
			if fields["path"] != "/runs" {
				t.Errorf("path = %v", fields["path"])
			}
		})
	}
}
