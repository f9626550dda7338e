package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecognitionServer imitates the generateContent endpoint, answering each
// call with the next queued reply text.
type RecognitionServer struct {
	*httptest.Server

	mu      sync.Mutex
	replies []string
	calls   int
}

// NewRecognitionServer starts a server that answers with replies in order and
// repeats the last one once exhausted.
func NewRecognitionServer(t testing.TB, replies ...string) *RecognitionServer {
	t.Helper()
	rs := &RecognitionServer{replies: replies}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.handle))
	t.Cleanup(rs.Close)
	return rs
}

// Calls returns how many generate requests were served.
func (rs *RecognitionServer) Calls() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.calls
}

func (rs *RecognitionServer) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, ":generateContent") {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"name":"models/test"}`))
		return
	}
	rs.mu.Lock()
	reply := ""
	if len(rs.replies) > 0 {
		idx := rs.calls
		if idx >= len(rs.replies) {
			idx = len(rs.replies) - 1
		}
		reply = rs.replies[idx]
	}
	rs.calls++
	rs.mu.Unlock()

	payload := map[string]any{
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": reply}}},
				"finishReason": "STOP",
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
