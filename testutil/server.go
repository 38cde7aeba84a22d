package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tripolabs/tripo-go/types"
)

type apiEnvelope struct {
	Data any `json:"data"`
}

// APIServer is a scriptable in-process fake of the Tripo3D API. Task
// status sequences are replayed one snapshot per GetTask call, with the
// last snapshot repeating once the script runs out — the same shape real
// polling sees.
type APIServer struct {
	*httptest.Server

	mu          sync.Mutex
	requests    int
	createdID   string
	uploadToken string
	balance     types.Balance
	scripts     map[string][]types.Task
	cursors     map[string]int
	lastBody    []byte
}

// NewAPIServer starts the fake API; it is closed when the test finishes.
func NewAPIServer(t *testing.T) *APIServer {
	t.Helper()

	s := &APIServer{
		createdID:   "task-123",
		uploadToken: "11111111-2222-3333-4444-555555555555",
		balance:     types.Balance{Balance: 100, Frozen: 0},
		scripts:     map[string][]types.Task{},
		cursors:     map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Server.Close)
	return s
}

// ScriptTask sets the status sequence replayed for taskID.
func (s *APIServer) ScriptTask(taskID string, snapshots ...types.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[taskID] = snapshots
	s.cursors[taskID] = 0
}

// SetCreatedID sets the task ID returned by task-creating endpoints.
func (s *APIServer) SetCreatedID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdID = id
}

// SetBalance sets the balance returned by user/balance.
func (s *APIServer) SetBalance(b types.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = b
}

// RequestCount reports how many API requests were received, for
// zero-network assertions.
func (s *APIServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// LastBody returns the body of the most recent JSON request.
func (s *APIServer) LastBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody
}

func (s *APIServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		s.lastBody, _ = io.ReadAll(r.Body)
	}
	s.mu.Unlock()

	if r.Header.Get("Authorization") == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodPost && path == "task":
		s.mu.Lock()
		id := s.createdID
		s.mu.Unlock()
		writeData(w, types.TaskResponse{TaskID: id})

	case r.Method == http.MethodGet && strings.HasPrefix(path, "task/"):
		s.serveTask(w, strings.TrimPrefix(path, "task/"))

	case r.Method == http.MethodGet && path == "user/balance":
		s.mu.Lock()
		b := s.balance
		s.mu.Unlock()
		writeData(w, b)

	case r.Method == http.MethodPost && path == "upload/sts":
		s.mu.Lock()
		token := s.uploadToken
		s.mu.Unlock()
		writeData(w, types.UploadData{ImageToken: token})

	default:
		writeError(w, http.StatusNotFound, "no such endpoint: "+path)
	}
}

func (s *APIServer) serveTask(w http.ResponseWriter, taskID string) {
	s.mu.Lock()
	script, ok := s.scripts[taskID]
	if !ok || len(script) == 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "task not found: "+taskID)
		return
	}
	idx := s.cursors[taskID]
	if idx >= len(script) {
		idx = len(script) - 1
	}
	s.cursors[taskID]++
	snapshot := script[idx]
	s.mu.Unlock()

	writeData(w, snapshot)
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"code": status, "message": message})
}
