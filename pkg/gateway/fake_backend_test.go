package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"qnotes/pkg/api"
)

const fakePageSize = 10

// fakeBackend is an in-memory stand-in for the notes API, good enough to
// exercise the client end to end.
type fakeBackend struct {
	mu       sync.Mutex
	notes    map[string]*api.Note
	users    map[string]string
	tokens   map[string]string
	requests []*http.Request
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{
		notes:  make(map[string]*api.Note),
		users:  make(map[string]string),
		tokens: make(map[string]string),
	}
	srv := httptest.NewServer(fb.router())
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(fb.record)
	r.HandleFunc("/api/auth/register", fb.register).Methods("POST")
	r.HandleFunc("/api/auth/login", fb.login).Methods("POST")

	notes := r.PathPrefix("/api/notes").Subrouter()
	notes.Use(fb.requireToken)
	notes.HandleFunc("", fb.list).Methods("GET")
	notes.HandleFunc("", fb.create).Methods("POST")
	notes.HandleFunc("/statistics", fb.statistics).Methods("GET")
	notes.HandleFunc("/{id}", fb.get).Methods("GET")
	notes.HandleFunc("/{id}", fb.update).Methods("PUT")
	notes.HandleFunc("/{id}", fb.remove).Methods("DELETE")
	return r
}

func (fb *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		fb.requests = append(fb.requests, r.Clone(r.Context()))
		fb.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (fb *fakeBackend) lastRequest() *http.Request {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.requests[len(fb.requests)-1]
}

func (fb *fakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		fb.mu.Lock()
		_, ok := fb.tokens[token]
		fb.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, exists := fb.users[creds.Username]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "user already exists"})
		return
	}
	fb.users[creds.Username] = creds.Password
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: fb.issue(creds.Username)})
}

func (fb *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if pw, ok := fb.users[creds.Username]; !ok || pw != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
		return
	}
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: fb.issue(creds.Username)})
}

func (fb *fakeBackend) issue(username string) string {
	token := uuid.NewString()
	fb.tokens[token] = username
	return token
}

func (fb *fakeBackend) live() []api.Note {
	var out []api.Note
	for _, n := range fb.notes {
		if n.DeletedAt == nil {
			out = append(out, *n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (fb *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	priority := r.URL.Query().Get("priority")

	fb.mu.Lock()
	all := fb.live()
	fb.mu.Unlock()

	var filtered []api.Note
	for _, n := range all {
		if priority == "" || string(n.Priority) == priority {
			filtered = append(filtered, n)
		}
	}

	totalPages := (len(filtered) + fakePageSize - 1) / fakePageSize
	start := page * fakePageSize
	notes := []api.Note{}
	if start < len(filtered) {
		end := start + fakePageSize
		if end > len(filtered) {
			end = len(filtered)
		}
		notes = filtered[start:end]
	}
	writeJSON(w, http.StatusOK, api.Page{Notes: notes, TotalPages: totalPages, CurrentPage: page})
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	var req api.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fb.mu.Lock()
	n := fb.add(req, time.Now().UTC())
	fb.mu.Unlock()
	writeJSON(w, http.StatusCreated, n)
}

func (fb *fakeBackend) add(req api.NoteRequest, at time.Time) api.Note {
	n := &api.Note{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Content:   req.Content,
		Priority:  req.Priority,
		CreatedAt: at,
		UpdatedAt: at,
	}
	fb.notes[n.ID] = n
	return *n
}

func (fb *fakeBackend) find(id string) (*api.Note, bool) {
	n, ok := fb.notes[id]
	if !ok || n.DeletedAt != nil {
		return nil, false
	}
	return n, true
}

func (fb *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	n, ok := fb.find(mux.Vars(r)["id"])
	fb.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (fb *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	var req api.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n, ok := fb.find(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
		return
	}
	n.Title, n.Content, n.Priority = req.Title, req.Content, req.Priority
	n.UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, n)
}

func (fb *fakeBackend) remove(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n, ok := fb.find(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
		return
	}
	now := time.Now().UTC()
	n.DeletedAt = &now
	w.WriteHeader(http.StatusNoContent)
}

func (fb *fakeBackend) statistics(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	var stats api.Statistics
	var completed, deleted int
	var completedHours, deletedHours float64
	staleBefore := time.Now().Add(-48 * time.Hour)
	for _, n := range fb.notes {
		if n.DeletedAt != nil {
			deleted++
			deletedHours += n.DeletedAt.Sub(n.CreatedAt).Hours()
			continue
		}
		switch n.Priority {
		case api.PriorityNow:
			stats.HighPriorityNotesCount++
		case api.PriorityDone:
			completed++
			completedHours += n.UpdatedAt.Sub(n.CreatedAt).Hours()
		}
		if n.Priority != api.PriorityDone && n.UpdatedAt.Before(staleBefore) {
			stats.StaleNotesCount++
		}
	}
	if completed > 0 {
		stats.AverageCompletionTimeHours = completedHours / float64(completed)
	}
	if deleted > 0 {
		stats.AverageDeletionTimeHours = deletedHours / float64(deleted)
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
