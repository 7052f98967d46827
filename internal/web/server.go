// Package web serves the invocation log viewer to a browser
package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bedrocksmith/bsmith/internal/config"
	"github.com/bedrocksmith/bsmith/internal/session"
	"github.com/bedrocksmith/bsmith/pkg/provider"
)

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).Parse(pageHTML))

// Server is the HTTP transport of the viewer. It owns the session state of
// its single user
type Server struct {
	Fetch   session.FetchFunc
	Objects provider.ObjectStore // optional
	Logger  *slog.Logger

	mu       sync.Mutex
	state    session.State
	external map[string][]byte
	now      func() time.Time
}

// NewServer creates a server whose state starts at q with no records
func NewServer(q session.Query, fetch session.FetchFunc, objects provider.ObjectStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Fetch:    fetch,
		Objects:  objects,
		Logger:   logger,
		state:    session.New(q),
		external: make(map[string][]byte),
		now:      time.Now,
	}
}

// State returns a copy of the current state
func (s *Server) State() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Handler returns the HTTP handler of the viewer
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":   true,
			"time": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /fetch", s.handleFetch)
	mux.HandleFunc("POST /load", s.handleLoad)

	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)

	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := parseView(r.URL.Query().Get("view"))

	s.mu.Lock()
	if id := strings.TrimSpace(r.URL.Query().Get("event")); id != "" {
		if next, err := s.state.Select(id); err == nil {
			s.state = next
		}
	}
	data := newPage(s.state, view, s.external)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.Logger.Error("failed to render page", "error", err)
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := queryFromForm(s.state.Query, r.Form)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.state = s.state.WithQuery(q)

	start := time.Now()
	records, err := s.Fetch(r.Context(), q)
	s.state = s.state.WithFetchResult(records, err, s.now())
	if err != nil {
		s.Logger.Warn("fetch failed", "log_group", q.LogGroup, "error", err)
	} else {
		s.Logger.Info("fetched events", "log_group", q.LogGroup, "count", len(records), "took", time.Since(start))
	}

	http.Redirect(w, r, "/?view="+url.QueryEscape(r.FormValue("view")), http.StatusSeeOther)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	view := r.FormValue("view")

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.state.Detail()
	if !ok || d.Err != nil {
		http.Redirect(w, r, "/?view="+url.QueryEscape(view), http.StatusSeeOther)
		return
	}
	path, ok := d.Event.ExternalPath()
	if !ok {
		http.Error(w, "selected event has no offloaded input", http.StatusBadRequest)
		return
	}
	if s.Objects == nil {
		http.Error(w, "S3 access is not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := s.Objects.GetObject(r.Context(), path)
	if err != nil {
		s.Logger.Warn("failed to load offloaded input", "path", path, "error", err)
		code := http.StatusBadGateway
		if errors.Is(err, provider.ErrNotFound) {
			code = http.StatusNotFound
		}
		http.Error(w, err.Error(), code)
		return
	}
	s.external[path] = body

	http.Redirect(w, r, "/?view="+url.QueryEscape(view), http.StatusSeeOther)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	items := make([]eventItem, 0, len(st.Records))
	for i, sum := range st.Summaries() {
		items = append(items, newEventItem(i+1, sum))
	}

	resp := map[string]any{"ok": true, "query": st.Query, "items": items}
	if !st.FetchedAt.IsZero() {
		resp["fetched_at"] = st.FetchedAt.UTC().Format(time.RFC3339)
	}
	if st.FetchErr != nil {
		resp["fetch_error"] = st.FetchErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	records := s.state.Records
	s.mu.Unlock()

	rec, err := session.Lookup(records, r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	d := session.NewDetail(rec)
	if d.Err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"event_id":  rec.EventID,
			"malformed": true,
			"error":     d.Err.Error(),
			"message":   rec.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "event": newEventDetail(d)})
}

func queryFromForm(q session.Query, form url.Values) (session.Query, error) {
	if v := strings.TrimSpace(form.Get("log_group")); v != "" {
		q.LogGroup = v
	}
	if v := strings.TrimSpace(form.Get("region")); v != "" {
		q.Region = v
	}
	if v := strings.TrimSpace(form.Get("hours")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, config.ErrInvalidLookback
		}
		if err := config.ValidateLookback(n); err != nil {
			return q, err
		}
		q.LookbackHours = n
	}
	if v := strings.TrimSpace(form.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, config.ErrInvalidLimit
		}
		if err := config.ValidateLimit(n); err != nil {
			return q, err
		}
		q.Limit = n
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	b, err := json.Marshal(v)
	if err != nil {
		_, _ = w.Write([]byte(`{"ok":false,"error":"failed to marshal json"}`))
		return
	}
	_, _ = w.Write(append(b, '\n'))
}

