// Package web serves the task list over HTTP: an HTML view for people and a
// JSON API for scripts.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
)

// Backend is the task service the handlers drive.
type Backend interface {
	Add(ctx context.Context, in service.NewTask) (task.Task, error)
	Get(ctx context.Context, ref string) (task.Task, error)
	List(ctx context.Context, f service.Filter) ([]task.Task, error)
	Approve(ctx context.Context, ref string) (task.Task, error)
	Answer(ctx context.Context, ref, questionRef, answer string) (task.Task, error)
	Complete(ctx context.Context, ref, subtaskRef string) (task.Task, error)
	Execute(ctx context.Context, ref, subtaskRef string) (task.Task, error)
	UpdateMetric(ctx context.Context, ref, metricRef string, value float64, note string) (task.Task, error)
	Progress(ctx context.Context, ref string) (task.Task, intel.ProgressReport, error)
	Events(ctx context.Context, ref string, limit int) ([]event.Entry, error)
	Skills() []skill.Directory
}

// Server provides the web UI handlers and state.
type Server struct {
	backend   Backend
	templates *template.Template
}

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"short": func(id string) string {
		if i := strings.IndexByte(id, '-'); i > 0 {
			return id[:i]
		}
		return id
	},
	"inc": func(i int) int { return i + 1 },
}

// NewServer creates a new web server.
func NewServer(backend Backend) (*Server, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{backend: backend, templates: tmpl}, nil
}

// Routes returns the router for the web UI and API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /tasks/{id}", s.handleTaskPage)
	mux.HandleFunc("POST /tasks/{id}/approve", s.formAction(func(r *http.Request, id string) error {
		_, err := s.backend.Approve(r.Context(), id)
		return err
	}))
	mux.HandleFunc("POST /tasks/{id}/subtasks/{sub}/done", s.formAction(func(r *http.Request, id string) error {
		_, err := s.backend.Complete(r.Context(), id, r.PathValue("sub"))
		return err
	}))

	mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	mux.HandleFunc("POST /api/tasks", s.handleAddTask)
	mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("POST /api/tasks/{id}/approve", s.handleApprove)
	mux.HandleFunc("POST /api/tasks/{id}/answers", s.handleAnswer)
	mux.HandleFunc("POST /api/tasks/{id}/subtasks/{sub}/complete", s.handleComplete)
	mux.HandleFunc("POST /api/tasks/{id}/subtasks/{sub}/execute", s.handleExecute)
	mux.HandleFunc("POST /api/tasks/{id}/metrics/{metric}", s.handleMetric)
	mux.HandleFunc("GET /api/tasks/{id}/progress", s.handleProgress)
	mux.HandleFunc("GET /api/tasks/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /api/skills", s.handleSkills)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	items, err := s.backend.List(r.Context(), service.Filter{Status: task.Status(r.URL.Query().Get("status"))})
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, "index.html", items)
}

func (s *Server) handleTaskPage(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.render(w, "task.html", &t)
}

func (s *Server) formAction(fn func(r *http.Request, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := fn(r, id); err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, "/tasks/"+id, http.StatusSeeOther)
	}
}

type addTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := s.backend.Add(r.Context(), service.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    task.Priority(req.Priority),
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.backend.List(r.Context(), service.Filter{
		Status: task.Status(q.Get("status")),
		Tag:    q.Get("tag"),
		Search: q.Get("q"),
		Active: q.Get("active") == "true",
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []task.Task{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.Get(r.Context(), r.PathValue("id"))
	respond(w, t, err)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.Approve(r.Context(), r.PathValue("id"))
	respond(w, t, err)
}

type answerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := s.backend.Answer(r.Context(), r.PathValue("id"), req.Question, req.Answer)
	respond(w, t, err)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.Complete(r.Context(), r.PathValue("id"), r.PathValue("sub"))
	respond(w, t, err)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	t, err := s.backend.Execute(r.Context(), r.PathValue("id"), r.PathValue("sub"))
	respond(w, t, err)
}

type metricRequest struct {
	Value float64 `json:"value"`
	Note  string  `json:"note"`
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	var req metricRequest
	if !decode(w, r, &req) {
		return
	}
	t, err := s.backend.UpdateMetric(r.Context(), r.PathValue("id"), r.PathValue("metric"), req.Value, req.Note)
	respond(w, t, err)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	_, report, err := s.backend.Progress(r.Context(), r.PathValue("id"))
	respond(w, report, err)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.backend.Events(r.Context(), r.PathValue("id"), limit)
	if entries == nil {
		entries = []event.Entry{}
	}
	respond(w, entries, err)
}

func (s *Server) handleSkills(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Skills())
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	http.Error(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, agent.ErrSubtaskNotFound),
		errors.Is(err, agent.ErrSkillNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrMetricNotFound):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrPlanApproved),
		errors.Is(err, agent.ErrQuestionAnswered),
		errors.Is(err, agent.ErrNoPlan),
		errors.Is(err, agent.ErrNotAutomatable),
		errors.Is(err, service.ErrAmbiguous):
		return http.StatusConflict
	case errors.Is(err, agent.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoJournal):
		return http.StatusNotImplemented
	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
