package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/config"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	ag := agent.New(intel.NewTemplateProvider(0), service.NewRegistry(nil), nil, agent.Options{})
	svc := service.New(task.NewMemoryStore(), ag, nil, "")
	s, err := NewServer(svc)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, svc
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeTask(t *testing.T, resp *http.Response) task.Task {
	t.Helper()
	var out task.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAPI_TaskWorkflow(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)

	resp := post(t, ts.URL+"/api/tasks", `{"title":"Run a 5K race","tags":["fitness"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeTask(t, resp)
	assert.Equal(t, task.StatusAwaitingInput, created.Status)

	resp = post(t, ts.URL+"/api/tasks/"+created.ID+"/answers", `{"question":"1","answer":"Never"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Never", decodeTask(t, resp).ClarificationQuestions[0].Answer)

	resp = post(t, ts.URL+"/api/tasks/"+created.ID+"/approve", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decodeTask(t, resp)
	require.Len(t, approved.Subtasks, 8)

	resp = post(t, ts.URL+"/api/tasks/"+created.ID+"/approve", ``)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = post(t, ts.URL+"/api/tasks/"+created.ID+"/subtasks/3/execute", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, task.StatusCompleted, decodeTask(t, resp).Subtasks[2].Status)

	resp = post(t, ts.URL+"/api/tasks/"+created.ID+"/subtasks/1/complete", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post(t, ts.URL+"/api/tasks/"+created.ID+"/metrics/1", `{"value":2,"note":"Morning run"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeTask(t, resp).ProgressMetrics[0].History, 1)

	resp = get(t, ts.URL+"/api/tasks/"+created.ID+"/progress")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report intel.ProgressReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, 25, report.ProgressPercentage)

	resp = get(t, ts.URL+"/api/tasks?tag=fitness")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []task.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestAPI_Errors(t *testing.T) {
	t.Parallel()

	ts, svc := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, get(t, ts.URL+"/api/tasks/missing").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, ts.URL+"/api/tasks", `{"title":""}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, ts.URL+"/api/tasks", `{"name":"x"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, ts.URL+"/api/tasks?status=sleeping").StatusCode)

	added, err := svc.Add(context.Background(), service.NewTask{Title: "Learn Go"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, post(t, ts.URL+"/api/tasks/"+added.ID+"/subtasks/9/complete", ``).StatusCode)
	assert.Equal(t, http.StatusNotImplemented, get(t, ts.URL+"/api/tasks/"+added.ID+"/events").StatusCode)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := map[error]int{
		task.ErrNotFound:      http.StatusNotFound,
		agent.ErrPlanApproved: http.StatusConflict,
		agent.ErrInvalidInput: http.StatusBadRequest,
		service.ErrNoJournal:  http.StatusNotImplemented,
		service.ErrBusy:       http.StatusServiceUnavailable,
		io.ErrUnexpectedEOF:   http.StatusInternalServerError,
	}
	for err, want := range tests {
		assert.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func TestAPI_ListEmptyIsArray(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	resp := get(t, ts.URL+"/api/tasks")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.Equal(t, "[]", string(raw))
}

func TestAPI_Skills(t *testing.T) {
	t.Parallel()

	ts, _ := newTestServer(t)
	resp := get(t, ts.URL+"/api/skills")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dirs []struct {
		ID     string `json:"id"`
		Skills []struct {
			ID string `json:"id"`
		} `json:"skills"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dirs))
	require.Len(t, dirs, 1)
	assert.Len(t, dirs[0].Skills, 5)
}

func TestPages(t *testing.T) {
	t.Parallel()

	ts, svc := newTestServer(t)
	added, err := svc.Add(context.Background(), service.NewTask{Title: "Do my taxes"})
	require.NoError(t, err)

	resp := get(t, ts.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readAll(t, resp)
	assert.Contains(t, body, "Do my taxes")
	assert.Contains(t, body, "/tasks/"+added.ID)

	resp = get(t, ts.URL+"/tasks/"+added.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = readAll(t, resp)
	assert.Contains(t, body, "Gather 1099 forms")
	assert.Contains(t, body, "Approve plan")

	resp = post(t, ts.URL+"/tasks/"+added.ID+"/approve", ``)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = readAll(t, resp)
	assert.Contains(t, body, "Subtasks (0/7)")
	assert.NotContains(t, body, "Approve plan")
}

func TestModule_StartsAndStops(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Store.Path = filepath.Join(dir, "todone.db")
	cfg.Web.Addr = "127.0.0.1:0"

	require.NoError(t, fx.ValidateApp(Module(cfg)))

	app := fxtest.New(t, Module(cfg), fx.NopLogger)
	app.RequireStart()
	app.RequireStop()
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	var b strings.Builder
	_, err := io.Copy(&b, resp.Body)
	require.NoError(t, err)
	return b.String()
}
