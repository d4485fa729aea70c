package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tasks-api/config"
	"tasks-api/handlers"
	"tasks-api/models"
	"tasks-api/utilities"

	"github.com/spf13/viper"
)

// memoryStore keeps tasks in a map; ids grow monotonically so the highest id is
// the newest task.
type memoryStore struct {
	nextID int64
	tasks  map[int64]models.Task
}

func newMemoryStore() *memoryStore {
	return &memoryStore{nextID: 1, tasks: map[int64]models.Task{}}
}

func (s *memoryStore) CreateTask(_ context.Context, title, description string) (models.Task, error) {
	t := models.Task{ID: s.nextID, Title: title, Description: description}
	s.tasks[t.ID] = t
	s.nextID++
	return t, nil
}

func (s *memoryStore) ListTasks(_ context.Context) ([]models.Task, error) {
	out := []models.Task{}
	for id := s.nextID - 1; id > 0; id-- {
		if t, ok := s.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memoryStore) GetTask(_ context.Context, id int64) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, models.ErrTaskNotFound
	}
	return t, nil
}

func (s *memoryStore) UpdateTask(_ context.Context, id int64, u models.TaskUpdate) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, models.ErrTaskNotFound
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	s.tasks[id] = t
	return t, nil
}

func (s *memoryStore) DeleteTask(_ context.Context, id int64) error {
	if _, ok := s.tasks[id]; !ok {
		return models.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	utilities.SetOutput(io.Discard)
	t.Cleanup(func() { utilities.InitLogger("info") })

	cfg := config.ServerConfig{Port: "5000", CORSAllowedOrigins: []string{"https://app.example.com"}}
	srv := httptest.NewServer(LoadRoutes(cfg, handlers.NewTaskHandler(newMemoryStore())))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, strings.TrimSpace(string(b))
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)

	steps := []struct {
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{http.MethodGet, "/", "", http.StatusOK, `{"message":"Tasks API is running"}`},
		{http.MethodPost, "/tasks", `{"title":"Buy milk"}`, http.StatusCreated, `{"id":1,"title":"Buy milk","description":"","completed":false}`},
		{http.MethodPut, "/tasks/1", `{"completed":true}`, http.StatusOK, `{"id":1,"title":"Buy milk","description":"","completed":true}`},
		{http.MethodGet, "/tasks", "", http.StatusOK, `[{"id":1,"title":"Buy milk","description":"","completed":true}]`},
		{http.MethodDelete, "/tasks/1", "", http.StatusOK, `{"message":"task deleted successfully"}`},
		{http.MethodGet, "/tasks/1", "", http.StatusNotFound, `{"error":"task not found"}`},
		{http.MethodDelete, "/tasks/1", "", http.StatusNotFound, `{"error":"task not found"}`},
		{http.MethodGet, "/tasks", "", http.StatusOK, `[]`},
	}

	for _, step := range steps {
		resp, body := do(t, srv, step.method, step.path, step.body)
		if resp.StatusCode != step.wantStatus {
			t.Fatalf("%s %s status = %d, want %d (body %s)", step.method, step.path, resp.StatusCode, step.wantStatus, body)
		}
		if body != step.wantBody {
			t.Fatalf("%s %s body = %s, want %s", step.method, step.path, body, step.wantBody)
		}
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s %s Content-Type = %q", step.method, step.path, ct)
		}
	}
}

func TestRoutingFallbacks(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{name: "non-integer id", method: http.MethodGet, path: "/tasks/abc", wantStatus: http.StatusNotFound, wantError: handlers.MsgRouteNotFound},
		{name: "negative id", method: http.MethodDelete, path: "/tasks/-1", wantStatus: http.StatusNotFound, wantError: handlers.MsgRouteNotFound},
		{name: "unknown path", method: http.MethodGet, path: "/projects", wantStatus: http.StatusNotFound, wantError: handlers.MsgRouteNotFound},
		{name: "wrong method on collection", method: http.MethodDelete, path: "/tasks", wantStatus: http.StatusMethodNotAllowed, wantError: handlers.MsgMethodNotAllowed},
		{name: "wrong method on item", method: http.MethodPost, path: "/tasks/1", wantStatus: http.StatusMethodNotAllowed, wantError: handlers.MsgMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, tt.method, tt.path, "")
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var e handlers.ErrorResponse
			if err := json.Unmarshal([]byte(body), &e); err != nil {
				t.Fatalf("body %q is not JSON: %v", body, err)
			}
			if e.Error != tt.wantError {
				t.Errorf("error = %q, want %q", e.Error, tt.wantError)
			}
		})
	}
}

func TestValidationLeavesListUnchanged(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/tasks", `{"title":"keep me"}`)
	for _, body := range []string{`{}`, `{"title":null}`, `{"title":""}`, `{"description":"x"}`} {
		resp, _ := do(t, srv, http.MethodPost, "/tasks", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("POST %s status = %d, want 400", body, resp.StatusCode)
		}
	}

	_, list := do(t, srv, http.MethodGet, "/tasks", "")
	var tasks []models.Task
	if err := json.Unmarshal([]byte(list), &tasks); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("list has %d tasks, want 1", len(tasks))
	}
}

func TestCORSAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/tasks", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	getReq, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	if err != nil {
		t.Fatal(err)
	}
	getReq.Header.Set(handlers.RequestIDHeader, "trace-42")
	getResp, err := srv.Client().Do(getReq)
	if err != nil {
		t.Fatal(err)
	}
	getResp.Body.Close()
	if got := getResp.Header.Get(handlers.RequestIDHeader); got != "trace-42" {
		t.Errorf("%s = %q, want trace-42", handlers.RequestIDHeader, got)
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd(viper.New())
	for _, name := range []string{"env-file", "port"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s is not registered", name)
		}
	}
	if got := cmd.Flags().Lookup("env-file").DefValue; got != ".env" {
		t.Errorf("--env-file default = %q, want .env", got)
	}
}

func TestPortFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("SERVER_PORT", "8080")

	v := viper.New()
	cmd := newRootCmd(v)
	if err := cmd.Flags().Parse([]string{"--port", "9090"}); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want 9090", cfg.Server.Port)
	}
}

func TestPortFallsBackToEnvironmentWithoutFlag(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/tasks")
	t.Setenv("SERVER_PORT", "8080")

	v := viper.New()
	cmd := newRootCmd(v)
	if err := cmd.Flags().Parse(nil); err != nil {
		t.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
}
