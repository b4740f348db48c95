// Package testutil provides an in-process fake of the taskflow backend for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/tgienger/taskflow/internal/models"
)

// SigningKey signs tokens issued by the fake backend
var SigningKey = []byte("taskflow-test-secret")

// User is an account known to the fake backend
type User struct {
	Email    string
	Password string
	FullName string
}

// Backend serves the REST surface the client consumes, under /api
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]User
	projects []models.Project
	tasks    map[int64][]models.Task
	nextID   int64
	requests []string
	failures map[string]int
}

// NewBackend starts a fake backend that is closed when the test ends
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		users:    make(map[string]User),
		tasks:    make(map[int64][]models.Task),
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Group(func(r chi.Router) {
			r.Use(b.requireBearer)
			r.Get("/projects", b.listProjects)
			r.Post("/projects", b.createProject)
			r.Get("/projects/{id}", b.getProject)
			r.Delete("/projects/{id}", b.deleteProject)
			r.Get("/projects/{id}/progress", b.getProject)
			r.Get("/projects/{id}/tasks", b.listTasks)
			r.Post("/projects/{id}/tasks", b.createTask)
			r.Patch("/projects/{id}/tasks/{taskID}/toggle", b.toggleTask)
			r.Delete("/projects/{id}/tasks/{taskID}", b.deleteTask)
		})
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API root to hand to api.New
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// AddUser registers an account
func (b *Backend) AddUser(u User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[u.Email] = u
}

// AddProject seeds a project and returns its ID
func (b *Backend) AddProject(title, description string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.projects = append(b.projects, models.Project{
		ID:          b.nextID,
		Title:       title,
		Description: description,
		CreatedAt:   models.Timestamp{Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)},
	})
	return b.nextID
}

// AddTask seeds a task in a project and returns its ID
func (b *Backend) AddTask(projectID int64, title, due string, completed bool) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := models.ParseDate(due)
	if err != nil {
		panic(err)
	}
	b.nextID++
	b.tasks[projectID] = append(b.tasks[projectID], models.Task{
		ID:        b.nextID,
		Title:     title,
		DueDate:   d,
		Completed: completed,
		CreatedAt: models.Timestamp{Time: time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)},
	})
	return b.nextID
}

// Task returns a task as the server currently holds it
func (b *Backend) Task(projectID, taskID int64) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, task := range b.tasks[projectID] {
		if task.ID == taskID {
			return task, true
		}
	}
	return models.Task{}, false
}

// ProjectCount returns the number of stored projects
func (b *Backend) ProjectCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.projects)
}

// FailNext makes the next n requests matching "METHOD /path" answer 500
func (b *Backend) FailNext(route string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = n
}

// Requests returns every request seen, as "METHOD /path", in arrival order
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.requests))
	copy(out, b.requests)
	return out
}

// CountRequests counts requests whose "METHOD /path" starts with prefix
func (b *Backend) CountRequests(prefix string) int {
	n := 0
	for _, r := range b.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// ResetRequests forgets the request log
func (b *Backend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

// IssueToken signs a token the way the real backend does
func IssueToken(email, fullName string) string {
	claims := jwt.MapClaims{
		"sub":      email,
		"fullName": fullName,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(SigningKey)
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")

		b.mu.Lock()
		b.requests = append(b.requests, route)
		fail := b.failures[route] > 0
		if fail {
			b.failures[route]--
		}
		b.mu.Unlock()

		if fail {
			writeError(w, http.StatusInternalServerError, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Full authentication is required")
			return
		}
		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return SigningKey, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	b.mu.Lock()
	user, ok := b.users[req.Email]
	b.mu.Unlock()
	if !ok || user.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		Token:    IssueToken(user.Email, user.FullName),
		Email:    user.Email,
		FullName: user.FullName,
	})
}

func (b *Backend) listProjects(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Project, 0, len(b.projects))
	for _, p := range b.projects {
		out = append(out, b.withProgress(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	var req models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := models.Project{
		ID:          b.nextID,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   models.Timestamp{Time: time.Now()},
	}
	b.projects = append(b.projects, p)
	writeJSON(w, http.StatusCreated, b.withProgress(p))
}

func (b *Backend) getProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.findProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.withProgress(b.projects[idx]))
}

func (b *Backend) deleteProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.findProject(w, r)
	if !ok {
		return
	}
	delete(b.tasks, b.projects[idx].ID)
	b.projects = append(b.projects[:idx], b.projects[idx+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listTasks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.findProject(w, r)
	if !ok {
		return
	}
	out := append([]models.Task{}, b.tasks[b.projects[idx].ID]...)
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createTask(w http.ResponseWriter, r *http.Request) {
	var req models.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.findProject(w, r)
	if !ok {
		return
	}
	projectID := b.projects[idx].ID
	b.nextID++
	task := models.Task{
		ID:          b.nextID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedAt:   models.Timestamp{Time: time.Now()},
	}
	b.tasks[projectID] = append(b.tasks[projectID], task)
	writeJSON(w, http.StatusCreated, task)
}

func (b *Backend) toggleTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.findProject(w, r)
	if !ok {
		return
	}
	projectID := b.projects[idx].ID
	taskID, _ := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	for i := range b.tasks[projectID] {
		if b.tasks[projectID][i].ID == taskID {
			b.tasks[projectID][i].Completed = !b.tasks[projectID][i].Completed
			writeJSON(w, http.StatusOK, b.tasks[projectID][i])
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Task not found with id: %d", taskID))
}

func (b *Backend) deleteTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, ok := b.findProject(w, r)
	if !ok {
		return
	}
	projectID := b.projects[idx].ID
	taskID, _ := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	tasks := b.tasks[projectID]
	for i := range tasks {
		if tasks[i].ID == taskID {
			b.tasks[projectID] = append(tasks[:i], tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Task not found with id: %d", taskID))
}

// findProject must be called with b.mu held
func (b *Backend) findProject(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err == nil {
		for i, p := range b.projects {
			if p.ID == id {
				return i, true
			}
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Project not found with id: %s", chi.URLParam(r, "id")))
	return 0, false
}

// withProgress must be called with b.mu held
func (b *Backend) withProgress(p models.Project) models.Project {
	tasks := b.tasks[p.ID]
	p.TotalTasks = len(tasks)
	p.CompletedTasks = 0
	for _, t := range tasks {
		if t.Completed {
			p.CompletedTasks++
		}
	}
	p.ProgressPercentage = 0
	if p.TotalTasks > 0 {
		p.ProgressPercentage = float64(p.CompletedTasks) * 100 / float64(p.TotalTasks)
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().Format("2006-01-02T15:04:05"),
	})
}
