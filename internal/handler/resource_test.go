package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/service"
	"github.com/portfoliocms/internal/store"
)

func TestProjectResourceLifecycle(t *testing.T) {
	r := newTestEngine(newTestAPI(t))

	w := doJSON(t, r, http.MethodPost, "/api/projects", map[string]any{"title": "Only title"}, nil)
	if w.Code != http.StatusBadRequest || errorMessage(t, w) != "Missing required fields" {
		t.Fatalf("expected missing fields, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/projects", map[string]any{
		"title":        "Portfolio",
		"description":  "This site",
		"technologies": "Go, SQLite",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	created := decodeBody[db.Project](t, w)
	if created.ID == "" || len(created.Technologies) != 2 {
		t.Fatalf("unexpected project: %+v", created)
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects", nil, nil)
	if list := decodeBody[[]db.Project](t, w); w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("expected one project, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects?id="+created.ID, nil, nil)
	if got := decodeBody[db.Project](t, w); got.ID != created.ID {
		t.Fatalf("expected lookup by query id, got %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/projects/missing", nil, nil)
	if w.Code != http.StatusNotFound || errorMessage(t, w) != "Project not found" {
		t.Fatalf("expected 404, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/api/projects", map[string]any{"title": "Renamed"}, nil)
	if w.Code != http.StatusBadRequest || errorMessage(t, w) != "ID is required" {
		t.Fatalf("expected id required, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/api/projects", map[string]any{"id": created.ID, "title": "Renamed", "demoUrl": nil}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	if updated := decodeBody[db.Project](t, w); updated.Title != "Renamed" || updated.Description != "This site" {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	w = doJSON(t, r, http.MethodPut, "/api/projects", map[string]any{"id": "missing", "title": "x"}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on unknown update, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/projects", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/projects?id="+created.ID, nil, nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"success":true}` {
		t.Fatalf("unexpected delete response: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/api/projects?id="+created.ID, nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestResourceRejectsBadInput(t *testing.T) {
	r := newTestEngine(newTestAPI(t))

	tests := []struct {
		name    string
		method  string
		path    string
		body    any
		message string
	}{
		{name: "malformed json", method: http.MethodPost, path: "/api/projects", body: "{", message: "Invalid request body"},
		{name: "unknown sort", method: http.MethodGet, path: "/api/projects?orderBy=nope", message: "Invalid sort field"},
		{name: "bad direction", method: http.MethodGet, path: "/api/projects?orderBy=title&order=sideways", message: "Invalid sort field"},
		{name: "skill level range", method: http.MethodPost, path: "/api/skills", body: map[string]any{"name": "Go", "category": "Lang", "level": 11}, message: "Invalid field value"},
		{name: "skill level text", method: http.MethodPost, path: "/api/skills", body: map[string]any{"name": "Go", "category": "Lang", "level": "high"}, message: "Invalid request body"},
		{name: "skill level fraction", method: http.MethodPost, path: "/api/skills", body: `{"name":"Go","category":"Lang","level":5.9}`, message: "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, tt.method, tt.path, tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, got)
			}
		})
	}
}

func TestProjectListHonoursOrderQuery(t *testing.T) {
	r := newTestEngine(newTestAPI(t))
	for _, title := range []string{"Beta", "Alpha", "Gamma"} {
		w := doJSON(t, r, http.MethodPost, "/api/projects", map[string]any{"title": title, "description": "d"}, nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", title, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/projects?orderBy=title&order=asc", nil, nil)
	list := decodeBody[[]db.Project](t, w)
	if len(list) != 3 || list[0].Title != "Alpha" || list[2].Title != "Gamma" {
		t.Fatalf("unexpected order: %s", w.Body.String())
	}
}

func TestGetAboutReturnsNullWhenEmpty(t *testing.T) {
	r := newTestEngine(newTestAPI(t))

	w := doJSON(t, r, http.MethodGet, "/api/about", nil, nil)
	if w.Code != http.StatusOK || w.Body.String() != "null" {
		t.Fatalf("expected null, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/about", map[string]any{"title": "Hi", "description": "**bold**"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create about: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/about", nil, nil)
	view := decodeBody[service.AboutView](t, w)
	if view.Title != "Hi" || view.DescriptionHTML != "<p><strong>bold</strong></p>\n" {
		t.Fatalf("unexpected about view: %+v", view)
	}
}

func TestContactCreateForcesUnread(t *testing.T) {
	r := newTestEngine(newTestAPI(t))

	w := doJSON(t, r, http.MethodPost, "/api/contacts", map[string]any{
		"name": "Visitor", "email": "v@example.com", "subject": "Hello", "message": "Hi there", "read": true,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	if contact := decodeBody[db.Contact](t, w); contact.Read {
		t.Fatalf("new contact must be unread")
	}
}

type failingProjects struct{}

var errBackend = errors.New("connection refused")

func (failingProjects) List(context.Context, ...store.Order) ([]db.Project, error) {
	return nil, errBackend
}
func (failingProjects) Get(context.Context, string) (*db.Project, error) { return nil, errBackend }
func (failingProjects) Create(context.Context, service.ProjectInput) (*db.Project, error) {
	return nil, errBackend
}
func (failingProjects) Update(context.Context, string, service.ProjectInput) (*db.Project, error) {
	return nil, errBackend
}
func (failingProjects) Delete(context.Context, string) error { return errBackend }
func (failingProjects) ParseOrder(string, string) ([]store.Order, error) {
	return nil, nil
}

func TestResourceHidesBackendErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	res := NewResource[db.Project, service.ProjectInput](failingProjects{}, "Project", "projects", discardLogger())

	r := gin.New()
	r.GET("/projects", res.List)
	r.POST("/projects", res.Create)
	r.DELETE("/projects/:id", res.Delete)

	tests := []struct {
		method, path string
		body         any
		message      string
	}{
		{http.MethodGet, "/projects", nil, "Failed to fetch projects"},
		{http.MethodPost, "/projects", map[string]any{"title": "t", "description": "d"}, "Failed to create project"},
		{http.MethodDelete, "/projects/abc", nil, "Failed to delete project"},
	}
	for _, tt := range tests {
		w := doJSON(t, r, tt.method, tt.path, tt.body, nil)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s %s: expected 500, got %d", tt.method, tt.path, w.Code)
		}
		if got := errorMessage(t, w); got != tt.message {
			t.Fatalf("%s %s: expected %q, got %q", tt.method, tt.path, tt.message, got)
		}
	}
}

func TestHealth(t *testing.T) {
	r := newTestEngine(newTestAPI(t))

	w := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("unexpected health response: %d %v", w.Code, w.Header())
	}

	req := httptest.NewRequest(http.MethodHead, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("unexpected HEAD response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequestLoggerPropagatesRequestID(t *testing.T) {
	r := newTestEngine(newTestAPI(t))

	w := doJSON(t, r, http.MethodGet, "/healthz", nil, http.Header{requestIDHeader: {"abc-123"}})
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected incoming request id to be echoed, got %q", got)
	}

	w = doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if got := w.Header().Get(requestIDHeader); len(got) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", got)
	}
}
