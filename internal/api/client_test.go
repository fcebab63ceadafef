package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dayplan-cli/internal/model"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(model.User{ID: 7, Email: "a@b.c"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("tok-123"))
	u, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if u.ID != 7 {
		t.Fatalf("expected user 7, got %+v", u)
	}
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode login body: %v", err)
		}
		if req.Email != "a@b.c" || req.Password != "hunter2" {
			t.Fatalf("unexpected credentials: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-xyz"})
	}))
	defer srv.Close()

	token, err := NewClient(srv.URL).Login(context.Background(), "a@b.c", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "tok-xyz" {
		t.Fatalf("expected tok-xyz, got %q", token)
	}
}

func TestClient_UnauthorizedIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Me(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.Detail != "token expired" {
		t.Fatalf("expected detail in status error, got %v", err)
	}
}

func TestClient_StatusErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "email already registered"})
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Register(context.Background(), "a@b.c", "pw", "")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusBadRequest || se.Detail != "email already registered" {
		t.Fatalf("unexpected status error: %+v", se)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("400 must not unwrap to ErrUnauthorized")
	}
}

func TestClient_TodoCRUDPaths(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		switch {
		case r.URL.Path == "/todos" && r.Method == http.MethodGet:
			_ = json.NewEncoder(w).Encode([]model.Todo{{ID: 1, Title: "one"}})
		case r.URL.Path == "/addtodo":
			var in model.CreateTodo
			_ = json.NewDecoder(r.Body).Decode(&in)
			_ = json.NewEncoder(w).Encode(model.Todo{ID: 2, Title: in.Title})
		case r.URL.Path == "/todos/2" && r.Method == http.MethodPut:
			_ = json.NewEncoder(w).Encode(model.Todo{ID: 2, Title: "updated"})
		case r.URL.Path == "/todos/2" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	todos, err := c.Todos(ctx)
	if err != nil || len(todos) != 1 {
		t.Fatalf("Todos: %v (%d)", err, len(todos))
	}

	created, err := c.CreateTodo(ctx, model.CreateTodo{Title: "two"})
	if err != nil || created.Title != "two" {
		t.Fatalf("CreateTodo: %v (%+v)", err, created)
	}

	title := "updated"
	if _, err := c.UpdateTodo(ctx, 2, model.UpdateTodo{Title: &title}); err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/todos/2" {
		t.Fatalf("update hit %s %s", gotMethod, gotPath)
	}

	if err := c.DeleteTodo(ctx, 2); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/todos/2" {
		t.Fatalf("delete hit %s %s", gotMethod, gotPath)
	}
}

func TestClient_ToggleSendsOnlyInvertedCompleted(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(model.Todo{ID: 5, Title: "keep", Completed: true})
	}))
	defer srv.Close()

	todo := model.Todo{ID: 5, Title: "keep", Description: "desc", Completed: false}
	updated, err := NewClient(srv.URL).ToggleTodo(context.Background(), todo)
	if err != nil {
		t.Fatalf("ToggleTodo: %v", err)
	}
	if !updated.Completed {
		t.Fatalf("expected completed=true, got %+v", updated)
	}
	if got, ok := body["completed"].(bool); !ok || !got {
		t.Fatalf("expected body {completed: true}, got %v", body)
	}
	if len(body) != 1 {
		t.Fatalf("toggle must send only the completed flag, got %v", body)
	}
}

func TestClient_ChatPlanAndPlans(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ai/chat-plan":
			var req struct {
				UserID   string              `json:"user_id"`
				Messages []model.ChatMessage `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode chat body: %v", err)
			}
			if req.UserID != "7" || len(req.Messages) != 2 {
				t.Fatalf("unexpected chat request: %+v", req)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"reply": "Here is a plan.",
				"tasks": []map[string]any{{
					"title":                 "Prep",
					"scheduled_for":         "2024-03-15T09:00:00Z",
					"expected_time_minutes": 30,
					"status":                "pending",
				}},
			})
		case "/ai/save-structured-plan":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "saved"})
		case "/ai/plans/7":
			_ = json.NewEncoder(w).Encode([]model.Plan{{ID: "p1", UserID: "7"}})
		default:
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	msgs := []model.ChatMessage{
		{Role: model.RoleAssistant, Content: "hi"},
		{Role: model.RoleUser, Content: "plan my week"},
	}
	reply, err := c.ChatPlan(ctx, "7", msgs)
	if err != nil {
		t.Fatalf("ChatPlan: %v", err)
	}
	if reply.Reply != "Here is a plan." || len(reply.Tasks) != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.Tasks[0].ExpectedTimeMinutes != 30 {
		t.Fatalf("unexpected task: %+v", reply.Tasks[0])
	}

	msg, err := c.SaveStructuredPlan(ctx, "7", reply.Tasks)
	if err != nil || msg != "saved" {
		t.Fatalf("SaveStructuredPlan: %v (%q)", err, msg)
	}

	plans, err := c.Plans(ctx, "7")
	if err != nil || len(plans) != 1 || plans[0].ID != "p1" {
		t.Fatalf("Plans: %v (%+v)", err, plans)
	}
}
