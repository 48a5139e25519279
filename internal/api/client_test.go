package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stride-cli/internal/model"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func TestListTasksQueryAndEnvelope(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tasks" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("plan_id") != "plan-1" || q.Get("week_number") != "3" || q.Get("due_day") != "2" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []model.Task{{ID: "task-1", Title: "hi"}}})
	})

	week, day := 3, 2
	tasks, err := c.ListTasks(context.Background(), TaskQuery{PlanID: "plan-1", WeekNumber: &week, DueDay: &day})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "task-1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestErrorPrefersDetailMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error": "validation failed",
			"details": []map[string]string{
				{"message": "title must not be empty"},
				{"message": "week_number out of range"},
			},
		})
	})

	_, err := c.CreateTask(context.Background(), model.Task{})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "title must not be empty" {
		t.Fatalf("expected details[0].message preferred, got %q", apiErr.Message)
	}
	if len(apiErr.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(apiErr.Details))
	}
	if !IsValidation(err) {
		t.Fatalf("expected IsValidation")
	}
}

func TestErrorFallsBackToErrorField(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"error": "task not found"})
	})

	_, err := c.UpdateTask(context.Background(), "task-x", Patch{"title": "t"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "task not found" {
		t.Fatalf("expected top-level error fallback, got %q", apiErr.Message)
	}
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
}

func TestErrorWithoutEnvelope(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	err := c.DeleteTask(context.Background(), "task-1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", apiErr.Status)
	}
	if IsValidation(err) {
		t.Fatalf("plain 502 is not a validation error")
	}
}

func TestPatchSendsExplicitNull(t *testing.T) {
	var got map[string]json.RawMessage
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode patch: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": model.Task{ID: "task-1"}})
	})

	_, err := c.UpdateTask(context.Background(), "task-1", Patch{"weekly_goal_id": nil, "task_type": model.TaskAdHoc})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if string(got["weekly_goal_id"]) != "null" {
		t.Fatalf("expected explicit null for weekly_goal_id, got %s", got["weekly_goal_id"])
	}
}

func TestBearerToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sekrit" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{"data": []model.Plan{}})
	})
	c.token = "sekrit"
	if _, err := c.ListPlans(context.Background()); err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
}
