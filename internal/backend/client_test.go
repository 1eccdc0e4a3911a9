package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/lamim/contentforge/internal/api"
	"github.com/lamim/contentforge/internal/config"
	"github.com/lamim/contentforge/pkg/models"
)

type recordedRequest struct {
	Path    string
	Header  http.Header
	Body    map[string]any
	RawBody []byte
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req *http.Request) recordedRequest {
	body, _ := io.ReadAll(req.Body)
	rec := recordedRequest{Path: req.URL.Path, Header: req.Header.Clone(), RawBody: body}
	_ = json.Unmarshal(body, &rec.Body)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, rec)
	return rec
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		rec.add(r)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := config.BackendConfig{BaseURL: server.URL + "/", RateLimitPerMinute: 6000}
	return NewClient(cfg, "secret-token", nil, testLogger()), rec
}

var target = models.PersistTarget{EntityType: models.EntityChapter, EntityID: "ch-42"}

func TestCreateSummary(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	if err := client.CreateSummary(context.Background(), target, "A summary"); err != nil {
		t.Fatalf("CreateSummary() error = %v", err)
	}

	got := rec.requests[0]
	if got.Path != "/chapters/ch-42/summaries" {
		t.Errorf("path = %s", got.Path)
	}
	if got.Body["content"] != "A summary" {
		t.Errorf("body = %v", got.Body)
	}
	if got.Header.Get("Authorization") != "Bearer secret-token" {
		t.Errorf("Authorization = %q", got.Header.Get("Authorization"))
	}
	if _, err := uuid.Parse(got.Header.Get("X-Request-ID")); err != nil {
		t.Errorf("X-Request-ID %q is not a uuid: %v", got.Header.Get("X-Request-ID"), err)
	}
}

func TestAssetsPath(t *testing.T) {
	tests := []struct {
		target models.PersistTarget
		want   string
	}{
		{models.PersistTarget{EntityType: models.EntityBook}, "books"},
		{models.PersistTarget{EntityType: models.EntitySubtopic}, "subtopics"},
		{models.PersistTarget{EntityType: models.EntityTopic, IsWorkbook: true}, "workbook-topics"},
	}
	for _, tt := range tests {
		if got := AssetsPath(tt.target); got != tt.want {
			t.Errorf("AssetsPath(%+v) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestCreateQuestionSet(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.Kind
		workbook bool
		wantPath string
	}{
		{"objective", models.KindObjective, false, "/objective-assets/chapter/ch-42/question-sets"},
		{"subjective workbook", models.KindSubjective, true, "/subjective-assets/chapter/ch-42/question-sets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"questionSet": {"_id": "set-1", "name": "Warm-up"}}`))
			})

			tgt := target
			tgt.IsWorkbook = tt.workbook
			id, err := client.CreateQuestionSet(context.Background(), tt.kind, tgt, "Warm-up", models.L2)
			if err != nil {
				t.Fatalf("CreateQuestionSet() error = %v", err)
			}
			if id != "set-1" {
				t.Errorf("id = %q, want set-1", id)
			}

			got := rec.requests[0]
			if got.Path != tt.wantPath {
				t.Errorf("path = %s, want %s", got.Path, tt.wantPath)
			}
			if got.Body["name"] != "Warm-up" || got.Body["level"] != "L2" || got.Body["type"] != string(tt.kind) {
				t.Errorf("body = %v", got.Body)
			}
			if got.Body["isWorkbook"] != tt.workbook {
				t.Errorf("isWorkbook = %v, want %v", got.Body["isWorkbook"], tt.workbook)
			}
		})
	}
}

func TestCreateQuestionSet_MissingID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"questionSet": {}}`))
	})

	_, err := client.CreateQuestionSet(context.Background(), models.KindObjective, target, "A", models.L1)
	if !errors.Is(err, ErrMissingSetID) {
		t.Errorf("error = %v, want ErrMissingSetID", err)
	}
}

func TestAddObjectiveQuestions(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	questions := []models.ObjectiveQuestion{
		{Question: "Q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
		{Question: "Q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
	}
	if err := client.AddObjectiveQuestions(context.Background(), "set-9", models.L3, questions); err != nil {
		t.Fatalf("AddObjectiveQuestions() error = %v", err)
	}

	got := rec.requests[0]
	if got.Path != "/objective-assets/question-sets/set-9/questions" {
		t.Errorf("path = %s", got.Path)
	}

	var body questionsRequest[objectiveQuestionPayload]
	if err := json.Unmarshal(got.RawBody, &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(body.Questions))
	}
	if body.Questions[0].CorrectAnswer != 3 || body.Questions[0].Difficulty != "Advanced" {
		t.Errorf("first question = %+v", body.Questions[0])
	}
}

func TestAddSubjectiveQuestions(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	questions := []models.SubjectiveQuestion{
		{Question: "Explain", Answer: "Because", Keywords: "cause, effect"},
	}
	if err := client.AddSubjectiveQuestions(context.Background(), "set-3", models.L1, questions); err != nil {
		t.Fatalf("AddSubjectiveQuestions() error = %v", err)
	}

	got := rec.requests[0]
	if got.Path != "/subjective-assets/question-sets/set-3/questions" {
		t.Errorf("path = %s", got.Path)
	}
	var body questionsRequest[subjectiveQuestionPayload]
	if err := json.Unmarshal(got.RawBody, &body); err != nil {
		t.Fatal(err)
	}
	want := subjectiveQuestionPayload{Question: "Explain", Answer: "Because", Keywords: "cause, effect", Difficulty: "Beginner"}
	if len(body.Questions) != 1 || body.Questions[0] != want {
		t.Errorf("questions = %+v, want %+v", body.Questions, want)
	}
}

func TestPost_ErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Invalid token"}`))
	})

	err := client.CreateSummary(context.Background(), target, "s")

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T (%v)", err, err)
	}
	if reqErr.Path != "/chapters/ch-42/summaries" || reqErr.RequestID == "" {
		t.Errorf("unexpected request error %+v", reqErr)
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected wrapped *api.APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid token" {
		t.Errorf("unexpected api error %+v", apiErr)
	}
}

func TestPost_Cancelled(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.CreateSummary(ctx, target, "s")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(rec.requests) != 0 {
		t.Errorf("requests sent = %d, want 0", len(rec.requests))
	}
}
