package reviews_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/reconcile"
	"github.com/JaimeStill/noshow/internal/reviews"
	"github.com/JaimeStill/noshow/pkg/routes"
)

type mockSystem struct {
	submitFn   func(ctx context.Context, noteID uuid.UUID, cmd reviews.SubmitCommand) (*reviews.Review, error)
	listFn     func(ctx context.Context, noteID uuid.UUID) ([]reviews.Review, error)
	evaluateFn func(ctx context.Context, noteID uuid.UUID) (*reviews.Evaluation, error)
	summaryFn  func(ctx context.Context, batchID uuid.UUID) (*reviews.Summary, error)
	deleteFn   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockSystem) Handler() *reviews.Handler {
	return reviews.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Submit(ctx context.Context, noteID uuid.UUID, cmd reviews.SubmitCommand) (*reviews.Review, error) {
	return m.submitFn(ctx, noteID, cmd)
}

func (m *mockSystem) List(ctx context.Context, noteID uuid.UUID) ([]reviews.Review, error) {
	return m.listFn(ctx, noteID)
}

func (m *mockSystem) Evaluate(ctx context.Context, noteID uuid.UUID) (*reviews.Evaluation, error) {
	return m.evaluateFn(ctx, noteID)
}

func (m *mockSystem) Summary(ctx context.Context, batchID uuid.UUID) (*reviews.Summary, error) {
	return m.summaryFn(ctx, batchID)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func TestHandlerSubmit(t *testing.T) {
	noteID := uuid.New()
	var got reviews.SubmitCommand
	sys := &mockSystem{
		submitFn: func(_ context.Context, id uuid.UUID, cmd reviews.SubmitCommand) (*reviews.Review, error) {
			got = cmd
			rv := sampleReview(id, cmd.Pass)
			return &rv, nil
		},
	}

	body := `{"reviewer":"bruno","pass":2,"category":"Technician No-Show","decision":"Keep-App"}`
	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("POST", "/reviews/"+noteID.String(), strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Decision != reconcile.DecisionKeepApp {
		t.Errorf("decision: got %q", got.Decision)
	}
	if got.Pass != reviews.SecondPass || got.Reviewer != "bruno" {
		t.Errorf("command: got %+v", got)
	}
}

func TestHandlerSubmitRejects(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		err    error
		want   int
	}{
		{"bad note id", "/reviews/nope", `{}`, nil, http.StatusBadRequest},
		{"unknown decision", "/reviews/" + uuid.NewString(), `{"decision":"maybe"}`, nil, http.StatusBadRequest},
		{"unknown category", "/reviews/" + uuid.NewString(), `{"category":"weather"}`, nil, http.StatusBadRequest},
		{"invalid review", "/reviews/" + uuid.NewString(), `{"pass":5}`, reviews.ErrInvalidReview, http.StatusBadRequest},
		{"missing note", "/reviews/" + uuid.NewString(), `{"reviewer":"ana","pass":1}`, reviews.ErrNoteNotFound, http.StatusNotFound},
		{"pass taken", "/reviews/" + uuid.NewString(), `{"reviewer":"ana","pass":2}`, reviews.ErrDuplicate, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				submitFn: func(context.Context, uuid.UUID, reviews.SubmitCommand) (*reviews.Review, error) {
					return nil, tt.err
				},
			}

			rec := httptest.NewRecorder()
			setupMux(sys).ServeHTTP(rec, httptest.NewRequest("POST", tt.target, strings.NewReader(tt.body)))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerEvaluate(t *testing.T) {
	noteID := uuid.New()
	sys := &mockSystem{
		evaluateFn: func(context.Context, uuid.UUID) (*reviews.Evaluation, error) {
			return &reviews.Evaluation{
				Verdict: reconcile.VerdictBothWrongNeedsReview,
				Status:  reconcile.StatusDivergence,
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/reviews/"+noteID.String()+"/verdict", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["verdict"] != "BOTH_WRONG_NEEDS_REVIEW" || body["status"] != "Divergence" {
		t.Errorf("body: got %v", body)
	}
}

func TestHandlerSummary(t *testing.T) {
	batchID := uuid.New()
	sys := &mockSystem{
		summaryFn: func(_ context.Context, id uuid.UUID) (*reviews.Summary, error) {
			if id != batchID {
				return nil, reviews.ErrBatchNotFound
			}
			return &reviews.Summary{
				BatchID:    id,
				Notes:      2,
				ByLabel:    map[classify.Label]int{classify.LabelMaskCorrect: 2},
				ByCategory: map[classify.Category]int{classify.CategoryClientNoShow: 2},
				ByStatus:   map[reconcile.Status]int{reconcile.StatusPending: 2},
				ByVerdict:  map[reconcile.Verdict]int{reconcile.VerdictPending: 2},
			}, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reviews/batch/"+batchID.String()+"/summary", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"Pending":2`)) {
		t.Errorf("body: got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reviews/batch/"+uuid.NewString()+"/summary", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown batch status: got %d", rec.Code)
	}
}

func TestHandlerListAndDelete(t *testing.T) {
	noteID := uuid.New()
	sys := &mockSystem{
		listFn: func(_ context.Context, id uuid.UUID) ([]reviews.Review, error) {
			return []reviews.Review{sampleReview(id, 1)}, nil
		},
		deleteFn: func(context.Context, uuid.UUID) error { return reviews.ErrNotFound },
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/reviews/"+noteID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: got %d", rec.Code)
	}
	var items []reviews.Review
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil || len(items) != 1 {
		t.Errorf("list body: %v, %d items", err, len(items))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("DELETE", "/reviews/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete status: got %d", rec.Code)
	}
}
