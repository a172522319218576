package extrarules_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/extrarules"
	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/routes"
)

type mockSystem struct {
	listFn    func(ctx context.Context, page pagination.PageRequest, filters extrarules.Filters) (*pagination.PageResult[extrarules.ExtraRule], error)
	findFn    func(ctx context.Context, id uuid.UUID) (*extrarules.ExtraRule, error)
	createFn  func(ctx context.Context, cmd extrarules.CreateCommand) (*extrarules.ExtraRule, error)
	updateFn  func(ctx context.Context, id uuid.UUID, cmd extrarules.UpdateCommand) (*extrarules.ExtraRule, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) error
	toggleFn  func(ctx context.Context, id uuid.UUID, active bool) (*extrarules.ExtraRule, error)
	importFn  func(ctx context.Context, cmd extrarules.ImportCommand) (*extrarules.ImportResult, error)
	catalogFn func() []extrarules.CatalogEntry
	testFn    func(cmd extrarules.TestCommand) extrarules.TestResult
}

func (m *mockSystem) Handler() *extrarules.Handler { return newTestHandler(m) }

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters extrarules.Filters) (*pagination.PageResult[extrarules.ExtraRule], error) {
	return m.listFn(ctx, page, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*extrarules.ExtraRule, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd extrarules.CreateCommand) (*extrarules.ExtraRule, error) {
	return m.createFn(ctx, cmd)
}

func (m *mockSystem) Update(ctx context.Context, id uuid.UUID, cmd extrarules.UpdateCommand) (*extrarules.ExtraRule, error) {
	return m.updateFn(ctx, id, cmd)
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockSystem) Activate(ctx context.Context, id uuid.UUID) (*extrarules.ExtraRule, error) {
	return m.toggleFn(ctx, id, true)
}

func (m *mockSystem) Deactivate(ctx context.Context, id uuid.UUID) (*extrarules.ExtraRule, error) {
	return m.toggleFn(ctx, id, false)
}

func (m *mockSystem) Import(ctx context.Context, cmd extrarules.ImportCommand) (*extrarules.ImportResult, error) {
	return m.importFn(ctx, cmd)
}

func (m *mockSystem) Rebuild(context.Context) (*rules.Registry, error) {
	return rules.BuildCatalog(nil)
}

func (m *mockSystem) Catalog() []extrarules.CatalogEntry { return m.catalogFn() }

func (m *mockSystem) Test(cmd extrarules.TestCommand) extrarules.TestResult { return m.testFn(cmd) }

func newTestHandler(sys extrarules.System) *extrarules.Handler {
	return extrarules.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func setupMux(h *extrarules.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return mux
}

func sampleRule() extrarules.ExtraRule {
	return extrarules.ExtraRule{
		ID:       uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Cause:    rules.DefaultCause,
		Reason:   "Cliente ausente",
		Template: "Cliente 0 ausente",
		Active:   true,
	}
}

func serve(mux *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestHandlerList(t *testing.T) {
	var gotFilters extrarules.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, _ pagination.PageRequest, f extrarules.Filters) (*pagination.PageResult[extrarules.ExtraRule], error) {
			gotFilters = f
			result := pagination.NewPageResult([]extrarules.ExtraRule{sampleRule()}, 1, 1, 20)
			return &result, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := serve(mux, "GET", "/rules?active=true&reason=ausente", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result pagination.PageResult[extrarules.ExtraRule]
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 {
		t.Errorf("total = %d, want 1", result.Total)
	}
	if gotFilters.Active == nil || !*gotFilters.Active {
		t.Error("active filter not parsed")
	}
	if gotFilters.Reason == nil || *gotFilters.Reason != "ausente" {
		t.Error("reason filter not parsed")
	}
}

func TestHandlerFind(t *testing.T) {
	rule := sampleRule()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*extrarules.ExtraRule, error) {
			if id == rule.ID {
				return &rule, nil
			}
			return nil, extrarules.ErrNotFound
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"found", "/rules/" + rule.ID.String(), http.StatusOK},
		{"not found", "/rules/" + uuid.NewString(), http.StatusNotFound},
		{"invalid id", "/rules/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, "GET", tt.target, nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd extrarules.CreateCommand) (*extrarules.ExtraRule, error) {
			if err := cmd.Rule().Validate(); err != nil {
				return nil, err
			}
			if cmd.Reason == "No-show Técnico" {
				return nil, extrarules.ErrDuplicate
			}
			rule := sampleRule()
			return &rule, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		body any
		want int
	}{
		{"created", extrarules.CreateCommand{Cause: "c", Reason: "r", Template: "t 0"}, http.StatusCreated},
		{"missing template", extrarules.CreateCommand{Cause: "c", Reason: "r"}, http.StatusBadRequest},
		{"duplicate", extrarules.CreateCommand{Cause: "c", Reason: "No-show Técnico", Template: "t"}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, "POST", "/rules", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("POST", "/rules", bytes.NewBufferString("{")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerImport(t *testing.T) {
	sys := &mockSystem{
		importFn: func(_ context.Context, cmd extrarules.ImportCommand) (*extrarules.ImportResult, error) {
			if cmd.Block == "" {
				return nil, extrarules.ErrEmptyImport
			}
			return &extrarules.ImportResult{
				Rules:  []extrarules.ExtraRule{sampleRule()},
				Errors: []rules.LineError{{Line: 2, Reason: "wrong field count: want 3, got 1"}},
			}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := serve(mux, "POST", "/rules/import", extrarules.ImportCommand{Block: "a;b;c\nx"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var result extrarules.ImportResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Rules) != 1 || len(result.Errors) != 1 || result.Errors[0].Line != 2 {
		t.Errorf("result = %+v", result)
	}

	rec = serve(mux, "POST", "/rules/import", extrarules.ImportCommand{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty block status = %d, want 400", rec.Code)
	}
}

func TestHandlerCatalogAndTest(t *testing.T) {
	sys := &mockSystem{
		catalogFn: func() []extrarules.CatalogEntry {
			return []extrarules.CatalogEntry{{Cause: rules.DefaultCause, Reason: "No-show Técnico", Placeholders: 4}}
		},
		testFn: func(cmd extrarules.TestCommand) extrarules.TestResult {
			return extrarules.TestResult{
				Result:   classify.Result{Label: classify.LabelMaskCorrect, Mask: cmd.Narrative},
				Captures: []string{"João"},
			}
		},
	}
	mux := setupMux(newTestHandler(sys))

	rec := serve(mux, "GET", "/rules/catalog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("catalog status = %d, want 200", rec.Code)
	}
	var entries []extrarules.CatalogEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil || len(entries) != 1 {
		t.Fatalf("catalog decode: %v (%d entries)", err, len(entries))
	}

	rec = serve(mux, "POST", "/rules/test", extrarules.TestCommand{Narrative: "x"})
	if rec.Code != http.StatusOK {
		t.Fatalf("test status = %d, want 200", rec.Code)
	}

	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("test decode: %v", err)
	}
	if raw["label"] != string(classify.LabelMaskCorrect) {
		t.Errorf("label = %v, want flattened result fields", raw["label"])
	}
}

func TestHandlerToggleAndDelete(t *testing.T) {
	rule := sampleRule()
	sys := &mockSystem{
		toggleFn: func(_ context.Context, id uuid.UUID, active bool) (*extrarules.ExtraRule, error) {
			if id != rule.ID {
				return nil, extrarules.ErrNotFound
			}
			r := rule
			r.Active = active
			return &r, nil
		},
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			if id != rule.ID {
				return extrarules.ErrNotFound
			}
			return nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	for _, action := range []string{"activate", "deactivate"} {
		rec := serve(mux, "POST", fmt.Sprintf("/rules/%s/%s", rule.ID, action), nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", action, rec.Code)
			continue
		}
		var got extrarules.ExtraRule
		json.NewDecoder(rec.Body).Decode(&got)
		if got.Active != (action == "activate") {
			t.Errorf("%s: active = %v", action, got.Active)
		}
	}

	if rec := serve(mux, "DELETE", "/rules/"+rule.ID.String(), nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}
	if rec := serve(mux, "DELETE", "/rules/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete missing status = %d, want 404", rec.Code)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", extrarules.ErrNotFound, http.StatusNotFound},
		{"duplicate", extrarules.ErrDuplicate, http.StatusConflict},
		{"invalid rule", fmt.Errorf("create: %w", rules.ErrInvalidRule), http.StatusBadRequest},
		{"empty import", extrarules.ErrEmptyImport, http.StatusBadRequest},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extrarules.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
