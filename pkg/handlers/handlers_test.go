package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/pkg/handlers"
)

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
	}{
		{
			name:       "200 with map",
			status:     http.StatusOK,
			data:       map[string]string{"key": "value"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "201 with struct",
			status:     http.StatusCreated,
			data:       struct{ ID int }{ID: 42},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlers.RespondJSON(rec, tt.status, tt.data)

			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.wantStatus {
				t.Errorf("status: got %d, want %d", res.StatusCode, tt.wantStatus)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type: got %s", ct)
			}

			body, _ := io.ReadAll(res.Body)
			var parsed map[string]any
			if err := json.Unmarshal(body, &parsed); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		rec := httptest.NewRecorder()

		handlers.RespondError(rec, logger, status, errors.New("invalid input"))

		res := rec.Result()

		if res.StatusCode != status {
			t.Errorf("status: got %d, want %d", res.StatusCode, status)
		}

		var parsed handlers.ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		res.Body.Close()

		if parsed.Error != "invalid input" {
			t.Errorf("error: got %s, want invalid input", parsed.Error)
		}
	}
}

func TestPathUUID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errBad := errors.New("bad id")
	want := uuid.New()

	tests := []struct {
		name       string
		value      string
		wantOK     bool
		wantStatus int
	}{
		{"valid", want.String(), true, http.StatusOK},
		{"malformed", "not-a-uuid", false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				got uuid.UUID
				ok  bool
			)
			mux := http.NewServeMux()
			mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
				got, ok = handlers.PathUUID(w, r, logger, "id", errBad)
			})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+tt.value, nil))

			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ok && got != want {
				t.Errorf("id = %s, want %s", got, want)
			}
			if !ok && !strings.Contains(rec.Body.String(), "bad id") {
				t.Errorf("body = %s, want the invalid error", rec.Body.String())
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("valid", func(t *testing.T) {
		var v struct{ Name string }
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":"rule"}`))

		if !handlers.DecodeJSON(rec, req, logger, &v) {
			t.Fatalf("DecodeJSON failed: %s", rec.Body.String())
		}
		if v.Name != "rule" {
			t.Errorf("Name = %q, want rule", v.Name)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var v struct{ Name string }
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"Name":`))

		if handlers.DecodeJSON(rec, req, logger, &v) {
			t.Fatal("DecodeJSON accepted a truncated body")
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
