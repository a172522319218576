package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/noshow/internal/api"
	"github.com/JaimeStill/noshow/internal/config"
	"github.com/JaimeStill/noshow/internal/infrastructure"
	"github.com/JaimeStill/noshow/pkg/database"
	"github.com/JaimeStill/noshow/pkg/middleware"
	"github.com/JaimeStill/noshow/pkg/openapi"
	"github.com/JaimeStill/noshow/pkg/pagination"
	"github.com/JaimeStill/noshow/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "1m",
			WriteTimeout:    "15m",
			ShutdownTimeout: "30s",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "noshow",
			User:            "noshow",
			Password:        "noshow",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			ContainerName:    "batches",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath:      "/api",
			MaxUploadSize: "10MB",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
			OpenAPI: openapi.Config{
				Title:       "No-show Review API",
				Description: "test",
			},
		},
		Classifier: config.ClassifierConfig{
			DefaultCause:    "Agendamento cancelado",
			Triggers:        []string{"michelin"},
			Workers:         4,
			NarrativeColumn: "observacao",
			KeyColumn:       "O.S.",
		},
		Review: config.ReviewConfig{
			RequireSecondPass: true,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestModuleServesSpec(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api"+api.SpecPath, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var spec openapi.Spec
	if err := json.NewDecoder(rec.Body).Decode(&spec); err != nil {
		t.Fatalf("decode spec: %v", err)
	}

	if spec.Info.Title != "No-show Review API" || spec.Info.Version != "0.1.0" {
		t.Errorf("info: got %+v", spec.Info)
	}

	paths := []string{
		"/rules",
		"/rules/import",
		"/batches",
		"/batches/{id}/export",
		"/notes/{id}/classify",
		"/reviews/{noteId}/verdict",
		"/reviews/batch/{batchId}/summary",
	}
	for _, p := range paths {
		if _, ok := spec.Paths[p]; !ok {
			t.Errorf("spec missing path %s", p)
		}
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Settings.Workers != 4 || runtime.Settings.DefaultCause != "Agendamento cancelado" {
		t.Errorf("settings: got %+v", runtime.Settings)
	}
	if runtime.Columns.Narrative != "observacao" || runtime.Columns.Key != "O.S." {
		t.Errorf("columns: got %+v", runtime.Columns)
	}
	if !runtime.RequireSecondPass {
		t.Error("second pass policy not carried")
	}
	if runtime.Rules != infra.Rules {
		t.Error("runtime must share the infrastructure registry")
	}
	if runtime.Logger == nil || runtime.Database == nil || runtime.Storage == nil || runtime.Lifecycle == nil {
		t.Error("runtime infrastructure incomplete")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	domain := api.NewDomain(api.NewRuntime(cfg, infra))
	if domain.ExtraRules == nil || domain.Batches == nil || domain.Notes == nil || domain.Reviews == nil {
		t.Fatalf("domain incomplete: %+v", domain)
	}
}
