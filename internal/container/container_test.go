package container

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-tree-inspector/internal/config"
	"go-tree-inspector/internal/factory"
	"go-tree-inspector/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     5 * time.Second,
		ImageFetchTimeout:  time.Second,
		IdentifyTimeout:    time.Second,
		MaxRequestBodySize: 1 << 20,
		PlantIDURL:         config.DefaultPlantIDURL,
		HeightFormula:      config.FormulaTangent,
		ExcerptLength:      config.DefaultExcerptLength,
		ExcerptMode:        config.ExcerptModeMarkdown,
		PlaqueLanguage:     "eng",
	}
}

func TestNewContainer_WiresHandler(t *testing.T) {
	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer c.Close()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from /health, got %d", rec.Code)
	}

	est, err := c.Service().EstimateHeight(models.HeightMeasurementInput{Distance: 10, AngleOrSlope: 45})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if est.Formula != "tangent" {
		t.Errorf("Expected configured tangent formula, got %s", est.Formula)
	}
}

func TestNewContainer_AzureOnlyWhenConfigured(t *testing.T) {
	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Sources().CreateSource(factory.SourceRequest{Type: factory.AzureSource, Ref: "trees/oak.jpg"}); err == nil {
		t.Error("Expected azure source to be unavailable without credentials")
	}

	cfg := testConfig()
	cfg.AzureAccountName = "trees"
	cfg.AzureAccountKey = "dGVzdGtleQ=="
	c, err = NewContainer(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	src, err := c.Sources().CreateSource(factory.SourceRequest{Type: factory.AzureSource, Ref: "trees/oak.jpg"})
	if err != nil {
		t.Fatalf("Expected azure source, got %v", err)
	}
	if src.Describe() != "azure:trees/oak.jpg" {
		t.Errorf("Unexpected description %s", src.Describe())
	}
}
