package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/cardscan/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec("Test API", "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" {
		t.Errorf("info: %+v", spec.Info)
	}
	if spec.Components == nil || spec.Components.Schemas["Error"] == nil {
		t.Fatal("components should carry the error schema")
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	get := &openapi.Operation{Summary: "read"}
	post := &openapi.Operation{Summary: "write"}

	spec.AddOperation(http.MethodGet, "/items", get)
	spec.AddOperation(http.MethodPost, "/items", post)
	spec.AddOperation(http.MethodDelete, "/items", &openapi.Operation{})

	item := spec.Paths["/items"]
	if item == nil || item.Get != get || item.Post != post {
		t.Errorf("path item: %+v", item)
	}
}

func TestRefs(t *testing.T) {
	if ref := openapi.SchemaRef("State"); ref.Ref != "#/components/schemas/State" {
		t.Errorf("schema ref: got %s", ref.Ref)
	}
	if ref := openapi.ResponseRef("BadRequest"); ref.Ref != "#/components/responses/BadRequest" {
		t.Errorf("response ref: got %s", ref.Ref)
	}
}

func TestRequestBodyMultipart(t *testing.T) {
	rb := openapi.RequestBodyMultipart("file", "Image")

	if !rb.Required {
		t.Error("required should be true")
	}
	mt, ok := rb.Content["multipart/form-data"]
	if !ok {
		t.Fatal("missing multipart content")
	}
	field := mt.Schema.Properties["file"]
	if field == nil || field.Format != "binary" {
		t.Errorf("file field: %+v", field)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("Test", "1.0.0")
	spec.AddOperation(http.MethodGet, "/state", &openapi.Operation{
		Responses: map[int]*openapi.Response{200: openapi.ResponseJSON("ok", "Error")},
	})

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}
	body, _ := io.ReadAll(rec.Body)

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	paths := decoded["paths"].(map[string]any)
	get := paths["/state"].(map[string]any)["get"].(map[string]any)
	if _, ok := get["responses"].(map[string]any)["200"]; !ok {
		t.Errorf("responses not keyed by status: %v", get["responses"])
	}
}
