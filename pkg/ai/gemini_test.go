package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateVisionSendsInlineImage(t *testing.T) {
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "{\"name\":\"Monstera\"}"}}}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewGeminiClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.WithBaseURL(srv.URL)

	out, err := client.GenerateVision(context.Background(), "gemini-test", "identify this", []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("generate vision: %v", err)
	}
	if out != "{\"name\":\"Monstera\"}" {
		t.Fatalf("unexpected output %q", out)
	}

	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content with prompt and image parts, got %+v", gotBody.Contents)
	}
	if gotBody.Contents[0].Parts[0].Text != "identify this" {
		t.Fatalf("prompt part mismatch: %+v", gotBody.Contents[0].Parts[0])
	}
	img := gotBody.Contents[0].Parts[1].InlineData
	if img == nil || img.MimeType != "image/jpeg" || img.Data == "" {
		t.Fatalf("image part mismatch: %+v", img)
	}
}

func TestGenerateVisionSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "quota exceeded"}})
	}))
	defer srv.Close()

	client, err := NewGeminiClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.WithBaseURL(srv.URL)

	_, err = client.GenerateVision(context.Background(), "gemini-test", "identify", []byte{1}, "")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient("   "); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
