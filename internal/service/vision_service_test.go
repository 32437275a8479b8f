package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"expensero/pkg/config"

	"go.uber.org/zap"
)

func newTestVisionService(t *testing.T, handler http.HandlerFunc) (*VisionService, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewVisionService(&config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewVisionService() error = %v", err)
	}
	return svc, srv
}

func candidateResponse(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGenerateExpenseSuccess(t *testing.T) {
	modelJSON := `{"vendor":"Mercadona","amount_gross":12.1,"tax_vat":1.1,"amount_net":11.0}`

	var gotPath, gotKey string
	var gotBody visionRequest

	svc, _ := newTestVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("request body is not valid JSON: %v", err)
		}
		fmt.Fprint(w, candidateResponse(modelJSON))
	})

	raw, err := svc.GenerateExpense(context.Background(), []byte("fake-image"), "image/png")
	if err != nil {
		t.Fatalf("GenerateExpense() error = %v", err)
	}

	if raw["vendor"] != "Mercadona" {
		t.Errorf("vendor = %v, want Mercadona", raw["vendor"])
	}
	if gotPath != "/models/gemini-test:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q, want test-key", gotKey)
	}
	if gotBody.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType = %q", gotBody.GenerationConfig.ResponseMimeType)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", gotBody.Contents)
	}
	doc := gotBody.Contents[0].Parts[1].InlineData
	if doc == nil || doc.MimeType != "image/png" || doc.Data == "" {
		t.Errorf("inline document not sent correctly: %+v", doc)
	}
}

func TestGenerateExpenseStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n{\"vendor\":\"Bar Pepe\",\"amount_gross\":5.5}\n```"

	svc, _ := newTestVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, candidateResponse(fenced))
	})

	raw, err := svc.GenerateExpense(context.Background(), []byte("x"), "image/jpeg")
	if err != nil {
		t.Fatalf("GenerateExpense() error = %v", err)
	}
	if raw["vendor"] != "Bar Pepe" {
		t.Errorf("vendor = %v, want Bar Pepe", raw["vendor"])
	}
}

func TestGenerateExpenseUpstreamStatus(t *testing.T) {
	svc, _ := newTestVisionService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := svc.GenerateExpense(context.Background(), []byte("x"), "image/jpeg")

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", upstream.StatusCode)
	}
}

func TestGenerateExpenseClassifiesBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"no candidates", `{"candidates":[]}`, ErrNoCandidates},
		{"empty parts", `{"candidates":[{"content":{"parts":[]}}]}`, ErrEmptyContent},
		{"blank text", candidateResponse("   "), ErrEmptyContent},
		{"non-JSON text", candidateResponse("lo siento, no puedo"), ErrMalformedOutput},
		{"broken envelope", `{"candidates": [`, ErrMalformedOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestVisionService(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			})

			_, err := svc.GenerateExpense(context.Background(), []byte("x"), "application/pdf")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateExpenseWithoutAPIKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc, err := NewVisionService(&config.GeminiConfig{
		APIKey:  "",
		Model:   "gemini-test",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewVisionService() error = %v", err)
	}

	_, err = svc.GenerateExpense(context.Background(), []byte("x"), "image/png")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
	if called {
		t.Error("upstream was called despite missing API key")
	}
}

func TestDecodeModelJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
		wantErr bool
	}{
		{"plain object", `{"vendor":"A"}`, "vendor", false},
		{"json fence", "```json\n{\"vendor\":\"A\"}\n```", "vendor", false},
		{"bare fence", "```\n{\"vendor\":\"A\"}\n```", "vendor", false},
		{"padded", "  {\"vendor\":\"A\"}  ", "vendor", false},
		{"not json", "hola", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := decodeModelJSON(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedOutput) {
					t.Errorf("error = %v, want ErrMalformedOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeModelJSON() error = %v", err)
			}
			if _, ok := raw[tt.wantKey]; !ok {
				t.Errorf("decoded object missing %q: %v", tt.wantKey, raw)
			}
		})
	}
}
