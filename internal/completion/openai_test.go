package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("path = %q, want /v1/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"text":" renders a recipe book"},{"text":"ignored"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL+"/v1/", "sk-test", srv.Client())
	out, err := c.Complete(context.Background(), Request{
		Model:       "gpt-3.5-turbo-instruct",
		Prompt:      "hello",
		MaxTokens:   128,
		Temperature: 0,
		TopP:        1,
		Stop:        []string{"."},
	})
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out != " renders a recipe book" {
		t.Errorf("Complete() = %q", out)
	}

	// Zero temperature must still be sent explicitly.
	if v, ok := got["temperature"]; !ok || v.(float64) != 0 {
		t.Errorf("temperature = %v (present=%v), want explicit 0", v, ok)
	}
	if got["max_tokens"].(float64) != 128 {
		t.Errorf("max_tokens = %v", got["max_tokens"])
	}
	if !reflect.DeepEqual(got["stop"], []any{"."}) {
		t.Errorf("stop = %v", got["stop"])
	}
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "nope", srv.Client())
	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "bad key") {
		t.Errorf("error should carry status and body, got: %v", err)
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL, "k", srv.Client())
	_, err := c.Complete(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("error = %v, want ErrNoChoices", err)
	}
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	c := NewOpenAIClient("", "k", nil)
	if c.baseURL != DefaultOpenAIBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.http == nil || c.http.Timeout == 0 {
		t.Error("expected default http client with timeout")
	}
}
