package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsTranslatorBot/internal/config"
	"NewsTranslatorBot/internal/domain"
)

func TestChatGPTClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			ResponseFormat map[string]string `json:"response_format"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload)) {
			return
		}
		assert.Equal(t, "gpt-test", payload.Model)
		assert.Equal(t, "json_object", payload.ResponseFormat["type"])
		if assert.Len(t, payload.Messages, 2) {
			assert.Equal(t, "system", payload.Messages[0].Role)
			assert.Equal(t, "hallo", payload.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"score\": 4}"}}]}`))
	}))
	defer srv.Close()

	c := NewChatGPTClient(config.LLMConfig{Endpoint: srv.URL, Model: "gpt-test", APIKey: "secret"})
	got, err := c.Complete(context.Background(), "sys", "hallo")
	require.NoError(t, err)
	assert.Equal(t, `{"score": 4}`, got)
}

func TestChatGPTClientErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewChatGPTClient(config.LLMConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"}).Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, domain.ErrModel)

	_, err = NewChatGPTClient(config.LLMConfig{Endpoint: srv.URL, Model: "m"}).Complete(context.Background(), "s", "u")
	require.ErrorIs(t, err, domain.ErrModel)
}

func TestAnthropicClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		var payload struct {
			System string `json:"system"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		assert.Equal(t, "sys", payload.System)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"title_en\":"},{"type":"text","text":"\"T\"}"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(config.LLMConfig{Endpoint: srv.URL, Model: "claude-test", APIKey: "secret"})
	got, err := c.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"title_en":"T"}`, got)
}

func TestNewCompleter(t *testing.T) {
	t.Parallel()

	c, err := NewCompleter(config.LLMConfig{Provider: config.ProviderAnthropic})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)

	c, err = NewCompleter(config.LLMConfig{Provider: "OpenAI"})
	require.NoError(t, err)
	assert.IsType(t, &ChatGPTClient{}, c)

	_, err = NewCompleter(config.LLMConfig{Provider: "mistral"})
	require.Error(t, err)
}

func TestOllamaClientComplete(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var payload struct {
			Model    string          `json:"model"`
			Stream   *bool           `json:"stream"`
			Format   json.RawMessage `json:"format"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload)) {
			return
		}
		assert.Equal(t, "llama-test", payload.Model)
		if assert.NotNil(t, payload.Stream) {
			assert.False(t, *payload.Stream)
		}
		assert.JSONEq(t, `"json"`, string(payload.Format))
		if assert.Len(t, payload.Messages, 2) {
			assert.Equal(t, "system", payload.Messages[0].Role)
			assert.Equal(t, "sys", payload.Messages[0].Content)
			assert.Equal(t, "hallo", payload.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"score\""},"done":false}` + "\n"))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":": 4}"},"done":true}` + "\n"))
	}))
	defer srv.Close()

	c, err := NewOllamaClient(config.LLMConfig{Endpoint: srv.URL, Model: "llama-test"})
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "sys", "hallo")
	require.NoError(t, err)
	assert.Equal(t, `{"score": 4}`, got)
}

func TestOllamaClientError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama-test\" not found"}`))
	}))
	defer srv.Close()

	c, err := NewOllamaClient(config.LLMConfig{Endpoint: srv.URL, Model: "llama-test"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "sys", "hallo")
	require.ErrorIs(t, err, domain.ErrModel)
}
