package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/captioner/internal/pricing"
	"github.com/lehigh-university-libraries/captioner/internal/providers"
)

func TestCaption(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Content []map[string]any `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body.Model)
		require.Len(t, body.Messages, 1)
		require.Len(t, body.Messages[0].Content, 2)
		assert.Equal(t, "describe", body.Messages[0].Content[0]["text"])
		assert.Equal(t, map[string]any{"url": "data:image/png;base64,AAAA"}, body.Messages[0].Content[1]["image_url"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a bridge"}}],"usage":{"prompt_tokens":12,"completion_tokens":3}}`))
	}))
	defer server.Close()

	resp, err := New(server.URL).Caption(context.Background(), providers.Request{
		Model: "gpt-4o", APIKey: "sk-test", Prompt: "describe", ImageBase64: "AAAA",
	})
	require.NoError(t, err)
	assert.Equal(t, "a bridge", resp.Text)
	assert.Equal(t, &pricing.Usage{InputTokens: 12, OutputTokens: 3}, resp.Usage)
}

func TestCaptionNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Caption(context.Background(), providers.Request{Model: "gpt-4o"})
	assert.ErrorIs(t, err, providers.ErrMalformedResponse)
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"id":"gpt-4o"},{"id":"gpt-4o-mini"}]}`))
	}))
	defer server.Close()

	ids, err := New(server.URL).ListModels(context.Background(), "sk-test")
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, ids)
}
