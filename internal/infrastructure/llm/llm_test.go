package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/archy/internal/application/ai"
	sharedConfig "github.com/orris-inc/archy/internal/shared/config"
)

func jsonServer(t *testing.T, path string, capture *map[string]any, reply string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, path), r.URL.Path)
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/"
}

func TestOpenAICompleter_Complete(t *testing.T) {
	var body map[string]any
	url := jsonServer(t, "/chat/completions", &body, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Roof leak fixed."}}]}`)

	c := NewOpenAICompleter("sk-test", url)
	reply, err := c.Complete(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "index"},
		{Role: ai.RoleUser, Content: "summarize"},
	}, ai.Options{Model: "gpt-4o-mini", Temperature: 0.4, MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "Roof leak fixed.", reply)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.InDelta(t, 0.4, body["temperature"], 0.0001)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAICompleter_NoChoices(t *testing.T) {
	url := jsonServer(t, "/chat/completions", nil, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`)

	_, err := NewOpenAICompleter("sk-test", url).Complete(context.Background(),
		[]ai.Message{{Role: ai.RoleUser, Content: "x"}}, ai.Options{Model: "m"})
	assert.Error(t, err)
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	var body map[string]any
	url := jsonServer(t, "/embeddings", &body, `{"object":"list","model":"text-embedding-3-small",
		"data":[{"object":"embedding","index":0,"embedding":[0.25,-0.5,1]}],"usage":{"prompt_tokens":2,"total_tokens":2}}`)

	e := NewOpenAIEmbedder("sk-test", url, "text-embedding-3-small", 3)
	vec, err := e.Embed(context.Background(), "Maple Court leak")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vec)
	assert.Equal(t, 3, e.Dimensions())
	assert.Equal(t, float64(3), body["dimensions"])
}

func TestAnthropicCompleter_Complete(t *testing.T) {
	var body map[string]any
	url := jsonServer(t, "/v1/messages", &body, `{"id":"msg_1","type":"message","role":"assistant","model":"claude",
		"content":[{"type":"text","text":"Tags: roof, leak"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":4}}`)

	c := NewAnthropicCompleter("key", url)
	reply, err := c.Complete(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "index"},
		{Role: ai.RoleSystem, Content: "tagger"},
		{Role: ai.RoleUser, Content: "tag this"},
	}, ai.Options{Model: "claude", Temperature: 0.4})
	require.NoError(t, err)
	assert.Equal(t, "Tags: roof, leak", reply)

	system := body["system"].([]any)
	require.Len(t, system, 1)
	assert.Equal(t, "index\n\ntagger", system[0].(map[string]any)["text"])
	assert.Equal(t, float64(defaultAnthropicMaxTokens), body["max_tokens"])
	assert.Len(t, body["messages"].([]any), 1)
}

func TestAnthropicCompleter_RequiresUserMessage(t *testing.T) {
	c := NewAnthropicCompleter("key", "http://127.0.0.1:1/")
	_, err := c.Complete(context.Background(), []ai.Message{{Role: ai.RoleSystem, Content: "only"}}, ai.Options{})
	assert.Error(t, err)
}

func TestNewCompleter(t *testing.T) {
	_, err := NewCompleter(sharedConfig.AIConfig{Provider: "openai"})
	assert.Error(t, err)

	c, err := NewCompleter(sharedConfig.AIConfig{Provider: "openai", OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompleter{}, c)

	c, err = NewCompleter(sharedConfig.AIConfig{Provider: "anthropic", AnthropicAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicCompleter{}, c)

	_, err = NewCompleter(sharedConfig.AIConfig{Provider: "cohere"})
	assert.Error(t, err)

	opts := DefaultOptions(sharedConfig.AIConfig{Model: "m", Temperature: 0.4, MaxTokens: 9})
	assert.Equal(t, ai.Options{Model: "m", Temperature: 0.4, MaxTokens: 9}, opts)
}
