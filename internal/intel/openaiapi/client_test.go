package openaiapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func responsesServer(t *testing.T, outputText string, seen func(r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var decoded map[string]any
		assert.NoError(t, json.Unmarshal(body, &decoded))
		if seen != nil {
			seen(r, decoded)
		}

		content, _ := json.Marshal(outputText)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"error": {"code": "", "message": ""},
			"output": [
				{
					"type": "message",
					"role": "assistant",
					"content": [
						{"type": "output_text", "text": ` + string(content) + `, "annotations": []}
					]
				}
			]
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientComplete_SendsExpectedPayload(t *testing.T) {
	const envKey = "TODONE_OPENAI_TEST_KEY"
	t.Setenv(envKey, "test-api-key")

	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := responsesServer(t, "  plan ready  ", func(r *http.Request, body map[string]any) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotBody = body
	})

	client, err := NewClient(Config{Model: "gpt-4.1-mini", BaseURL: srv.URL, APIKeyEnv: envKey}, srv.Client())
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), Request{Instructions: "Plan it.", Input: "Run a 5K race"})
	require.NoError(t, err)

	assert.Equal(t, "plan ready", out)
	assert.Equal(t, "Bearer test-api-key", gotAuth)
	assert.Equal(t, "/responses", gotPath)
	assert.Equal(t, "gpt-4.1-mini", gotBody["model"])
	assert.Equal(t, "Plan it.", gotBody["instructions"])
	assert.Equal(t, "Run a 5K race", gotBody["input"])
}

func TestClientComplete_ErrorsWhenOutputMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": {"code": "", "message": ""}, "output": []}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Model: "gpt-4.1-mini", BaseURL: srv.URL, APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Input: "{}"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output text")
}

func TestNewClient_RequiresKeyAndModel(t *testing.T) {
	t.Setenv("TODONE_OPENAI_MISSING_KEY", "")

	_, err := NewClient(Config{Model: "gpt-4.1-mini", APIKeyEnv: "TODONE_OPENAI_MISSING_KEY"}, nil)
	assert.Error(t, err)

	_, err = NewClient(Config{APIKey: "k"}, nil)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	got, err := ExtractJSON("Here you go: {\"a\": {\"b\": 1}} thanks")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	got, err = ExtractJSON("```json\n{\"summary\":\"ok\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, got)

	_, err = ExtractJSON("no json")
	assert.Error(t, err)
}
