package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mistralai/Mistral-7B-Instruct-v0.2", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req generationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Inputs)
		assert.Equal(t, 120, req.Parameters.MaxNewTokens)
		assert.Equal(t, 0.7, req.Parameters.Temperature)
		assert.Equal(t, 0.9, req.Parameters.TopP)
		assert.Equal(t, 1.2, req.Parameters.RepetitionPenalty)
		assert.False(t, req.Parameters.ReturnFullText)

		w.Write([]byte(`[{"generated_text": "  ### Analysis\nSolid.  "}]`))
	}))
	defer server.Close()

	client := NewClient("hf_test", "mistralai/Mistral-7B-Instruct-v0.2", server.URL, zerolog.Nop())

	text, err := client.Generate(context.Background(), "hello", 120)
	require.NoError(t, err)
	assert.Equal(t, "### Analysis\nSolid.", text)
}

func TestGenerate_DefaultTokenBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 400, req.Parameters.MaxNewTokens)
		w.Write([]byte(`{"generated_text": "single"}`))
	}))
	defer server.Close()

	client := NewClient("", "m", server.URL+"/", zerolog.Nop())

	text, err := client.Generate(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Equal(t, "single", text)
}

func TestGenerate_ModelLoading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": "Model is currently loading", "estimated_time": 20.0}`))
	}))
	defer server.Close()

	client := NewClient("", "m", server.URL, zerolog.Nop())

	_, err := client.Generate(context.Background(), "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currently loading")
}

func TestGenerate_EmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient("", "m", server.URL, zerolog.Nop())

	_, err := client.Generate(context.Background(), "x", 10)
	assert.Error(t, err)
}

func TestGenerate_RespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[{"generated_text": "late"}]`))
	}))
	defer server.Close()

	client := NewClient("", "m", server.URL, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "x", 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	client := NewClient("", "m", "", zerolog.Nop())
	assert.Equal(t, defaultBaseURL, client.baseURL)
}
