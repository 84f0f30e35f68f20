package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string, batchSize int) *Client {
	t.Helper()
	t.Setenv("TEST_EMBED_KEY", "secret")
	c, err := NewClient(Config{
		BaseURL:   serverURL,
		APIKeyEnv: "TEST_EMBED_KEY",
		Model:     "test-model",
		BatchSize: batchSize,
	})
	require.NoError(t, err)
	return c
}

// echoServer returns one embedding per input, where vec[0] encodes the
// input's position in the request.
func echoServer(t *testing.T, requests *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests++
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)

		type datum struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		out := struct {
			Data []datum `json:"data"`
		}{}
		// Reverse order in the response; the client must reorder by index.
		for i := len(req.Input) - 1; i >= 0; i-- {
			out.Data = append(out.Data, datum{Index: i, Embedding: []float64{float64(i), 1, 2}})
		}
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_EMBED_KEY"})
	assert.Error(t, err)
}

func TestEmbedBatchChunksAndPreservesOrder(t *testing.T) {
	requests := 0
	server := echoServer(t, &requests)
	defer server.Close()

	c := newTestClient(t, server.URL, 2)
	texts := []string{"a", "b", "c", "d", "e"}
	vecs, err := c.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, 3, requests, "5 inputs at batch size 2 means 3 requests")
	// Positions within each chunk: [0,1], [0,1], [0].
	wantFirst := []float64{0, 1, 0, 1, 0}
	for i, v := range vecs {
		assert.Equal(t, wantFirst[i], v[0])
	}
	assert.Equal(t, 3, c.Dimension(), "dimension captured from the first response")
}

func TestEmbedRetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0.5,0.5]}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.5}, vec)
	assert.Equal(t, 2, attempts)
}

func TestEmbedFailsOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "4xx other than 429 does not retry")
}

func TestEmbedDecodesOllamaShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding":[1,2,3]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 0)
	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, vec)
}
