package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planchais/chantiers-backend/internal/catalog"
)

const fakeEstimate = `{
  "tempsRealisation": "3 semaines",
  "materiaux": [{"nom": "Béton", "quantite": "12 m3", "prix": 1500}, {"nom": "Sable", "quantite": 4, "prix": "200,50"}],
  "nombreOuvriers": 3,
  "coutTotal": 12000,
  "marge": 2000,
  "benefice": "1 500",
  "repartitionCouts": {"transport": 500, "mainOeuvre": 6000, "materiaux": 4000, "autres": 1500},
  "recommandations": ["Prévoir un drainage"]
}`

func newFakeProvider(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var calls []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls = append(calls, body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": fakeEstimate}}},
		})
	})
	var srv *httptest.Server
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls = append(calls, body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"url": srv.URL + "/files/render.png"}},
		})
	})
	mux.HandleFunc("/files/render.png", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("PNGDATA"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestAnalyze(t *testing.T) {
	srv, calls := newFakeProvider(t)
	c := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1/"}, catalog.Default(), srv.Client())

	est, err := c.Analyze(context.Background(), []byte("jpegbytes"), "image/png", EstimateContext{Surface: "40 m2"})
	require.NoError(t, err)

	assert.Equal(t, "3 semaines", est.TempsRealisation)
	require.Len(t, est.Materiaux, 2)
	assert.Equal(t, "12 m3", est.Materiaux[0].Quantite)
	assert.Equal(t, "4", est.Materiaux[1].Quantite)
	assert.InDelta(t, 200.5, float64(est.Materiaux[1].Prix), 0.001)
	assert.InDelta(t, 1500, float64(est.Benefice), 0.001)
	assert.Equal(t, Number(6000), est.RepartitionCouts.MainOeuvre)

	require.Len(t, *calls, 1)
	req := (*calls)[0]
	assert.Equal(t, "gpt-4o", req["model"])
	msgs := req["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	assert.Contains(t, parts[0].(map[string]any)["text"], "Surface: 40 m2")
	assert.Contains(t, parts[0].(map[string]any)["text"], "Localisation: Non spécifiée")
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("jpegbytes")), url)
}

func TestVisualize(t *testing.T) {
	srv, calls := newFakeProvider(t)
	c := New(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}, catalog.Default(), srv.Client())

	vis, err := c.Visualize(context.Background(), "piscine", "tropical")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("PNGDATA")), vis.ImageBase64)
	assert.Contains(t, vis.ImageURL, "/files/render.png")

	require.Len(t, *calls, 1)
	prompt := (*calls)[0]["prompt"].(string)
	assert.Contains(t, prompt, "piscine ou spa")
	assert.Contains(t, prompt, "végétation luxuriante")
	assert.Equal(t, "dall-e-3", (*calls)[0]["model"])
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{}, nil, nil)
	assert.False(t, c.Configured())

	_, err := c.Analyze(context.Background(), nil, "", EstimateContext{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = c.Visualize(context.Background(), "piscine", "moderne")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "k", BaseURL: srv.URL}, nil, srv.Client())
	_, err := c.Analyze(context.Background(), []byte("x"), "", EstimateContext{})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusTooManyRequests, perr.Status)
}

func TestVisualizationPromptUsesKeysVerbatim(t *testing.T) {
	c := New(Config{APIKey: "k"}, catalog.Default(), nil)
	assert.Contains(t, c.VisualizationPrompt("véranda", "industriel"), "d'un véranda en industriel")
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(` {"a":1} `))
}
