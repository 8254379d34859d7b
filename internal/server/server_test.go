package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/ai"
	"resumatch/internal/analysis"
	"resumatch/internal/config"
	"resumatch/internal/embedding"
	resumatchErrors "resumatch/internal/errors"
	"resumatch/internal/types"
	"resumatch/internal/vocabulary"
)

// letterEmbedder embeds text as a letter histogram
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec, nil
}

type staticGenerator struct {
	text string
}

func (g staticGenerator) Generate(context.Context, ai.Prompt) (string, *ai.TokenUsage, error) {
	return g.text, nil, nil
}

const (
	testResume = "Jane Doe\n- Built Python services handling 10k requests per second.\n- Led a team using Docker and Kubernetes."
	testJD     = "We need a Python engineer. Experience with Kubernetes and React is required for this role."
)

func newTestServer(t *testing.T, embedder embedding.Embedder, rewrite ai.Generator, rateLimit *config.RateLimitConfig) *Server {
	t.Helper()

	deps := Dependencies{
		RewriteGenerator: rewrite,
		Embedder:         embedder,
		Vocabulary:       vocabulary.Default(),
	}
	if embedder != nil {
		cache, err := embedding.NewCache(embedder, embedding.DefaultCacheCapacity)
		require.NoError(t, err)
		deps.Cache = cache
		embedder = cache
	}
	deps.Analyzer = analysis.NewAnalyzer(analysis.Options{
		Scorer:           embedding.NewScorer(embedder),
		RewriteGenerator: rewrite,
		Vocabulary:       deps.Vocabulary,
		Logger:           resumatchErrors.NewDiscardLogger(),
	})

	srv := NewServer(nil, ServerConfig{
		Version:        "test",
		MaxRequestSize: 1 << 20,
		RateLimit:      rateLimit,
	}, deps, resumatchErrors.NewDiscardLogger())
	if srv.RateLimiter != nil {
		t.Cleanup(srv.RateLimiter.Close)
	}
	return srv
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload string
	switch b := body.(type) {
	case nil:
	case string:
		payload = b
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		payload = string(data)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestAnalyzeEndpoint(t *testing.T) {
	handler := newTestServer(t, letterEmbedder{}, nil, nil).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/analyze", map[string]string{
		"resumeText":     testResume,
		"jobDescription": testJD,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	raw := rec.Body.Bytes()
	var out types.AnalyzeOutput
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotEmpty(t, out.ID)
	assert.GreaterOrEqual(t, out.Score, 0)
	assert.LessOrEqual(t, out.Score, 100)
	assert.Equal(t, analysis.ScoreBand(out.Score), out.ScoreBand)
	assert.Equal(t, types.GapSourceKeywords, out.GapSource)
	assert.Equal(t, "React", out.Gaps[0].Skill)
	assert.Len(t, out.Bullets, 2)

	var wire struct {
		Evidence []map[string]string `json:"evidence"`
	}
	require.NoError(t, json.Unmarshal(raw, &wire))
	require.NotEmpty(t, wire.Evidence)
	assert.Contains(t, wire.Evidence[0], "resumeText")
	assert.Contains(t, wire.Evidence[0], "jdText")
	assert.NotEmpty(t, wire.Evidence[0]["resumeText"])
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	withEmbedder := newTestServer(t, letterEmbedder{}, nil, nil).Handler()
	withoutEmbedder := newTestServer(t, nil, nil, nil).Handler()

	tests := []struct {
		name       string
		handler    http.Handler
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing field",
			handler:    withEmbedder,
			body:       map[string]string{"resumeText": testResume},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   resumatchErrors.ErrCodeMissingField,
		},
		{
			name:       "empty resume",
			handler:    withEmbedder,
			body:       map[string]string{"resumeText": "", "jobDescription": testJD},
			wantStatus: http.StatusBadRequest,
			wantCode:   resumatchErrors.ErrCodeInputTooShort,
		},
		{
			name:       "malformed json",
			handler:    withEmbedder,
			body:       `{"resumeText":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no embedding backend",
			handler:    withoutEmbedder,
			body:       map[string]string{"resumeText": testResume, "jobDescription": testJD},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   resumatchErrors.ErrCodeBackendNotSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, tt.handler, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	srv := newTestServer(t, letterEmbedder{}, nil, nil)
	srv.MaxRequestSize = 64
	handler := srv.Handler()

	t.Run("content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/rewrite", strings.NewReader(`{"original":"Worked on things"}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body too large", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/rewrite", map[string]string{
			"original": strings.Repeat("x", 200),
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "too large")
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/analyze", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRewriteEndpointWithoutBackend(t *testing.T) {
	handler := newTestServer(t, nil, nil, nil).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/rewrite", map[string]string{
		"original":       "Worked on software projects",
		"jobDescription": "Backend engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out types.RewriteOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "Worked on software projects", out.Revised)
	assert.Contains(t, out.Rationale, "not configured")
}

func TestBatchRewriteEndpoint(t *testing.T) {
	gen := staticGenerator{text: "Rewritten: Delivered measurable results\nRationale: Quantified."}
	handler := newTestServer(t, nil, gen, nil).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/rewrite/batch", map[string]any{
		"bullets":        []string{"Worked on software projects", "", "Fixed many bugs"},
		"jobDescription": "Backend engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out types.BatchRewriteOutput
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "Worked on software projects", out.Results[0].Original)
	assert.Equal(t, "Fixed many bugs", out.Results[1].Original)
	assert.Equal(t, "Delivered measurable results", out.Results[1].Revised)

	rec = doJSON(t, handler, http.MethodPost, "/api/rewrite/batch", map[string]any{
		"jobDescription": "Backend engineer",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBulletsDownload(t *testing.T) {
	handler := newTestServer(t, nil, nil, nil).Handler()

	rec := doJSON(t, handler, http.MethodPost, "/api/bullets/download", map[string]any{
		"bullets": []string{"Led migration to Kubernetes", "  ", "Cut latency by 40%"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tailored_resume_bullets.txt")
	assert.Equal(t, "• Led migration to Kubernetes\n• Cut latency by 40%\n", rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("no backends", func(t *testing.T) {
		rec := doJSON(t, newTestServer(t, nil, nil, nil).Handler(), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp struct {
			Status     string          `json:"status"`
			Configured map[string]bool `json:"configured"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, map[string]bool{"embedding": false, "gapAnalysis": false, "rewrite": false}, resp.Configured)
	})

	t.Run("embedder only", func(t *testing.T) {
		rec := doJSON(t, newTestServer(t, letterEmbedder{}, nil, nil).Handler(), http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
		assert.Contains(t, rec.Body.String(), `"embedding":true`)
	})
}

func TestStatsEndpoint(t *testing.T) {
	handler := newTestServer(t, letterEmbedder{}, nil, nil).Handler()

	doJSON(t, handler, http.MethodPost, "/api/analyze", map[string]string{"resumeText": testResume, "jobDescription": testJD})
	doJSON(t, handler, http.MethodPost, "/api/analyze", map[string]string{"resumeText": testResume, "jobDescription": testJD})

	rec := doJSON(t, handler, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Cache      embedding.CacheStats `json:"embedding_cache"`
		Vocabulary map[string]int       `json:"vocabulary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(2), resp.Cache.Hits)
	assert.Equal(t, int64(2), resp.Cache.Misses)
	assert.Equal(t, 2, resp.Cache.Size)
	assert.Equal(t, len(vocabulary.Default().Skills), resp.Vocabulary["skills"])
}

func TestRateLimiting(t *testing.T) {
	handler := newTestServer(t, nil, nil, &config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 1,
		BurstCapacity:  1,
		ByIP:           true,
		Window:         time.Minute,
	}).Handler()

	body := map[string]string{"original": "Worked on software projects"}
	first := doJSON(t, handler, http.MethodPost, "/api/rewrite", body)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, handler, http.MethodPost, "/api/rewrite", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	health := doJSON(t, handler, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{resumatchErrors.NewValidationError(resumatchErrors.ErrCodeInputTooShort, "short", nil), http.StatusBadRequest},
		{resumatchErrors.NewValidationError(resumatchErrors.ErrCodeMissingField, "missing", nil), http.StatusUnprocessableEntity},
		{resumatchErrors.NewValidationError(resumatchErrors.ErrCodeFileTooLarge, "large", nil), http.StatusRequestEntityTooLarge},
		{resumatchErrors.NewBackendUnavailableError(resumatchErrors.ErrCodeBackendNotSet, "down", nil), http.StatusServiceUnavailable},
		{resumatchErrors.NewBackendTransientError(resumatchErrors.ErrCodeAITimeout, "slow", nil), http.StatusGatewayTimeout},
		{resumatchErrors.NewBackendTransientError(resumatchErrors.ErrCodeAIServiceFailed, "503", nil), http.StatusServiceUnavailable},
		{resumatchErrors.NewInternalError(resumatchErrors.ErrCodeInternalError, "bug", nil), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

func TestRenderBulletList(t *testing.T) {
	assert.Equal(t, "", RenderBulletList(nil))
	assert.Equal(t, "• one\n", RenderBulletList([]string{" one "}))
}

func TestStartStopsWhenContextEnds(t *testing.T) {
	srv := newTestServer(t, nil, nil, nil)
	srv.Host = "127.0.0.1"
	srv.Port = "0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}

func TestStartReportsListenError(t *testing.T) {
	srv := newTestServer(t, nil, nil, nil)
	srv.Host = "127.0.0.1"
	srv.Port = "not-a-port"

	err := srv.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server failed to start")
}
