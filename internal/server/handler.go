package server

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"resumatch/internal/analysis"
	resumatchErrors "resumatch/internal/errors"
	"resumatch/internal/observability"
	"resumatch/internal/types"
)

const (
	tracerName       = "resumatch.api"
	downloadFilename = "tailored_resume_bullets.txt"
)

// createAnalyzeHandler serves POST /api/analyze
func (s *Server) createAnalyzeHandler() http.HandlerFunc {
	om := s.Deps.Observability
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := requireFields(map[string]bool{
			"resumeText":     req.ResumeText != nil,
			"jobDescription": req.JobDescription != nil,
		}); err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(*req.ResumeText)),
			attribute.Int("request.job_length", len(*req.JobDescription)),
			attribute.String("operation", "analyze"),
		)

		metrics := om.GetMetrics()
		result, err := s.Deps.Analyzer.Analyze(ctx, types.AnalyzeInput{
			ResumeText:     *req.ResumeText,
			JobDescription: *req.JobDescription,
		})
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", string(resumatchErrors.TypeOf(err))))
			if !resumatchErrors.IsType(err, resumatchErrors.ErrorTypeValidation) {
				metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisCompleted, false, om,
					attribute.String("error.type", string(resumatchErrors.TypeOf(err))))
			}
			s.writeAppError(w, err)
			return
		}

		metrics.RecordBusinessMetric(ctx, observability.MetricAnalysisCompleted, true, om,
			attribute.String("gap_source", string(result.GapSource)),
			attribute.String("score_band", result.ScoreBand))
		metrics.RecordMatchScore(ctx, result.Score, om)
		if result.GapSource == types.GapSourceKeywords {
			metrics.RecordBusinessMetric(ctx, observability.MetricFallbackGaps, true, om)
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("analysis.id", result.ID),
			attribute.Int("analysis.score", result.Score),
			attribute.Int("analysis.gaps", len(result.Gaps)),
		)

		writeJSON(w, http.StatusOK, result)
	}
}

// createRewriteHandler serves POST /api/rewrite
func (s *Server) createRewriteHandler() http.HandlerFunc {
	om := s.Deps.Observability
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.rewrite")
		defer span.End()

		var req RewriteRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := requireFields(map[string]bool{"original": req.Original != nil}); err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		result, err := s.Deps.Analyzer.Rewrite(ctx, types.RewriteInput{
			Original:       *req.Original,
			JobDescription: req.JobDescription,
			Context:        req.Context,
		})
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		om.GetMetrics().RecordBusinessMetric(ctx, observability.MetricBulletRewritten, rewriteSucceeded(*result), om,
			attribute.String("mode", "single"))
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.revised_length", len(result.Revised)),
		)

		writeJSON(w, http.StatusOK, result)
	}
}

// createBatchRewriteHandler serves POST /api/rewrite/batch
func (s *Server) createBatchRewriteHandler() http.HandlerFunc {
	om := s.Deps.Observability
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := om.Tracer(tracerName).Start(r.Context(), "api.rewrite_batch")
		defer span.End()

		var req BatchRewriteRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := requireFields(map[string]bool{
			"bullets":        req.Bullets != nil,
			"jobDescription": req.JobDescription != nil,
		}); err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		span.SetAttributes(attribute.Int("request.bullets", len(req.Bullets)))

		result, err := s.Deps.Analyzer.RewriteBatch(ctx, types.BatchRewriteInput{
			Bullets:        req.Bullets,
			JobDescription: *req.JobDescription,
			Context:        req.Context,
		})
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		metrics := om.GetMetrics()
		for _, rewritten := range result.Results {
			metrics.RecordBusinessMetric(ctx, observability.MetricBulletRewritten, rewriteSucceeded(rewritten), om,
				attribute.String("mode", "batch"))
		}
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.results", len(result.Results)),
		)

		writeJSON(w, http.StatusOK, result)
	}
}

// createBulletsDownloadHandler serves POST /api/bullets/download as a text attachment
func (s *Server) createBulletsDownloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BulletsDownloadRequest
		if err := parseJSONRequest(r, &req); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if err := requireFields(map[string]bool{"bullets": req.Bullets != nil}); err != nil {
			s.writeAppError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFilename+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(RenderBulletList(req.Bullets))); err != nil {
			s.Logger.LogError(err, "Failed to write bullet download")
		}
	}
}

// RenderBulletList formats bullets one per line as "• {bullet}". Blank
// entries are skipped.
func RenderBulletList(bullets []string) string {
	var b strings.Builder
	for _, bullet := range bullets {
		if bullet = strings.TrimSpace(bullet); bullet == "" {
			continue
		}
		b.WriteString("• ")
		b.WriteString(bullet)
		b.WriteByte('\n')
	}
	return b.String()
}

// rewriteSucceeded reports whether a rewrite came from the model rather
// than a pass-through
func rewriteSucceeded(result types.RewriteOutput) bool {
	return result.Rationale != analysis.NotConfiguredRationale &&
		!strings.HasPrefix(result.Rationale, analysis.RewriteErrorPrefix)
}
