package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viralab/hookbrief/internal/analyzer"
	"github.com/viralab/hookbrief/internal/credentials"
	"github.com/viralab/hookbrief/internal/generator"
	"github.com/viralab/hookbrief/internal/jobs"
	"github.com/viralab/hookbrief/internal/mediaproc"
	"github.com/viralab/hookbrief/internal/store"
)

const generateAPIPrefix = "/api/generate"

// resultArchiver is the slice of store.Archiver the handlers use.
type resultArchiver interface {
	Save(ctx context.Context, runID string, v interface{}) (string, error)
	Load(ctx context.Context, key string, out interface{}) error
}

type server struct {
	resolver  credentials.Resolver
	store     store.RunStore
	archiver  resultArchiver
	publisher analyzer.Publisher
	generator *generator.Client
}

func (s *server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc(generateAPIPrefix, s.handleGenerate)
	mux.HandleFunc(generateAPIPrefix+"/", s.handleGenerateStatus)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

type analyzeRequest struct {
	URL      string `json:"url"`
	KeyOwner string `json:"keyOwner,omitempty"`
	Language string `json:"language,omitempty"`
}

// handleAnalyze runs the full pipeline synchronously and returns the
// aggregate result. The run record and the archived result outlive the
// request.
func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with a url field")
		return
	}

	client, err := analyzer.NewClient(r.Context(), s.resolver, req.KeyOwner)
	if err != nil {
		log.Error().Err(err).Str("owner", req.KeyOwner).Msg("Failed to build inference client")
		writeError(w, http.StatusBadGateway, "inference credentials unavailable")
		return
	}

	pipeline := analyzer.NewPipeline(client, analyzer.PipelineConfig{
		Language:  req.Language,
		Publisher: s.publisher,
	})

	result, err := pipeline.Run(r.Context(), mediaproc.Source{URL: req.URL})
	if err != nil {
		s.recordFailure(req.URL, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	s.recordSuccess(result, req.URL)
	writeJSON(w, http.StatusOK, result)
}

// recordSuccess archives the full result and stores the run record.
// Persistence problems are logged, not surfaced: the caller already has
// the result in hand.
func (s *server) recordSuccess(result *analyzer.AnalysisResult, sourceRef string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	record := &store.RunRecord{
		RunID:        result.RunID,
		SourceRef:    sourceRef,
		Status:       store.StatusCompleted,
		Duration:     result.Metadata.Duration,
		VideoType:    result.Context.VideoType,
		HookType:     string(result.HookAnalysis.Type),
		HookStrength: string(result.HookAnalysis.Strength),
	}

	key, err := s.archiver.Save(ctx, result.RunID, result)
	if err != nil {
		log.Error().Err(err).Str("runId", result.RunID).Msg("Failed to archive result")
	} else {
		record.ArchiveKey = key
	}

	if err := s.store.PutRun(ctx, record); err != nil {
		log.Error().Err(err).Str("runId", result.RunID).Msg("Failed to store run record")
	}
}

func (s *server) recordFailure(sourceRef string, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	record := &store.RunRecord{
		RunID:     jobs.GenerateID("run-"),
		SourceRef: sourceRef,
		Status:    store.StatusFailed,
		Error:     runErr.Error(),
	}
	if err := s.store.PutRun(ctx, record); err != nil {
		log.Error().Err(err).Str("source", sourceRef).Msg("Failed to store failed-run record")
	}
}

type generateRequest struct {
	RunID  string `json:"runId"`
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// handleGenerate builds an enriched prompt from an archived run and
// submits a generation job. The job is persisted and polled lazily via
// handleGenerateStatus.
func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "generation is not configured")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RunID == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "body must be JSON with runId and prompt fields")
		return
	}

	record, err := s.store.GetRun(r.Context(), req.RunID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to load run record")
		return
	}
	if record == nil || record.ArchiveKey == "" {
		writeError(w, http.StatusNotFound, "no archived analysis for that run")
		return
	}

	var result analyzer.AnalysisResult
	if err := s.archiver.Load(r.Context(), record.ArchiveKey, &result); err != nil {
		log.Error().Err(err).Str("runId", req.RunID).Msg("Failed to load archived result")
		writeError(w, http.StatusBadGateway, "failed to load archived analysis")
		return
	}

	prompt := generator.BuildEnrichedPrompt(req.Prompt, &result)
	opts := generator.OptionsFromResult(&result)
	if req.Model != "" {
		opts.Model = req.Model
	}

	providerID, err := s.generator.Submit(r.Context(), prompt, opts)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("generation submit failed: %v", err))
		return
	}

	job := &store.GenerationJob{
		ID:          providerID,
		RunID:       req.RunID,
		Prompt:      prompt,
		Model:       opts.Model,
		AspectRatio: opts.AspectRatio,
		Duration:    opts.Duration,
		Status:      store.StatusPending,
	}
	if err := s.store.PutGeneration(r.Context(), job); err != nil {
		log.Error().Err(err).Str("generationId", providerID).Msg("Failed to store generation job")
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     providerID,
		"status": store.StatusPending,
	})
}

// handleGenerateStatus refreshes a job's state from the provider and
// returns it.
func (s *server) handleGenerateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "generation is not configured")
		return
	}

	id, ok := jobs.ParseRoute(r.URL.Path, generateAPIPrefix+"/", "")
	if !ok {
		writeError(w, http.StatusBadRequest, "missing generation id")
		return
	}

	video, err := s.generator.Status(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("status check failed: %v", err))
		return
	}

	if err := s.store.UpdateGenerationStatus(r.Context(), id, video.Status, video.VideoURL, video.Error); err != nil {
		log.Warn().Err(err).Str("generationId", id).Msg("Failed to update generation record")
	}

	writeJSON(w, http.StatusOK, video)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
