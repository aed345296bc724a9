package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/parsimony/pkg/errors"
	pio "github.com/matzehuels/parsimony/pkg/io"
	"github.com/matzehuels/parsimony/pkg/pipeline"
	"github.com/matzehuels/parsimony/pkg/store"
)

// RunSummary is the response for a created or listed run.
type RunSummary struct {
	ID         string    `json:"id"`
	Score      int       `json:"score"`
	Topologies int       `json:"topologies"`
	Leaves     int       `json:"leaves"`
	Columns    int       `json:"columns"`
	Truncated  bool      `json:"truncated,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunDetail is the response for a single run.
type RunDetail struct {
	RunSummary
	InputHash string          `json:"input_hash"`
	Result    json.RawMessage `json:"result"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func summarize(run *store.Run) RunSummary {
	return RunSummary{
		ID:         run.ID,
		Score:      run.Score,
		Topologies: run.Topologies,
		Leaves:     run.Leaves,
		Columns:    run.Columns,
		Truncated:  run.Truncated,
		CreatedAt:  run.CreatedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	opts, err := s.runOptions(r, data)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	in, inputHash, err := s.cfg.Runner.Parse(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	v, err, shared := s.runs.Do(runKey(inputHash, opts), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.cfg.RunTimeout)
		defer cancel()

		res, err := s.cfg.Runner.Search(ctx, in, inputHash, opts)
		if err != nil {
			return nil, err
		}
		encoded, err := pio.MarshalResult(res)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode result")
		}
		run := store.NewRun(inputHash, res, encoded)
		if err := s.cfg.Store.Save(ctx, run); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "save run")
		}
		return run, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	run := v.(*store.Run)

	s.cfg.Logger.Info("run created",
		"id", run.ID,
		"score", run.Score,
		"topologies", run.Topologies,
		"shared", shared)
	w.Header().Set("Location", "/v1/runs/"+run.ID)
	writeJSON(w, http.StatusCreated, summarize(run))
}

// runOptions builds pipeline options from the request body and query.
// runKey identifies requests that may share one search. Worker count does
// not change the result; a refresh must not join a run that reads the cache.
func runKey(inputHash string, opts pipeline.Options) string {
	return fmt.Sprintf("%s:%d:%d:%t", inputHash, opts.MaxFrontier, opts.MaxIterations, opts.Refresh)
}

func (s *Server) runOptions(r *http.Request, body []byte) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Source:        string(body),
		Syntax:        q.Get("syntax"),
		Workers:       s.cfg.Workers,
		MaxFrontier:   s.cfg.MaxFrontier,
		MaxIterations: s.cfg.MaxIterations,
		Refresh:       q.Get("refresh") == "true",
		Logger:        s.cfg.Logger,
	}
	for name, dst := range map[string]*int{
		"workers":        &opts.Workers,
		"max_frontier":   &opts.MaxFrontier,
		"max_iterations": &opts.MaxIterations,
	} {
		if raw := q.Get(name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a non-negative integer, got %q", name, raw)
			}
			*dst = n
		}
	}
	if len(body) == 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	if err := pipeline.ValidateSyntax(opts.Syntax); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid syntax")
	}
	return opts, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}
	runs, err := s.cfg.Store.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]RunSummary, len(runs))
	for i, run := range runs {
		out[i] = summarize(run)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RunDetail{
		RunSummary: summarize(run),
		InputHash:  run.InputHash,
		Result:     run.Result,
	})
}

func (s *Server) handleGetNewick(w http.ResponseWriter, r *http.Request) {
	run, err := s.cfg.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := pio.UnmarshalResult(run.Result)
	if err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInternal, err, "decode run %s", run.ID))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := pio.WriteNewick(w, res, r.URL.Query().Get("lengths") == "true"); err != nil {
		s.cfg.Logger.Warn("write newick", "id", run.ID, "err", err)
	}
}

// =============================================================================
// Responses
// =============================================================================

// fail maps err to a status code and writes it as an ErrorResponse.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if stderrors.Is(err, context.DeadlineExceeded) {
		msg = "search exceeded the run timeout"
	}
	if status >= http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeError(w, status, code, msg)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if errors.IsStructural(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeFrontierExhausted:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
