/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/exprtree/core/config"
	"github.com/google/exprtree/core/expr"
	"github.com/google/exprtree/core/protoexport"
	"github.com/google/exprtree/core/query"
	"github.com/google/exprtree/core/rendering"
	"github.com/google/exprtree/core/report"
	"github.com/google/exprtree/core/views"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	parsePath   = "/parse"
	apiPath     = "/api/parse"
	maxCacheLen = 512
)

// Server serves parse results as HTML pages and JSON
type Server struct {
	cfg      *config.Config
	renderer *rendering.TreeRenderer

	// Cache of parse results keyed by depth limit and expression text
	mu        sync.Mutex
	exprCache map[cacheKey]cacheEntry
}

type cacheKey struct {
	maxDepth int
	source   string
}

type cacheEntry struct {
	expr *expr.Expression
	err  error
}

// NewServer creates a new server with the given configuration
func NewServer(cfg *config.Config) (*Server, error) {
	renderer, err := rendering.NewTreeRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	return &Server{
		cfg:       cfg,
		renderer:  renderer,
		exprCache: make(map[cacheKey]cacheEntry),
	}, nil
}

// HandlerResult represents a request that was rejected before any output
// was written
type HandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

// effectiveDepth combines the configured limit with one requested in the
// URL. A request may tighten the limit but never lift it.
func (s *Server) effectiveDepth(q *query.Query) int {
	limit := s.cfg.Parser.MaxDepth
	if limit < 0 {
		limit = 0
	}
	if q.MaxDepth > 0 && (limit == 0 || q.MaxDepth < limit) {
		limit = q.MaxDepth
	}
	return limit
}

// compile parses q.Expr, reusing an earlier result for the same input
func (s *Server) compile(q *query.Query) (*expr.Expression, error) {
	key := cacheKey{maxDepth: s.effectiveDepth(q), source: q.Expr}

	s.mu.Lock()
	entry, ok := s.exprCache[key]
	s.mu.Unlock()
	if ok {
		return entry.expr, entry.err
	}

	e, err := expr.Compile(q.Expr, expr.WithMaxDepth(key.maxDepth))

	s.mu.Lock()
	if len(s.exprCache) >= maxCacheLen {
		s.exprCache = make(map[cacheKey]cacheEntry)
	}
	s.exprCache[key] = cacheEntry{expr: e, err: err}
	s.mu.Unlock()

	return e, err
}

func (s *Server) validate(q *query.Query) *HandlerResult {
	if _, err := report.ParseFormat(q.Format); err != nil {
		return &HandlerResult{Error: err, StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	if limit := s.cfg.Server.MaxExprBytes; limit > 0 && len(q.Expr) > limit {
		msg := fmt.Sprintf("expression is %d bytes, the limit is %d", len(q.Expr), limit)
		return &HandlerResult{StatusCode: http.StatusRequestEntityTooLarge, Message: msg}
	}
	return nil
}

// HandleParseRequest parses the expression named in the URL and renders the
// result page. Returns a result if the request is rejected, nil on success.
// A failed parse is not a rejected request: the page shows the error.
func (s *Server) HandleParseRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *HandlerResult {
	q := query.NewQuery(requestURL)
	if res := s.validate(q); res != nil {
		return res
	}

	e, err := s.compile(q)
	viewModel := views.BuildTreeViewModel(q, e, err)

	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, viewModel); err != nil {
		log.Printf("Template rendering error: %v", err)
		return &HandlerResult{Error: err}
	}
	return nil
}

// HandleLandingRequest renders the landing page
func (s *Server) HandleLandingRequest(w io.Writer, setHeader func(key, value string)) error {
	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderLanding(w, views.BuildLandingViewModel(parsePath)); err != nil {
		log.Printf("Landing page rendering error: %v", err)
		return err
	}
	return nil
}

// HandleAPIRequest parses the expression named in the URL and returns the
// HTTP status and JSON body to send.
func (s *Server) HandleAPIRequest(requestURL *url.URL) (int, []byte) {
	q := query.NewQuery(requestURL)
	if limit := s.cfg.Server.MaxExprBytes; limit > 0 && len(q.Expr) > limit {
		msg := fmt.Sprintf("expression is %d bytes, the limit is %d", len(q.Expr), limit)
		return s.apiFailure(http.StatusRequestEntityTooLarge, "TooLarge", msg, nil)
	}

	e, err := s.compile(q)
	if err != nil {
		var perr *expr.ParseError
		if !errors.As(err, &perr) {
			return s.apiFailure(http.StatusInternalServerError, "Error", err.Error(), nil)
		}
		return s.apiFailure(http.StatusUnprocessableEntity, perr.Kind.String(), perr.Error(), perr)
	}
	if err := protoexport.CheckDepth(e.AST()); err != nil {
		return s.apiFailure(http.StatusUnprocessableEntity, "TooDeep", err.Error(), nil)
	}

	body := &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok":     structpb.NewBoolValue(true),
		"source": structpb.NewStringValue(e.Source()),
		"depth":  structpb.NewNumberValue(float64(e.Depth())),
		"nodes":  structpb.NewNumberValue(float64(e.NodeCount())),
		"tree":   protoexport.ToValue(e.AST()),
	}}
	return s.marshalAPI(http.StatusOK, body)
}

func (s *Server) apiFailure(status int, kind, message string, perr *expr.ParseError) (int, []byte) {
	fields := map[string]*structpb.Value{
		"kind":    structpb.NewStringValue(kind),
		"message": structpb.NewStringValue(message),
	}
	if perr != nil {
		expected := make([]*structpb.Value, 0, len(perr.Expected))
		for _, exp := range perr.Expected {
			expected = append(expected, structpb.NewStringValue(exp))
		}
		fields["position"] = structpb.NewNumberValue(float64(perr.Pos))
		fields["line"] = structpb.NewNumberValue(float64(perr.Line))
		fields["column"] = structpb.NewNumberValue(float64(perr.Column))
		fields["expected"] = structpb.NewListValue(&structpb.ListValue{Values: expected})
	}
	body := &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok":    structpb.NewBoolValue(false),
		"error": structpb.NewStructValue(&structpb.Struct{Fields: fields}),
	}}
	return s.marshalAPI(status, body)
}

func (s *Server) marshalAPI(status int, body *structpb.Struct) (int, []byte) {
	data, err := protojson.Marshal(body)
	if err != nil {
		log.Printf("API encoding error: %v", err)
		return http.StatusInternalServerError, []byte(`{"ok":false}`)
	}
	return status, data
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.logged(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_ = s.HandleLandingRequest(w, w.Header().Set)
	}))

	mux.HandleFunc(parsePath, s.logged(func(w http.ResponseWriter, r *http.Request) {
		if res := s.HandleParseRequest(w, r.URL, w.Header().Set); res != nil && res.StatusCode != 0 {
			http.Error(w, res.Message, res.StatusCode)
		}
	}))

	mux.HandleFunc(apiPath, s.logged(func(w http.ResponseWriter, r *http.Request) {
		status, body := s.HandleAPIRequest(r.URL)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))

	return mux
}

// logged tags each request with an ID and logs its duration
func (s *Server) logged(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next(w, r)
		log.Printf("[%s] %s %s (%d bytes of query) in %s", id, r.Method, r.URL.Path, len(r.URL.RawQuery), time.Since(start))
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout.Duration,
		WriteTimeout: s.cfg.Server.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on http://%s", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
