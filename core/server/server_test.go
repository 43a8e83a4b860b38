/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors
*/

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/exprtree/core/config"
	"github.com/google/exprtree/core/protoexport"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewServer(cfg)
	require.NoError(t, err)
	return s
}

func mustURL(t *testing.T, path string, params url.Values) *url.URL {
	t.Helper()
	u, err := url.Parse(path + "?" + params.Encode())
	require.NoError(t, err)
	return u
}

func TestHandleParseRequest(t *testing.T) {
	s := newTestServer(t, nil)

	var buf bytes.Buffer
	headers := map[string]string{}
	res := s.HandleParseRequest(&buf, mustURL(t, "/parse", url.Values{"expr": {"2+3*4"}}), func(k, v string) {
		headers[k] = v
	})
	require.Nil(t, res)
	require.Equal(t, "text/html; charset=utf-8", headers["Content-Type"])

	body := buf.String()
	require.Contains(t, body, "Multiply")
	require.Contains(t, body, "NumberLiteral(4)")
	require.Contains(t, body, "depth 3, 5 nodes")
}

func TestHandleParseRequestShowsParseError(t *testing.T) {
	s := newTestServer(t, nil)

	var buf bytes.Buffer
	res := s.HandleParseRequest(&buf, mustURL(t, "/parse", url.Values{"expr": {"3 3"}}), func(string, string) {})
	require.Nil(t, res)
	require.Contains(t, buf.String(), "TrailingInput")
	require.Contains(t, buf.String(), "line 1, column 3")
}

func TestHandleParseRequestRejects(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Server.MaxExprBytes = 8 })

	tests := []struct {
		name   string
		params url.Values
		status int
	}{
		{"unknown format", url.Values{"expr": {"1"}, "format": {"xml"}}, http.StatusBadRequest},
		{"too large", url.Values{"expr": {"1+2+3+4+5"}}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			res := s.HandleParseRequest(&buf, mustURL(t, "/parse", tt.params), func(string, string) {})
			require.NotNil(t, res)
			require.Equal(t, tt.status, res.StatusCode)
			require.NotEmpty(t, res.Message)
			require.Zero(t, buf.Len())
		})
	}
}

func TestEffectiveDepth(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Parser.MaxDepth = 10 })

	status, _ := s.HandleAPIRequest(mustURL(t, "/api/parse", url.Values{"expr": {"---1"}, "max_depth": {"3"}}))
	require.Equal(t, http.StatusUnprocessableEntity, status)

	// A request cannot lift the configured limit.
	status, _ = s.HandleAPIRequest(mustURL(t, "/api/parse", url.Values{"expr": {strings.Repeat("-", 12) + "1"}, "max_depth": {"100"}}))
	require.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = s.HandleAPIRequest(mustURL(t, "/api/parse", url.Values{"expr": {"--1"}, "max_depth": {"3"}}))
	require.Equal(t, http.StatusOK, status)
}

func TestHandleAPIRequest(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.HandleAPIRequest(mustURL(t, "/api/parse", url.Values{"expr": {"8 / -2"}}))
	require.Equal(t, http.StatusOK, status)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, true, got["ok"])
	require.Equal(t, float64(3), got["depth"])
	require.Equal(t, float64(4), got["nodes"])
	tree := got["tree"].(map[string]any)
	require.Equal(t, "Divide", tree["kind"])
}

func TestHandleAPIRequestParseError(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := s.HandleAPIRequest(mustURL(t, "/api/parse", url.Values{"expr": {"~-1"}}))
	require.Equal(t, http.StatusUnprocessableEntity, status)

	var got struct {
		OK    bool `json:"ok"`
		Error struct {
			Kind     string   `json:"kind"`
			Message  string   `json:"message"`
			Line     int      `json:"line"`
			Column   int      `json:"column"`
			Expected []string `json:"expected"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	require.False(t, got.OK)
	require.Equal(t, "UnexpectedInput", got.Error.Kind)
	require.Equal(t, 1, got.Error.Line)
	require.Equal(t, 2, got.Error.Column)
	require.Equal(t, []string{"'~'", "digit"}, got.Error.Expected)
}

func TestHandler(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tests := []struct {
		path        string
		status      int
		contentType string
	}{
		{"/", http.StatusOK, "text/html; charset=utf-8"},
		{"/parse?expr=1%2B2", http.StatusOK, "text/html; charset=utf-8"},
		{"/parse?expr=1&format=xml", http.StatusBadRequest, "text/plain; charset=utf-8"},
		{"/api/parse?expr=1%2B2", http.StatusOK, "application/json"},
		{"/api/parse?expr=%2B", http.StatusUnprocessableEntity, "application/json"},
		{"/nowhere", http.StatusNotFound, "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			require.NotEmpty(t, resp.Header.Get("X-Request-Id"))
		})
	}
}

func TestCompileCachesResults(t *testing.T) {
	s := newTestServer(t, nil)
	u := mustURL(t, "/api/parse", url.Values{"expr": {"1*2"}})

	_, first := s.HandleAPIRequest(u)
	_, second := s.HandleAPIRequest(u)
	require.Len(t, s.exprCache, 1)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	require.Equal(t, a, b)
}

func TestHandleAPIRequestTooDeep(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) {
		cfg.Parser.MaxDepth = -1
		cfg.Server.MaxExprBytes = 0
	})

	status, body := s.HandleAPIRequest(mustURL(t, "/api/parse", url.Values{"expr": {strings.Repeat("-", protoexport.MaxDepth) + "1"}}))
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.Contains(t, string(body), "TooDeep")
}

func TestHandleParseRequestDeepTreeFormat(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.Parser.MaxDepth = -1 })

	var buf bytes.Buffer
	res := s.HandleParseRequest(&buf, mustURL(t, "/parse", url.Values{"expr": {strings.Repeat("~", 5000) + "1"}}), func(string, string) {})
	require.Nil(t, res)
	require.Contains(t, buf.String(), "RenderError")
}
