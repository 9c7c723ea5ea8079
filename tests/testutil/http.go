// Package testutil holds helpers shared by the integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/constructora/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIClient sends JSON requests to an in-process handler
type APIClient struct {
	handler  http.Handler
	basePath string
	headers  map[string]string
}

// NewAPIClient creates a client for handler. Paths are relative to basePath.
func NewAPIClient(handler http.Handler, basePath string) *APIClient {
	return &APIClient{handler: handler, basePath: basePath, headers: map[string]string{}}
}

// WithHeader returns a copy of the client that always sends key: value
func (c *APIClient) WithHeader(key, value string) *APIClient {
	headers := make(map[string]string, len(c.headers)+1)
	for k, v := range c.headers {
		headers[k] = v
	}
	headers[key] = value
	return &APIClient{handler: c.handler, basePath: c.basePath, headers: headers}
}

// APIResponse is a decoded response envelope
type APIResponse struct {
	Status int
	Body   dto.Response
	Header http.Header
}

// Do sends one request. body is JSON encoded when not nil.
func (c *APIClient) Do(t *testing.T, method, path string, body any, headers ...string) *APIResponse {
	t.Helper()
	require.True(t, len(headers)%2 == 0, "headers must be key/value pairs")

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body), "Failed to marshal request body")
	}
	req := httptest.NewRequest(method, c.basePath+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for i := 0; i < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &APIResponse{Status: w.Code, Header: w.Header()}
	if w.Code != http.StatusNoContent && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp.Body), w.Body.String())
	}
	return resp
}

// Data returns the data object of a successful response
func (r *APIResponse) Data(t *testing.T) map[string]any {
	t.Helper()
	m, ok := r.Body.Data.(map[string]any)
	require.True(t, ok, "data is %T (status %d, error %+v)", r.Body.Data, r.Status, r.Body.Error)
	return m
}

// List returns the data array of a successful response
func (r *APIResponse) List(t *testing.T) []any {
	t.Helper()
	l, ok := r.Body.Data.([]any)
	require.True(t, ok, "data is %T (status %d, error %+v)", r.Body.Data, r.Status, r.Body.Error)
	return l
}

// RequireStatus fails the test unless the response has status
func RequireStatus(t *testing.T, r *APIResponse, status int) {
	t.Helper()
	require.Equal(t, status, r.Status, "error: %+v", r.Body.Error)
}

// AssertError asserts an error envelope with status and code
func AssertError(t *testing.T, r *APIResponse, status int, code string) {
	t.Helper()
	assert.Equal(t, status, r.Status)
	assert.False(t, r.Body.Success)
	if assert.NotNil(t, r.Body.Error, "expected error object in response") {
		assert.Equal(t, code, r.Body.Error.Code)
	}
}
