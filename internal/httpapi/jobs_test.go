package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nervecenter/nerve-center/internal/coordination"
	"github.com/nervecenter/nerve-center/internal/output"
	"github.com/nervecenter/nerve-center/internal/store/localstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := localstore.Open(afero.NewMemMapFs(), "/state/nerve.json")
	require.NoError(t, err)
	facade := coordination.New(st, nil, "", afero.NewMemMapFs())
	return New(Config{AppSessionSecret: "test-secret"}, facade, nil)
}

func doRequest(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer sk_sc_test")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) output.Response {
	t.Helper()
	var resp output.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestListJobsRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/?projectName=demo", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostAndListJobs(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/v1/jobs/?projectName=demo", map[string]any{
		"action":   "post",
		"title":    "write tests",
		"priority": "high",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	rec = doRequest(t, srv, http.MethodGet, "/v1/jobs/?projectName=demo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	jobs, ok := data["jobs"].([]any)
	require.True(t, ok)
	require.Len(t, jobs, 1)
}

func TestPostJobsActionUnknownAction(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/v1/jobs/?projectName=demo", map[string]any{
		"action": "nonsense",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "BAD_REQUEST", resp.ErrorCode)
}

func TestListJobsRequiresProjectName(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/v1/jobs/", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/v1/verify", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
