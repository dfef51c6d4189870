package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/common/logger"
	"decree-workers/internal/models"
)

type fakeDecrees map[string]models.Decree

func (f fakeDecrees) Get(_ context.Context, id string) (models.Decree, error) {
	d, ok := f[id]
	if !ok {
		return models.Decree{}, apperrors.NewDecreeNotFoundError(id)
	}
	return d, nil
}

func (f fakeDecrees) ListByCandidate(_ context.Context, candidateID string) ([]models.Decree, error) {
	if candidateID == "broken" {
		return nil, errors.New("connection reset")
	}
	var out []models.Decree
	for _, d := range f {
		if d.CandidateID == candidateID {
			out = append(out, d)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, checks map[string]CheckFunc) *httptest.Server {
	decrees := fakeDecrees{
		"0b7f5c1e-4c1a-4a55-9a36-6d2f2b1d7d10": {
			ID:          "0b7f5c1e-4c1a-4a55-9a36-6d2f2b1d7d10",
			CandidateID: "c-1",
			Category:    models.CategoryGTY,
			OwnerName:   "Siti Aminah",
			Number:      "0007/SK/III/2024",
			IssuedAt:    time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			Status:      models.DecreeStatusActive,
		},
	}
	srv := httptest.NewServer(NewHandler(decrees, checks, logger.NewTestLogger(t)).Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, into interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp.StatusCode
}

func TestVerify(t *testing.T) {
	srv := newTestServer(t, nil)

	var body verification
	status := getJSON(t, srv.URL+"/verify/0b7f5c1e-4c1a-4a55-9a36-6d2f2b1d7d10", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0007/SK/III/2024", body.Number)
	assert.Equal(t, "Siti Aminah", body.OwnerName)
	assert.Equal(t, "2024-03-05", body.IssuedAt)
	assert.Equal(t, "5 Maret 2024", body.IssuedAtText)
	assert.True(t, body.Valid)
}

func TestVerify_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	var body map[string]string
	status := getJSON(t, srv.URL+"/verify/unknown", &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "DECREE_NOT_FOUND", body["code"])
}

func TestCandidateDecrees(t *testing.T) {
	srv := newTestServer(t, nil)

	var body struct {
		Decrees []verification `json:"decrees"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/candidates/c-1/decrees", &body))
	require.Len(t, body.Decrees, 1)
	assert.Equal(t, "GTY", body.Decrees[0].Category)

	var failed map[string]string
	assert.Equal(t, http.StatusInternalServerError, getJSON(t, srv.URL+"/candidates/broken/decrees", &failed))
	assert.Equal(t, "INTERNAL_ERROR", failed["code"])
}

func TestHealthAndReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	srv := newTestServer(t, map[string]CheckFunc{"postgres": ok, "redis": ok})

	var health map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &health))
	assert.Equal(t, "ok", health["status"])

	var ready struct {
		Checks []checkResult `json:"checks"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/ready", &ready))
	require.Len(t, ready.Checks, 2)
	assert.Equal(t, "postgres", ready.Checks[0].Name)
}

func TestReady_DependencyDown(t *testing.T) {
	srv := newTestServer(t, map[string]CheckFunc{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	var ready struct {
		Checks []checkResult `json:"checks"`
	}
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/ready", &ready))
	assert.Equal(t, "down", ready.Checks[1].Status)
	assert.Contains(t, ready.Checks[1].Error, "refused")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
