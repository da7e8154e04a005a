package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UpdatePerspectiveStatus(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.UpdatePerspectiveStatus(context.Background(), "p-123", PerspectiveCompleted)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/api/perspectives/p-123/status", gotPath)
	assert.Equal(t, map[string]string{"status": "completed"}, gotBody)
}

func TestClient_ListPerspectives(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/journeys/j-1/perspectives", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Perspective{
			{ID: "p-1", JourneyID: "j-1", Dimension: "architecture", Phase: "generate", Status: PerspectiveInProgress},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.ListPerspectives(context.Background(), "j-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, PerspectiveInProgress, got[0].Status)
}

func TestClient_ErrorExtractsDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Insufficient credits"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.UpdatePerspectiveStatus(context.Background(), "p-1", PerspectiveCompleted)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.Status)
	assert.Equal(t, "Insufficient credits", apiErr.Message)
}

func TestClient_ErrorFallsBackToStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListJourneys(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Message, "502")
}

func TestClient_TokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Journey{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func(o *Options) { o.Token = "sess-token" })
	_, err := c.ListJourneys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer sess-token", gotAuth)
	assert.Equal(t, "Bearer sess-token", c.Header().Get("Authorization"))
}

func TestClient_BoomerangURL(t *testing.T) {
	c := NewClient("https://app.example.com/")
	assert.Equal(t, "https://app.example.com/api/perspectives/p-9/boomerang", c.BoomerangURL("p-9"))
}
