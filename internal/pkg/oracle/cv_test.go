package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCVClientPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		require.Equal(t, "https://example.com/pothole.jpg", r.URL.Query().Get("img_url"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"prediction":"pothole","probability":0.94,"categories":["pothole","garbage"]}`))
	}))
	defer srv.Close()

	client := NewCVClient(srv.URL)
	result, err := client.Predict(context.Background(), "https://example.com/pothole.jpg")
	require.NoError(t, err)
	require.Equal(t, "pothole", result.Prediction)
	require.InDelta(t, 0.94, result.Probability, 1e-9)
}

func TestCVClientPredictServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Model not loaded"}`))
	}))
	defer srv.Close()

	client := NewCVClient(srv.URL)
	_, err := client.Predict(context.Background(), "https://example.com/x.jpg")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Model not loaded")
}

func TestFallbackVerdictIsConservative(t *testing.T) {
	v := FallbackVerdict()
	require.Equal(t, "Critical", v.RiskLevel)
	require.Equal(t, float64(95), v.Confidence)
	require.Contains(t, v.Reasoning, "unreachable")
}
