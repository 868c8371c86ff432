package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/go-konan-sdk/internal/config"
	"github.com/jrsteele09/go-konan-sdk/metrics"
	"github.com/jrsteele09/go-konan-sdk/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type input struct {
	Values []float64 `json:"values"`
}

// sumModel predicts the sum of its inputs
type sumModel struct {
	panics bool
}

func (m sumModel) Predict(_ context.Context, in input) (float64, error) {
	if m.panics {
		panic("boom")
	}
	if len(in.Values) == 0 {
		return 0, errors.New("no values")
	}
	total := 0.0
	for _, v := range in.Values {
		total += v
	}
	return total, nil
}

func (sumModel) Evaluate(_ context.Context, data []service.EvaluationPair[float64]) ([]metrics.Metric, error) {
	errSum := 0.0
	for _, d := range data {
		diff := d.Prediction - d.Target
		if diff < 0 {
			diff = -diff
		}
		errSum += diff
	}
	return []metrics.Metric{
		metrics.New(metrics.NameMAE, errSum/float64(len(data))),
		metrics.NewCustom("count", len(data)),
	}, nil
}

func newTestServer(t *testing.T, model service.Model[input, float64]) *httptest.Server {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("KONAN_ENV", "test")
	t.Setenv("KONAN_ALLOWED_ORIGINS", "https://app.konan.ai")

	cfg, err := config.New()
	require.NoError(t, err)

	s, err := service.New(model, cfg, service.WithLogger[input, float64](zerolog.Nop()))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"GET /healthz", "POST /predict", "POST /evaluate", "GET /metrics", "OPTIONS /predict", "OPTIONS /evaluate"}, s.Routes())

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, sumModel{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "\n", string(body))
	assert.NotEmpty(t, resp.Header.Get(service.RequestIDHeader))
}

func TestPredict(t *testing.T) {
	srv := newTestServer(t, sumModel{})

	t.Run("ok", func(t *testing.T) {
		resp, body := post(t, srv.URL+"/predict", `{"values":[1,2,3.5]}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `6.5`, body)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, body := post(t, srv.URL+"/predict", `{"values":`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, body, "detail")
	})

	t.Run("model error", func(t *testing.T) {
		resp, body := post(t, srv.URL+"/predict", `{"values":[]}`)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, body, "no values")
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/predict")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestPredictPanicIsRecovered(t *testing.T) {
	srv := newTestServer(t, sumModel{panics: true})

	resp, body := post(t, srv.URL+"/predict", `{"values":[1]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "internal server error")
}

func TestEvaluate(t *testing.T) {
	srv := newTestServer(t, sumModel{})

	resp, body := post(t, srv.URL+"/evaluate", `{"data":[{"prediction":1,"target":2},{"prediction":5,"target":2}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	var out struct {
		Results []struct {
			MetricName  string `json:"metric_name"`
			MetricValue any    `json:"metric_value"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "mae", out.Results[0].MetricName)
	assert.Equal(t, 2.0, out.Results[0].MetricValue)
	assert.Equal(t, "count", out.Results[1].MetricName)
	assert.Equal(t, 2.0, out.Results[1].MetricValue)
}

func TestCors(t *testing.T) {
	srv := newTestServer(t, sumModel{})

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.konan.ai")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://app.konan.ai", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCorsPreflight(t *testing.T) {
	srv := newTestServer(t, sumModel{})

	for _, route := range []string{"/predict", "/evaluate"} {
		t.Run(route, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, srv.URL+route, nil)
			require.NoError(t, err)
			req.Header.Set("Origin", "https://app.konan.ai")
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			req.Header.Set("Access-Control-Request-Headers", "content-type")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)
			assert.Equal(t, "https://app.konan.ai", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
			assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Content-Type")
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, sumModel{})
	post(t, srv.URL+"/predict", `{"values":[1]}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Contains(t, string(body), `konan_service_requests_total{method="POST",route="/predict",status="200"} 1`)
	assert.Contains(t, string(body), "konan_service_request_duration_seconds")
}

func TestNewValidation(t *testing.T) {
	_, err := service.New[input, float64](nil, nil)
	require.Error(t, err)
}
