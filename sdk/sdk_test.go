package sdk_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jrsteele09/go-konan-sdk/auth"
	"github.com/jrsteele09/go-konan-sdk/internal/konanfake"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/jrsteele09/go-konan-sdk/metrics"
	"github.com/jrsteele09/go-konan-sdk/sdk"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server *konanfake.Server
	sdk    *sdk.KonanSDK
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	server := konanfake.NewServer()
	t.Cleanup(server.Close)

	s := sdk.New(
		sdk.WithAuthURL(server.URL),
		sdk.WithAPIURL(server.URL),
		sdk.WithHTTPClient(server.Client()),
		sdk.WithVerbose(true),
	)
	return &testFixture{server: server, sdk: s}
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.sdk.Login(context.Background(), f.server.Email, f.server.Password))
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "https://auth.konan.ai", sdk.DefaultAuthURL)
	assert.Equal(t, "https://api.konan.ai", sdk.DefaultAPIURL)
	assert.Nil(t, sdk.New().Session())
}

func TestVerboseKeepsLoggerLevel(t *testing.T) {
	server := konanfake.NewServer()
	t.Cleanup(server.Close)

	login := func(t *testing.T, verbose bool) string {
		t.Helper()
		var buf bytes.Buffer
		s := sdk.New(
			sdk.WithAuthURL(server.URL),
			sdk.WithAPIURL(server.URL),
			sdk.WithHTTPClient(server.Client()),
			sdk.WithLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel)),
			sdk.WithVerbose(verbose),
		)
		require.NoError(t, s.Login(context.Background(), server.Email, server.Password))
		return buf.String()
	}

	t.Run("quiet", func(t *testing.T) {
		assert.Empty(t, login(t, false))
	})

	t.Run("verbose", func(t *testing.T) {
		assert.Contains(t, login(t, true), `"level":"debug"`)
	})
}

func TestOperationsRequireLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, _, err := f.sdk.Predict(ctx, "d1", map[string]any{})
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = f.sdk.GetModels(ctx, "d1")
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	_, err = f.sdk.GetPredictions(ctx, "d1", konan.TimeWindow{})
	require.ErrorIs(t, err, auth.ErrNotLoggedIn)

	assert.Empty(t, f.server.Requests())
}

func TestLoginWithAPIKey(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.sdk.LoginWithAPIKey(context.Background(), f.server.APIKey))
	require.NotNil(t, f.sdk.Session())
	assert.Equal(t, f.server.Identity.Email, f.sdk.Session().Email)

	t.Run("bad key keeps the previous login", func(t *testing.T) {
		require.Error(t, f.sdk.LoginWithAPIKey(context.Background(), "wrong"))
		assert.NotNil(t, f.sdk.Session())
	})
}

func TestPredictAndFeedback(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	ctx := context.Background()
	d := f.server.Store.AddDeployment(gofakeit.AppName())

	features := map[string]any{"age": 42.0, "city": gofakeit.City()}
	predictionUUID, output, err := f.sdk.Predict(ctx, d.UUID, features)
	require.NoError(t, err)
	assert.NotEmpty(t, predictionUUID)
	assert.Equal(t, map[string]any{"echo": features}, output)
	assert.Equal(t, 0, f.server.Calls(konanfake.CallRefresh))

	result, err := f.sdk.Feedback(ctx, d.UUID, []konan.FeedbackSubmission{
		{PredictionUUID: predictionUUID, Target: "yes"},
		{PredictionUUID: "missing", Target: "no"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	assert.Equal(t, 1, result.Failure)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 404, result.Statuses[1].Status)
}

func TestEvaluate(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	d := f.server.Store.AddDeployment("eval")

	ms, err := f.sdk.Evaluate(context.Background(), d.UUID, konan.TimeWindow{
		StartTime: time.Now().Add(-24 * time.Hour),
		EndTime:   time.Now(),
	})
	require.NoError(t, err)
	require.Len(t, ms, 3)

	rmse, ok := metrics.Find(ms, "rmse")
	require.True(t, ok)
	assert.Equal(t, 2.3, rmse.Value())
	_, ok = metrics.Find(ms, "precision")
	assert.False(t, ok)
	accuracy, ok := metrics.Find(ms, "accuracy")
	require.True(t, ok)
	assert.IsType(t, metrics.Custom{}, accuracy)
}

func TestRefreshBeforeBusinessCall(t *testing.T) {
	ctx := context.Background()

	t.Run("expired access token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.server.SetTokenTTL(-time.Minute, time.Hour)
		f.login(t)
		f.server.SetTokenTTL(time.Hour, time.Hour)
		d := f.server.Store.AddDeployment("d")

		_, err := f.sdk.GetModels(ctx, d.UUID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.server.Calls(konanfake.CallRefresh))
		assert.Equal(t, 1, f.server.Calls(konanfake.CallLogin))
	})

	t.Run("both tokens expired", func(t *testing.T) {
		f := setupTestFixture(t)
		f.server.SetTokenTTL(-time.Minute, -time.Minute)
		f.login(t)
		f.server.SetTokenTTL(time.Hour, time.Hour)
		d := f.server.Store.AddDeployment("d")

		_, err := f.sdk.GetModels(ctx, d.UUID)
		require.NoError(t, err)
		assert.Equal(t, 0, f.server.Calls(konanfake.CallRefresh))
		assert.Equal(t, 2, f.server.Calls(konanfake.CallLogin))
	})
}

func TestDeploymentLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	ctx := context.Background()

	res, err := f.sdk.CreateDeployment(ctx, "churn", konan.DockerImage{URL: "registry/churn:1", ExposedPort: 8000}, nil, "")
	require.NoError(t, err)
	assert.False(t, res.HasErrors())
	require.NotNil(t, res.Model)
	assert.Equal(t, "churn", res.Model.Name)
	assert.Equal(t, konan.ModelStateLive, res.Model.State)

	t.Run("validation errors are returned, not raised", func(t *testing.T) {
		bad, err := f.sdk.CreateDeployment(ctx, "broken", konan.DockerImage{}, &konan.DockerCredentials{Username: "u", Password: "p"}, "broken-v1")
		require.NoError(t, err)
		require.Len(t, bad.Errors, 2)
		assert.Equal(t, konan.DeploymentErrorImage, bad.Errors[0].Field)
		assert.Equal(t, konan.DeploymentErrorExposedPort, bad.Errors[1].Field)
		assert.Equal(t, "broken-v1", bad.Model.Name)
	})

	challenger, err := f.sdk.CreateModel(ctx, res.Deployment.UUID, konan.ModelCreationRequest{
		Name:        "churn-v2",
		DockerImage: konan.DockerImage{URL: "registry/churn:2", ExposedPort: 8000},
	})
	require.NoError(t, err)
	assert.Equal(t, konan.ModelStateChallenger, challenger.State)

	models, err := f.sdk.GetModels(ctx, res.Deployment.UUID)
	require.NoError(t, err)
	assert.Len(t, models, 2)

	ok, err := f.sdk.DeleteModel(ctx, challenger.UUID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.sdk.DeleteDeployment(ctx, res.Deployment.UUID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.sdk.GetModels(ctx, res.Deployment.UUID)
	require.Error(t, err)
}

func TestCreateProject(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	d, err := f.sdk.CreateProject(context.Background(), "forecasting", "demand forecasts")
	require.NoError(t, err)
	assert.Equal(t, "forecasting", d.Name)
	assert.NotEmpty(t, d.UUID)
}

func TestGetPredictions(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	ctx := context.Background()
	d := f.server.Store.AddDeployment("listing")
	for i := 0; i < 5; i++ {
		_, _, err := f.sdk.Predict(ctx, d.UUID, map[string]any{"i": i})
		require.NoError(t, err)
	}

	p, err := f.sdk.GetPredictions(ctx, d.UUID, konan.TimeWindow{StartTime: time.Now().Add(-time.Hour), EndTime: time.Now()})
	require.NoError(t, err)

	pages := 0
	var all []konan.Prediction
	for items, err := range p.Pages(ctx) {
		require.NoError(t, err)
		pages++
		all = append(all, items...)
	}
	assert.Equal(t, 3, pages)
	assert.Len(t, all, 5)
	assert.NotNil(t, all[0].Features)

	listing := 0
	for _, r := range f.server.Requests() {
		if r.Path == "/deployments/"+d.UUID+"/predictions/" {
			listing++
			if listing > 1 {
				assert.NotContains(t, r.RawQuery, "start_time")
			} else {
				assert.Contains(t, r.RawQuery, "start_time")
			}
		}
	}
	assert.Equal(t, 3, listing)

	t.Run("single raw page", func(t *testing.T) {
		page, err := f.sdk.GetPredictionsPage(ctx, d.UUID, konan.TimeWindow{})
		require.NoError(t, err)
		require.NotNil(t, page.Count)
		assert.Equal(t, 5, *page.Count)
		assert.NotNil(t, page.Next)
		assert.Len(t, page.Results, 2)
	})
}
