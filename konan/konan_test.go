package konan_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelState(t *testing.T) {
	tests := []struct {
		in   string
		want konan.ModelState
	}{
		{"live", konan.ModelStateLive},
		{"challenger", konan.ModelStateChallenger},
		{"disabled", konan.ModelStateDisabled},
		{"shadow", konan.ModelStateOther},
		{"", konan.ModelStateOther},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, konan.ParseModelState(tt.in))
		})
	}
}

func TestParseDeploymentErrorType(t *testing.T) {
	assert.Equal(t, konan.DeploymentErrorImage, konan.ParseDeploymentErrorType("image"))
	assert.Equal(t, konan.DeploymentErrorHealthEndpoint, konan.ParseDeploymentErrorType("health_endpoint"))
	assert.Equal(t, konan.DeploymentErrorExposedPort, konan.ParseDeploymentErrorType("exposed_port"))
	assert.Equal(t, konan.DeploymentErrorOther, konan.ParseDeploymentErrorType("new_error"))
}

func TestParseTime(t *testing.T) {
	t.Run("with offset", func(t *testing.T) {
		got, err := konan.ParseTime("2023-04-05T10:11:12.5+02:00")
		require.NoError(t, err)
		assert.True(t, got.Equal(time.Date(2023, 4, 5, 8, 11, 12, 500_000_000, time.UTC)))
	})

	t.Run("naive is utc", func(t *testing.T) {
		got, err := konan.ParseTime("2023-04-05T10:11:12.123456")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 4, 5, 10, 11, 12, 123_456_000, time.UTC), got)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := konan.ParseTime("yesterday")
		require.Error(t, err)
	})
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "2023-01-02T03:04:05Z", konan.FormatTime(time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestFindModels(t *testing.T) {
	models := []konan.Model{
		{UUID: "m1", State: konan.ModelStateChallenger},
		{UUID: "m2", State: konan.ModelStateLive},
	}

	state, ok := konan.FindModelState("m1", models)
	require.True(t, ok)
	assert.Equal(t, konan.ModelStateChallenger, state)

	_, ok = konan.FindModelState("missing", models)
	assert.False(t, ok)

	live, ok := konan.FindLiveModel(models)
	require.True(t, ok)
	assert.Equal(t, "m2", live)

	_, ok = konan.FindLiveModel(models[:1])
	assert.False(t, ok)
}
