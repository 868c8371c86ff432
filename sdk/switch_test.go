package sdk_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-konan-sdk/internal/konanfake"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/jrsteele09/go-konan-sdk/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type switchFixture struct {
	*testFixture
	deploymentUUID string
	live           konan.Model
	challenger     konan.Model
}

func setupSwitchFixture(t *testing.T) *switchFixture {
	t.Helper()
	f := setupTestFixture(t)
	f.login(t)

	d := f.server.Store.AddDeployment("switching")
	live, err := f.server.Store.AddModel(d.UUID, "v1", konan.ModelStateLive)
	require.NoError(t, err)
	challenger, err := f.server.Store.AddModel(d.UUID, "v2", konan.ModelStateChallenger)
	require.NoError(t, err)

	return &switchFixture{testFixture: f, deploymentUUID: d.UUID, live: live, challenger: challenger}
}

func (f *switchFixture) states(t *testing.T) map[string]konan.ModelState {
	t.Helper()
	models, err := f.server.Store.Models(f.deploymentUUID)
	require.NoError(t, err)
	out := map[string]konan.ModelState{}
	for _, m := range models {
		out[m.UUID] = m.State
	}
	return out
}

func TestSwitchModelState(t *testing.T) {
	ctx := context.Background()

	t.Run("promote challenger demotes the live model", func(t *testing.T) {
		f := setupSwitchFixture(t)
		require.NoError(t, f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.challenger.UUID, konan.ModelStateLive, ""))

		states := f.states(t)
		assert.Equal(t, konan.ModelStateLive, states[f.challenger.UUID])
		assert.Equal(t, konan.ModelStateChallenger, states[f.live.UUID])
		assert.Equal(t, 1, f.server.Calls(konanfake.CallSwitchLive))
	})

	t.Run("demote live model with replacement", func(t *testing.T) {
		f := setupSwitchFixture(t)
		require.NoError(t, f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.live.UUID, konan.ModelStateDisabled, f.challenger.UUID))

		states := f.states(t)
		assert.Equal(t, konan.ModelStateDisabled, states[f.live.UUID])
		assert.Equal(t, konan.ModelStateLive, states[f.challenger.UUID])
	})

	t.Run("demote live model without replacement", func(t *testing.T) {
		f := setupSwitchFixture(t)
		err := f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.live.UUID, konan.ModelStateChallenger, "")
		require.ErrorIs(t, err, sdk.ErrNewLiveModelRequired)

		err = f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.live.UUID, konan.ModelStateChallenger, f.live.UUID)
		require.ErrorIs(t, err, sdk.ErrNewLiveModelRequired)

		err = f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.live.UUID, konan.ModelStateChallenger, "ghost")
		require.ErrorIs(t, err, sdk.ErrModelNotFound)
		assert.Equal(t, 0, f.server.Calls(konanfake.CallSwitchLive))
	})

	t.Run("non live change", func(t *testing.T) {
		f := setupSwitchFixture(t)
		require.NoError(t, f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.challenger.UUID, konan.ModelStateDisabled, ""))

		assert.Equal(t, konan.ModelStateDisabled, f.states(t)[f.challenger.UUID])
		assert.Equal(t, 1, f.server.Calls(konanfake.CallSwitchModel))
		assert.Equal(t, 0, f.server.Calls(konanfake.CallSwitchLive))
	})

	t.Run("unknown model", func(t *testing.T) {
		f := setupSwitchFixture(t)
		err := f.sdk.SwitchModelState(ctx, f.deploymentUUID, "ghost", konan.ModelStateLive, "")
		require.ErrorIs(t, err, sdk.ErrModelNotFound)
	})

	t.Run("same state", func(t *testing.T) {
		f := setupSwitchFixture(t)
		err := f.sdk.SwitchModelState(ctx, f.deploymentUUID, f.challenger.UUID, konan.ModelStateChallenger, "")
		require.ErrorIs(t, err, sdk.ErrSameState)
	})
}
