package sdk

import (
	"context"

	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/pkg/errors"
)

var (
	ErrModelNotFound        = errors.New("model not found in deployment")
	ErrSameState            = errors.New("model is already in the requested state")
	ErrNewLiveModelRequired = errors.New("a different existing model must be given to replace the live model")
)

// SwitchModelState moves a model to switchTo.
//
// Demoting the live model needs newLiveModelUUID, another model of the same
// deployment that is promoted in its place. Promoting a model to live demotes
// the current live model to challenger. Anything else is a plain state change
// of the model.
func (s *KonanSDK) SwitchModelState(ctx context.Context, deploymentUUID, modelUUID string, switchTo konan.ModelState, newLiveModelUUID string) error {
	models, err := s.GetModels(ctx, deploymentUUID)
	if err != nil {
		return errors.Wrap(err, "[KonanSDK.SwitchModelState] failed to list models")
	}

	current, ok := konan.FindModelState(modelUUID, models)
	if !ok {
		return errors.Wrapf(ErrModelNotFound, "[KonanSDK.SwitchModelState] %s", modelUUID)
	}
	if current == switchTo {
		return errors.Wrapf(ErrSameState, "[KonanSDK.SwitchModelState] %s is %s", modelUUID, current)
	}

	switch {
	case current == konan.ModelStateLive:
		if newLiveModelUUID == "" || newLiveModelUUID == modelUUID {
			return errors.Wrap(ErrNewLiveModelRequired, "[KonanSDK.SwitchModelState]")
		}
		if _, ok := konan.FindModelState(newLiveModelUUID, models); !ok {
			return errors.Wrapf(ErrModelNotFound, "[KonanSDK.SwitchModelState] %s", newLiveModelUUID)
		}
		return s.switchLive(ctx, deploymentUUID, konan.LiveModelSwitchState{SwitchTo: switchTo, NewLiveModelUUID: newLiveModelUUID})

	case switchTo == konan.ModelStateLive:
		return s.switchLive(ctx, deploymentUUID, konan.LiveModelSwitchState{SwitchTo: konan.ModelStateChallenger, NewLiveModelUUID: modelUUID})

	default:
		return s.switchNonLive(ctx, modelUUID, switchTo)
	}
}
