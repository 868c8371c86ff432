package endpoints

import "github.com/jrsteele09/go-konan-sdk/konan"

// DeleteModel removes a single model.
type DeleteModel struct{}

var _ Codec[struct{}, bool] = DeleteModel{}

func (DeleteModel) Descriptor() Descriptor {
	return Descriptor{Name: "delete-model", Path: RouteResource, Operation: DELETE, RequiresAuth: true, Scope: ScopeModel, DiscardBody: true}
}

func (DeleteModel) PrepareRequest(struct{}) (*Request, error) {
	return &Request{}, nil
}

func (DeleteModel) ProcessResponse(*Response) (bool, error) {
	return true, nil
}

// SwitchNonLiveModel moves a model between the non-live states.
type SwitchNonLiveModel struct{}

var _ Codec[konan.ModelState, struct{}] = SwitchNonLiveModel{}

func (SwitchNonLiveModel) Descriptor() Descriptor {
	return Descriptor{Name: "switch-model-nonlive", Path: RouteSwitch, Operation: POST, RequiresAuth: true, Scope: ScopeModel, DiscardBody: true}
}

func (SwitchNonLiveModel) PrepareRequest(state konan.ModelState) (*Request, error) {
	return &Request{JSON: map[string]any{"switch_to": state.String()}}, nil
}

func (SwitchNonLiveModel) ProcessResponse(*Response) (struct{}, error) {
	return struct{}{}, nil
}
