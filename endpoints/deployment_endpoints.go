package endpoints

import (
	"sort"

	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/jrsteele09/go-konan-sdk/metrics"
	"github.com/pkg/errors"
)

// Paths below the deployment or model prefix.
const (
	RoutePredict     = "/predict/"
	RouteEvaluate    = "/evaluate/"
	RouteFeedback    = "/predictions/feedback/"
	RoutePredictions = "/predictions/"
	RouteModels      = "/models/"
	RouteSwitch      = "/switch/"
	RouteResource    = "/"
	RouteDeployments = "/deployments/"
)

// Predict sends an input to a deployment's live model. The input is sent as
// the request body unchanged.
type Predict struct{}

var _ Codec[any, *konan.Prediction] = Predict{}

func (Predict) Descriptor() Descriptor {
	return Descriptor{Name: "predict", Path: RoutePredict, Operation: POST, RequiresAuth: true, Scope: ScopeDeployment}
}

func (Predict) PrepareRequest(input any) (*Request, error) {
	return &Request{JSON: input}, nil
}

func (Predict) ProcessResponse(r *Response) (*konan.Prediction, error) {
	id, err := lookupString(r.JSON, "prediction_uuid")
	if err != nil {
		return nil, err
	}
	output, ok := r.JSON["output"]
	if !ok {
		return nil, errors.Wrap(ErrMissingField, "output")
	}
	return &konan.Prediction{UUID: id, Output: output}, nil
}

// Evaluate computes the live model's metrics over a time window.
type Evaluate struct{}

var _ Codec[konan.TimeWindow, []metrics.Metric] = Evaluate{}

func (Evaluate) Descriptor() Descriptor {
	return Descriptor{Name: "evaluate", Path: RouteEvaluate, Operation: POST, RequiresAuth: true, Scope: ScopeDeployment}
}

func (Evaluate) PrepareRequest(w konan.TimeWindow) (*Request, error) {
	return &Request{JSON: map[string]any{
		"start_time": konan.FormatTime(w.StartTime),
		"end_time":   konan.FormatTime(w.EndTime),
	}}, nil
}

// ProcessResponse drops null predefined metrics and returns the rest sorted by
// name, followed by the custom metrics in server order.
func (Evaluate) ProcessResponse(r *Response) ([]metrics.Metric, error) {
	body, err := lookupMap(r.JSON, "metrics")
	if err != nil {
		return nil, err
	}

	var out []metrics.Metric
	if body["predefined"] != nil {
		predefined, err := lookupMap(body, "predefined")
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(predefined))
		for name, value := range predefined {
			if value != nil {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, metrics.New(name, predefined[name]))
		}
	}

	if body["custom"] != nil {
		custom, err := lookupSlice(body, "custom")
		if err != nil {
			return nil, err
		}
		for _, item := range custom {
			entry, err := asObject(item, "custom")
			if err != nil {
				return nil, err
			}
			name, err := lookupString(entry, "metric_name")
			if err != nil {
				return nil, err
			}
			out = append(out, metrics.NewCustom(name, entry["metric_value"]))
		}
	}
	return out, nil
}

// Feedback submits ground truth for earlier predictions.
type Feedback struct{}

var _ Codec[[]konan.FeedbackSubmission, *konan.FeedbacksResult] = Feedback{}

func (Feedback) Descriptor() Descriptor {
	return Descriptor{Name: "feedback", Path: RouteFeedback, Operation: POST, RequiresAuth: true, Scope: ScopeDeployment}
}

func (Feedback) PrepareRequest(submissions []konan.FeedbackSubmission) (*Request, error) {
	items := make([]map[string]any, 0, len(submissions))
	for _, s := range submissions {
		items = append(items, map[string]any{
			"prediction_uuid": s.PredictionUUID,
			"target":          s.Target,
		})
	}
	return &Request{JSON: map[string]any{"feedback": items}}, nil
}

func (Feedback) ProcessResponse(r *Response) (*konan.FeedbacksResult, error) {
	data, err := lookupSlice(r.JSON, "data")
	if err != nil {
		return nil, err
	}
	result := &konan.FeedbacksResult{Statuses: make([]konan.FeedbackStatus, 0, len(data))}
	for _, item := range data {
		entry, err := asObject(item, "data")
		if err != nil {
			return nil, err
		}
		var status konan.FeedbackStatus
		if status.PredictionUUID, err = lookupString(entry, "prediction_uuid"); err != nil {
			return nil, err
		}
		if status.Status, err = lookupInt(entry, "status"); err != nil {
			return nil, err
		}
		if status.Message, err = lookupString(entry, "message"); err != nil {
			return nil, err
		}
		result.Statuses = append(result.Statuses, status)
	}
	if result.Success, err = lookupInt(r.JSON, "success"); err != nil {
		return nil, err
	}
	if result.Failure, err = lookupInt(r.JSON, "failure"); err != nil {
		return nil, err
	}
	if result.Total, err = lookupInt(r.JSON, "total"); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateDeployment creates a deployment together with its first model.
type CreateDeployment struct{}

var _ Codec[konan.DeploymentCreationRequest, *konan.DeploymentCreationResponse] = CreateDeployment{}

func (CreateDeployment) Descriptor() Descriptor {
	return Descriptor{Name: "create-deployment", Path: RouteDeployments, Operation: POST, RequiresAuth: true}
}

func (CreateDeployment) PrepareRequest(req konan.DeploymentCreationRequest) (*Request, error) {
	body := map[string]any{
		"deployment_name": req.Name,
		"model_name":      req.Model.Name,
		"image_url":       req.Model.DockerImage.URL,
		"exposed_port":    req.Model.DockerImage.ExposedPort,
	}
	addDockerCredentials(body, req.Model.DockerCredentials)
	return &Request{JSON: body}, nil
}

func (CreateDeployment) ProcessResponse(r *Response) (*konan.DeploymentCreationResponse, error) {
	deploymentJSON, err := lookupMap(r.JSON, "deployment")
	if err != nil {
		return nil, err
	}
	deployment, err := decodeDeployment(deploymentJSON)
	if err != nil {
		return nil, errors.Wrap(err, "deployment")
	}

	result := &konan.DeploymentCreationResponse{
		Deployment:    deployment,
		Errors:        []konan.DeploymentError{},
		ContainerLogs: r.JSON["container_logs"],
	}

	if deploymentJSON["model"] != nil {
		modelJSON, err := lookupMap(deploymentJSON, "model")
		if err != nil {
			return nil, err
		}
		model, err := decodeModel(modelJSON)
		if err != nil {
			return nil, errors.Wrap(err, "deployment.model")
		}
		result.Model = &model
	}

	if r.JSON["errors"] != nil {
		list, err := lookupSlice(r.JSON, "errors")
		if err != nil {
			return nil, err
		}
		for _, item := range list {
			entry, err := asObject(item, "errors")
			if err != nil {
				return nil, err
			}
			field, err := lookupString(entry, "field")
			if err != nil {
				return nil, err
			}
			message, err := lookupString(entry, "message")
			if err != nil {
				return nil, err
			}
			result.Errors = append(result.Errors, konan.DeploymentError{
				Field:   konan.ParseDeploymentErrorType(field),
				Message: message,
			})
		}
	}
	return result, nil
}

// CreateProject creates an empty deployment.
type CreateProject struct{}

var _ Codec[konan.ProjectCreationRequest, *konan.Deployment] = CreateProject{}

func (CreateProject) Descriptor() Descriptor {
	return Descriptor{Name: "create-project", Path: RouteDeployments, Operation: POST, RequiresAuth: true}
}

func (CreateProject) PrepareRequest(req konan.ProjectCreationRequest) (*Request, error) {
	body := map[string]any{"name": req.Name}
	if req.Description != "" {
		body["description"] = req.Description
	}
	return &Request{JSON: body}, nil
}

func (CreateProject) ProcessResponse(r *Response) (*konan.Deployment, error) {
	d, err := decodeDeployment(r.JSON)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateModel adds a model to an existing deployment.
type CreateModel struct{}

var _ Codec[konan.ModelCreationRequest, *konan.Model] = CreateModel{}

func (CreateModel) Descriptor() Descriptor {
	return Descriptor{Name: "create-model", Path: RouteModels, Operation: POST, RequiresAuth: true, Scope: ScopeDeployment}
}

func (CreateModel) PrepareRequest(req konan.ModelCreationRequest) (*Request, error) {
	state := req.State
	if state == "" {
		state = konan.ModelStateChallenger
	}
	body := map[string]any{
		"name":         req.Name,
		"image_url":    req.DockerImage.URL,
		"exposed_port": req.DockerImage.ExposedPort,
		"state":        state.String(),
	}
	addDockerCredentials(body, req.DockerCredentials)
	return &Request{JSON: body}, nil
}

func (CreateModel) ProcessResponse(r *Response) (*konan.Model, error) {
	modelJSON, err := lookupMap(r.JSON, "model")
	if err != nil {
		return nil, err
	}
	model, err := decodeModel(modelJSON)
	if err != nil {
		return nil, errors.Wrap(err, "model")
	}
	return &model, nil
}

// GetModels lists the models of a deployment.
type GetModels struct{}

var _ Codec[struct{}, []konan.Model] = GetModels{}

func (GetModels) Descriptor() Descriptor {
	return Descriptor{Name: "get-models", Path: RouteModels, Operation: GET, RequiresAuth: true, Scope: ScopeDeployment}
}

func (GetModels) PrepareRequest(struct{}) (*Request, error) {
	return &Request{}, nil
}

func (GetModels) ProcessResponse(r *Response) ([]konan.Model, error) {
	results, err := lookupSlice(r.JSON, "results")
	if err != nil {
		return nil, err
	}
	models := make([]konan.Model, 0, len(results))
	for _, item := range results {
		entry, err := asObject(item, "results")
		if err != nil {
			return nil, err
		}
		model, err := decodeModel(entry)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

// DeleteDeployment removes a deployment and all its models.
type DeleteDeployment struct{}

var _ Codec[struct{}, bool] = DeleteDeployment{}

func (DeleteDeployment) Descriptor() Descriptor {
	return Descriptor{Name: "delete-deployment", Path: RouteResource, Operation: DELETE, RequiresAuth: true, Scope: ScopeDeployment, DiscardBody: true}
}

func (DeleteDeployment) PrepareRequest(struct{}) (*Request, error) {
	return &Request{}, nil
}

func (DeleteDeployment) ProcessResponse(*Response) (bool, error) {
	return true, nil
}

// SwitchLiveModel changes which model of a deployment is live.
type SwitchLiveModel struct{}

var _ Codec[konan.LiveModelSwitchState, struct{}] = SwitchLiveModel{}

func (SwitchLiveModel) Descriptor() Descriptor {
	return Descriptor{Name: "switch-model-live", Path: RouteSwitch, Operation: POST, RequiresAuth: true, Scope: ScopeDeployment, DiscardBody: true}
}

func (SwitchLiveModel) PrepareRequest(s konan.LiveModelSwitchState) (*Request, error) {
	body := map[string]any{"switch_to": s.SwitchTo.String()}
	if s.NewLiveModelUUID != "" {
		body["new_live_model"] = s.NewLiveModelUUID
	}
	return &Request{JSON: body}, nil
}

func (SwitchLiveModel) ProcessResponse(*Response) (struct{}, error) {
	return struct{}{}, nil
}

func addDockerCredentials(body map[string]any, creds *konan.DockerCredentials) {
	if creds == nil {
		return
	}
	body["docker_username"] = creds.Username
	body["docker_password"] = creds.Password
}
