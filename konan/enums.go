package konan

// ModelState is the lifecycle state of a model within a deployment.
type ModelState string

const (
	ModelStateLive       ModelState = "live"
	ModelStateChallenger ModelState = "challenger"
	ModelStateDisabled   ModelState = "disabled"
	ModelStateOther      ModelState = "other"
)

var modelStates = map[string]ModelState{
	string(ModelStateLive):       ModelStateLive,
	string(ModelStateChallenger): ModelStateChallenger,
	string(ModelStateDisabled):   ModelStateDisabled,
}

// ParseModelState maps a wire value onto a ModelState. Values the client does
// not know about become ModelStateOther.
func ParseModelState(s string) ModelState {
	if state, ok := modelStates[s]; ok {
		return state
	}
	return ModelStateOther
}

func (s ModelState) String() string {
	return string(s)
}

// DeploymentErrorType names the field a deployment creation error refers to.
type DeploymentErrorType string

const (
	DeploymentErrorImage          DeploymentErrorType = "image"
	DeploymentErrorHealthEndpoint DeploymentErrorType = "health_endpoint"
	DeploymentErrorExposedPort    DeploymentErrorType = "exposed_port"
	DeploymentErrorOther          DeploymentErrorType = "other"
)

var deploymentErrorTypes = map[string]DeploymentErrorType{
	string(DeploymentErrorImage):          DeploymentErrorImage,
	string(DeploymentErrorHealthEndpoint): DeploymentErrorHealthEndpoint,
	string(DeploymentErrorExposedPort):    DeploymentErrorExposedPort,
}

// ParseDeploymentErrorType maps a wire value onto a DeploymentErrorType,
// falling back to DeploymentErrorOther.
func ParseDeploymentErrorType(s string) DeploymentErrorType {
	if t, ok := deploymentErrorTypes[s]; ok {
		return t
	}
	return DeploymentErrorOther
}

func (t DeploymentErrorType) String() string {
	return string(t)
}
