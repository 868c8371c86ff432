// Package sdk is the entry point for talking to the Konan platform.
package sdk

import (
	"context"

	"github.com/jrsteele09/go-konan-sdk/auth"
	"github.com/jrsteele09/go-konan-sdk/endpoints"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/jrsteele09/go-konan-sdk/metrics"
	"github.com/jrsteele09/go-konan-sdk/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAuthURL = "https://auth.konan.ai"
	DefaultAPIURL  = "https://api.konan.ai"
)

// KonanSDK wraps every platform operation behind a login check and an
// automatic token refresh. It is not safe for concurrent use.
type KonanSDK struct {
	authURL string
	apiURL  string
	client  endpoints.Doer
	logger  zerolog.Logger
	auth    *auth.Auth
}

// SDKOption defines a function type to modify the KonanSDK instance.
type SDKOption func(*KonanSDK)

func WithAuthURL(url string) SDKOption {
	return func(s *KonanSDK) {
		s.authURL = url
	}
}

func WithAPIURL(url string) SDKOption {
	return func(s *KonanSDK) {
		s.apiURL = url
	}
}

func WithHTTPClient(client endpoints.Doer) SDKOption {
	return func(s *KonanSDK) {
		s.client = client
	}
}

func WithLogger(logger zerolog.Logger) SDKOption {
	return func(s *KonanSDK) {
		s.logger = logger
	}
}

// WithVerbose logs every request at debug level. Apply it after WithLogger.
// When false the logger keeps its own level.
func WithVerbose(verbose bool) SDKOption {
	return func(s *KonanSDK) {
		if verbose {
			s.logger = s.logger.Level(zerolog.DebugLevel)
		}
	}
}

func New(options ...SDKOption) *KonanSDK {
	s := &KonanSDK{
		authURL: DefaultAuthURL,
		apiURL:  DefaultAPIURL,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Login authenticates with an email and password.
func (s *KonanSDK) Login(ctx context.Context, email, password string) error {
	return s.login(ctx, auth.PasswordCredentials{Email: email, Password: password})
}

// LoginWithAPIKey authenticates with an API key.
func (s *KonanSDK) LoginWithAPIKey(ctx context.Context, apiKey string) error {
	return s.login(ctx, auth.APIKeyCredentials{Key: apiKey})
}

func (s *KonanSDK) login(ctx context.Context, credentials auth.Credentials) error {
	opts := []auth.AuthOption{auth.WithLogger(s.logger)}
	if s.client != nil {
		opts = append(opts, auth.WithHTTPClient(s.client))
	}
	a, err := auth.New(s.authURL, credentials, opts...)
	if err != nil {
		return errors.Wrap(err, "[KonanSDK.Login]")
	}
	if err := a.Login(ctx); err != nil {
		return err
	}
	s.auth = a
	return nil
}

// Auth returns the underlying auth state, nil before login.
func (s *KonanSDK) Auth() *auth.Auth {
	return s.auth
}

// Session returns the logged in user's session, nil before login.
func (s *KonanSDK) Session() *sessions.Session {
	if s.auth == nil {
		return nil
	}
	return s.auth.Session()
}

// ensureSession runs the preamble shared by every operation: the user must
// have logged in, then the tokens are refreshed if needed.
func (s *KonanSDK) ensureSession(ctx context.Context) (*sessions.Session, error) {
	if s.auth == nil {
		return nil, auth.ErrNotLoggedIn
	}
	if err := s.auth.EnsureLoggedIn(); err != nil {
		return nil, err
	}
	if err := s.auth.AutoRefresh(ctx); err != nil {
		return nil, err
	}
	return s.auth.Session(), nil
}

func (s *KonanSDK) endpointOptions(session *sessions.Session, extra ...endpoints.EndpointOption) []endpoints.EndpointOption {
	opts := []endpoints.EndpointOption{
		endpoints.WithSession(session),
		endpoints.WithLogger(s.logger),
	}
	if s.client != nil {
		opts = append(opts, endpoints.WithHTTPClient(s.client))
	}
	return append(opts, extra...)
}

func call[Req, Res any](ctx context.Context, s *KonanSDK, codec endpoints.Codec[Req, Res], req Req, opts ...endpoints.EndpointOption) (Res, error) {
	var zero Res
	session, err := s.ensureSession(ctx)
	if err != nil {
		return zero, err
	}
	e, err := endpoints.New(codec, s.apiURL, s.endpointOptions(session, opts...)...)
	if err != nil {
		return zero, err
	}
	return e.Request(ctx, req)
}

// Predict runs input through the deployment's live model and returns the
// prediction uuid and output.
func (s *KonanSDK) Predict(ctx context.Context, deploymentUUID string, input any) (string, any, error) {
	p, err := call(ctx, s, endpoints.Predict{}, input, endpoints.WithDeploymentUUID(deploymentUUID))
	if err != nil {
		return "", nil, err
	}
	return p.UUID, p.Output, nil
}

// Evaluate returns the live model's metrics over the window.
func (s *KonanSDK) Evaluate(ctx context.Context, deploymentUUID string, window konan.TimeWindow) ([]metrics.Metric, error) {
	return call(ctx, s, endpoints.Evaluate{}, window, endpoints.WithDeploymentUUID(deploymentUUID))
}

// Feedback sends ground truth for earlier predictions.
func (s *KonanSDK) Feedback(ctx context.Context, deploymentUUID string, feedback []konan.FeedbackSubmission) (*konan.FeedbacksResult, error) {
	return call(ctx, s, endpoints.Feedback{}, feedback, endpoints.WithDeploymentUUID(deploymentUUID))
}

// CreateDeployment creates a deployment with an initial model. The model is
// named after the deployment unless modelName is given.
func (s *KonanSDK) CreateDeployment(ctx context.Context, name string, image konan.DockerImage, credentials *konan.DockerCredentials, modelName string) (*konan.DeploymentCreationResponse, error) {
	if modelName == "" {
		modelName = name
	}
	req := konan.DeploymentCreationRequest{
		Name: name,
		Model: konan.ModelCreationRequest{
			Name:              modelName,
			DockerImage:       image,
			DockerCredentials: credentials,
		},
	}
	return call(ctx, s, endpoints.CreateDeployment{}, req)
}

// CreateProject creates a deployment with no models.
func (s *KonanSDK) CreateProject(ctx context.Context, name, description string) (*konan.Deployment, error) {
	return call(ctx, s, endpoints.CreateProject{}, konan.ProjectCreationRequest{Name: name, Description: description})
}

// CreateModel adds a model to a deployment, as a challenger unless state says
// otherwise.
func (s *KonanSDK) CreateModel(ctx context.Context, deploymentUUID string, req konan.ModelCreationRequest) (*konan.Model, error) {
	return call(ctx, s, endpoints.CreateModel{}, req, endpoints.WithDeploymentUUID(deploymentUUID))
}

func (s *KonanSDK) GetModels(ctx context.Context, deploymentUUID string) ([]konan.Model, error) {
	return call(ctx, s, endpoints.GetModels{}, struct{}{}, endpoints.WithDeploymentUUID(deploymentUUID))
}

func (s *KonanSDK) DeleteModel(ctx context.Context, modelUUID string) (bool, error) {
	return call(ctx, s, endpoints.DeleteModel{}, struct{}{}, endpoints.WithModelUUID(modelUUID))
}

func (s *KonanSDK) DeleteDeployment(ctx context.Context, deploymentUUID string) (bool, error) {
	return call(ctx, s, endpoints.DeleteDeployment{}, struct{}{}, endpoints.WithDeploymentUUID(deploymentUUID))
}

// GetPredictions returns a paginator over the deployment's predictions in the
// window. No request is made until the first page is fetched.
func (s *KonanSDK) GetPredictions(ctx context.Context, deploymentUUID string, window konan.TimeWindow) (*endpoints.Paginator[konan.TimeWindow, konan.Prediction], error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	inner, err := endpoints.New(endpoints.PaginatedPredictions{}, s.apiURL,
		s.endpointOptions(session, endpoints.WithDeploymentUUID(deploymentUUID))...)
	if err != nil {
		return nil, err
	}
	return endpoints.NewPaginator(inner, window, s.auth), nil
}

// GetPredictionsPage fetches a single raw page of predictions.
func (s *KonanSDK) GetPredictionsPage(ctx context.Context, deploymentUUID string, window konan.TimeWindow) (*konan.PredictionsPage, error) {
	return call(ctx, s, endpoints.GetPredictions{}, window, endpoints.WithDeploymentUUID(deploymentUUID))
}

func (s *KonanSDK) switchLive(ctx context.Context, deploymentUUID string, state konan.LiveModelSwitchState) error {
	_, err := call(ctx, s, endpoints.SwitchLiveModel{}, state, endpoints.WithDeploymentUUID(deploymentUUID))
	return err
}

func (s *KonanSDK) switchNonLive(ctx context.Context, modelUUID string, state konan.ModelState) error {
	_, err := call(ctx, s, endpoints.SwitchNonLiveModel{}, state, endpoints.WithModelUUID(modelUUID))
	return err
}
