package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-konan-sdk/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingSession        = errors.New("endpoint requires an authenticated session")
	ErrMissingDeploymentUUID = errors.New("endpoint requires a deployment uuid")
	ErrMissingModelUUID      = errors.New("endpoint requires a model uuid")
	ErrMissingAPIURL         = errors.New("endpoint requires an api url")
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Codec gives an endpoint its identity and its wire format. Both hooks are
// pure; all I/O happens in Endpoint.
type Codec[Req, Res any] interface {
	Descriptor() Descriptor
	PrepareRequest(Req) (*Request, error)
	ProcessResponse(*Response) (Res, error)
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

type options struct {
	session        *sessions.Session
	deploymentUUID string
	modelUUID      string
	client         Doer
	logger         zerolog.Logger
}

// EndpointOption configures an Endpoint.
type EndpointOption func(*options)

func WithSession(s *sessions.Session) EndpointOption {
	return func(o *options) {
		o.session = s
	}
}

func WithDeploymentUUID(uuid string) EndpointOption {
	return func(o *options) {
		o.deploymentUUID = uuid
	}
}

func WithModelUUID(uuid string) EndpointOption {
	return func(o *options) {
		o.modelUUID = uuid
	}
}

// WithHTTPClient overrides http.DefaultClient.
func WithHTTPClient(client Doer) EndpointOption {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

func WithLogger(logger zerolog.Logger) EndpointOption {
	return func(o *options) {
		o.logger = logger
	}
}

// Endpoint executes one kind of API call described by its codec.
type Endpoint[Req, Res any] struct {
	codec  Codec[Req, Res]
	desc   Descriptor
	apiURL string
	options
}

// New binds a codec to an API host. Missing sessions and resource ids are
// reported here rather than when the request is sent.
func New[Req, Res any](codec Codec[Req, Res], apiURL string, opts ...EndpointOption) (*Endpoint[Req, Res], error) {
	e := &Endpoint[Req, Res]{
		codec:  codec,
		desc:   codec.Descriptor(),
		apiURL: strings.TrimSuffix(apiURL, "/"),
		options: options{
			client: http.DefaultClient,
			logger: log.Logger,
		},
	}
	for _, opt := range opts {
		opt(&e.options)
	}

	if e.apiURL == "" {
		return nil, errors.Wrapf(ErrMissingAPIURL, "[endpoints.New] %s", e.desc.Name)
	}
	if e.desc.RequiresAuth && e.session == nil {
		return nil, errors.Wrapf(ErrMissingSession, "[endpoints.New] %s", e.desc.Name)
	}
	switch e.desc.Scope {
	case ScopeDeployment:
		if e.deploymentUUID == "" {
			return nil, errors.Wrapf(ErrMissingDeploymentUUID, "[endpoints.New] %s", e.desc.Name)
		}
	case ScopeModel:
		if e.modelUUID == "" {
			return nil, errors.Wrapf(ErrMissingModelUUID, "[endpoints.New] %s", e.desc.Name)
		}
	}
	return e, nil
}

func (e *Endpoint[Req, Res]) Name() string {
	return e.desc.Name
}

func (e *Endpoint[Req, Res]) Operation() Operation {
	return e.desc.Operation
}

// Path is the descriptor path behind its resource prefix.
func (e *Endpoint[Req, Res]) Path() string {
	switch e.desc.Scope {
	case ScopeDeployment:
		return "/deployments/" + e.deploymentUUID + e.desc.Path
	case ScopeModel:
		return "/models/" + e.modelUUID + e.desc.Path
	default:
		return e.desc.Path
	}
}

func (e *Endpoint[Req, Res]) RequestURL() string {
	return e.apiURL + e.Path()
}

// Headers are computed per call so a refreshed access token is picked up.
func (e *Endpoint[Req, Res]) Headers() http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if e.desc.RequiresAuth && e.session != nil {
		h.Set("Authorization", "Bearer "+e.session.AccessToken)
	}
	return h
}

// Request prepares req, sends it, and decodes the response.
func (e *Endpoint[Req, Res]) Request(ctx context.Context, req Req) (Res, error) {
	var zero Res
	prepared, err := e.codec.PrepareRequest(req)
	if err != nil {
		return zero, errors.Wrapf(err, "[%s] failed to prepare request", e.desc.Name)
	}
	resp, err := e.send(ctx, e.RequestURL(), prepared)
	if err != nil {
		return zero, err
	}
	return e.process(resp)
}

func (e *Endpoint[Req, Res]) process(resp *Response) (Res, error) {
	res, err := e.codec.ProcessResponse(resp)
	if err != nil {
		var zero Res
		return zero, errors.Wrapf(err, "[%s] failed to process response", e.desc.Name)
	}
	return res, nil
}

func (e *Endpoint[Req, Res]) send(ctx context.Context, rawURL string, req *Request) (*Response, error) {
	if req == nil {
		req = &Request{}
	}

	target, err := withParams(rawURL, req.Params)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] invalid url", e.desc.Name)
	}

	var body io.Reader
	if req.JSON != nil {
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, errors.Wrapf(err, "[%s] failed to encode body", e.desc.Name)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(e.desc.Operation), target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] failed to build request", e.desc.Name)
	}
	httpReq.Header = e.Headers()

	e.logger.Debug().Str("endpoint", e.desc.Name).Str("method", httpReq.Method).Str("url", target).Msg("sending request")

	httpResp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] request failed", e.desc.Name)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "[%s] failed to read response", e.desc.Name)
	}

	e.logger.Debug().Str("endpoint", e.desc.Name).Int("status", httpResp.StatusCode).Int("bytes", len(raw)).Msg("received response")

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:     httpReq.Method,
			URL:        target,
			StatusCode: httpResp.StatusCode,
			Body:       string(raw),
		}
	}

	resp := &Response{StatusCode: httpResp.StatusCode}
	if e.desc.DiscardBody || len(bytes.TrimSpace(raw)) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(raw, &resp.JSON); err != nil {
		return nil, errors.Wrapf(err, "[%s] response is not a json object", e.desc.Name)
	}
	return resp, nil
}

func withParams(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
