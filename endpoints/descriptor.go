// Package endpoints implements the typed request/response wrappers around the
// Konan REST API and the executor that runs them.
package endpoints

import "net/http"

// Operation is the HTTP verb of an endpoint.
type Operation string

const (
	GET    Operation = http.MethodGet
	POST   Operation = http.MethodPost
	DELETE Operation = http.MethodDelete
)

// ResourceScope says which resource id, if any, prefixes an endpoint's path.
type ResourceScope int

const (
	ScopeNone ResourceScope = iota
	ScopeDeployment
	ScopeModel
)

func (s ResourceScope) String() string {
	switch s {
	case ScopeDeployment:
		return "deployment"
	case ScopeModel:
		return "model"
	default:
		return "none"
	}
}

// Descriptor is the fixed, per-kind description of an endpoint.
type Descriptor struct {
	Name         string
	Path         string // relative to the resource prefix for scoped endpoints
	Operation    Operation
	RequiresAuth bool
	Scope        ResourceScope
	DiscardBody  bool // the response body carries nothing the endpoint needs
}

// Request is what an endpoint sends. A nil Params or JSON is omitted.
type Request struct {
	Params map[string]string
	JSON   any
}

// Response is what an endpoint received. JSON is nil when the body was empty
// or discarded.
type Response struct {
	StatusCode int
	JSON       map[string]any
}
