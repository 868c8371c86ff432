// Package konanfake is an in-process stand in for the Konan auth and API
// servers, used by tests and local demos.
package konanfake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-konan-sdk/endpoints"
	"github.com/jrsteele09/go-konan-sdk/konan"
	"github.com/jrsteele09/go-konan-sdk/sessions/tokenfake"
)

// Call names used by Calls.
const (
	CallLogin        = "login"
	CallAPIKeyLogin  = "api-key-login"
	CallRefresh      = "refresh-token"
	CallPredict      = "predict"
	CallEvaluate     = "evaluate"
	CallFeedback     = "feedback"
	CallPredictions  = "get-predictions"
	CallCreate       = "create-deployment"
	CallGetModels    = "get-models"
	CallCreateModel  = "create-model"
	CallSwitchLive   = "switch-model-live"
	CallSwitchModel  = "switch-model-nonlive"
	CallDeleteModel  = "delete-model"
	CallDeleteDeploy = "delete-deployment"
)

// RecordedRequest is a request the fake received.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
}

// Server serves both the auth and the API routes from one listener.
type Server struct {
	*httptest.Server
	Store *Store

	Email    string
	Password string
	APIKey   string
	Identity tokenfake.Identity

	mu            sync.Mutex
	accessTTL     time.Duration
	refreshTTL    time.Duration
	pageSize      int
	accessTokens  map[string]time.Time
	refreshTokens map[string]time.Time
	calls         map[string]int
	requests      []RecordedRequest
}

// NewServer starts a fake with one known user. Close it when done.
func NewServer() *Server {
	s := &Server{
		Store:         NewStore(),
		Email:         "jane.doe@example.com",
		Password:      "s3cret",
		APIKey:        "konan-api-key",
		Identity:      tokenfake.Identity{Email: "jane.doe@example.com", FirstName: "Jane", LastName: "Doe", OrganizationID: "org-1"},
		accessTTL:     time.Hour,
		refreshTTL:    24 * time.Hour,
		pageSize:      2,
		accessTokens:  make(map[string]time.Time),
		refreshTokens: make(map[string]time.Time),
		calls:         make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// SetTokenTTL controls the lifetime of tokens issued from now on. Negative
// values issue already expired tokens.
func (s *Server) SetTokenTTL(access, refresh time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTTL = access
	s.refreshTTL = refresh
}

func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// Calls returns how often the named route was hit.
func (s *Server) Calls(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+endpoints.RouteLogin, s.record(CallLogin, s.handleLogin))
	mux.HandleFunc("POST "+endpoints.RouteAPIKeyLogin, s.record(CallAPIKeyLogin, s.handleAPIKeyLogin))
	mux.HandleFunc("POST "+endpoints.RouteRefreshToken, s.record(CallRefresh, s.handleRefresh))

	mux.HandleFunc("POST /deployments/{$}", s.record(CallCreate, s.authorized(s.handleCreateDeployment)))
	mux.HandleFunc("DELETE /deployments/{uuid}/{$}", s.record(CallDeleteDeploy, s.authorized(s.handleDeleteDeployment)))
	mux.HandleFunc("POST /deployments/{uuid}/predict/{$}", s.record(CallPredict, s.authorized(s.handlePredict)))
	mux.HandleFunc("POST /deployments/{uuid}/evaluate/{$}", s.record(CallEvaluate, s.authorized(s.handleEvaluate)))
	mux.HandleFunc("POST /deployments/{uuid}/predictions/feedback/{$}", s.record(CallFeedback, s.authorized(s.handleFeedback)))
	mux.HandleFunc("GET /deployments/{uuid}/predictions/{$}", s.record(CallPredictions, s.authorized(s.handlePredictions)))
	mux.HandleFunc("GET /deployments/{uuid}/models/{$}", s.record(CallGetModels, s.authorized(s.handleGetModels)))
	mux.HandleFunc("POST /deployments/{uuid}/models/{$}", s.record(CallCreateModel, s.authorized(s.handleCreateModel)))
	mux.HandleFunc("POST /deployments/{uuid}/switch/{$}", s.record(CallSwitchLive, s.authorized(s.handleSwitchLive)))
	mux.HandleFunc("POST /models/{uuid}/switch/{$}", s.record(CallSwitchModel, s.authorized(s.handleSwitchModel)))
	mux.HandleFunc("DELETE /models/{uuid}/{$}", s.record(CallDeleteModel, s.authorized(s.handleDeleteModel)))
	return mux
}

func (s *Server) record(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[name]++
		s.requests = append(s.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, RawQuery: r.URL.RawQuery})
		s.mu.Unlock()
		next(w, r)
	}
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "missing bearer token"})
			return
		}
		s.mu.Lock()
		expiry, known := s.accessTokens[token]
		s.mu.Unlock()
		if !known || !time.Now().Before(expiry) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "token not valid"})
			return
		}
		next(w, r)
	}
}

func (s *Server) issueTokens(withRefresh bool) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	body := map[string]any{}
	access := tokenfake.AccessToken(s.Identity, s.accessTTL)
	s.accessTokens[access] = time.Now().Add(s.accessTTL)
	body["access"] = access
	if withRefresh {
		refresh := tokenfake.RefreshToken(s.refreshTTL)
		s.refreshTokens[refresh] = time.Now().Add(s.refreshTTL)
		body["refresh"] = refresh
	}
	return body
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Email != s.Email || body.Password != s.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "no active account found with the given credentials"})
		return
	}
	writeJSON(w, http.StatusOK, s.issueTokens(true))
}

func (s *Server) handleAPIKeyLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		APIKey string `json:"api_key"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.APIKey != s.APIKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "invalid api key"})
		return
	}
	writeJSON(w, http.StatusOK, s.issueTokens(true))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	s.mu.Lock()
	expiry, known := s.refreshTokens[body.Refresh]
	s.mu.Unlock()
	if !known || !time.Now().Before(expiry) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "token is invalid or expired"})
		return
	}
	writeJSON(w, http.StatusOK, s.issueTokens(false))
}

func (s *Server) handleCreateDeployment(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !readJSON(w, r, &body) {
		return
	}

	name, isDeployment := body["deployment_name"].(string)
	if !isDeployment {
		projectName, _ := body["name"].(string)
		d := s.Store.AddDeployment(projectName)
		writeJSON(w, http.StatusCreated, deploymentJSON(d))
		return
	}

	d := s.Store.AddDeployment(name)
	modelName, _ := body["model_name"].(string)
	model, err := s.Store.AddModel(d.UUID, modelName, konan.ModelStateLive)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": err.Error()})
		return
	}

	errs := []map[string]any{}
	if image, _ := body["image_url"].(string); image == "" {
		errs = append(errs, map[string]any{"field": "image", "message": "image could not be pulled"})
	}
	if port, _ := body["exposed_port"].(float64); port == 0 {
		errs = append(errs, map[string]any{"field": "exposed_port", "message": "no port exposed"})
	}

	dj := deploymentJSON(d)
	dj["model"] = modelJSON(model)
	writeJSON(w, http.StatusCreated, map[string]any{
		"deployment":     dj,
		"errors":         errs,
		"container_logs": "model server started",
	})
}

func (s *Server) handleDeleteDeployment(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteDeployment(r.PathValue("uuid")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var features any
	if !readJSON(w, r, &features) {
		return
	}
	output := map[string]any{"echo": features}
	p, err := s.Store.AddPrediction(r.PathValue("uuid"), features, output)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prediction_uuid": p.UUID, "output": output})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !readJSON(w, r, &body) {
		return
	}
	if body["start_time"] == nil || body["end_time"] == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "start_time and end_time are required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": map[string]any{
			"predefined": map[string]any{"rmse": 2.3, "mae": 1.1, "precision": nil},
			"custom":     []map[string]any{{"metric_name": "accuracy", "metric_value": 0.8}},
		},
	})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Feedback []struct {
			PredictionUUID string `json:"prediction_uuid"`
			Target         any    `json:"target"`
		} `json:"feedback"`
	}
	if !readJSON(w, r, &body) {
		return
	}

	deploymentUUID := r.PathValue("uuid")
	data := make([]map[string]any, 0, len(body.Feedback))
	success := 0
	for _, fb := range body.Feedback {
		status, message := http.StatusOK, "feedback saved"
		if err := s.Store.SetFeedback(deploymentUUID, fb.PredictionUUID, fb.Target); err != nil {
			status, message = http.StatusNotFound, "prediction not found"
		} else {
			success++
		}
		data = append(data, map[string]any{"prediction_uuid": fb.PredictionUUID, "status": status, "message": message})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":    data,
		"success": success,
		"failure": len(body.Feedback) - success,
		"total":   len(body.Feedback),
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.Store.Predictions(r.PathValue("uuid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}

	s.mu.Lock()
	size := s.pageSize
	s.mu.Unlock()

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	start := min((page-1)*size, len(predictions))
	end := min(start+size, len(predictions))

	results := make([]map[string]any, 0, end-start)
	for _, p := range predictions[start:end] {
		results = append(results, map[string]any{
			"uuid":            p.UUID,
			"mls_output_json": p.Output,
			"features_json":   p.Features,
			"feedback":        p.Feedback,
		})
	}

	var next, previous any
	base := fmt.Sprintf("http://%s%s", r.Host, r.URL.Path)
	if end < len(predictions) {
		next = fmt.Sprintf("%s?page=%d", base, page+1)
	}
	if page > 1 {
		previous = fmt.Sprintf("%s?page=%d", base, page-1)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(predictions),
		"next":     next,
		"previous": previous,
		"results":  results,
	})
}

func (s *Server) handleGetModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.Store.Models(r.PathValue("uuid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	results := make([]map[string]any, 0, len(models))
	for _, m := range models {
		results = append(results, modelJSON(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "results": results})
}

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	m, err := s.Store.AddModel(r.PathValue("uuid"), body.Name, konan.ParseModelState(body.State))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"model": modelJSON(m)})
}

func (s *Server) handleSwitchLive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SwitchTo     string `json:"switch_to"`
		NewLiveModel string `json:"new_live_model"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if err := s.Store.SwitchLive(r.PathValue("uuid"), konan.ParseModelState(body.SwitchTo), body.NewLiveModel); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"detail": "switched"})
}

func (s *Server) handleSwitchModel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SwitchTo string `json:"switch_to"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if err := s.Store.SetModelState(r.PathValue("uuid"), konan.ParseModelState(body.SwitchTo)); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"detail": "switched"})
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.DeleteModel(r.PathValue("uuid")); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func deploymentJSON(d konan.Deployment) map[string]any {
	return map[string]any{
		"uuid":       d.UUID,
		"name":       d.Name,
		"created_at": konan.FormatTime(d.CreatedAt),
	}
}

func modelJSON(m konan.Model) map[string]any {
	return map[string]any{
		"uuid":       m.UUID,
		"name":       m.Name,
		"created_at": konan.FormatTime(m.CreatedAt),
		"state":      m.State.String(),
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
