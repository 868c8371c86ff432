package service

import (
	"encoding/json"
	"io"
	"net/http"
)

func (s *Server[In, Out]) healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "\n")
}

func (s *Server[In, Out]) preflightHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server[In, Out]) predictHandler(w http.ResponseWriter, r *http.Request) {
	var input In
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid prediction input: "+err.Error())
		return
	}

	output, err := s.model.Predict(r.Context(), input)
	if err != nil {
		s.logger.Err(err).Str("request_id", r.Header.Get(RequestIDHeader)).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (s *Server[In, Out]) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	var req evaluationRequest[Out]
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid evaluation data: "+err.Error())
		return
	}

	ms, err := s.model.Evaluate(r.Context(), req.Data)
	if err != nil {
		s.logger.Err(err).Str("request_id", r.Header.Get(RequestIDHeader)).Msg("evaluation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := evaluationResponse{Results: make([]metricResult, 0, len(ms))}
	for _, m := range ms {
		resp.Results = append(resp.Results, metricResult{MetricName: m.Name(), MetricValue: m.Value()})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
