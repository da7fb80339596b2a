package server

import (
	"context"
	"encoding/json"
	"net/http"

	fhirpath "fhirpath-go"
	"fhirpath-go/trace"
	"fhirpath-go/value"
)

// Backend holds handler-wide configuration. Empty today; kept as a type (as
// the teacher's Backend{BaseURL string} was) so future config doesn't
// require a handler signature change.
type Backend struct{}

type evaluateRequest struct {
	Expression string            `json:"expression"`
	Context    string            `json:"context,omitempty"`
	Resource   json.RawMessage   `json:"resource"`
	Variables  map[string]string `json:"variables,omitempty"`
}

type traceResponse struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type evaluateResponse struct {
	Result []string        `json:"result"`
	Trace  []traceResponse `json:"trace,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (b *Backend) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, evaluateResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	resource, err := value.NewResource(req.Resource)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, evaluateResponse{Error: "invalid resource: " + err.Error()})
		return
	}
	input := value.ResourceVal(resource)

	ctx := context.Background()
	for name, v := range req.Variables {
		ctx = fhirpath.WithEnv(ctx, name, value.Str(v))
	}
	mem := &trace.Memory{}
	ctx = fhirpath.WithTracer(ctx, mem)

	focus := value.Of(input)
	if req.Context != "" {
		focus, err = fhirpath.EvaluateExpression(ctx, input, req.Context)
		if err != nil {
			writeJSON(w, http.StatusOK, evaluateResponse{Error: "context evaluation error: " + err.Error()})
			return
		}
	}

	var result value.Collection
	for _, item := range focus {
		partial, err := fhirpath.EvaluateExpression(ctx, item, req.Expression)
		if err != nil {
			writeJSON(w, http.StatusOK, evaluateResponse{Error: "evaluation error: " + err.Error()})
			return
		}
		result = append(result, partial...)
	}

	resp := evaluateResponse{Result: stringifyAll(result)}
	for _, entry := range mem.Entries {
		resp.Trace = append(resp.Trace, traceResponse{Name: entry.Name, Values: stringifyAll(entry.Values)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func stringifyAll(c value.Collection) []string {
	out := make([]string, len(c))
	for i, v := range c {
		out[i] = v.String()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
