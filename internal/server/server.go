// Package server is a minimal HTTP front end over the fhirpath engine: one
// POST endpoint that evaluates an expression against a JSON resource and
// returns the result collection plus any trace() output. Spec.md marks the
// HTTP server out of scope ("specified only as the interfaces they
// consume"), so this keeps the teacher's net/http-plus-CORS shape
// (internal/server/server.go, internal/server/backend.go) but drops its
// FHIR-lab Parameters/OperationDefinition wire format, which depended on
// generated FHIR R4/R4B/R5 resource bindings this module does not carry
// (see DESIGN.md).
package server

import (
	"net/http"
	"strings"
)

// NewMux creates the HTTP mux with the evaluate endpoint registered.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	backend := &Backend{}
	mux.Handle("/evaluate", withCORS(http.HandlerFunc(backend.handleEvaluate)))
	return mux
}

func corsAllowedOrigin(origin string) (string, bool) {
	allowed := []string{
		"https://fhirpath-lab.com",
		"https://dev.fhirpath-lab.com",
		"http://localhost:3000",
	}
	for _, a := range allowed {
		if strings.EqualFold(origin, a) {
			return a, true
		}
	}
	return "", false
}

func writeCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if o, ok := corsAllowedOrigin(origin); ok {
		w.Header().Set("Access-Control-Allow-Origin", o)
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	}
}

// withCORS wraps a handler to write CORS headers and handle OPTIONS preflight.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeCORS(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
